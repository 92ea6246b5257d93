package ramm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ramm-go/ramm/pkg/mechanisms"
	"github.com/ramm-go/ramm/pkg/primitives"
)

func TestMechanismAdapterAddAndRemoveLiquidity(t *testing.T) {
	p, prices := newThreeAssetPool(t)
	adapter := NewMechanismAdapter(p, "ramm", 0)
	require.Equal(t, mechanisms.MechanismTypeLiquidityPool, adapter.Mechanism())
	require.Equal(t, "ramm", adapter.Venue())

	ctx := WithOracleContext(context.Background(), OracleContext{Prices: prices, NowMillis: 1_100_000})

	depositAmount, err := primitives.NewAmount(primitives.NewDecimal(10))
	require.NoError(t, err)

	position, err := adapter.AddLiquidity(ctx, mechanisms.TokenAmounts{AmountA: depositAmount})
	require.NoError(t, err)
	require.False(t, position.Liquidity.IsZero())

	payouts, err := adapter.RemoveLiquidity(ctx, position)
	require.NoError(t, err)
	require.False(t, payouts.AmountA.IsZero())
}

func TestMechanismAdapterCalculateIsPureRead(t *testing.T) {
	p, prices := newThreeAssetPool(t)
	adapter := NewMechanismAdapter(p, "ramm", 0)

	ctx := WithOracleContext(context.Background(), OracleContext{Prices: prices, NowMillis: 1_100_000})
	balanceBefore := p.Balance(0)

	state, err := adapter.Calculate(ctx, mechanisms.PoolParams{})
	require.NoError(t, err)
	require.False(t, state.SpotPrice.IsZero())

	require.Equal(t, 0, balanceBefore.Cmp(p.Balance(0)), "Calculate must not mutate pool state")
}

func TestMechanismAdapterRequiresOracleContext(t *testing.T) {
	p, _ := newThreeAssetPool(t)
	adapter := NewMechanismAdapter(p, "ramm", 0)

	_, err := adapter.Calculate(context.Background(), mechanisms.PoolParams{})
	require.Error(t, err)
}
