package ramm

import (
	"context"
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"

	"github.com/ramm-go/ramm/pkg/errs"
	"github.com/ramm-go/ramm/pkg/kernel"
	"github.com/ramm-go/ramm/pkg/mechanisms"
	"github.com/ramm-go/ramm/pkg/oracle"
	"github.com/ramm-go/ramm/pkg/primitives"
)

// MechanismAdapter exposes a Pool through the framework's generic
// mechanisms.LiquidityPool interface, so any caller built against that
// interface can drive a RAMM pool the same way it drives any other AMM.
//
// The wrapped interface is two-token (TokenAmounts carries AmountA/AmountB
// only); depositAsset picks which of the pool's up-to-three asset slots
// AmountA addresses. Every call needs oracle readings and a timestamp that
// a constant-product pool wouldn't; callers attach those to ctx with
// WithOracleContext before calling Calculate/AddLiquidity/RemoveLiquidity.
type MechanismAdapter struct {
	pool         *Pool
	venue        string
	depositAsset AssetIndex
}

// NewMechanismAdapter wraps pool for asset slot depositAsset.
func NewMechanismAdapter(pool *Pool, venue string, depositAsset AssetIndex) *MechanismAdapter {
	return &MechanismAdapter{pool: pool, venue: venue, depositAsset: depositAsset}
}

// Mechanism identifies this as a liquidity-pool-category mechanism.
func (a *MechanismAdapter) Mechanism() mechanisms.MechanismType {
	return mechanisms.MechanismTypeLiquidityPool
}

// Venue returns the configured venue label (e.g. "ramm").
func (a *MechanismAdapter) Venue() string { return a.venue }

type oracleContextKey struct{}

// OracleContext carries the per-operation oracle readings (one per
// registered asset, in slot order) and timestamp that every RAMM
// operation requires.
type OracleContext struct {
	Prices    []oracle.Reading
	NowMillis int64
}

// WithOracleContext attaches oc to ctx for a subsequent adapter call.
func WithOracleContext(ctx context.Context, oc OracleContext) context.Context {
	return context.WithValue(ctx, oracleContextKey{}, oc)
}

func oracleContextFrom(ctx context.Context) (OracleContext, error) {
	oc, ok := ctx.Value(oracleContextKey{}).(OracleContext)
	if !ok {
		return OracleContext{}, errors.New("ramm: context is missing an OracleContext (see WithOracleContext)")
	}
	return oc, nil
}

func decimalOf(v fmt.Stringer) (primitives.Decimal, error) {
	return primitives.NewDecimalFromString(v.String())
}

func amountOf(v fmt.Stringer) (primitives.Amount, error) {
	d, err := decimalOf(v)
	if err != nil {
		return primitives.Amount{}, err
	}
	return primitives.NewAmount(d)
}

// rawAmountFrom converts a primitives.Amount (a decimal quantity) into a
// raw-unit integer, truncating any fractional remainder.
func rawAmountFrom(amount primitives.Amount) (*uint256.Int, error) {
	d, err := decimal.NewFromString(amount.Decimal().String())
	if err != nil {
		return nil, err
	}
	v, overflow := uint256.FromBig(d.Truncate(0).BigInt())
	if overflow {
		return nil, errs.ErrMulOverflow
	}
	return v, nil
}

// counterpartOf picks the asset slot Calculate quotes depositAsset against:
// the next slot if one exists, otherwise the previous one.
func (a *MechanismAdapter) counterpartOf() AssetIndex {
	if int(a.depositAsset)+1 < a.pool.Size() {
		return a.depositAsset + 1
	}
	return a.depositAsset - 1
}

// Calculate is a pure read: it snapshots weights/imbalance ratios and the
// spot price of depositAsset against its counterpart slot, without
// mutating pool state.
func (a *MechanismAdapter) Calculate(ctx context.Context, params mechanisms.PoolParams) (mechanisms.PoolState, error) {
	oc, err := oracleContextFrom(ctx)
	if err != nil {
		return mechanisms.PoolState{}, err
	}

	snapshot, err := a.pool.WeightsAndImbalanceRatios(oc.Prices)
	if err != nil {
		return mechanisms.PoolState{}, err
	}

	counterpart := a.counterpartOf()
	pIn, err := kernelPriceOf(oc.Prices[a.depositAsset].PriceScaled, oc.Prices[a.depositAsset].FactorPrice)
	if err != nil {
		return mechanisms.PoolState{}, err
	}
	pOut, err := kernelPriceOf(oc.Prices[counterpart].PriceScaled, oc.Prices[counterpart].FactorPrice)
	if err != nil {
		return mechanisms.PoolState{}, err
	}
	spotRatio, err := kernel.Div(pIn, pOut)
	if err != nil {
		return mechanisms.PoolState{}, err
	}
	spotDec, err := primitives.NewDecimalFromString(decimal.NewFromBigInt(spotRatio.ToBig(), -kernel.PrecisionDecimalPlaces).String())
	if err != nil {
		return mechanisms.PoolState{}, err
	}
	spotPrice, err := primitives.NewPrice(spotDec)
	if err != nil {
		return mechanisms.PoolState{}, err
	}

	liquidity, err := amountOf(a.pool.LPSupply(a.depositAsset))
	if err != nil {
		return mechanisms.PoolState{}, err
	}
	fees, err := amountOf(a.pool.CollectedFees(a.depositAsset))
	if err != nil {
		return mechanisms.PoolState{}, err
	}

	return mechanisms.PoolState{
		SpotPrice:          spotPrice,
		Liquidity:          liquidity,
		EffectiveLiquidity: liquidity,
		AccumulatedFeesA:   fees,
		Metadata: map[string]interface{}{
			"imbalance_ratios": snapshot.Imbalance,
			"weights":          snapshot.Weight,
		},
	}, nil
}

// AddLiquidity deposits amounts.AmountA into the adapter's configured
// asset slot and returns the resulting LP position.
func (a *MechanismAdapter) AddLiquidity(ctx context.Context, amounts mechanisms.TokenAmounts) (mechanisms.PoolPosition, error) {
	oc, err := oracleContextFrom(ctx)
	if err != nil {
		return mechanisms.PoolPosition{}, err
	}

	depositRaw, err := rawAmountFrom(amounts.AmountA)
	if err != nil {
		return mechanisms.PoolPosition{}, err
	}

	minted, err := a.pool.LiquidityDeposit(a.depositAsset, depositRaw, oc.Prices, oc.NowMillis)
	if err != nil {
		return mechanisms.PoolPosition{}, err
	}

	liquidity, err := amountOf(minted)
	if err != nil {
		return mechanisms.PoolPosition{}, err
	}

	return mechanisms.PoolPosition{
		PoolID:          a.pool.ID(),
		Liquidity:       liquidity,
		TokensDeposited: amounts,
		Metadata: map[string]interface{}{
			"asset_index": a.depositAsset,
		},
	}, nil
}

// RemoveLiquidity burns position.Liquidity LP tokens from the asset slot
// recorded in position.Metadata["asset_index"].
func (a *MechanismAdapter) RemoveLiquidity(ctx context.Context, position mechanisms.PoolPosition) (mechanisms.TokenAmounts, error) {
	oc, err := oracleContextFrom(ctx)
	if err != nil {
		return mechanisms.TokenAmounts{}, err
	}

	idx := a.depositAsset
	if raw, ok := position.Metadata["asset_index"]; ok {
		if i, ok := raw.(AssetIndex); ok {
			idx = i
		}
	}

	lpRaw, err := rawAmountFrom(position.Liquidity)
	if err != nil {
		return mechanisms.TokenAmounts{}, err
	}

	payouts, _, err := a.pool.LiquidityWithdrawal(idx, lpRaw, oc.Prices, oc.NowMillis)
	if err != nil {
		return mechanisms.TokenAmounts{}, err
	}

	amountA, err := amountOf(payouts[idx])
	if err != nil {
		return mechanisms.TokenAmounts{}, err
	}
	return mechanisms.TokenAmounts{AmountA: amountA}, nil
}
