package ramm

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/ramm-go/ramm/pkg/config"
	"github.com/ramm-go/ramm/pkg/errs"
)

func TestPoolLifecycle(t *testing.T) {
	t.Run("cannot initialize below MinAssets", func(t *testing.T) {
		p := NewPool("p1", testAdmin, config.Default())
		cap := NewAssetCap{PoolID: p.ID()}
		_, err := p.AddAsset(cap, newTestDescriptor(t, "ETH", 10, 6), rawUnits(t, "0.0001", 6), 6)
		require.NoError(t, err)
		err = p.Initialize(cap)
		require.ErrorIs(t, err, errs.ErrInvalidAssetCount)
	})

	t.Run("cannot add a fourth asset", func(t *testing.T) {
		p := NewPool("p2", testAdmin, config.Default())
		cap := NewAssetCap{PoolID: p.ID()}
		for i, sym := range []string{"A", "B", "C"} {
			_, err := p.AddAsset(cap, newTestDescriptor(t, sym, int64(20+i), 6), rawUnits(t, "0.0001", 6), 6)
			require.NoError(t, err)
		}
		_, err := p.AddAsset(cap, newTestDescriptor(t, "D", 23, 6), rawUnits(t, "0.0001", 6), 6)
		require.ErrorIs(t, err, errs.ErrInvalidAssetCount)
	})

	t.Run("cannot add asset after Initialize", func(t *testing.T) {
		p, _ := newThreeAssetPool(t)
		cap := NewAssetCap{PoolID: p.ID()}
		_, err := p.AddAsset(cap, newTestDescriptor(t, "DAI", 30, 6), rawUnits(t, "0.0001", 6), 6)
		require.ErrorIs(t, err, errs.ErrPoolAlreadyInitialized)
	})

	t.Run("capability must match pool id", func(t *testing.T) {
		p := NewPool("p3", testAdmin, config.Default())
		wrongCap := NewAssetCap{PoolID: "not-p3"}
		_, err := p.AddAsset(wrongCap, newTestDescriptor(t, "ETH", 40, 6), rawUnits(t, "0.0001", 6), 6)
		require.ErrorIs(t, err, errs.ErrNotAdmin)
	})

	t.Run("descriptor decimals above kernel precision rejected", func(t *testing.T) {
		_, err := NewAssetDescriptor(common.HexToAddress("0x50"), 13, "X")
		require.ErrorIs(t, err, errs.ErrInvalidAssetCount)
	})
}

func TestCollectFeesRequiresMatchingAdmin(t *testing.T) {
	p, _ := newThreeAssetPool(t)
	wrongCap := AdminCap{PoolID: p.ID(), AdminID: AdminID(common.HexToAddress("0xBAD"))}
	_, err := p.CollectFees(wrongCap)
	require.ErrorIs(t, err, errs.ErrNotAdmin)
}
