package ramm

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ramm-go/ramm/pkg/config"
	"github.com/ramm-go/ramm/pkg/kernel"
	"github.com/ramm-go/ramm/pkg/oracle"
)

// rawUnits converts a whole-and-fractional decimal string into raw asset
// units at the given decimal count, e.g. rawUnits("200", 6) == 200_000000.
func rawUnits(t *testing.T, s string, decimals uint) *uint256.Int {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	scaled := d.Shift(int32(decimals)).Truncate(0)
	v, overflow := uint256.FromBig(scaled.BigInt())
	require.False(t, overflow)
	return v
}

// kernelPrice builds a Reading whose kernel price equals s exactly, using
// an oracle scale of kernel.PrecisionDecimalPlaces (factor_price == 1).
func kernelPrice(t *testing.T, s string) oracle.Reading {
	t.Helper()
	scaled, err := kernel.FromDecimalString(s)
	require.NoError(t, err)
	return oracle.Reading{PriceScaled: scaled, FactorPrice: uint256.NewInt(1)}
}

var testAdmin = AdminID(common.HexToAddress("0xA11CE00000000000000000000000000000000A"))

// newTestDescriptor builds an AssetDescriptor with the given decimal count,
// at an address derived from addrSeed so distinct seeds don't collide.
func newTestDescriptor(t *testing.T, symbol string, addrSeed int64, decimals uint) AssetDescriptor {
	t.Helper()
	addr := common.BigToAddress(big.NewInt(addrSeed))
	d, err := NewAssetDescriptor(addr, decimals, symbol)
	require.NoError(t, err)
	return d
}

// newThreeAssetPool builds an Initialized ETH/MATIC/USDT pool (slots 0,1,2),
// all at 6 decimals, with a minimum trade size of 0.0001 for every asset, and
// deposits the whitepaper's initial balances (200 / 200,000 / 400,000) at
// prices 1800 / 1.2 / 1 so every asset's first deposit leaves
// balance[i] == lp_supply[i] (imbalance ratio == ONE for all three, per I4).
func newThreeAssetPool(t *testing.T) (*Pool, []oracle.Reading) {
	t.Helper()

	econ := config.Default()
	p := NewPool("eth-matic-usdt", testAdmin, econ)
	cap := NewAssetCap{PoolID: p.ID()}

	minTrade := rawUnits(t, "0.0001", 6)
	ethIdx, err := p.AddAsset(cap, newTestDescriptor(t, "ETH", 1, 6), minTrade, 6)
	require.NoError(t, err)
	maticIdx, err := p.AddAsset(cap, newTestDescriptor(t, "MATIC", 2, 6), minTrade, 6)
	require.NoError(t, err)
	usdtIdx, err := p.AddAsset(cap, newTestDescriptor(t, "USDT", 3, 6), minTrade, 6)
	require.NoError(t, err)
	require.Equal(t, AssetIndex(0), ethIdx)
	require.Equal(t, AssetIndex(1), maticIdx)
	require.Equal(t, AssetIndex(2), usdtIdx)

	require.NoError(t, p.Initialize(cap))

	prices := []oracle.Reading{
		kernelPrice(t, "1800"),
		kernelPrice(t, "1.2"),
		kernelPrice(t, "1"),
	}

	_, err = p.LiquidityDeposit(ethIdx, rawUnits(t, "200", 6), prices, 1_000_000)
	require.NoError(t, err)
	_, err = p.LiquidityDeposit(maticIdx, rawUnits(t, "200000", 6), prices, 1_000_000)
	require.NoError(t, err)
	_, err = p.LiquidityDeposit(usdtIdx, rawUnits(t, "400000", 6), prices, 1_000_000)
	require.NoError(t, err)

	return p, prices
}
