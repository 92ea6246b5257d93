// Package ramm implements the Redesigned Automated Market Maker: a
// multi-asset, oracle-priced liquidity pool with leverage-scaled pricing,
// dynamic fees, and per-asset volatility tracking.
package ramm

import (
	"math/big"

	core "github.com/daoleno/uniswap-sdk-core/entities"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/ramm-go/ramm/pkg/config"
	"github.com/ramm-go/ramm/pkg/errs"
	"github.com/ramm-go/ramm/pkg/kernel"
)

// AssetIndex is the stable, pool-lifetime-lasting slot index for a
// registered asset. A plain ordered-array index is used in preference to
// compile-time type parameters, since a pool's arity (2 or 3) and asset
// set are only known at runtime.
type AssetIndex uint8

// MaxAssets is the largest pool arity this implementation supports.
const MaxAssets = 3

// MinAssets is the smallest pool arity this implementation supports.
const MinAssets = 2

// AdminID identifies the fee-collection authority bound to a pool.
type AdminID common.Address

// AdminCap is the capability presented to CollectFees; it must match the
// pool's AdminID.
type AdminCap struct {
	PoolID  string
	AdminID AdminID
}

// NewAssetCap is the capability required to register an asset while the
// pool is still in the Uninit lifecycle phase.
type NewAssetCap struct {
	PoolID string
}

// AssetDescriptor carries an asset's on-chain identity and decimal count.
// It wraps the Uniswap SDK's Token entity purely for its address/decimals/
// symbol metadata; none of the V3 tick math is used (the RAMM curve prices
// from the oracle, not from ticks).
type AssetDescriptor struct {
	Token *core.Token
}

// NewAssetDescriptor builds an AssetDescriptor for a token with the given
// address, decimal count, and symbol. decimals must not exceed the
// kernel's PrecisionDecimalPlaces (12), since factor_balance/factor_price
// are defined as non-negative integer powers of ten.
func NewAssetDescriptor(address common.Address, decimals uint, symbol string) (AssetDescriptor, error) {
	if decimals > kernel.PrecisionDecimalPlaces {
		return AssetDescriptor{}, errs.ErrInvalidAssetCount
	}
	return AssetDescriptor{Token: core.NewToken(1, address, decimals, symbol, symbol)}, nil
}

func (d AssetDescriptor) decimals() uint {
	return d.Token.Decimals()
}

// volatilityState is the per-asset rolling volatility tracker: the last
// observed price/timestamp and the current volatility parameter/timestamp
// that fee scaling reads.
type volatilityState struct {
	prevPrice   *uint256.Int
	prevPriceTS int64 // ms
	volParam    *uint256.Int
	volTS       int64 // ms
}

func zeroVolatilityState() volatilityState {
	return volatilityState{
		prevPrice: kernel.Zero(),
		volParam:  kernel.Zero(),
	}
}

// assetState is one slot of pool-held state for a registered asset.
type assetState struct {
	descriptor     AssetDescriptor
	balance        *uint256.Int
	lpSupply       *uint256.Int
	collectedFees  *uint256.Int
	minTrade       *uint256.Int
	factorBalance  *uint256.Int
	lpDecimals     uint8
	volatility     volatilityState
}

// lifecycle is the pool's state-machine phase.
type lifecycle int

const (
	lifecycleUninit lifecycle = iota
	lifecycleInitialized
)

// Pool is a single RAMM market holding two or three assets.
type Pool struct {
	id      string
	adminID AdminID
	phase   lifecycle
	assets  []assetState
	econ    config.PoolEconomics
}

// NewPool constructs an empty, Uninit pool bound to adminID, with the
// given economic parameters. Assets are added one at a time via AddAsset;
// after Initialize the asset set is frozen.
func NewPool(id string, adminID AdminID, econ config.PoolEconomics) *Pool {
	return &Pool{
		id:      id,
		adminID: adminID,
		phase:   lifecycleUninit,
		assets:  make([]assetState, 0, MaxAssets),
		econ:    econ,
	}
}

// ID returns the pool's identifier.
func (p *Pool) ID() string { return p.id }

// Size returns the number of registered assets (2 or 3 once initialized).
func (p *Pool) Size() int { return len(p.assets) }

// AddAsset registers a new asset while the pool is Uninit. minTrade and
// lpDecimals are per-asset configuration: LP decimal handling is a
// per-asset parameter, not a global constant, so each asset's LP token
// can use a different decimal count than the underlying asset.
func (p *Pool) AddAsset(cap NewAssetCap, descriptor AssetDescriptor, minTrade *uint256.Int, lpDecimals uint8) (AssetIndex, error) {
	if cap.PoolID != p.id {
		return 0, errs.ErrNotAdmin
	}
	if p.phase != lifecycleUninit {
		return 0, errs.ErrPoolAlreadyInitialized
	}
	if len(p.assets) >= MaxAssets {
		return 0, errs.ErrInvalidAssetCount
	}

	factorExp := kernel.PrecisionDecimalPlaces - int(descriptor.decimals())
	factorBalance, err := powerOfTen(factorExp)
	if err != nil {
		return 0, err
	}

	idx := AssetIndex(len(p.assets))
	p.assets = append(p.assets, assetState{
		descriptor:    descriptor,
		balance:       kernel.Zero(),
		lpSupply:      kernel.Zero(),
		collectedFees: kernel.Zero(),
		minTrade:      minTrade.Clone(),
		factorBalance: factorBalance,
		lpDecimals:    lpDecimals,
		volatility:    zeroVolatilityState(),
	})
	return idx, nil
}

// Initialize freezes the asset set. The pool must hold 2 or 3 assets.
// No transition leads back out of Initialized.
func (p *Pool) Initialize(cap NewAssetCap) error {
	if cap.PoolID != p.id {
		return errs.ErrNotAdmin
	}
	if p.phase != lifecycleUninit {
		return errs.ErrPoolAlreadyInitialized
	}
	if len(p.assets) < MinAssets || len(p.assets) > MaxAssets {
		return errs.ErrInvalidAssetCount
	}
	p.phase = lifecycleInitialized
	return nil
}

func (p *Pool) requireInitialized() error {
	if p.phase != lifecycleInitialized {
		return errs.ErrInvalidSize
	}
	return nil
}

func (p *Pool) requireValidIndex(i AssetIndex) error {
	if int(i) >= len(p.assets) {
		return errs.ErrAssetNotRegistered
	}
	return nil
}

// Balance returns the raw-unit tradable balance of asset i.
func (p *Pool) Balance(i AssetIndex) *uint256.Int { return p.assets[i].balance.Clone() }

// LPSupply returns the raw-unit LP token supply of asset i.
func (p *Pool) LPSupply(i AssetIndex) *uint256.Int { return p.assets[i].lpSupply.Clone() }

// CollectedFees returns the raw-unit protocol fees accrued for asset i.
func (p *Pool) CollectedFees(i AssetIndex) *uint256.Int { return p.assets[i].collectedFees.Clone() }

// FactorBalance returns the kernel-precision scale factor for asset i.
func (p *Pool) FactorBalance(i AssetIndex) *uint256.Int { return p.assets[i].factorBalance.Clone() }

// MinTrade returns the minimum raw-unit trade amount for asset i.
func (p *Pool) MinTrade(i AssetIndex) *uint256.Int { return p.assets[i].minTrade.Clone() }

// Economics returns the pool's configured economic parameters.
func (p *Pool) Economics() config.PoolEconomics { return p.econ }

func powerOfTen(exp int) (*uint256.Int, error) {
	if exp < 0 {
		return nil, errs.ErrInvalidAssetCount
	}
	v := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(exp)), nil)
	r, overflow := uint256.FromBig(v)
	if overflow {
		return nil, errs.ErrMulOverflow
	}
	return r, nil
}
