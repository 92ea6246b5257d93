// Package oracle adapts an external price feed into the kernel's
// fixed-point precision, rejecting negative or stale readings before any
// pool math ever sees them.
package oracle

import (
	"math/big"
	"time"

	"github.com/holiman/uint256"

	"github.com/ramm-go/ramm/pkg/errs"
	"github.com/ramm-go/ramm/pkg/kernel"
)

// StalenessWindowMillis is the maximum age, in milliseconds, an oracle reading
// may have before a call is rejected with ErrStalePrice.
const StalenessWindowMillis = 60 * 60 * 1000

// AssetID identifies one of the pool's registered assets. It is opaque to
// the oracle package; the pool package defines the concrete values.
type AssetID interface {
	comparable
}

// Feed is the external oracle collaborator: a pure function of "now" bound
// to a single asset. Implementations wrap the host chain's price-feed
// object (Pyth, Switchboard, a CEX index, ...).
type Feed[A AssetID] interface {
	// PriceAt returns the signed mantissa/scale price reading and the
	// timestamp (in milliseconds since epoch) it was produced at.
	PriceAt(now time.Time) (mantissa *big.Int, scale uint8, negative bool, timestampMillis int64, err error)

	// Asset returns the asset this feed is bound to.
	Asset() A
}

// Reading is the normalized output of the adapter: a raw price mantissa
// (price_scaled) and the multiplier (factor_price) that brings it to the
// kernel's PrecisionDecimalPlaces when multiplied in.
type Reading struct {
	PriceScaled *uint256.Int
	FactorPrice *uint256.Int
}

// maxOracleScale bounds the oracle's reported scale to the kernel's
// precision: factor_price = 10^(PrecisionDecimalPlaces - scale) must not
// be fractional, so scale must not exceed PrecisionDecimalPlaces. Real
// feeds (Chainlink included) report at or below 12 decimals in practice.
const maxOracleScale = kernel.PrecisionDecimalPlaces

// Normalize reads feed at now, validates it is bound to expected, is
// non-negative, and is fresh, and returns the normalized Reading.
func Normalize[A AssetID](feed Feed[A], expected A, now time.Time) (Reading, error) {
	if feed.Asset() != expected {
		return Reading{}, errs.ErrInvalidAggregator
	}

	mantissa, scale, negative, timestampMillis, err := feed.PriceAt(now)
	if err != nil {
		return Reading{}, err
	}
	if negative {
		return Reading{}, errs.ErrNegativeSbD
	}

	nowMillis := now.UnixMilli()
	if nowMillis-timestampMillis > StalenessWindowMillis {
		return Reading{}, errs.ErrStalePrice
	}

	if scale > maxOracleScale {
		return Reading{}, errs.ErrInvalidAggregator
	}

	priceScaled, overflow := uint256.FromBig(mantissa)
	if overflow || mantissa.Sign() < 0 {
		return Reading{}, errs.ErrNegativeSbD
	}

	factorExp := kernel.PrecisionDecimalPlaces - int(scale)
	factorBig := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(factorExp)), nil)
	factorPrice, overflow := uint256.FromBig(factorBig)
	if overflow {
		return Reading{}, errs.ErrInvalidAggregator
	}

	return Reading{PriceScaled: priceScaled, FactorPrice: factorPrice}, nil
}
