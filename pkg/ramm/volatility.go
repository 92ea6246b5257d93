package ramm

import (
	"github.com/holiman/uint256"

	"github.com/ramm-go/ramm/pkg/kernel"
)

// volatilityUpdate computes the next volatility state and the fee that
// applies to the current operation, without mutating anything. Callers
// commit the returned state only once every other check for the
// enclosing operation has passed, keeping the whole operation
// all-or-nothing.
//
// The very first observation for an asset (prevPriceTS still the state's
// zero-initialized sentinel) is treated as a bootstrap: it seeds
// prev_price/prev_price_ts with no fee, since there is nothing yet to
// compare against.
func volatilityUpdate(vs volatilityState, priceNew *uint256.Int, tsNewMillis, tauMillis int64) (*uint256.Int, volatilityState, error) {
	if vs.prevPriceTS == 0 {
		return kernel.Zero(), volatilityState{
			prevPrice:   priceNew.Clone(),
			prevPriceTS: tsNewMillis,
			volParam:    vs.volParam,
			volTS:       vs.volTS,
		}, nil
	}

	if tsNewMillis-vs.prevPriceTS > tauMillis {
		// Step 1: stale relative to the last observation. No fee, no write.
		return kernel.Zero(), vs, nil
	}

	diff := absDiff(priceNew, vs.prevPrice)
	candidate := kernel.Zero()
	if !vs.prevPrice.IsZero() {
		var err error
		candidate, err = kernel.Div(diff, vs.prevPrice)
		if err != nil {
			return nil, volatilityState{}, err
		}
	}

	next := vs
	next.prevPrice = priceNew.Clone()
	next.prevPriceTS = tsNewMillis

	var applied *uint256.Int
	if vs.volTS != 0 && tsNewMillis-vs.volTS <= tauMillis {
		// vol_param is still fresh.
		if candidate.Cmp(vs.volParam) <= 0 {
			applied = vs.volParam.Clone()
			next.volParam = vs.volParam
			next.volTS = vs.volTS
		} else {
			applied = candidate.Clone()
			next.volParam = candidate
			next.volTS = tsNewMillis
		}
	} else {
		// vol_param is stale (or has never been set).
		applied = vs.volParam.Clone()
		next.volParam = candidate
		next.volTS = tsNewMillis
	}

	return applied, next, nil
}

// volatilityRead is the outcome of consulting one asset's price during an
// operation: the fee it contributes and the state update to commit if the
// operation succeeds.
type volatilityRead struct {
	idx   AssetIndex
	fee   *uint256.Int
	state volatilityState
}

// peekVolatility evaluates volatilityUpdate for asset idx against pool's
// current committed state, without mutating the pool.
func (p *Pool) peekVolatility(idx AssetIndex, priceNew *uint256.Int, tsNewMillis int64) (volatilityRead, error) {
	tauMillis := p.econ.TauSeconds * 1000
	fee, next, err := volatilityUpdate(p.assets[idx].volatility, priceNew, tsNewMillis, tauMillis)
	if err != nil {
		return volatilityRead{}, err
	}
	return volatilityRead{idx: idx, fee: fee, state: next}, nil
}

// commitVolatility writes a previously peeked volatility update into the pool. Only
// called after every other precondition for the enclosing operation has
// passed.
func (p *Pool) commitVolatility(r volatilityRead) {
	p.assets[r.idx].volatility = r.state
}
