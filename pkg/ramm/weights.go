package ramm

import (
	"github.com/holiman/uint256"

	"github.com/ramm-go/ramm/pkg/kernel"
	"github.com/ramm-go/ramm/pkg/oracle"
)

// WeightsAndImbalance is the per-asset result of computing portfolio
// weights and imbalance ratios.
type WeightsAndImbalance struct {
	Weight    []*uint256.Int
	Imbalance []*uint256.Int
}

// computeValues returns, for every asset slot, B_i = balance*factor_balance,
// L_i = lp_supply*factor_balance, and P_i = price*factor_price, in that
// canonical order (balances, then LP supplies, then prices). Every caller
// agrees on this order; see DESIGN.md for why it was chosen.
func (p *Pool) computeValues(prices []oracle.Reading) (b, l, pr []*uint256.Int, err error) {
	n := len(p.assets)
	b = make([]*uint256.Int, n)
	l = make([]*uint256.Int, n)
	pr = make([]*uint256.Int, n)

	for i := 0; i < n; i++ {
		a := &p.assets[i]
		bi, err := rawMul(a.balance, a.factorBalance)
		if err != nil {
			return nil, nil, nil, err
		}
		li, err := rawMul(a.lpSupply, a.factorBalance)
		if err != nil {
			return nil, nil, nil, err
		}
		pi, err := rawMul(prices[i].PriceScaled, prices[i].FactorPrice)
		if err != nil {
			return nil, nil, nil, err
		}
		b[i], l[i], pr[i] = bi, li, pi
	}
	return b, l, pr, nil
}

// WeightsAndImbalanceRatios computes the portfolio weight and imbalance
// ratio of every asset slot given fresh oracle readings for all of them.
//
// Weights sum to ONE up to truncation: each weight is rounded down, so the
// sum may fall a few units short of ONE but never exceeds it. The imbalance-ratio degeneracies are both
// handled explicitly: an asset with zero LP supply contributes zero
// everywhere it appears, and if the pool's total LP value is zero every
// imbalance ratio is defined to equal ONE.
func (p *Pool) WeightsAndImbalanceRatios(prices []oracle.Reading) (WeightsAndImbalance, error) {
	n := len(p.assets)
	if len(prices) != n {
		return WeightsAndImbalance{}, errSizeMismatch()
	}

	b, l, pr, err := p.computeValues(prices)
	if err != nil {
		return WeightsAndImbalance{}, err
	}

	bp := make([]*uint256.Int, n)
	lp := make([]*uint256.Int, n)
	sumBP := kernel.Zero()
	sumLP := kernel.Zero()
	for i := 0; i < n; i++ {
		bpI, err := kernel.Mul(b[i], pr[i])
		if err != nil {
			return WeightsAndImbalance{}, err
		}
		lpI, err := kernel.Mul(l[i], pr[i])
		if err != nil {
			return WeightsAndImbalance{}, err
		}
		bp[i], lp[i] = bpI, lpI

		if sumBP, err = rawAdd(sumBP, bpI); err != nil {
			return WeightsAndImbalance{}, err
		}
		if sumLP, err = rawAdd(sumLP, lpI); err != nil {
			return WeightsAndImbalance{}, err
		}
	}

	weights := make([]*uint256.Int, n)
	imbalance := make([]*uint256.Int, n)
	for i := 0; i < n; i++ {
		w, err := kernel.Div(bp[i], sumBP)
		if err != nil {
			return WeightsAndImbalance{}, err
		}
		weights[i] = w

		switch {
		case sumLP.IsZero():
			imbalance[i] = kernel.ONE()
		case l[i].IsZero():
			imbalance[i] = kernel.ONE()
		default:
			valuePerLP, err := kernel.Div(b[i], l[i])
			if err != nil {
				return WeightsAndImbalance{}, err
			}
			poolValuePerLP, err := kernel.Div(sumLP, sumBP)
			if err != nil {
				return WeightsAndImbalance{}, err
			}
			ratio, err := kernel.Mul(valuePerLP, poolValuePerLP)
			if err != nil {
				return WeightsAndImbalance{}, err
			}
			imbalance[i] = ratio
		}
	}

	return WeightsAndImbalance{Weight: weights, Imbalance: imbalance}, nil
}

// imbalanceAfter computes weights/imbalance ratios as they would be with
// the given raw-unit balance overrides applied, without committing them.
// Used to evaluate a hypothetical post-trade state for the imbalance
// check before any state is actually mutated.
func (p *Pool) imbalanceAfter(prices []oracle.Reading, overrides map[AssetIndex]*uint256.Int) (WeightsAndImbalance, error) {
	originals := make(map[AssetIndex]*uint256.Int, len(overrides))
	for idx, val := range overrides {
		originals[idx] = p.assets[idx].balance
		p.assets[idx].balance = val
	}
	defer func() {
		for idx, orig := range originals {
			p.assets[idx].balance = orig
		}
	}()
	return p.WeightsAndImbalanceRatios(prices)
}
