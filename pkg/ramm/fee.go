package ramm

import (
	"github.com/holiman/uint256"

	"github.com/ramm-go/ramm/pkg/config"
	"github.com/ramm-go/ramm/pkg/kernel"
)

// inBand reports whether ratio lies in [1-delta, 1+delta].
func inBand(ratio, delta *uint256.Int) (bool, error) {
	lower, err := rawSub(kernel.ONE(), delta)
	if err != nil {
		return false, err
	}
	upper, err := rawAdd(kernel.ONE(), delta)
	if err != nil {
		return false, err
	}
	return ratio.Cmp(lower) >= 0 && ratio.Cmp(upper) <= 0, nil
}

// checkSingleRatio decides whether a single asset's imbalance ratio is
// allowed to move from pre to post: staying in band is always fine,
// moving from out-of-band into band is always fine, and moving while
// already out of band is only fine if it stays on the same side of ONE
// and gets strictly closer to it.
func checkSingleRatio(pre, post, delta *uint256.Int) (bool, error) {
	preInBand, err := inBand(pre, delta)
	if err != nil {
		return false, err
	}
	postInBand, err := inBand(post, delta)
	if err != nil {
		return false, err
	}

	if preInBand {
		// Both in band -> accept only if it stays in band.
		return postInBand, nil
	}
	if postInBand {
		// Out of band -> into band: accept.
		return true, nil
	}

	// Out of band before and after: must stay on the same side of ONE and
	// move strictly closer to it.
	one := kernel.ONE()
	preAbove := pre.Cmp(one) > 0
	postAbove := post.Cmp(one) > 0
	if preAbove != postAbove {
		return false, nil
	}
	preDist := absDiff(pre, one)
	postDist := absDiff(post, one)
	return postDist.Cmp(preDist) < 0, nil
}

// CheckImbalanceRatios is the post-trade acceptance test: both the inbound
// and outbound asset's imbalance ratios must individually satisfy
// checkSingleRatio.
func CheckImbalanceRatios(preIn, preOut, postIn, postOut, delta *uint256.Int) (bool, error) {
	okIn, err := checkSingleRatio(preIn, postIn, delta)
	if err != nil {
		return false, err
	}
	if !okIn {
		return false, nil
	}
	return checkSingleRatio(preOut, postOut, delta)
}

// DynamicFeeAndLeverage scales the base fee up and the base leverage down
// as imbalanceIn/imbalanceOut drift from ONE. Both multipliers are linear
// in the summed absolute deviation from ONE: continuous, equal to 1 at
// perfect balance, and clamped so scaled_fee never exceeds ONE and
// scaled_leverage never drops below ONE. The linear form and its
// FeeSensitivity/LeverageSensitivity coefficients are a deliberate design
// choice documented in DESIGN.md, not a derived closed form.
func DynamicFeeAndLeverage(econ config.PoolEconomics, imbalanceIn, imbalanceOut *uint256.Int) (scaledFee, scaledLeverage *uint256.Int, err error) {
	one := kernel.ONE()

	devIn := absDiff(imbalanceIn, one)
	devOut := absDiff(imbalanceOut, one)
	devSum, err := rawAdd(devIn, devOut)
	if err != nil {
		return nil, nil, err
	}

	feeGrowth, err := kernel.Mul(devSum, econ.FeeSensitivity)
	if err != nil {
		return nil, nil, err
	}
	fMultiplier, err := rawAdd(one, feeGrowth)
	if err != nil {
		return nil, nil, err
	}
	maxFMultiplier, err := kernel.Div(one, econ.BaseFee)
	if err != nil {
		return nil, nil, err
	}
	fMultiplier = clampMax(fMultiplier, maxFMultiplier)

	scaledFee, err = kernel.Mul(econ.BaseFee, fMultiplier)
	if err != nil {
		return nil, nil, err
	}
	scaledFee = clampMax(scaledFee, one)

	leverageGrowth, err := kernel.Mul(devSum, econ.LeverageSensitivity)
	if err != nil {
		return nil, nil, err
	}
	gMultiplier, err := rawAdd(one, leverageGrowth)
	if err != nil {
		return nil, nil, err
	}
	gMultiplier = clampMax(gMultiplier, econ.BaseLeverage)

	scaledLeverage, err = kernel.Div(econ.BaseLeverage, gMultiplier)
	if err != nil {
		return nil, nil, err
	}
	scaledLeverage = clampMin(scaledLeverage, one)

	return scaledFee, scaledLeverage, nil
}
