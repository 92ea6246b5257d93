package ramm

import (
	"github.com/holiman/uint256"

	"github.com/ramm-go/ramm/pkg/kernel"
)

// tradeExponent returns (P_o/P_i) * leverage * (W_i/W_o), the exponent the
// pricing curve raises the pre/post balance ratio to.
func tradeExponent(priceIn, priceOut, leverage, weightIn, weightOut *uint256.Int) (*uint256.Int, error) {
	priceRatio, err := kernel.Div(priceOut, priceIn)
	if err != nil {
		return nil, err
	}
	scaled, err := kernel.Mul(priceRatio, leverage)
	if err != nil {
		return nil, err
	}
	weightRatio, err := kernel.Div(weightIn, weightOut)
	if err != nil {
		return nil, err
	}
	return kernel.Mul(scaled, weightRatio)
}

// AmountOut implements the forward direction of the leverage-scaled
// pricing curve: given an effective (fee-adjusted) inbound amount aiEff,
// it returns the outbound amount ao.
//
//	ao = B_o * (1 - ((B_i*P_i) / ((B_i+aiEff)*P_i))^exponent)
func AmountOut(balanceIn, priceIn, balanceOut, priceOut, leverage, weightIn, weightOut, aiEff *uint256.Int) (*uint256.Int, error) {
	exponent, err := tradeExponent(priceIn, priceOut, leverage, weightIn, weightOut)
	if err != nil {
		return nil, err
	}

	numerator, err := kernel.Mul(balanceIn, priceIn)
	if err != nil {
		return nil, err
	}
	newBalanceIn, err := rawAdd(balanceIn, aiEff)
	if err != nil {
		return nil, err
	}
	denominator, err := kernel.Mul(newBalanceIn, priceIn)
	if err != nil {
		return nil, err
	}
	ratio, err := kernel.Div(numerator, denominator)
	if err != nil {
		return nil, err
	}

	term, err := kernel.Power(ratio, exponent)
	if err != nil {
		return nil, err
	}
	oneMinusTerm, err := rawSub(kernel.ONE(), term)
	if err != nil {
		return nil, err
	}
	return kernel.Mul(balanceOut, oneMinusTerm)
}

// AmountIn implements the inverse direction of the leverage-scaled pricing
// curve: given a desired outbound amount ao, it solves for the effective
// (fee-adjusted) inbound amount that would produce it.
func AmountIn(balanceIn, priceIn, balanceOut, priceOut, leverage, weightIn, weightOut, ao *uint256.Int) (*uint256.Int, error) {
	exponent, err := tradeExponent(priceIn, priceOut, leverage, weightIn, weightOut)
	if err != nil {
		return nil, err
	}

	aoOverBo, err := kernel.Div(ao, balanceOut)
	if err != nil {
		return nil, err
	}
	term, err := rawSub(kernel.ONE(), aoOverBo)
	if err != nil {
		return nil, err
	}

	invExponent, err := kernel.Div(kernel.ONE(), exponent)
	if err != nil {
		return nil, err
	}
	ratio, err := kernel.Power(term, invExponent)
	if err != nil {
		return nil, err
	}

	biPi, err := kernel.Mul(balanceIn, priceIn)
	if err != nil {
		return nil, err
	}
	newBalanceInTimesPriceIn, err := kernel.Div(biPi, ratio)
	if err != nil {
		return nil, err
	}
	newBalanceIn, err := kernel.Div(newBalanceInTimesPriceIn, priceIn)
	if err != nil {
		return nil, err
	}
	return rawSub(newBalanceIn, balanceIn)
}

// totalTradeFee sums the dynamic fee and the volatility surcharge
// contributed by the inbound and outbound assets.
func totalTradeFee(scaledFee, volIn, volOut *uint256.Int) (*uint256.Int, error) {
	surcharge, err := rawAdd(volIn, volOut)
	if err != nil {
		return nil, err
	}
	return rawAdd(scaledFee, surcharge)
}

// protocolFeeRaw returns pr_fee = ai * PROTOCOL_FEE * phi, in raw inbound
// units (ai is already in raw units, not kernel-scaled).
func protocolFeeRaw(ai, protocolFee, phi *uint256.Int) (*uint256.Int, error) {
	feeRate, err := kernel.Mul(protocolFee, phi)
	if err != nil {
		return nil, err
	}
	return kernel.Mul(ai, feeRate)
}

// effectiveInbound returns ai * (1 - PROTOCOL_FEE*phi), the amount that
// actually enters the pricing curve; the remainder stays in the pool for
// liquidity providers.
func effectiveInbound(ai, protocolFee, phi *uint256.Int) (*uint256.Int, error) {
	feeRate, err := kernel.Mul(protocolFee, phi)
	if err != nil {
		return nil, err
	}
	retained, err := rawSub(kernel.ONE(), feeRate)
	if err != nil {
		return nil, err
	}
	return kernel.Mul(ai, retained)
}
