package ramm

import "github.com/holiman/uint256"

// scaleByDecimals rescales a raw-unit amount from one decimal count to
// another, truncating when narrowing. Used when minting LP tokens, whose
// decimal count is a per-asset parameter (set in AddAsset) that need not match
// the underlying asset's.
func scaleByDecimals(amount *uint256.Int, fromDecimals, toDecimals uint) (*uint256.Int, error) {
	if toDecimals == fromDecimals {
		return amount.Clone(), nil
	}
	if toDecimals > fromDecimals {
		factor, err := powerOfTen(int(toDecimals - fromDecimals))
		if err != nil {
			return nil, err
		}
		return rawMul(amount, factor)
	}
	factor, err := powerOfTen(int(fromDecimals - toDecimals))
	if err != nil {
		return nil, err
	}
	return rawDiv(amount, factor)
}

func kernelPriceOf(priceScaled, factorPrice *uint256.Int) (*uint256.Int, error) {
	return rawMul(priceScaled, factorPrice)
}
