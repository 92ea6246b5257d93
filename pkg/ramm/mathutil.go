package ramm

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/ramm-go/ramm/pkg/errs"
)

// rawMul multiplies two plain (non-fixed-point) 256-bit integers, such as
// a raw balance by its decimal scale factor, without dividing by ONE.
func rawMul(a, b *uint256.Int) (*uint256.Int, error) {
	product := new(big.Int).Mul(a.ToBig(), b.ToBig())
	if product.BitLen() > 256 {
		return nil, errs.ErrMulOverflow
	}
	r, overflow := uint256.FromBig(product)
	if overflow {
		return nil, errs.ErrMulOverflow
	}
	return r, nil
}

// rawAdd adds two 256-bit integers, erroring on overflow.
func rawAdd(a, b *uint256.Int) (*uint256.Int, error) {
	sum := new(big.Int).Add(a.ToBig(), b.ToBig())
	if sum.BitLen() > 256 {
		return nil, errs.ErrMulOverflow
	}
	r, overflow := uint256.FromBig(sum)
	if overflow {
		return nil, errs.ErrMulOverflow
	}
	return r, nil
}

// rawSub subtracts b from a, erroring if the result would be negative.
func rawSub(a, b *uint256.Int) (*uint256.Int, error) {
	if a.Cmp(b) < 0 {
		return nil, errs.ErrInsufficientBalance
	}
	return new(uint256.Int).Sub(a, b), nil
}

// absDiff returns |a-b|.
func absDiff(a, b *uint256.Int) *uint256.Int {
	if a.Cmp(b) >= 0 {
		return new(uint256.Int).Sub(a, b)
	}
	return new(uint256.Int).Sub(b, a)
}

// clampMax returns b if a > b, else a.
func clampMax(a, b *uint256.Int) *uint256.Int {
	if a.Cmp(b) > 0 {
		return b
	}
	return a
}

// clampMin returns b if a < b, else a.
func clampMin(a, b *uint256.Int) *uint256.Int {
	if a.Cmp(b) < 0 {
		return b
	}
	return a
}

// rawDiv performs plain truncating integer division, used to convert a
// kernel-precision value back to raw asset units via a factor_balance
// scale (a power of ten, not a kernel fixed-point fraction).
func rawDiv(a, b *uint256.Int) (*uint256.Int, error) {
	if b.IsZero() {
		return nil, errs.ErrDivByZero
	}
	return new(uint256.Int).Div(a, b), nil
}
