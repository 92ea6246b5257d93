// Package kernel implements the RAMM fixed-point arithmetic kernel: every
// value is an unsigned 256-bit integer interpreted as "value * ONE", with
// ONE = 10^PrecisionDecimalPlaces. All operations reject inputs that would
// exceed the declared precision ceiling instead of silently wrapping.
// Mul, Div and PowN round by truncation; PowD rounds each square root to
// nearest and its running product up (see PowD). Results are
// deterministic and platform-independent.
//
// The public value type is uint256.Int (the corpus's 256-bit integer,
// matching the persisted state layout's "256-bit unsigned integers"
// requirement). The arithmetic itself is carried out on math/big so that
// the declared precision ceiling (10^25, far below the true 2^256 limit)
// can be checked independently of the hardware width.
package kernel

import (
	"math/big"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"

	"github.com/ramm-go/ramm/pkg/errs"
)

const (
	// PrecisionDecimalPlaces is the kernel's internal fixed-point precision.
	PrecisionDecimalPlaces = 12

	// MaxPrecisionDecimalPlaces bounds every operand and intermediate value
	// passed through mul, div, and pow_n.
	MaxPrecisionDecimalPlaces = 25

	// maxPowNExponent is the largest integer exponent pow_n accepts.
	maxPowNExponent = 127

	// powDIterations is the number of bits of the fractional exponent
	// pow_d expands; 128 bits comfortably covers 12 decimal digits of
	// precision (2^-40 < 10^-12).
	powDIterations = 128
)

var (
	bigOne     = new(big.Int).Exp(big.NewInt(10), big.NewInt(PrecisionDecimalPlaces), nil)
	bigCeiling = new(big.Int).Exp(big.NewInt(10), big.NewInt(MaxPrecisionDecimalPlaces), nil)

	powDLowerBig = big.NewInt(670000000000)  // 0.67 * ONE
	powDUpperBig = big.NewInt(1500000000000) // 1.5 * ONE
)

// ONE returns the fixed-point representation of 1.0.
func ONE() *uint256.Int {
	v, _ := uint256.FromBig(bigOne)
	return v
}

// Zero returns the fixed-point representation of 0.
func Zero() *uint256.Int {
	return uint256.NewInt(0)
}

// FromUint64 builds a kernel value directly from raw "value * ONE" units.
func FromUint64(raw uint64) *uint256.Int {
	return uint256.NewInt(raw)
}

// FromDecimalString parses a base-10 decimal string (e.g. "0.75") into the
// kernel's fixed-point representation, truncating beyond
// PrecisionDecimalPlaces. Used for constructing test fixtures and
// configuration-derived constants; never used on the hot trading path.
func FromDecimalString(s string) (*uint256.Int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	scaled := d.Shift(PrecisionDecimalPlaces).Truncate(0)
	return fromBigChecked(scaled.BigInt())
}

func toBig(x *uint256.Int) *big.Int {
	return x.ToBig()
}

func fromBigChecked(b *big.Int) (*uint256.Int, error) {
	if b.Sign() < 0 {
		return nil, errs.ErrMulOverflow
	}
	v, overflow := uint256.FromBig(b)
	if overflow {
		return nil, errs.ErrMulOverflow
	}
	return v, nil
}

// Mul returns a*b/ONE, truncated, in kernel units.
//
// Fails with ErrMulOverflow when either operand is >= 10^MaxPrecisionDecimalPlaces,
// or when the raw product would not fit in 256 bits.
func Mul(a, b *uint256.Int) (*uint256.Int, error) {
	ab, bb := toBig(a), toBig(b)
	if ab.Cmp(bigCeiling) >= 0 || bb.Cmp(bigCeiling) >= 0 {
		return nil, errs.ErrMulOverflow
	}

	product := new(big.Int).Mul(ab, bb)
	if product.BitLen() > 256 {
		return nil, errs.ErrMulOverflow
	}

	result := new(big.Int).Quo(product, bigOne)
	return fromBigChecked(result)
}

// Div returns a*ONE/b, truncated, in kernel units.
//
// Fails with ErrDividendTooLarge when a >= 10^MaxPrecisionDecimalPlaces,
// ErrDivOverflow when scaling a by ONE would not fit in 256 bits, and
// ErrDivByZero when b is zero.
func Div(a, b *uint256.Int) (*uint256.Int, error) {
	if b.IsZero() {
		return nil, errs.ErrDivByZero
	}

	ab := toBig(a)
	if ab.Cmp(bigCeiling) >= 0 {
		return nil, errs.ErrDividendTooLarge
	}

	dividend := new(big.Int).Mul(ab, bigOne)
	if dividend.BitLen() > 256 {
		return nil, errs.ErrDivOverflow
	}

	quotient := new(big.Int).Quo(dividend, toBig(b))
	return fromBigChecked(quotient)
}

// PowN raises a to the integer power n using repeated squaring built on Mul.
//
// Fails with ErrPowNExponentTooLarge when n > 127, and ErrPowNBaseTooLarge
// when a >= 10^MaxPrecisionDecimalPlaces.
func PowN(a *uint256.Int, n uint64) (*uint256.Int, error) {
	if n > maxPowNExponent {
		return nil, errs.ErrPowNExponentTooLarge
	}
	if toBig(a).Cmp(bigCeiling) >= 0 {
		return nil, errs.ErrPowNBaseTooLarge
	}

	result := ONE()
	base := a.Clone()
	exp := n
	for exp > 0 {
		if exp&1 == 1 {
			var err error
			result, err = Mul(result, base)
			if err != nil {
				return nil, err
			}
		}
		exp >>= 1
		if exp > 0 {
			var err error
			base, err = Mul(base, base)
			if err != nil {
				return nil, err
			}
		}
	}
	return result, nil
}

// roundedSqrt returns the integer square root of n rounded to the nearest
// integer (ties rounding up), rather than math/big's native floor(sqrt(n)).
// PowD composes powDIterations of these, and a consistent per-step floor
// bias compounds into a result that drifts measurably from the true value
// over that many iterations; rounding to nearest keeps the error centered
// instead of one-directional.
func roundedSqrt(n *big.Int) *big.Int {
	floor := new(big.Int).Sqrt(n)
	ceil := new(big.Int).Add(floor, big.NewInt(1))

	distFloor := new(big.Int).Sub(n, new(big.Int).Mul(floor, floor))
	distCeil := new(big.Int).Sub(new(big.Int).Mul(ceil, ceil), n)
	if distCeil.Cmp(distFloor) <= 0 {
		return ceil
	}
	return floor
}

// PowD raises a to the fractional power e using the binary-expansion
// method: e is expanded bit by bit (in kernel precision) and, for each set
// bit, the corresponding factor a^(1/2^k) — obtained by repeated integer
// square roots — is folded into the result. The per-iteration square root
// rounds to nearest (see roundedSqrt) and the running product rounds up,
// so the two biases offset across powDIterations rather than both
// compounding the result downward.
//
// Contract: a must be in [0.67*ONE, 1.5*ONE] and e in [0, ONE).
// Fails with ErrPowDBaseOutOfBounds / ErrPowDExpTooLarge otherwise.
func PowD(a *uint256.Int, e *uint256.Int) (*uint256.Int, error) {
	ab := toBig(a)
	if ab.Cmp(powDLowerBig) < 0 || ab.Cmp(powDUpperBig) > 0 {
		return nil, errs.ErrPowDBaseOutOfBounds
	}
	eb := toBig(e)
	if eb.Cmp(bigOne) >= 0 {
		return nil, errs.ErrPowDExpTooLarge
	}

	resultBig := new(big.Int).Set(bigOne)
	xBig := ab
	remaining := new(big.Int).Set(eb)

	for i := 0; i < powDIterations && remaining.Sign() > 0; i++ {
		scaled := new(big.Int).Mul(xBig, bigOne)
		xBig = roundedSqrt(scaled)

		remaining.Lsh(remaining, 1)
		if remaining.Cmp(bigOne) >= 0 {
			remaining.Sub(remaining, bigOne)
			product := new(big.Int).Mul(resultBig, xBig)
			resultBig = ceilDiv(product, bigOne)
		}
	}
	return fromBigChecked(resultBig)
}

// ceilDiv returns ceil(num/den) for non-negative num and positive den.
func ceilDiv(num, den *big.Int) *big.Int {
	q, r := new(big.Int).QuoRem(num, den, new(big.Int))
	if r.Sign() != 0 {
		q.Add(q, big.NewInt(1))
	}
	return q
}

// Power computes a^e for a real (fixed-point) exponent e, composed as
// PowN(a, floor(e)) * PowD(a, frac(e)).
func Power(a *uint256.Int, e *uint256.Int) (*uint256.Int, error) {
	eb := toBig(e)
	intPart := new(big.Int).Quo(eb, bigOne)
	fracPart := new(big.Int).Mod(eb, bigOne)

	if !intPart.IsUint64() || intPart.Uint64() > maxPowNExponent {
		return nil, errs.ErrPowNExponentTooLarge
	}

	whole, err := PowN(a, intPart.Uint64())
	if err != nil {
		return nil, err
	}

	if fracPart.Sign() == 0 {
		return whole, nil
	}

	fracU256, err := fromBigChecked(fracPart)
	if err != nil {
		return nil, err
	}
	fractional, err := PowD(a, fracU256)
	if err != nil {
		return nil, err
	}

	return Mul(whole, fractional)
}
