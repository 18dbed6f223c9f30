// Package fixedpoint implements the saturating unsigned arithmetic and
// basis-point scaling every reputation engine is built on. Nothing in this
// package wraps or panics: saturating variants clamp to [0, MaxUint64] and
// checked variants return ErrOverflow.
package fixedpoint

import (
	"errors"
	"math"
	"math/bits"
)

// BpsDenominator is one whole unit expressed in basis points.
const BpsDenominator uint64 = 10_000

// ErrOverflow is returned by the checked operations.
var ErrOverflow = errors.New("math overflow")

// Add returns a+b, clamped to MaxUint64.
func Add(a, b uint64) uint64 {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return math.MaxUint64
	}
	return sum
}

// Sub returns a-b, clamped to 0.
func Sub(a, b uint64) uint64 {
	if b >= a {
		return 0
	}
	return a - b
}

// Mul returns a*b, clamped to MaxUint64.
func Mul(a, b uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return math.MaxUint64
	}
	return lo
}

// Div returns a/b with floor rounding. A zero divisor yields 0; callers that
// need a different meaning for zero must check it before dividing.
func Div(a, b uint64) uint64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// Min returns the smaller of a and b.
func Min(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

// MulBps returns amount*bps/10000 using a saturating multiply, matching the
// "saturate, then divide" order used throughout the engines.
func MulBps(amount, bps uint64) uint64 {
	return Div(Mul(amount, bps), BpsDenominator)
}

// CheckedAdd returns a+b or ErrOverflow.
func CheckedAdd(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrOverflow
	}
	return sum, nil
}

// CheckedAddInt64 returns a+b for signed timestamps or ErrOverflow.
func CheckedAddInt64(a, b int64) (int64, error) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, ErrOverflow
	}
	return sum, nil
}

// ToInt64 converts v to int64 or returns ErrOverflow.
func ToInt64(v uint64) (int64, error) {
	if v > math.MaxInt64 {
		return 0, ErrOverflow
	}
	return int64(v), nil
}
