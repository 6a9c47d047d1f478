// Package numeric provides the checked unsigned arithmetic used on every
// money path. Values are 64-bit base units; ratio math widens to 128 bits
// and truncates toward zero. Every operation fails closed instead of
// wrapping.
package numeric

import (
	"errors"
	"math/big"
	"math/bits"
)

var (
	ErrOverflow       = errors.New("arithmetic overflow")
	ErrUnderflow      = errors.New("arithmetic underflow")
	ErrDivisionByZero = errors.New("division by zero")
)

// BpsDenominator is the basis-point scale (1 bps = 1/10000).
const BpsDenominator = 10_000

// Add returns a+b or ErrOverflow.
func Add(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrOverflow
	}
	return sum, nil
}

// Sub returns a-b or ErrUnderflow.
func Sub(a, b uint64) (uint64, error) {
	diff, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, ErrUnderflow
	}
	return diff, nil
}

// Mul returns a*b or ErrOverflow.
func Mul(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, ErrOverflow
	}
	return lo, nil
}

// MulDiv returns (a*b)/d with a 128-bit intermediate, truncating toward
// zero. Fails with ErrDivisionByZero when d is zero and ErrOverflow when
// the quotient does not fit in 64 bits.
func MulDiv(a, b, d uint64) (uint64, error) {
	if d == 0 {
		return 0, ErrDivisionByZero
	}
	hi, lo := bits.Mul64(a, b)
	if hi >= d {
		return 0, ErrOverflow
	}
	q, _ := bits.Div64(hi, lo, d)
	return q, nil
}

// BpsOf returns amount scaled by bps basis points, truncating.
func BpsOf(amount uint64, bps uint32) (uint64, error) {
	return MulDiv(amount, uint64(bps), BpsDenominator)
}

// SqrtProduct returns the integer square root of a*b. The product needs
// 128 bits, so it goes through math/big; the result always fits in 64
// bits.
func SqrtProduct(a, b uint64) uint64 {
	var x, y big.Int
	x.SetUint64(a)
	y.SetUint64(b)
	x.Mul(&x, &y)
	return x.Sqrt(&x).Uint64()
}

// Min returns the smaller of a and b.
func Min(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

// Max returns the larger of a and b.
func Max(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}
