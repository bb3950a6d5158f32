package engine

import (
	"fmt"
	"math"

	"github.com/uro-calc-engine/internal/domain"
)

// DefaultNearZero is the threshold at or below which a denominator is
// treated as zero.
const DefaultNearZero = 1e-9

// Ratio divides num by den. Every denominator in the calculators is a
// physical quantity, so a negative, zero or near-zero den (at or below
// nearZero), or a non-finite result, is undefined arithmetic.
func Ratio(num, den, nearZero float64) (float64, error) {
	if _, err := Positive(den, nearZero); err != nil {
		return 0, fmt.Errorf("%w: denominator %v", domain.ErrUndefinedArithmetic, den)
	}
	return Finite(num / den)
}

// Positive returns v when it is finite and above nearZero.
func Positive(v, nearZero float64) (float64, error) {
	if nearZero <= 0 {
		nearZero = DefaultNearZero
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= nearZero {
		return 0, fmt.Errorf("%w: %v is not positive", domain.ErrUndefinedArithmetic, v)
	}
	return v, nil
}

// Finite returns v, or ErrUndefinedArithmetic when v is NaN or infinite.
func Finite(v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %v", domain.ErrUndefinedArithmetic, v)
	}
	return v, nil
}

// EllipsoidVolume returns (π/6)·L·W·H for three orthogonal diameters in mm,
// converted to mL.
func EllipsoidVolume(lengthMM, widthMM, heightMM float64) float64 {
	return math.Pi / 6 * lengthMM * widthMM * heightMM / 1000
}

// Percent returns part/whole·100.
func Percent(part, whole, nearZero float64) (float64, error) {
	r, err := Ratio(part, whole, nearZero)
	if err != nil {
		return 0, err
	}
	return r * 100, nil
}
