// Package pvalue holds the numeric containers fed into a combination and the
// validation/clamping rules every probability passes through.
package pvalue

import (
	"fmt"
	"math"

	"cdpvals/domain/core"
)

// Clamp bounds. Chi-square quantiles are infinite at p=0 and zero at p=1.
const (
	Lower = 0.000001
	Upper = 0.999999
)

// DefaultWeight is the chi-square degrees of freedom given to each test when
// no weights are supplied (classic Fisher).
const DefaultWeight = 2.0

// Vector is an ordered sequence of values, one per test.
type Vector []float64

// Matrix is a reference matrix: one row per test, one column per replicate.
type Matrix [][]float64

// Clone returns an independent copy.
func (v Vector) Clone() Vector {
	if v == nil {
		return nil
	}
	out := make(Vector, len(v))
	copy(out, v)
	return out
}

// Rows returns the number of tests.
func (m Matrix) Rows() int { return len(m) }

// Cols returns the number of replicates. Only meaningful for a rectangular matrix.
func (m Matrix) Cols() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

// Clone returns an independent deep copy.
func (m Matrix) Clone() Matrix {
	if m == nil {
		return nil
	}
	out := make(Matrix, len(m))
	for i, row := range m {
		out[i] = Vector(row).Clone()
	}
	return out
}

// CheckRectangular fails with ErrDimensionMismatch when rows differ in length.
func (m Matrix) CheckRectangular(field string) error {
	cols := m.Cols()
	for i, row := range m {
		if len(row) != cols {
			return core.NewDimensionError(fmt.Sprintf("%s row %d length", field, i), cols, len(row))
		}
	}
	return nil
}

// checks are applied one kind at a time over the whole input, so a NaN
// anywhere wins over a negative value anywhere, which wins over a value > 1.
var checks = []struct {
	kind error
	bad  func(float64) bool
}{
	{core.ErrNaNPresent, math.IsNaN},
	{core.ErrNegativeValue, func(x float64) bool { return x < 0 }},
	{core.ErrOutOfRange, func(x float64) bool { return x > 1 }},
}

// Validate checks that every element is a probability.
func (v Vector) Validate(field string) error {
	for _, c := range checks {
		for i, x := range v {
			if c.bad(x) {
				return core.NewValueError(c.kind, field, i, x)
			}
		}
	}
	return nil
}

// Validate checks that every cell is a probability.
func (m Matrix) Validate(field string) error {
	for _, c := range checks {
		for i, row := range m {
			for j, x := range row {
				if c.bad(x) {
					return core.NewCellError(c.kind, field, i, j, x)
				}
			}
		}
	}
	return nil
}

// Sanitize validates v and returns a clamped copy.
func Sanitize(v Vector, field string) (Vector, error) {
	if err := v.Validate(field); err != nil {
		return nil, err
	}
	out := v.Clone()
	for i, x := range out {
		out[i] = clamp(x)
	}
	return out, nil
}

// SanitizeMatrix validates m and returns a clamped deep copy.
func SanitizeMatrix(m Matrix, field string) (Matrix, error) {
	if err := m.Validate(field); err != nil {
		return nil, err
	}
	out := m.Clone()
	for _, row := range out {
		for j, x := range row {
			row[j] = clamp(x)
		}
	}
	return out, nil
}

// ValidateWeights checks a weight vector against the number of tests.
// Weights are degrees of freedom, so only NaN and negatives are rejected.
func ValidateWeights(w Vector, tests int) error {
	if len(w) != tests {
		return core.NewDimensionError("weights length", tests, len(w))
	}
	for i, x := range w {
		switch {
		case math.IsNaN(x):
			return core.NewValueError(core.ErrNaNPresent, "weights", i, x)
		case x < 0:
			return core.NewValueError(core.ErrNegativeValue, "weights", i, x)
		}
	}
	return nil
}

// DefaultWeights returns the constant weight vector for k tests.
func DefaultWeights(k int) Vector {
	w := make(Vector, k)
	for i := range w {
		w[i] = DefaultWeight
	}
	return w
}

func clamp(x float64) float64 {
	if x >= Upper {
		return Upper
	}
	if x < Lower {
		return Lower
	}
	return x
}
