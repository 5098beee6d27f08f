package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Validation errors: malformed input, raised before any numeric work
	ErrValidation        = errors.New("validation error")
	ErrNaNPresent        = fmt.Errorf("%w: NaN present", ErrValidation)
	ErrNegativeValue     = fmt.Errorf("%w: negative value", ErrValidation)
	ErrOutOfRange        = fmt.Errorf("%w: value > 1", ErrValidation)
	ErrDimensionMismatch = fmt.Errorf("%w: dimension mismatch", ErrValidation)
	ErrEmptyInput        = fmt.Errorf("%w: empty input", ErrValidation)

	// Computation errors: the statistic would be undefined
	ErrComputation        = errors.New("computation error")
	ErrDegenerateVariance = fmt.Errorf("%w: degenerate variance", ErrComputation)
	ErrZeroExpectation    = fmt.Errorf("%w: zero expectation", ErrComputation)
)

// NewValueError reports a bad element of a vector, e.g. field "pvals" at index 3.
func NewValueError(kind error, field string, index int, value float64) error {
	return fmt.Errorf("%w: %s[%d] = %v", kind, field, index, value)
}

// NewCellError reports a bad element of a matrix.
func NewCellError(kind error, field string, row, col int, value float64) error {
	return fmt.Errorf("%w: %s[%d][%d] = %v", kind, field, row, col, value)
}

// NewDimensionError reports two lengths that must agree but don't.
func NewDimensionError(what string, want, got int) error {
	return fmt.Errorf("%w: %s: expected %d, got %d", ErrDimensionMismatch, what, want, got)
}

// NewComputationError attaches the offending quantity to a computation sentinel.
func NewComputationError(kind error, quantity string, value float64) error {
	return fmt.Errorf("%w: %s = %v", kind, quantity, value)
}

// Error checking helpers
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsComputationError(err error) bool {
	return errors.Is(err, ErrComputation)
}
