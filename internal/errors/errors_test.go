package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"cdpvals/domain/core"

	"github.com/stretchr/testify/assert"
)

func TestWrap_CodeFromSentinel(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"validation", core.NewValueError(core.ErrNaNPresent, "pvals", 0, 0), CodeValidationError},
		{"dimension", core.NewDimensionError("pmat rows", 2, 3), CodeValidationError},
		{"computation", core.NewComputationError(core.ErrDegenerateVariance, "Var", 0), CodeComputationError},
		{"cancelled", fmt.Errorf("chunk: %w", context.Canceled), CodeCancelled},
		{"other", stderrors.New("boom"), CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Wrap(tt.err, "combine failed")
			assert.Equal(t, tt.code, GetCode(err))
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestWrap_KeepsInnerCodeAndSentinel(t *testing.T) {
	inner := Wrap(core.NewComputationError(core.ErrZeroExpectation, "E", 0), "self-contained")
	outer := Wrapf(inner, "null draw %d", 7)

	assert.Equal(t, CodeComputationError, GetCode(outer))
	assert.ErrorIs(t, outer, core.ErrZeroExpectation)
	assert.True(t, core.IsComputationError(outer))
	assert.Equal(t, "null draw 7: self-contained: computation error: zero expectation: E = 0", outer.Error())
}

func TestWrap_Nil(t *testing.T) {
	assert.NoError(t, Wrap(nil, "x"))
	assert.NoError(t, Wrapf(nil, "x %d", 1))
	assert.Equal(t, "UNKNOWN", GetCode(stderrors.New("plain")))
}

func TestConfigInvalid(t *testing.T) {
	err := ConfigInvalid("CDPVALS_WORKERS must be >= 1")
	assert.Equal(t, CodeConfigInvalid, GetCode(err))
	assert.Equal(t, "CDPVALS_WORKERS must be >= 1", err.Error())
}
