package apperr

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	err := fmt.Errorf("assess: %w", New(DataUnavailable, "no rows"))
	assert.Equal(t, DataUnavailable, KindOf(err))
	assert.Equal(t, Unknown, KindOf(io.EOF))
	assert.Equal(t, Unknown, KindOf(nil))
}

func TestIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("fetch: %w", Wrap(DataUnavailable, io.ErrUnexpectedEOF, "history"))
	assert.True(t, errors.Is(err, E(DataUnavailable)))
	assert.False(t, errors.Is(err, E(ModelFitFailure)))
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
}

func TestErrorText(t *testing.T) {
	assert.Equal(t, "InvalidAmount: amount must be positive",
		New(InvalidAmount, "amount must be positive").Error())
	assert.Equal(t, "DataUnavailable: history: EOF",
		Wrap(DataUnavailable, io.EOF, "history").Error())
	assert.Equal(t, "history: EOF", Message(Wrap(DataUnavailable, io.EOF, "history")))
	assert.Equal(t, "EOF", Message(io.EOF))
}

func TestKindCodes(t *testing.T) {
	tests := []struct {
		kind Kind
		code string
		user bool
	}{
		{InvalidAmount, "ERR_INVALID_AMOUNT", true},
		{InvalidDate, "ERR_INVALID_DATE", true},
		{InvalidHorizon, "ERR_INVALID_HORIZON", true},
		{DataUnavailable, "ERR_DATA_UNAVAILABLE", false},
		{ModelFitFailure, "ERR_MODEL_FIT_FAILURE", false},
		{NonFiniteResult, "ERR_NON_FINITE_RESULT", false},
		{Kind(99), "ERR_UNKNOWN", false},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.code, tt.kind.Code())
			assert.Equal(t, tt.user, tt.kind.UserCorrectable())
		})
	}
	assert.Equal(t, "Kind(99)", Kind(99).String())
}
