package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	err := New("TEST_001", "something broke")
	assert.Equal(t, "[TEST_001] something broke", err.Error())

	wrapped := Wrap(fmt.Errorf("root cause"), "TEST_002", "outer")
	assert.Equal(t, "[TEST_002] outer: root cause", wrapped.Error())
}

func TestWrap_Unwraps(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := Wrap(cause, "TEST_001", "outer")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, cause, stderrors.Unwrap(err))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, "AUTH_001", GetCode(ErrDuplicateAccount))
	assert.Equal(t, "UNKNOWN", GetCode(fmt.Errorf("plain error")))

	// Codes survive fmt wrapping
	assert.Equal(t, "AI_001", GetCode(fmt.Errorf("text analysis leg: %w", ErrModelNotConfigured)))
}

func TestIsAppError(t *testing.T) {
	assert.True(t, IsAppError(ErrNotFound))
	assert.False(t, IsAppError(fmt.Errorf("plain error")))
}

func TestSentinelsAreMatchable(t *testing.T) {
	err := fmt.Errorf("image generation leg: %w", ErrImageModelEmpty)
	assert.ErrorIs(t, err, ErrImageModelEmpty)
	assert.NotErrorIs(t, err, ErrTextModelEmpty)
}
