package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapPreservesChain(t *testing.T) {
	base := errors.New("connection refused")
	err := Wrap(base, CodeUnavailable, "store unavailable")

	assert.True(t, HasCode(err, CodeUnavailable))
	assert.True(t, errors.Is(err, base))
	assert.Equal(t, "store unavailable: connection refused", err.Error())
	assert.Equal(t, "store unavailable", Message(err))
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, CodeInternal, "ignored"))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
	assert.Equal(t, CodeNotFound, CodeOf(fmt.Errorf("lookup: %w", New(CodeNotFound, "missing"))))
	assert.False(t, Is(New(CodeValidation, "bad"), CodeConflict))
}
