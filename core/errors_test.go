package cek

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	err := errorf(UnboundVariableError, "variable %s", "x")
	assert.Equal(t, "unbound-variable error: variable x", err.Error())

	inner := errors.New("boom")
	wrapped := wrapError(SyntaxError, inner, "malformed document")
	assert.Equal(t, "syntax error: malformed document: boom", wrapped.Error())
	assert.ErrorIs(t, wrapped, inner)
}

func TestKindOf(t *testing.T) {
	err := fmt.Errorf("run: %w", errorf(StepLimitError, "too long"))
	kind, ok := KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, StepLimitError, kind)
	assert.True(t, IsKind(err, StepLimitError))
	assert.False(t, IsKind(err, SyntaxError))

	_, ok = KindOf(errors.New("plain"))
	assert.False(t, ok)
	assert.Equal(t, "error-kind(99)", ErrorKind(99).String())
}
