package cek

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTraceEvaluated(t *testing.T) {
	doc, err := ParseSexpr(`(block (declarations x 5) (assign x 7))`)
	require.NoError(t, err)
	res, err := Evaluate(doc, Options{})
	require.NoError(t, err)

	tr := NewTrace("prog", res, nil)
	assert.Equal(t, "prog", tr.Program)
	assert.Equal(t, "evaluated", tr.Outcome)
	assert.Equal(t, `<block><declarations><var label="x"></var><num val="7"></num></declarations></block>`, tr.Output)
	assert.Equal(t, 2, tr.Steps)
	assert.Empty(t, tr.Error)
	assert.False(t, tr.Failed())
	_, perr := time.Parse(time.RFC3339, tr.Timestamp)
	assert.NoError(t, perr)
}

func TestNewTraceDeclarationsOnly(t *testing.T) {
	doc, err := ParseSexpr(`(block (declarations x 9))`)
	require.NoError(t, err)
	res, err := Evaluate(doc, Options{})
	require.NoError(t, err)

	tr := NewTrace("prog", res, nil)
	assert.Equal(t, "declarations-only", tr.Outcome)
	assert.NotEmpty(t, tr.Output)
	assert.True(t, tr.Failed())
}

func TestNewTraceWithError(t *testing.T) {
	tr := NewTrace("prog", nil, errorf(UnboundVariableError, "variable y is not declared"))
	assert.Equal(t, "error", tr.Outcome)
	assert.Equal(t, "unbound-variable", tr.ErrorKind)
	assert.Contains(t, tr.Error, "variable y")
	assert.Empty(t, tr.Output)
	assert.True(t, tr.Failed())
}
