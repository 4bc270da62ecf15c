package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cek "github.com/hypersimple/Toy-Language-Interpreter/core"
)

func newTestSession(t *testing.T, src string) *session {
	t.Helper()
	doc, err := cek.ParseSexpr(src)
	require.NoError(t, err)
	s, err := newSession(doc, cek.Options{})
	require.NoError(t, err)
	return s
}

func TestSessionStep(t *testing.T) {
	s := newTestSession(t, `(block (declarations x 5) (assign x 7))`)
	var out bytes.Buffer
	assert.True(t, s.exec("s", &out))
	assert.Contains(t, out.String(), "C: (assign x 7)")
	assert.Equal(t, 1, s.m.Steps)

	out.Reset()
	assert.True(t, s.exec("s 10", &out))
	assert.Contains(t, out.String(), "(halted)")
	assert.Contains(t, out.String(), `<num val="7"></num>`)
	assert.Equal(t, 2, s.m.Steps)
}

func TestSessionContinueAndReset(t *testing.T) {
	s := newTestSession(t, `(block (declarations x 3 sum 0) (while0 x (assign sum (pls sum x)) (assign x (pls x -1))))`)
	var out bytes.Buffer
	assert.True(t, s.exec("c", &out))
	assert.True(t, s.m.Halted())
	assert.Contains(t, out.String(), `<num val="6"></num>`)

	out.Reset()
	assert.True(t, s.exec("r", &out))
	assert.Zero(t, s.m.Steps)
	assert.Contains(t, out.String(), "step 0 (running)")
}

func TestSessionCommands(t *testing.T) {
	s := newTestSession(t, `(block (declarations x 5) (assign x 7))`)
	var out bytes.Buffer
	assert.True(t, s.exec("", &out))
	assert.True(t, s.exec("s zero", &out))
	assert.Contains(t, out.String(), "bad step count")
	assert.True(t, s.exec("jump", &out))
	assert.Contains(t, out.String(), "unknown command")
	assert.True(t, s.exec("p", &out))
	assert.Contains(t, out.String(), "step 0")
	assert.False(t, s.exec("q", &out))
}

func TestSessionRuntimeError(t *testing.T) {
	s := newTestSession(t, `(block (declarations x 1) (assign y 2))`)
	var out bytes.Buffer
	assert.True(t, s.exec("c", &out))
	assert.Contains(t, out.String(), "unbound-variable")
}

func TestSessionDeclarationsOnly(t *testing.T) {
	doc, err := cek.ParseSexpr(`(block (declarations x 9))`)
	require.NoError(t, err)
	_, err = newSession(doc, cek.Options{})
	assert.Error(t, err)
}
