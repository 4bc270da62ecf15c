package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hypersimple/Toy-Language-Interpreter/store"
)

func isolateEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"CEK_CONFIG", "CEK_SOCK", "CEK_TRACE_DB", "CEK_LOG_LEVEL", "CEK_MAX_STEPS"} {
		t.Setenv(k, "")
	}
}

func stdinFile(t *testing.T, content string) *os.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stdin.xml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	f, err := os.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestRunEvaluates(t *testing.T) {
	isolateEnv(t)
	in := stdinFile(t, `<block><declarations><var label="x"/><num val="5"/></declarations><assign><var label="x"/><num val="7"/></assign></block>`)
	var stdout, stderr bytes.Buffer
	code := run(nil, in, &stdout, &stderr)
	assert.Equal(t, 0, code, stderr.String())
	assert.Equal(t, `<block><declarations><var label="x"></var><num val="7"></num></declarations></block>`, stdout.String())
}

func TestRunDeclarationsOnly(t *testing.T) {
	isolateEnv(t)
	in := stdinFile(t, `<block><declarations><var label="x"/><num val="9"/></declarations></block>`)
	var stdout, stderr bytes.Buffer
	code := run(nil, in, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Equal(t, `<block><declarations><var label="x"></var><num val="9"></num></declarations></block>`, stdout.String())
}

func TestRunEmptyProgram(t *testing.T) {
	isolateEnv(t)
	in := stdinFile(t, `<block/>`)
	var stdout, stderr bytes.Buffer
	code := run(nil, in, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "empty-program")
}

func TestRunRejectsArguments(t *testing.T) {
	isolateEnv(t)
	var stdout, stderr bytes.Buffer
	code := run([]string{"prog.xml"}, stdinFile(t, ""), &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "USAGE")
}

func TestRunRecordsTrace(t *testing.T) {
	isolateEnv(t)
	db := filepath.Join(t.TempDir(), "traces.db")
	t.Setenv("CEK_TRACE_DB", db)
	in := stdinFile(t, `<block><declarations><var label="x"/><num val="1"/></declarations><assign><var label="y"/><num val="2"/></assign></block>`)
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 1, run(nil, in, &stdout, &stderr))

	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()
	recent, err := st.Recent(1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "unbound-variable", recent[0].ErrorKind)
}
