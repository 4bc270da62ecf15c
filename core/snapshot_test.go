package cek

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRegisters(t *testing.T) {
	m := loadMachine(t, `(block (declarations x 5) (assign x 7) (assign x (pls x 1)))`)

	s := m.Snapshot()
	assert.Equal(t, 0, s.Step)
	assert.Equal(t, "running", s.Status)
	assert.Equal(t, "(block (declarations x 5) (assign x 7) (assign x (pls x 1)))", s.Control)
	assert.Empty(t, s.Env)
	assert.Empty(t, s.Cont)

	require.NoError(t, m.Step())
	s = m.Snapshot()
	assert.Equal(t, 1, s.Step)
	assert.Equal(t, "(assign x 7)", s.Control)
	assert.Equal(t, []map[string]string{{"x": "5"}}, s.Env)
	assert.Equal(t, []string{"[(assign x (pls x 1))]"}, s.Cont)

	require.NoError(t, m.Run())
	s = m.Snapshot()
	assert.Equal(t, "halted", s.Status)
	assert.Equal(t, "inert", s.Control)
	assert.Equal(t, []map[string]string{{"x": "8"}}, s.Env)
	assert.Equal(t, []string{"empty"}, s.Cont)
}

func TestSnapshotString(t *testing.T) {
	m := loadMachine(t, `(block (declarations y 2 x 1) (block (assign x 3)))`)
	require.NoError(t, m.Step())
	require.NoError(t, m.Step())
	assert.Equal(t,
		"step 2 (running)\n"+
			"  C: (assign x 3)\n"+
			"  0: E{x=1 y=2} Kempty\n"+
			"  1: E{} Kempty\n",
		m.Snapshot().String())
}

func TestSnapshotJSON(t *testing.T) {
	m := loadMachine(t, `(block (declarations x 5) (assign x 7))`)
	require.NoError(t, m.Run())
	data, err := json.Marshal(m.Snapshot())
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"step":2,"status":"halted","control":"inert","env":[{"x":"7"}],"cont":["empty"]}`,
		string(data))
}
