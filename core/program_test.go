package cek

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const countdownXML = `<block>
  <declarations>
    <var label="x"/><num val="3"/>
    <var label="sum"/><num val="0"/>
  </declarations>
  <while0>
    <var label="x"/>
    <assign><var label="sum"/><pls><var label="sum"/><var label="x"/></pls></assign>
    <assign><var label="x"/><pls><var label="x"/><num val="-1"/></pls></assign>
  </while0>
</block>`

func TestEvaluateXML(t *testing.T) {
	doc, err := ReadDocument(strings.NewReader(countdownXML))
	require.NoError(t, err)
	res, err := Evaluate(doc, Options{})
	require.NoError(t, err)
	require.True(t, res.OK())
	assert.Equal(t, OutcomeEvaluated, res.Outcome)

	out, err := DocumentString(res.Output)
	require.NoError(t, err)
	assert.Equal(t,
		`<block><declarations><var label="x"></var><num val="0"></num><var label="sum"></var><num val="6"></num></declarations></block>`,
		out)
}

func TestEmptyProgram(t *testing.T) {
	doc, err := ReadDocument(strings.NewReader(`<block></block>`))
	require.NoError(t, err)
	res, err := Evaluate(doc, Options{})
	assert.Nil(t, res)
	assert.True(t, IsKind(err, EmptyProgramError), "got %v", err)
}

func TestDeclarationsOnly(t *testing.T) {
	doc, err := ParseSexpr(`(block (declarations x 9))`)
	require.NoError(t, err)
	res, err := Evaluate(doc, Options{})
	require.NoError(t, err)
	assert.False(t, res.OK())
	assert.Equal(t, OutcomeDeclarationsOnly, res.Outcome)
	assert.Equal(t, "(block (declarations x 9))", res.Output.String())
	assert.Zero(t, res.Steps)

	// The output is a copy; the input document is untouched.
	res.Output.Children[0].Children[1].Attrs[0].Value = "10"
	assert.Equal(t, "9", doc.Children[0].Children[1].Attrs[0].Value)
}

func TestDeclarationsOnlyKeepsLiteralVerbatim(t *testing.T) {
	doc, err := ParseSexpr(`(block (declarations x 9.50))`)
	require.NoError(t, err)
	res, err := Evaluate(doc, Options{})
	require.NoError(t, err)
	assert.Equal(t, "(block (declarations x 9.50))", res.Output.String())
}

func TestRootMustStartWithDeclarations(t *testing.T) {
	doc, err := ParseSexpr(`(block (assign x 1) (assign x 2))`)
	require.NoError(t, err)
	_, err = Evaluate(doc, Options{})
	assert.True(t, IsKind(err, StructuralError), "got %v", err)
}

func TestOutputOmitsStatements(t *testing.T) {
	res := testRun(t,
		`(block (declarations x 1 y 2) (assign x 4) (block (declarations z 3) (assign y z)))`,
		`(block (declarations x 4 y 3))`)
	assert.Len(t, res.Output.Children, 1)
}

func TestLoadAppliesOptions(t *testing.T) {
	doc, err := ParseSexpr(`(block (declarations x 5) (assign x 7))`)
	require.NoError(t, err)
	calls := 0
	m, res, err := Load(doc, Options{MaxSteps: 10, OnStep: func(*Machine) { calls++ }})
	require.NoError(t, err)
	require.Nil(t, res)
	assert.Equal(t, 10, m.MaxSteps)
	require.NoError(t, m.Run())
	assert.Equal(t, m.Steps, calls)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "evaluated", OutcomeEvaluated.String())
	assert.Equal(t, "declarations-only", OutcomeDeclarationsOnly.String())
	assert.Equal(t, "unknown", Outcome(0).String())
	var nilResult *Result
	assert.False(t, nilResult.OK())
}
