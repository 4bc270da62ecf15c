package cek

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSexprNum(t *testing.T) {
	for _, tok := range []string{"42", "-7", "3.14", "1e3", "+2"} {
		el, err := ParseSexpr(tok)
		require.NoError(t, err, tok)
		assert.Equal(t, "num", el.Tag)
		v, _ := el.Attr("val")
		assert.Equal(t, tok, v)
	}
}

func TestParseSexprVar(t *testing.T) {
	for _, tok := range []string{"x", "sum", "inf", "-nan", "x1"} {
		el, err := ParseSexpr(tok)
		require.NoError(t, err, tok)
		assert.Equal(t, "var", el.Tag, tok)
		l, _ := el.Attr("label")
		assert.Equal(t, tok, l)
	}
}

func TestParseSexprList(t *testing.T) {
	el, err := ParseSexpr(`(assign x (pls x 1))`)
	require.NoError(t, err)
	assert.Equal(t, "assign", el.Tag)
	require.Len(t, el.Children, 2)
	assert.Equal(t, "pls", el.Children[1].Tag)
	assert.Equal(t, "(assign x (pls x 1))", el.String())
}

func TestParseSexprEmptyTaggedList(t *testing.T) {
	el, err := ParseSexpr(`(block)`)
	require.NoError(t, err)
	assert.Equal(t, &Element{Tag: "block"}, el)
}

func TestParseSexprComment(t *testing.T) {
	el, err := ParseSexpr("; countdown\n(block ; root\n  (declarations x 1) ; one var\n)")
	require.NoError(t, err)
	assert.Equal(t, "(block (declarations x 1))", el.String())
}

func TestParseSexprErrors(t *testing.T) {
	for _, input := range []string{
		"",
		"   ; only a comment",
		"(",
		")",
		"()",
		"(block (assign x 1)",
		"(block) extra",
		"((block))",
	} {
		_, err := ParseSexpr(input)
		require.Error(t, err, "input %q", input)
		assert.True(t, IsKind(err, SyntaxError), "input %q: %v", input, err)
	}
}

func TestLoadProgramDetectsSyntax(t *testing.T) {
	fromXML, err := LoadProgram(`  <block><declarations><var label="x"/><num val="1"/></declarations></block>`)
	require.NoError(t, err)
	fromSexpr, err := LoadProgram(`(block (declarations x 1))`)
	require.NoError(t, err)
	assert.True(t, fromXML.Equal(fromSexpr))
}
