package cek

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{7, "7"},
		{-1, "-1"},
		{2.5, "2.5"},
		{0.1 + 0.2, "0.30000000000000004"},
		{1e21, "1000000000000000000000"},
		{1e-7, "0.0000001"},
		{100, "100"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatNumber(tt.in), "FormatNumber(%v)", tt.in)
	}
}

func TestParseNumber(t *testing.T) {
	for lit, want := range map[string]float64{
		"3":     3,
		" 3 ":   3,
		"-0.25": -0.25,
		"1e3":   1000,
		"7.000": 7,
	} {
		v, err := ParseNumber(lit)
		require.NoError(t, err, lit)
		assert.Equal(t, want, v, lit)
	}
}

func TestParseNumberRejects(t *testing.T) {
	for _, lit := range []string{"", "abc", "1.2.3", "NaN", "nan", "Inf", "-Infinity", "1e400", "0x1p3", "-0X10", "+0x1.8p1"} {
		_, err := ParseNumber(lit)
		assert.True(t, IsKind(err, NonNumericLiteralError), "ParseNumber(%q): %v", lit, err)
	}
}

func TestFormatRoundTrips(t *testing.T) {
	for _, v := range []float64{0.1, 1.0 / 3, 123456.789, -42} {
		got, err := ParseNumber(FormatNumber(v))
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}
