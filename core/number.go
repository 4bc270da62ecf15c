package cek

import (
	"math"
	"strconv"
	"strings"
)

// ParseNumber reads a decimal literal. Non-finite results are rejected.
func ParseNumber(lit string) (float64, error) {
	s := strings.TrimSpace(lit)
	// ParseFloat also reads Go hex floats; literals are decimal only.
	if digits := strings.TrimLeft(s, "+-"); len(digits) > 1 && digits[0] == '0' && (digits[1] == 'x' || digits[1] == 'X') {
		return 0, errorf(NonNumericLiteralError, "%q is not a decimal number", lit)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errorf(NonNumericLiteralError, "%q is not a number", lit)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errorf(NonNumericLiteralError, "%q is not a finite number", lit)
	}
	return v, nil
}

// FormatNumber renders v in canonical fixed-point form: the shortest digits
// that round-trip, no trailing zeros, no trailing decimal point.
func FormatNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	return s
}
