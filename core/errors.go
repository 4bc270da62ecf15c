package cek

import (
	"errors"
	"fmt"
)

// ErrorKind classifies evaluation failures.
type ErrorKind int

const (
	SyntaxError ErrorKind = iota + 1
	EmptyProgramError
	StructuralError
	NonNumericLiteralError
	UnboundVariableError
	InputUnavailableError
	StepLimitError
)

var errorKindNames = map[ErrorKind]string{
	SyntaxError:            "syntax",
	EmptyProgramError:      "empty-program",
	StructuralError:        "structural",
	NonNumericLiteralError: "non-numeric-literal",
	UnboundVariableError:   "unbound-variable",
	InputUnavailableError:  "input-unavailable",
	StepLimitError:         "step-limit",
}

func (k ErrorKind) String() string {
	if s, ok := errorKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("error-kind(%d)", int(k))
}

// Error is returned for every failure detected while reading or running a
// program. It propagates unchanged to the caller; nothing is retried.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s error: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func wrapError(kind ErrorKind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the ErrorKind carried anywhere in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
