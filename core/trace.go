package cek

import "time"

// Trace captures the boundary points of a single program run: the program,
// how it ended, and how many steps it took. The machine is deterministic so
// rerunning the program reproduces every intermediate state.
type Trace struct {
	ID        int64  `json:"id,omitempty"`
	Program   string `json:"program"`
	Outcome   string `json:"outcome"`          // "evaluated", "declarations-only" or "error"
	Output    string `json:"output,omitempty"` // XML of the result, if any
	Error     string `json:"error,omitempty"`
	ErrorKind string `json:"error_kind,omitempty"`
	Steps     int    `json:"steps"`
	Timestamp string `json:"timestamp"` // RFC 3339
}

// NewTrace records the result of evaluating program.
func NewTrace(program string, res *Result, err error) Trace {
	tr := Trace{
		Program:   program,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if err != nil {
		tr.Outcome = "error"
		tr.Error = err.Error()
		if kind, ok := KindOf(err); ok {
			tr.ErrorKind = kind.String()
		}
		return tr
	}
	tr.Outcome = res.Outcome.String()
	tr.Steps = res.Steps
	if res.Output != nil {
		if out, werr := DocumentString(res.Output); werr == nil {
			tr.Output = out
		}
	}
	return tr
}

// Failed reports whether the run ended without success status.
func (t *Trace) Failed() bool {
	return t.Outcome != OutcomeEvaluated.String()
}
