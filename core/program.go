package cek

import (
	"github.com/rs/zerolog"
)

type Outcome int

const (
	OutcomeEvaluated Outcome = iota + 1
	OutcomeDeclarationsOnly
)

func (o Outcome) String() string {
	switch o {
	case OutcomeEvaluated:
		return "evaluated"
	case OutcomeDeclarationsOnly:
		return "declarations-only"
	default:
		return "unknown"
	}
}

// Result is what a program run produces for the outside world.
type Result struct {
	Outcome Outcome
	Output  *Element
	Steps   int
}

// OK reports whether the run counts as a success. A declarations-only
// program still carries output but is not a success.
func (r *Result) OK() bool {
	return r != nil && r.Outcome == OutcomeEvaluated
}

// Options configure a program run.
type Options struct {
	MaxSteps int
	Log      zerolog.Logger
	OnStep   func(m *Machine)
}

// Load classifies a document root and, for an executable program, builds
// the machine that will run it. A nil machine with a non-nil result means
// the program is declarations only.
func Load(doc *Element, opts Options) (*Machine, *Result, error) {
	switch len(doc.Children) {
	case 0:
		return nil, nil, errorf(EmptyProgramError, "program <%s> has no children", doc.Tag)
	case 1:
		return nil, &Result{
			Outcome: OutcomeDeclarationsOnly,
			Output:  &Element{Tag: "block", Children: []*Element{doc.Children[0].Clone()}},
		}, nil
	}
	if doc.Children[0].Tag != "declarations" {
		return nil, nil, errorf(StructuralError, "program must start with <declarations>, found <%s>", doc.Children[0].Tag)
	}
	tree, root, err := Build(doc)
	if err != nil {
		return nil, nil, err
	}
	m := NewMachine(tree, root)
	m.MaxSteps = opts.MaxSteps
	m.Log = opts.Log
	m.OnStep = opts.OnStep
	return m, nil, nil
}

// Evaluate runs a program document to completion and returns its result.
func Evaluate(doc *Element, opts Options) (*Result, error) {
	m, res, err := Load(doc, opts)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return res, nil
	}
	if err := m.Run(); err != nil {
		return nil, err
	}
	out, err := m.Finalize()
	if err != nil {
		return nil, err
	}
	return &Result{Outcome: OutcomeEvaluated, Output: out, Steps: m.Steps}, nil
}

// Finalize writes the final value of every top-level declaration back into
// its value slot and returns the resolved declarations wrapped in a block.
// It only reads the program's own top-level declarations, never the copies made
// while unrolling loops.
func (m *Machine) Finalize() (*Element, error) {
	if !m.Halted() {
		return nil, errorf(StructuralError, "machine has not reached a terminal state")
	}
	t := m.Tree
	decls := t.Kids(m.root)[0]
	if t.Kind(decls) != KindDeclarations {
		return nil, errorf(StructuralError, "program must start with <declarations>, found <%s>", t.Kind(decls))
	}
	for _, p := range t.pairs(decls) {
		v, err := m.Lookup(p.Label)
		if err != nil {
			return nil, err
		}
		t.setLit(p.Slot, FormatNumber(v))
	}
	return &Element{Tag: "block", Children: []*Element{t.Element(decls)}}, nil
}
