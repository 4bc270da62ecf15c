package cek

import (
	"github.com/rs/zerolog"
)

// Frame maps the variables declared by one active block to their values.
type Frame map[string]float64

type ContKind uint8

const (
	ContEmpty ContKind = iota
	ContQueue
)

// Continuation is the per-block record of sibling statements still to run.
// An exhausted queue is always stored as the Empty marker.
type Continuation struct {
	Kind  ContKind
	Queue []NodeID
}

// Empty is the marker continuation: the block's queue is exhausted.
var Empty = Continuation{Kind: ContEmpty}

func queueOf(ids []NodeID) Continuation {
	if len(ids) == 0 {
		return Empty
	}
	return Continuation{Kind: ContQueue, Queue: ids}
}

func (c Continuation) Exhausted() bool {
	return c.Kind == ContEmpty || len(c.Queue) == 0
}

// Machine holds the Control, Environment and Continuation registers of one
// program run. Env[i] and Cont[i] always belong to the same block activation.
type Machine struct {
	Tree     *Tree
	Control  NodeID
	Env      []Frame
	Cont     []Continuation
	Steps    int
	MaxSteps int // 0 means unlimited
	Log      zerolog.Logger
	OnStep   func(m *Machine)

	root NodeID
}

func NewMachine(tree *Tree, root NodeID) *Machine {
	return &Machine{
		Tree:    tree,
		Control: root,
		Log:     zerolog.Nop(),
		root:    root,
	}
}

func (m *Machine) Root() NodeID { return m.root }

// enter and exit are the only places the two stacks change size.
func (m *Machine) enter(f Frame, c Continuation) {
	m.Env = append(m.Env, f)
	m.Cont = append(m.Cont, c)
	m.Log.Debug().Int("depth", len(m.Env)).Int("vars", len(f)).Msg("enter block")
}

func (m *Machine) exit() {
	m.Env = m.Env[:len(m.Env)-1]
	m.Cont = m.Cont[:len(m.Cont)-1]
	m.Log.Debug().Int("depth", len(m.Env)).Msg("exit block")
}

// frameOf returns the innermost frame declaring name.
func (m *Machine) frameOf(name string) (Frame, bool) {
	for i := len(m.Env) - 1; i >= 0; i-- {
		if _, ok := m.Env[i][name]; ok {
			return m.Env[i], true
		}
	}
	return nil, false
}

// Lookup resolves name from the innermost frame outwards.
func (m *Machine) Lookup(name string) (float64, error) {
	f, ok := m.frameOf(name)
	if !ok {
		return 0, errorf(UnboundVariableError, "variable %s is not declared in any enclosing block", name)
	}
	return f[name], nil
}

// Halted reports the terminal configuration: nothing in Control and only the
// outermost, exhausted continuation left.
func (m *Machine) Halted() bool {
	return m.Control == Inert && len(m.Cont) == 1 && m.Cont[0].Exhausted()
}

// Step performs one driver iteration.
func (m *Machine) Step() error {
	if m.Halted() {
		return nil
	}
	if m.MaxSteps > 0 && m.Steps >= m.MaxSteps {
		return errorf(StepLimitError, "no terminal state after %d steps", m.Steps)
	}
	m.Steps++
	m.Log.Trace().
		Int("step", m.Steps).
		Str("control", m.Tree.Kind(m.Control).String()).
		Int("env", len(m.Env)).
		Int("cont", len(m.Cont)).
		Msg("step")

	var err error
	if m.Control == Inert {
		err = m.advance()
	} else {
		err = m.reduceStatement()
	}
	if err != nil {
		return err
	}
	if m.OnStep != nil {
		m.OnStep(m)
	}
	return nil
}

// advance moves the next queued sibling into Control, or releases the
// innermost scope once its queue is exhausted.
func (m *Machine) advance() error {
	if len(m.Cont) == 0 {
		return errorf(StructuralError, "continuation stack is empty with nothing in control")
	}
	top := &m.Cont[len(m.Cont)-1]
	if top.Exhausted() {
		m.exit()
		return nil
	}
	m.Control = top.Queue[0]
	*top = queueOf(top.Queue[1:])
	return nil
}

// Run drives the machine until it halts or fails.
func (m *Machine) Run() error {
	for !m.Halted() {
		if err := m.Step(); err != nil {
			m.Log.Debug().Err(err).Int("step", m.Steps).Msg("run failed")
			return err
		}
	}
	m.Log.Debug().Int("steps", m.Steps).Msg("halted")
	return nil
}
