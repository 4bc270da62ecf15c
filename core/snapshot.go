package cek

import (
	"fmt"
	"sort"
	"strings"
)

// Snapshot is a printable copy of the machine registers after a step.
type Snapshot struct {
	Step    int                 `json:"step"`
	Status  string              `json:"status"`
	Control string              `json:"control"`
	Env     []map[string]string `json:"env"`
	Cont    []string            `json:"cont"`
}

func (m *Machine) Snapshot() Snapshot {
	s := Snapshot{
		Step:    m.Steps,
		Status:  "running",
		Control: m.Tree.Render(m.Control),
		Env:     make([]map[string]string, len(m.Env)),
		Cont:    make([]string, len(m.Cont)),
	}
	if m.Halted() {
		s.Status = "halted"
	}
	for i, f := range m.Env {
		s.Env[i] = frameToStrings(f)
	}
	for i, c := range m.Cont {
		s.Cont[i] = m.renderCont(c)
	}
	return s
}

func frameToStrings(f Frame) map[string]string {
	out := make(map[string]string, len(f))
	for k, v := range f {
		out[k] = FormatNumber(v)
	}
	return out
}

func (m *Machine) renderCont(c Continuation) string {
	if c.Exhausted() {
		return "empty"
	}
	parts := make([]string, len(c.Queue))
	for i, id := range c.Queue {
		parts[i] = m.Tree.Render(id)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// String lays the registers out one per line, innermost scope last.
func (s Snapshot) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "step %d (%s)\n", s.Step, s.Status)
	fmt.Fprintf(&sb, "  C: %s\n", s.Control)
	for i := range s.Env {
		names := make([]string, 0, len(s.Env[i]))
		for k := range s.Env[i] {
			names = append(names, k)
		}
		sort.Strings(names)
		vars := make([]string, len(names))
		for j, k := range names {
			vars[j] = k + "=" + s.Env[i][k]
		}
		cont := ""
		if i < len(s.Cont) {
			cont = s.Cont[i]
		}
		fmt.Fprintf(&sb, "  %d: E{%s} K%s\n", i, strings.Join(vars, " "), cont)
	}
	return sb.String()
}
