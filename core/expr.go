package cek

import "math"

// reduceExpr performs at most one rewrite inside the expression at id,
// leftmost first. stepped is false only when id is already a number.
func (m *Machine) reduceExpr(id NodeID) (bool, error) {
	t := m.Tree
	switch t.Kind(id) {
	case KindVar:
		label := t.Label(id)
		v, err := m.Lookup(label)
		if err != nil {
			return false, err
		}
		t.rewriteNum(id, v)
		m.Log.Trace().Str("var", label).Float64("value", v).Msg("ref")
		return true, nil

	case KindNum:
		return false, nil

	case KindPls:
		kids := t.Kids(id)
		l, r := kids[0], kids[1]
		if stepped, err := m.reduceExpr(l); err != nil || stepped {
			return stepped, err
		}
		if stepped, err := m.reduceExpr(r); err != nil || stepped {
			return stepped, err
		}
		a, err := m.numberAt(l)
		if err != nil {
			return false, err
		}
		b, err := m.numberAt(r)
		if err != nil {
			return false, err
		}
		sum := a + b
		if math.IsInf(sum, 0) {
			return false, errorf(NonNumericLiteralError, "%s + %s is not a finite number", t.Lit(l), t.Lit(r))
		}
		t.rewriteNum(id, sum)
		m.Log.Trace().Float64("left", a).Float64("right", b).Float64("sum", sum).Msg("add")
		return true, nil

	default:
		return false, errorf(StructuralError, "<%s> is not an expression", t.Kind(id))
	}
}

// numberAt reads the value of a fully reduced expression slot.
func (m *Machine) numberAt(id NodeID) (float64, error) {
	if m.Tree.Kind(id) != KindNum {
		return 0, errorf(NonNumericLiteralError, "<%s> did not reduce to a number", m.Tree.Kind(id))
	}
	return ParseNumber(m.Tree.Lit(id))
}
