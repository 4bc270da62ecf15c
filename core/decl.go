package cek

// translate turns a Declarations node into a fresh frame.
func (t *Tree) translate(decls NodeID) (Frame, error) {
	pairs := t.pairs(decls)
	f := make(Frame, len(pairs))
	for _, p := range pairs {
		v, err := ParseNumber(t.Lit(p.Slot))
		if err != nil {
			return nil, errorf(NonNumericLiteralError, "declaration of %s: %q is not a finite number", p.Label, t.Lit(p.Slot))
		}
		f[p.Label] = v
	}
	return f, nil
}
