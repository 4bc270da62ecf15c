package cek

func (m *Machine) reduceStatement() error {
	id := m.Control
	switch m.Tree.Kind(id) {
	case KindBlock:
		return m.enterBlock(id)
	case KindAssign:
		return m.reduceAssign(id)
	case KindIf0:
		return m.reduceIf0(id)
	case KindWhile0:
		m.Control = m.unroll(id)
		return nil
	default:
		return errorf(StructuralError, "<%s> cannot be executed as a statement", m.Tree.Kind(id))
	}
}

// enterBlock pushes the block's frame and continuation together. A block
// without declarations still gets an empty frame so the stacks stay paired.
func (m *Machine) enterBlock(id NodeID) error {
	t := m.Tree
	var (
		frame Frame
		stmts []NodeID
	)
	for _, k := range t.Kids(id) {
		kind := t.Kind(k)
		switch {
		case kind == KindDeclarations:
			if frame != nil {
				return errorf(StructuralError, "block declares its variables more than once")
			}
			f, err := t.translate(k)
			if err != nil {
				return err
			}
			frame = f
		case kind.IsStatement():
			stmts = append(stmts, k)
		default:
			return errorf(StructuralError, "<%s> cannot appear directly inside a block", kind)
		}
	}
	if frame == nil {
		frame = Frame{}
	}

	if len(stmts) == 0 {
		m.Control = Inert
		m.enter(frame, Empty)
		return nil
	}
	// Queued statements are shared by id: only loop unrolling ever runs a
	// node twice, and it instantiates fresh copies.
	rest := make([]NodeID, len(stmts)-1)
	copy(rest, stmts[1:])
	m.Control = stmts[0]
	m.enter(frame, queueOf(rest))
	return nil
}

func (m *Machine) reduceAssign(id NodeID) error {
	t := m.Tree
	kids := t.Kids(id)
	target, expr := kids[0], kids[1]
	if t.Kind(target) != KindVar {
		return errorf(StructuralError, "assignment target is <%s>, not a variable", t.Kind(target))
	}
	stepped, err := m.reduceExpr(expr)
	if err != nil || stepped {
		return err
	}
	v, err := m.numberAt(expr)
	if err != nil {
		return err
	}
	label := t.Label(target)
	f, ok := m.frameOf(label)
	if !ok {
		return errorf(UnboundVariableError, "cannot assign %s: not declared in any enclosing block", label)
	}
	f[label] = v
	m.Log.Trace().Str("var", label).Float64("value", v).Msg("assign")
	m.Control = Inert
	return nil
}

func (m *Machine) reduceIf0(id NodeID) error {
	kids := m.Tree.Kids(id)
	guard := kids[0]
	stepped, err := m.reduceExpr(guard)
	if err != nil || stepped {
		return err
	}
	v, err := m.numberAt(guard)
	if err != nil {
		return err
	}
	if v == 0 {
		m.Control = kids[1]
	} else {
		m.Control = kids[2]
	}
	return nil
}

// unroll rewrites a loop into one zero test:
//
//	if0 guard' inert (block (declarations) body'... loop)
//
// The loop node is a template and is never mutated, so it is shared as the
// recurring tail. Guard and body are cloned because reducing them rewrites
// their slots.
func (m *Machine) unroll(loop NodeID) NodeID {
	t := m.Tree
	kids := t.Kids(loop)
	guard, body := kids[0], kids[1:]

	blockKids := make([]NodeID, 0, len(body)+2)
	blockKids = append(blockKids, t.add(Node{Kind: KindDeclarations}))
	for _, s := range body {
		blockKids = append(blockKids, t.Clone(s))
	}
	blockKids = append(blockKids, loop)
	block := t.add(Node{Kind: KindBlock, Kids: blockKids})

	return t.add(Node{Kind: KindIf0, Kids: []NodeID{t.Clone(guard), Inert, block}})
}
