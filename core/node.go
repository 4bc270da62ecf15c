package cek

import (
	"fmt"
	"strings"
)

type Kind uint8

const (
	KindInert Kind = iota
	KindDeclarations
	KindBlock
	KindAssign
	KindIf0
	KindWhile0
	KindVar
	KindNum
	KindPls
)

var kindTags = map[Kind]string{
	KindInert:        "inert",
	KindDeclarations: "declarations",
	KindBlock:        "block",
	KindAssign:       "assign",
	KindIf0:          "if0",
	KindWhile0:       "while0",
	KindVar:          "var",
	KindNum:          "num",
	KindPls:          "pls",
}

var tagKinds map[string]Kind

func init() {
	tagKinds = make(map[string]Kind, len(kindTags))
	for k, tag := range kindTags {
		if k != KindInert {
			tagKinds[tag] = k
		}
	}
}

func (k Kind) String() string {
	if tag, ok := kindTags[k]; ok {
		return tag
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// IsStatement reports whether nodes of this kind can sit in Control.
func (k Kind) IsStatement() bool {
	switch k {
	case KindAssign, KindIf0, KindWhile0, KindBlock:
		return true
	}
	return false
}

// NodeID addresses a node slot in a Tree.
type NodeID int32

// Inert is the slot every Tree reserves for the "no statement active" node.
const Inert NodeID = 0

// Node is one arena slot. Label is set for Var, Lit holds the decimal
// literal of a Num, Kids lists children in document order.
type Node struct {
	Kind  Kind
	Label string
	Lit   string
	Kids  []NodeID
}

// Tree is the arena owning every node of one program. Reductions rewrite
// slots in place, so a slot observed across driver iterations converges to
// a value without any pointer aliasing.
type Tree struct {
	nodes []Node
}

func NewTree() *Tree {
	return &Tree{nodes: []Node{{Kind: KindInert}}}
}

func (t *Tree) Len() int { return len(t.nodes) }

func (t *Tree) add(n Node) NodeID {
	t.nodes = append(t.nodes, n)
	return NodeID(len(t.nodes) - 1)
}

func (t *Tree) Kind(id NodeID) Kind { return t.nodes[id].Kind }
func (t *Tree) Kids(id NodeID) []NodeID { return t.nodes[id].Kids }
func (t *Tree) Label(id NodeID) string { return t.nodes[id].Label }
func (t *Tree) Lit(id NodeID) string { return t.nodes[id].Lit }

// Clone instantiates an independent copy of the subtree rooted at id.
// Inert is never copied.
func (t *Tree) Clone(id NodeID) NodeID {
	if id == Inert {
		return Inert
	}
	n := t.nodes[id]
	var kids []NodeID
	if len(n.Kids) > 0 {
		kids = make([]NodeID, len(n.Kids))
		for i, k := range n.Kids {
			kids[i] = t.Clone(k)
		}
	}
	return t.add(Node{Kind: n.Kind, Label: n.Label, Lit: n.Lit, Kids: kids})
}

func (t *Tree) rewriteNum(id NodeID, v float64) {
	t.nodes[id] = Node{Kind: KindNum, Lit: FormatNumber(v)}
}

func (t *Tree) setLit(id NodeID, lit string) {
	t.nodes[id].Lit = lit
}

// Build loads a document element into a fresh arena and returns the id of
// its root. Only the shape is checked here; whether a node may appear where
// it sits is decided when the machine reaches it.
func Build(el *Element) (*Tree, NodeID, error) {
	t := NewTree()
	root, err := t.build(el)
	if err != nil {
		return nil, Inert, err
	}
	return t, root, nil
}

func (t *Tree) build(el *Element) (NodeID, error) {
	kind, ok := tagKinds[el.Tag]
	if !ok {
		return Inert, errorf(SyntaxError, "unknown tag <%s>", el.Tag)
	}
	n := Node{Kind: kind}
	switch kind {
	case KindVar:
		label, ok := el.Attr("label")
		if !ok || label == "" {
			return Inert, errorf(SyntaxError, "<var> without label")
		}
		n.Label = label
	case KindNum:
		val, ok := el.Attr("val")
		if !ok {
			return Inert, errorf(SyntaxError, "<num> without val")
		}
		n.Lit = val
	}
	if err := checkArity(kind, el); err != nil {
		return Inert, err
	}
	if kind == KindDeclarations {
		if err := checkPairing(el); err != nil {
			return Inert, err
		}
	}
	for _, c := range el.Children {
		id, err := t.build(c)
		if err != nil {
			return Inert, err
		}
		n.Kids = append(n.Kids, id)
	}
	return t.add(n), nil
}

func checkArity(kind Kind, el *Element) error {
	got := len(el.Children)
	want := -1
	switch kind {
	case KindVar, KindNum:
		want = 0
	case KindAssign, KindPls:
		want = 2
	case KindIf0:
		want = 3
	case KindWhile0:
		if got < 1 {
			return errorf(SyntaxError, "<while0> needs a guard")
		}
	}
	if want >= 0 && got != want {
		return errorf(SyntaxError, "<%s> expects %d children, got %d", el.Tag, want, got)
	}
	return nil
}

// checkPairing enforces that labels and literals of a declarations list pair
// up first-in first-out: every num has a pending var and none is left over.
func checkPairing(el *Element) error {
	pending := 0
	for i, c := range el.Children {
		switch c.Tag {
		case "var":
			pending++
		case "num":
			if pending == 0 {
				return errorf(SyntaxError, "declarations: <num> at %d has no variable", i)
			}
			pending--
		default:
			return errorf(SyntaxError, "declarations: unexpected <%s>", c.Tag)
		}
	}
	if pending != 0 {
		return errorf(SyntaxError, "declarations: %d variable(s) without a value", pending)
	}
	return nil
}

// declPair is one (name, value slot) entry of a Declarations node.
type declPair struct {
	Label string
	Slot  NodeID
}

func (t *Tree) pairs(decls NodeID) []declPair {
	var labels []string
	var out []declPair
	for _, k := range t.nodes[decls].Kids {
		n := t.nodes[k]
		switch n.Kind {
		case KindVar:
			labels = append(labels, n.Label)
		case KindNum:
			if len(labels) == 0 {
				continue
			}
			out = append(out, declPair{Label: labels[0], Slot: k})
			labels = labels[1:]
		}
	}
	return out
}

// Element converts the subtree at id back into a document element.
func (t *Tree) Element(id NodeID) *Element {
	n := t.nodes[id]
	el := &Element{Tag: n.Kind.String()}
	switch n.Kind {
	case KindVar:
		el.Attrs = []Attr{{Name: "label", Value: n.Label}}
	case KindNum:
		el.Attrs = []Attr{{Name: "val", Value: n.Lit}}
	}
	for _, k := range n.Kids {
		el.Children = append(el.Children, t.Element(k))
	}
	return el
}

// Render prints the subtree at id in s-expression form.
func (t *Tree) Render(id NodeID) string {
	n := t.nodes[id]
	switch n.Kind {
	case KindInert:
		return "inert"
	case KindVar:
		return n.Label
	case KindNum:
		return n.Lit
	}
	parts := make([]string, 0, len(n.Kids)+1)
	parts = append(parts, n.Kind.String())
	for _, k := range n.Kids {
		parts = append(parts, t.Render(k))
	}
	return "(" + strings.Join(parts, " ") + ")"
}
