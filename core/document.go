package cek

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

type Attr struct {
	Name  string
	Value string
}

// Element is one node of a tagged-element document, before it is given
// meaning as a program tree.
type Element struct {
	Tag      string
	Attrs    []Attr
	Children []*Element
}

func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

func (e *Element) Clone() *Element {
	c := &Element{Tag: e.Tag}
	if len(e.Attrs) > 0 {
		c.Attrs = append([]Attr(nil), e.Attrs...)
	}
	for _, ch := range e.Children {
		c.Children = append(c.Children, ch.Clone())
	}
	return c
}

// Equal compares two documents structurally: tag, attribute set and
// children, recursively. Attribute order does not matter.
func (e *Element) Equal(o *Element) bool {
	if e == nil || o == nil {
		return e == o
	}
	if e.Tag != o.Tag || len(e.Attrs) != len(o.Attrs) || len(e.Children) != len(o.Children) {
		return false
	}
	for _, a := range e.Attrs {
		v, ok := o.Attr(a.Name)
		if !ok || v != a.Value {
			return false
		}
	}
	for i := range e.Children {
		if !e.Children[i].Equal(o.Children[i]) {
			return false
		}
	}
	return true
}

// String renders the element in the s-expression syntax read by ParseSexpr.
func (e *Element) String() string {
	switch e.Tag {
	case "var":
		if l, ok := e.Attr("label"); ok && len(e.Children) == 0 {
			return l
		}
	case "num":
		if v, ok := e.Attr("val"); ok && len(e.Children) == 0 {
			return v
		}
	}
	parts := make([]string, 0, len(e.Children)+1)
	parts = append(parts, e.Tag)
	for _, c := range e.Children {
		parts = append(parts, c.String())
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// ReadDocument decodes a whole XML document. Character data is ignored.
func ReadDocument(r io.Reader) (*Element, error) {
	dec := xml.NewDecoder(r)
	var stack []*Element
	var root *Element
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, wrapError(SyntaxError, err, "malformed document")
		}
		switch tok := tok.(type) {
		case xml.StartElement:
			el := &Element{Tag: tok.Name.Local}
			for _, a := range tok.Attr {
				el.Attrs = append(el.Attrs, Attr{Name: a.Name.Local, Value: a.Value})
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, errorf(SyntaxError, "document has more than one root element")
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, el)
			}
			stack = append(stack, el)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		}
	}
	if root == nil {
		return nil, errorf(SyntaxError, "document has no root element")
	}
	if len(stack) != 0 {
		return nil, errorf(SyntaxError, "unclosed <%s>", stack[len(stack)-1].Tag)
	}
	return root, nil
}

// WriteDocument encodes el as XML without a declaration header.
func WriteDocument(w io.Writer, el *Element) error {
	enc := xml.NewEncoder(w)
	if err := encodeElement(enc, el); err != nil {
		return fmt.Errorf("encode <%s>: %w", el.Tag, err)
	}
	return enc.Flush()
}

func encodeElement(enc *xml.Encoder, el *Element) error {
	start := xml.StartElement{Name: xml.Name{Local: el.Tag}}
	attrs := append([]Attr(nil), el.Attrs...)
	sort.SliceStable(attrs, func(i, j int) bool { return attrs[i].Name < attrs[j].Name })
	for _, a := range attrs {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: a.Name}, Value: a.Value})
	}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	for _, c := range el.Children {
		if err := encodeElement(enc, c); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

// DocumentString is WriteDocument into a string.
func DocumentString(el *Element) (string, error) {
	var sb strings.Builder
	if err := WriteDocument(&sb, el); err != nil {
		return "", err
	}
	return sb.String(), nil
}
