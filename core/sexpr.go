package cek

import (
	"strconv"
	"strings"
	"unicode"
)

type parser struct {
	input []rune
	pos   int
}

// ParseSexpr reads a program written as an s-expression:
//
//	(block (declarations x 3 sum 0)
//	  (while0 x (assign sum (pls sum x)) (assign x (pls x -1))))
//
// A list is an element named by its head, a numeric token is a num and any
// other token is a var.
func ParseSexpr(input string) (*Element, error) {
	p := &parser{input: []rune(input), pos: 0}
	p.skipWhitespace()
	if p.pos >= len(p.input) {
		return nil, errorf(SyntaxError, "empty input")
	}
	el, err := p.parseNode()
	if err != nil {
		return nil, err
	}
	p.skipWhitespace()
	if p.pos < len(p.input) {
		return nil, errorf(SyntaxError, "unexpected input after expression at position %d", p.pos)
	}
	return el, nil
}

func (p *parser) parseNode() (*Element, error) {
	if p.pos >= len(p.input) {
		return nil, errorf(SyntaxError, "unexpected end of input")
	}
	switch p.input[p.pos] {
	case '(':
		return p.parseList()
	case ')':
		return nil, errorf(SyntaxError, "unexpected ')' at position %d", p.pos)
	default:
		return p.parseAtom()
	}
}

func (p *parser) parseList() (*Element, error) {
	open := p.pos
	p.pos++ // skip '('
	p.skipWhitespace()
	if p.pos >= len(p.input) {
		return nil, errorf(SyntaxError, "unclosed list at position %d", open)
	}
	start := p.pos
	for p.pos < len(p.input) && !isDelimiter(p.input[p.pos]) {
		p.pos++
	}
	tag := string(p.input[start:p.pos])
	if tag == "" {
		return nil, errorf(SyntaxError, "list at position %d has no tag", open)
	}
	el := &Element{Tag: tag}
	for {
		p.skipWhitespace()
		if p.pos >= len(p.input) {
			return nil, errorf(SyntaxError, "unclosed list at position %d", open)
		}
		if p.input[p.pos] == ')' {
			p.pos++ // skip ')'
			return el, nil
		}
		child, err := p.parseNode()
		if err != nil {
			return nil, err
		}
		el.Children = append(el.Children, child)
	}
}

func (p *parser) parseAtom() (*Element, error) {
	start := p.pos
	for p.pos < len(p.input) && !isDelimiter(p.input[p.pos]) {
		p.pos++
	}
	token := string(p.input[start:p.pos])
	if token == "" {
		return nil, errorf(SyntaxError, "unexpected character: %c", p.input[start])
	}
	if _, err := strconv.ParseFloat(token, 64); err == nil && !isWord(token) {
		return &Element{Tag: "num", Attrs: []Attr{{Name: "val", Value: token}}}, nil
	}
	return &Element{Tag: "var", Attrs: []Attr{{Name: "label", Value: token}}}, nil
}

// isWord catches tokens ParseFloat accepts that read as names: inf, nan.
func isWord(token string) bool {
	t := strings.TrimLeft(token, "+-")
	return t != "" && unicode.IsLetter(rune(t[0]))
}

func (p *parser) skipWhitespace() {
	for p.pos < len(p.input) {
		ch := p.input[p.pos]
		if ch == ';' {
			for p.pos < len(p.input) && p.input[p.pos] != '\n' {
				p.pos++
			}
			continue
		}
		if !unicode.IsSpace(ch) {
			break
		}
		p.pos++
	}
}

func isDelimiter(ch rune) bool {
	return unicode.IsSpace(ch) || ch == '(' || ch == ')' || ch == ';'
}

// LoadProgram reads a program in either syntax: XML when the first
// non-blank character is '<', s-expression otherwise.
func LoadProgram(src string) (*Element, error) {
	if strings.HasPrefix(strings.TrimSpace(src), "<") {
		return ReadDocument(strings.NewReader(src))
	}
	return ParseSexpr(src)
}
