package bibtex

import (
	"strings"
	"unicode"

	"tableflip.dev/bib/pkg/field"
)

// Parse reads a complete BibTeX document. Text outside of @ blocks is kept as
// comments so that a file's leading notes survive a save.
func Parse(text string) (*Database, error) {
	p := &parser{src: text, line: 1, col: 1}
	db := &Database{Strings: field.Table{}}
	if err := p.document(db); err != nil {
		return nil, err
	}
	return db, nil
}

type parser struct {
	src  string
	pos  int
	line int
	col  int
}

func (p *parser) errorf(msg string) error {
	return &SyntaxError{Line: p.line, Column: p.col, Msg: msg}
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) next() byte {
	c := p.src[p.pos]
	p.pos++
	if c == '\n' {
		p.line++
		p.col = 1
	} else {
		p.col++
	}
	return c
}

func (p *parser) skipSpace() {
	for !p.eof() && isSpace(p.peek()) {
		p.next()
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

func isNameChar(c byte) bool {
	if c >= 0x80 {
		return true
	}
	r := rune(c)
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return true
	}
	return strings.IndexByte("!$&*+-./:;<>?[]^_`|'", c) >= 0
}

func (p *parser) document(db *Database) error {
	text := p.pos
	for {
		for !p.eof() && p.peek() != '@' {
			p.next()
		}
		if p.eof() {
			p.comment(db, text, p.pos)
			return nil
		}
		at := p.pos
		p.next() // '@'
		kind, closing, ok := p.opening()
		if !ok {
			// An @ in free text, such as a mail address, stays part of it.
			continue
		}
		p.comment(db, text, at)
		if err := p.block(db, kind, closing); err != nil {
			return err
		}
		text = p.pos
	}
}

// comment keeps the free text between start and end.
func (p *parser) comment(db *Database, start, end int) {
	if c := strings.TrimSpace(p.src[start:end]); c != "" {
		db.Comments = append(db.Comments, c)
	}
}

// opening reads a block type and its opening delimiter. It reports false
// when the text after '@' does not start a block.
func (p *parser) opening() (string, byte, bool) {
	p.skipSpace()
	kind := strings.ToLower(p.name())
	if kind == "" {
		return "", 0, false
	}
	p.skipSpace()
	var closing byte
	switch p.peek() {
	case '{':
		closing = '}'
	case '(':
		closing = ')'
	default:
		return "", 0, false
	}
	p.next()
	return kind, closing, true
}

func (p *parser) block(db *Database, kind string, closing byte) error {
	switch kind {
	case "comment":
		body, err := p.balanced(closing)
		if err != nil {
			return err
		}
		db.Comments = append(db.Comments, strings.TrimSpace(body))
		return nil
	case "preamble":
		p.skipSpace()
		v, err := p.value()
		if err != nil {
			return err
		}
		db.Preambles = append(db.Preambles, v)
		return p.close(closing)
	case "string":
		p.skipSpace()
		name := strings.ToLower(p.name())
		if name == "" {
			return p.errorf("expected macro name")
		}
		p.skipSpace()
		if p.eof() || p.next() != '=' {
			return p.errorf("expected '=' in @string")
		}
		p.skipSpace()
		v, err := p.value()
		if err != nil {
			return err
		}
		db.Strings[name] = v
		return p.close(closing)
	}

	e, err := p.entry(kind, closing)
	if err != nil {
		return err
	}
	db.Entries = append(db.Entries, e)
	return nil
}

func (p *parser) entry(kind string, closing byte) (*Entry, error) {
	p.skipSpace()
	start := p.pos
	for !p.eof() && p.peek() != ',' && p.peek() != closing && !isSpace(p.peek()) {
		p.next()
	}
	e := NewEntry(kind, p.src[start:p.pos])
	p.skipSpace()
	if p.eof() {
		return nil, p.errorf("unterminated entry " + e.Key)
	}
	if p.peek() == closing {
		p.next()
		return e, nil
	}
	if p.next() != ',' {
		return nil, p.errorf("expected ',' after key")
	}

	for {
		p.skipSpace()
		if p.eof() {
			return nil, p.errorf("unterminated entry " + e.Key)
		}
		if p.peek() == closing {
			p.next()
			return e, nil
		}
		name := strings.ToLower(p.name())
		if name == "" {
			return nil, p.errorf("expected field name")
		}
		p.skipSpace()
		if p.eof() || p.next() != '=' {
			return nil, p.errorf("expected '=' after " + name)
		}
		p.skipSpace()
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		e.Fields[name] = v
		p.skipSpace()
		if p.eof() {
			return nil, p.errorf("unterminated entry " + e.Key)
		}
		switch p.peek() {
		case ',':
			p.next()
		case closing:
		default:
			return nil, p.errorf("expected ',' or end of entry after " + name)
		}
	}
}

func (p *parser) close(closing byte) error {
	p.skipSpace()
	if p.eof() || p.next() != closing {
		return p.errorf("expected '" + string(closing) + "'")
	}
	return nil
}

func (p *parser) name() string {
	start := p.pos
	for !p.eof() && isNameChar(p.peek()) {
		p.next()
	}
	return p.src[start:p.pos]
}

// value reads `piece (# piece)*`. A lone literal becomes Plain text.
func (p *parser) value() (field.Value, error) {
	var expr field.Expr
	for {
		seg, err := p.piece()
		if err != nil {
			return nil, err
		}
		expr = append(expr, seg)
		p.skipSpace()
		if p.peek() != '#' {
			break
		}
		p.next()
		p.skipSpace()
	}
	if len(expr) == 1 {
		if lit, ok := expr[0].(field.Literal); ok {
			return field.Plain(lit), nil
		}
	}
	return expr, nil
}

func (p *parser) piece() (field.Segment, error) {
	switch c := p.peek(); {
	case c == '{':
		p.next()
		body, err := p.balanced('}')
		if err != nil {
			return nil, err
		}
		return field.Literal(body), nil
	case c == '"':
		p.next()
		body, err := p.quoted()
		if err != nil {
			return nil, err
		}
		return field.Literal(body), nil
	case c >= '0' && c <= '9':
		start := p.pos
		for !p.eof() && p.peek() >= '0' && p.peek() <= '9' {
			p.next()
		}
		return field.Literal(p.src[start:p.pos]), nil
	}
	name := p.name()
	if name == "" {
		return nil, p.errorf("expected value")
	}
	return field.NewRef(name), nil
}

// balanced consumes up to the closing delimiter at depth zero and returns the
// text in between.
func (p *parser) balanced(closing byte) (string, error) {
	start, depth := p.pos, 0
	for !p.eof() {
		c := p.peek()
		switch {
		case c == '{':
			depth++
		case c == '}' && depth > 0:
			depth--
		case c == closing && depth == 0:
			body := p.src[start:p.pos]
			p.next()
			return body, nil
		case c == '}':
			return "", p.errorf("unbalanced '}'")
		}
		p.next()
	}
	return "", p.errorf("unbalanced braces")
}

func (p *parser) quoted() (string, error) {
	start, depth := p.pos, 0
	for !p.eof() {
		c := p.peek()
		switch {
		case c == '{':
			depth++
		case c == '}':
			if depth == 0 {
				return "", p.errorf("unbalanced '}' in quoted value")
			}
			depth--
		case c == '"' && depth == 0:
			body := p.src[start:p.pos]
			p.next()
			return body, nil
		}
		p.next()
	}
	return "", p.errorf("unterminated quoted value")
}
