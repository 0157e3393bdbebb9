// Package bibtex parses and writes the BibTeX grammar: @entries, @string
// macros, @comment and @preamble blocks.
package bibtex

import (
	"fmt"

	"tableflip.dev/bib/pkg/field"
)

// Entry is one parsed record. Field names and the type are lower-cased.
type Entry struct {
	Type   string
	Key    string
	Fields map[string]field.Value
}

// NewEntry returns an entry with an initialized field map.
func NewEntry(typ, key string) *Entry {
	return &Entry{Type: typ, Key: key, Fields: map[string]field.Value{}}
}

// Clone returns a copy that shares no map with e.
func (e *Entry) Clone() *Entry {
	if e == nil {
		return nil
	}
	out := NewEntry(e.Type, e.Key)
	for k, v := range e.Fields {
		out.Fields[k] = v
	}
	return out
}

// Database is the result of parsing a whole file.
type Database struct {
	Entries   []*Entry
	Strings   field.Table
	Comments  []string
	Preambles []field.Value
}

// SyntaxError reports where the parser gave up.
type SyntaxError struct {
	Line   int
	Column int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("bibtex: %d:%d: %s", e.Line, e.Column, e.Msg)
}

// Equal reports whether a and b carry the same type, key and fields.
// Expressions compare by their raw rendering.
func Equal(a, b *Entry) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Type != b.Type || a.Key != b.Key || len(a.Fields) != len(b.Fields) {
		return false
	}
	for name, va := range a.Fields {
		vb, ok := b.Fields[name]
		if !ok || !field.Equal(va, vb) {
			return false
		}
	}
	return true
}
