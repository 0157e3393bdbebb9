// Package field models BibTeX field values that may reference @string macros.
package field

import (
	"sort"
	"strings"
)

// Value is either Plain text or an Expr of literal and macro segments.
type Value interface {
	isValue()
}

// Plain is a field value with no macro references.
type Plain string

// Expr is a concatenation of literal text and macro references.
type Expr []Segment

func (Plain) isValue() {}
func (Expr) isValue()  {}

// Segment is one part of an Expr.
type Segment interface {
	isSegment()
}

// Literal is verbatim text inside an Expr.
type Literal string

// Ref names a macro. Names are stored lower-cased.
type Ref string

func (Literal) isSegment() {}
func (Ref) isSegment()     {}

// NewRef returns a reference with a normalized name.
func NewRef(name string) Ref {
	return Ref(strings.ToLower(name))
}

// Table maps macro names to their definitions.
type Table map[string]Value

// Lookup finds a macro by name, ignoring case.
func (t Table) Lookup(name string) (Value, bool) {
	if t == nil {
		return nil, false
	}
	v, ok := t[strings.ToLower(name)]
	return v, ok
}

// Has reports whether name is a defined macro.
func (t Table) Has(name string) bool {
	_, ok := t.Lookup(name)
	return ok
}

// Names returns the macro names in sorted order.
func (t Table) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a shallow copy of t.
func (t Table) Clone() Table {
	out := make(Table, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Overlay returns the effective table: local definitions win over global ones.
func Overlay(local, global Table) Table {
	out := make(Table, len(local)+len(global))
	for k, v := range global {
		out[k] = v
	}
	for k, v := range local {
		out[k] = v
	}
	return out
}

// Months are the month macros BibTeX styles define by default.
func Months() Table {
	return Table{
		"jan": Plain("January"),
		"feb": Plain("February"),
		"mar": Plain("March"),
		"apr": Plain("April"),
		"may": Plain("May"),
		"jun": Plain("June"),
		"jul": Plain("July"),
		"aug": Plain("August"),
		"sep": Plain("September"),
		"oct": Plain("October"),
		"nov": Plain("November"),
		"dec": Plain("December"),
	}
}
