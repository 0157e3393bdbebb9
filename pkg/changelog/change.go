// Package changelog records reversible edits to the entries of a collection
// and replays them for undo and redo.
package changelog

import (
	"fmt"

	"tableflip.dev/bib/pkg/bibtex"
	"tableflip.dev/bib/pkg/entry"
	"tableflip.dev/bib/pkg/field"
)

// Kind identifies the type of a change.
type Kind int

const (
	KindEdit Kind = iota + 1
	KindShow
	KindHide
	KindReplace
)

func (k Kind) String() string {
	switch k {
	case KindEdit:
		return "edit"
	case KindShow:
		return "show"
	case KindHide:
		return "hide"
	case KindReplace:
		return "replace"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Target is the collection changes are applied to. Entries are addressed by
// index.
type Target interface {
	Entry(i int) *entry.Entry
	SetDeleted(i int, deleted bool) bool
	SetUnsaved(unsaved bool)
}

// Change is one reversible operation.
type Change interface {
	Kind() Kind
	// Apply performs the change. redo is set when it is replayed from the log.
	Apply(t Target, redo bool)
	Revert(t Target)
	// absorb folds next into the receiver and reports whether it could.
	absorb(next Change) bool
}

// Edit sets one field of one entry.
type Edit struct {
	Index int
	Field string
	// Old is the exact previous value; nil when the field was absent.
	Old field.Value
	New string
}

// NewEdit records the current value of name on e so it can be restored.
func NewEdit(e *entry.Entry, name, text string) *Edit {
	old, ok := e.Value(name)
	if !ok {
		old = nil
	}
	return &Edit{Index: e.Index, Field: name, Old: old, New: text}
}

func (c *Edit) Kind() Kind { return KindEdit }

func (c *Edit) Apply(t Target, _ bool) {
	if e := t.Entry(c.Index); e != nil {
		e.Set(c.Field, c.New)
	}
}

func (c *Edit) Revert(t Target) {
	if e := t.Entry(c.Index); e != nil {
		e.SetValue(c.Field, c.Old)
	}
}

func (c *Edit) absorb(next Change) bool {
	n, ok := next.(*Edit)
	if !ok || n.Index != c.Index || n.Field != c.Field {
		return false
	}
	c.New = n.New
	return true
}

// Show reveals entries: undeleting them, or creating them when the entries
// were just appended.
type Show struct {
	Indices []int
}

func (c *Show) Kind() Kind { return KindShow }

func (c *Show) Apply(t Target, _ bool) { setDeleted(t, c.Indices, false) }
func (c *Show) Revert(t Target)        { setDeleted(t, c.Indices, true) }
func (c *Show) absorb(Change) bool     { return false }

// Hide soft-deletes entries.
type Hide struct {
	Indices []int
}

func (c *Hide) Kind() Kind { return KindHide }

func (c *Hide) Apply(t Target, _ bool) { setDeleted(t, c.Indices, true) }
func (c *Hide) Revert(t Target)        { setDeleted(t, c.Indices, false) }
func (c *Hide) absorb(Change) bool     { return false }

func setDeleted(t Target, indices []int, deleted bool) {
	for _, i := range indices {
		t.SetDeleted(i, deleted)
	}
}

// Replace swaps a whole entry, as committed from the source editor.
type Replace struct {
	Index int
	Old   *bibtex.Entry
	New   *bibtex.Entry
}

// NewReplace snapshots e as the value to restore on undo.
func NewReplace(e *entry.Entry, next *bibtex.Entry) *Replace {
	return &Replace{Index: e.Index, Old: e.Snapshot(), New: next.Clone()}
}

func (c *Replace) Kind() Kind { return KindReplace }

func (c *Replace) Apply(t Target, _ bool) {
	if e := t.Entry(c.Index); e != nil {
		e.Restore(c.New)
	}
}

func (c *Replace) Revert(t Target) {
	if e := t.Entry(c.Index); e != nil {
		e.Restore(c.Old)
	}
}

func (c *Replace) absorb(next Change) bool {
	n, ok := next.(*Replace)
	if !ok || n.Index != c.Index {
		return false
	}
	c.New = n.New
	return true
}
