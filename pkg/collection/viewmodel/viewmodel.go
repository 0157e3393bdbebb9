// Package viewmodel decides how the entries of a collection are ordered and
// which of them are shown. It never changes entry data.
package viewmodel

import (
	"sort"
	"strings"

	"tableflip.dev/bib/pkg/collection"
	"tableflip.dev/bib/pkg/entry"
)

// View is the sort and filter state of one open file.
type View struct {
	SortKey    string
	Descending bool
	Search     string
	// Filter disables entry types mapped to false. Missing types are shown.
	Filter map[collection.Type]bool
}

// Option customises New.
type Option func(*View)

// WithState restores a view from a state string.
func WithState(state string) Option {
	return func(v *View) {
		v.ParseState(state)
	}
}

// WithSortKey sets the initial sort field.
func WithSortKey(key string) Option {
	return func(v *View) {
		if key = strings.TrimSpace(key); key != "" {
			v.SortKey = key
		}
	}
}

// New returns a view sorted ascending by key with every type shown.
func New(opts ...Option) *View {
	v := &View{
		SortKey: entry.KeyField,
		Filter:  allTypes(true),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func allTypes(enabled bool) map[collection.Type]bool {
	m := make(map[collection.Type]bool, len(collection.AllTypes()))
	for _, t := range collection.AllTypes() {
		m[t] = enabled
	}
	return m
}

// ToggleSort sorts by key, flipping the direction when key is already the
// sort field.
func (v *View) ToggleSort(key string) {
	if v.SortKey == key {
		v.Descending = !v.Descending
		return
	}
	v.SortKey = key
	v.Descending = false
}

// SetType enables or disables one entry type.
func (v *View) SetType(t collection.Type, enabled bool) {
	if v.Filter == nil {
		v.Filter = allTypes(true)
	}
	v.Filter[t] = enabled
}

// ShowOnly enables exactly the given types.
func (v *View) ShowOnly(types ...collection.Type) {
	v.Filter = allTypes(false)
	for _, t := range types {
		v.Filter[t] = true
	}
}

func (v *View) typeEnabled(t collection.Type) bool {
	enabled, ok := v.Filter[t]
	return !ok || enabled
}

func (v *View) value(e *entry.Entry) string {
	if e.Key() == "" {
		// Entries without a key come first in both directions.
		if v.Descending {
			return entry.MaxChar
		}
		return entry.MinChar
	}
	return e.SortValue(v.SortKey)
}

func isSentinel(s string) bool {
	return s == entry.MinChar || s == entry.MaxChar
}

// Compare orders a and b under the current sort field and direction. Equal
// values fall back to the key.
func (v *View) Compare(a, b *entry.Entry) int {
	va, vb := v.value(a), v.value(b)
	c := strings.Compare(va, vb)
	if c == 0 && !isSentinel(va) {
		c = strings.Compare(a.SortValue(entry.KeyField), b.SortValue(entry.KeyField))
	}
	if v.Descending {
		return -c
	}
	return c
}

// Less reports whether a sorts before b.
func (v *View) Less(a, b *entry.Entry) bool {
	return v.Compare(a, b) < 0
}

// Sort orders entries in place. Ties keep their relative order.
func (v *View) Sort(entries []*entry.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return v.Less(entries[i], entries[j])
	})
}

// Visible reports whether e passes the deleted, type and search filters.
func (v *View) Visible(e *entry.Entry) bool {
	if e.Deleted {
		return false
	}
	if !v.typeEnabled(collection.Classify(e.Type())) {
		return false
	}
	return v.Matches(e)
}

// Rows returns the visible entries of f in display order.
func (v *View) Rows(f *collection.File) []*entry.Entry {
	var rows []*entry.Entry
	for _, e := range f.Entries() {
		if v.Visible(e) {
			rows = append(rows, e)
		}
	}
	v.Sort(rows)
	return rows
}
