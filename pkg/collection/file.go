package collection

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"tableflip.dev/bib/pkg/bibtex"
	"tableflip.dev/bib/pkg/entry"
	"tableflip.dev/bib/pkg/field"
)

var (
	// ErrNotSingle is returned by ParseEntry when the text holds zero or
	// several entries.
	ErrNotSingle = errors.New("collection: expected exactly one entry")
)

// Options configures how a File creates and formats entries.
type Options struct {
	DefaultType string
	Writer      *bibtex.Writer
	SortFields  []string
}

func (o Options) withDefaults() Options {
	if o.DefaultType == "" {
		o.DefaultType = string(TypeArticle)
	}
	if o.Writer == nil {
		o.Writer = &bibtex.Writer{}
	}
	if len(o.SortFields) == 0 {
		o.SortFields = entry.DefaultSortFields
	}
	return o
}

// env is shared by all entries of a file. Entries see the effective macro
// table through it without referencing the File.
type env struct {
	strings    field.Table
	writer     *bibtex.Writer
	sortFields []string
}

func (e *env) Strings() field.Table   { return e.strings }
func (e *env) Writer() *bibtex.Writer { return e.writer }
func (e *env) SortFields() []string   { return e.sortFields }

// File is an open BibTeX file. Entries are never removed while the file is
// open; deleting only marks them.
type File struct {
	Name      string
	ShortName string
	// Created is set while the file has no backing file on disk.
	Created bool
	Unsaved bool

	opts      Options
	env       *env
	entries   []*entry.Entry
	comments  []string
	preambles []field.Value
	local     field.Table
	global    field.Table
}

// New wraps a parsed database. global holds the macros imported from string
// files; the database's own @strings become the file's local macros.
func New(name string, db *bibtex.Database, global field.Table, opts Options) *File {
	opts = opts.withDefaults()
	if db == nil {
		db = &bibtex.Database{}
	}
	f := &File{
		Name:      name,
		ShortName: filepath.Base(name),
		opts:      opts,
		comments:  append([]string(nil), db.Comments...),
		preambles: append([]field.Value(nil), db.Preambles...),
		local:     db.Strings.Clone(),
		global:    global,
	}
	f.env = &env{
		strings:    field.Overlay(f.local, f.global),
		writer:     opts.Writer,
		sortFields: opts.SortFields,
	}
	for _, r := range db.Entries {
		f.Append(r)
	}
	return f
}

// Append adds an entry at the next index. A nil record creates a blank entry
// of the default type.
func (f *File) Append(r *bibtex.Entry) *entry.Entry {
	if r == nil {
		r = bibtex.NewEntry(f.opts.DefaultType, "")
	}
	e := entry.New(len(f.entries), r, f.env)
	f.entries = append(f.entries, e)
	return e
}

// Entry returns the entry at index i, or nil.
func (f *File) Entry(i int) *entry.Entry {
	if i < 0 || i >= len(f.entries) {
		return nil
	}
	return f.entries[i]
}

// Entries returns every entry including deleted ones, in index order.
func (f *File) Entries() []*entry.Entry {
	return append([]*entry.Entry(nil), f.entries...)
}

// Active returns the entries that are not deleted, in index order.
func (f *File) Active() []*entry.Entry {
	out := make([]*entry.Entry, 0, len(f.entries))
	for _, e := range f.entries {
		if !e.Deleted {
			out = append(out, e)
		}
	}
	return out
}

func (f *File) Len() int { return len(f.entries) }

// IsEmpty reports whether the file has no live entries.
func (f *File) IsEmpty() bool {
	return len(f.Active()) == 0
}

// SetDeleted marks entry i. It reports whether the entry exists.
func (f *File) SetDeleted(i int, deleted bool) bool {
	e := f.Entry(i)
	if e == nil {
		return false
	}
	e.Deleted = deleted
	return true
}

func (f *File) SetUnsaved(unsaved bool) {
	f.Unsaved = unsaved
}

// Comments are the file's @comment blocks and free text.
func (f *File) Comments() []string {
	return append([]string(nil), f.comments...)
}

// Strings is the effective macro table: local definitions over global ones.
func (f *File) Strings() field.Table {
	return f.env.strings
}

// LocalStrings are the macros defined in the file itself.
func (f *File) LocalStrings() field.Table {
	return f.local.Clone()
}

// SetLocalStrings replaces the file's own macros and refreshes every entry.
func (f *File) SetLocalStrings(t field.Table) {
	f.local = t.Clone()
	f.refresh()
}

// SetGlobalStrings replaces the imported macros and refreshes every entry.
func (f *File) SetGlobalStrings(t field.Table) {
	f.global = t
	f.refresh()
}

func (f *File) refresh() {
	f.env.strings = field.Overlay(f.local, f.global)
	for _, e := range f.entries {
		e.Reencode()
	}
}

// DuplicateKeys returns the keys shared by several live entries, sorted.
func (f *File) DuplicateKeys() []string {
	counts := map[string]int{}
	for _, e := range f.Active() {
		counts[e.Key()]++
	}
	var dups []string
	for key, n := range counts {
		if n > 1 {
			dups = append(dups, key)
		}
	}
	sort.Strings(dups)
	return dups
}

// HasEmptyKeys reports whether a live entry has no key.
func (f *File) HasEmptyKeys() bool {
	for _, e := range f.Active() {
		if e.Key() == "" {
			return true
		}
	}
	return false
}

// keyTaken reports whether a live entry other than skip uses key.
func (f *File) keyTaken(key string, skip *entry.Entry) bool {
	for _, e := range f.entries {
		if e != skip && !e.Deleted && e.Key() == key {
			return true
		}
	}
	return false
}

// Sorter orders entries for writing.
type Sorter interface {
	Sort(entries []*entry.Entry)
}

// Serialize renders the file: comments, preambles, local macros, then the
// live entries in the order given by s. A nil Sorter keeps index order.
func (f *File) Serialize(s Sorter) string {
	entries := f.Active()
	if s != nil {
		s.Sort(entries)
	}
	sources := make([]string, 0, len(entries))
	for _, e := range entries {
		sources = append(sources, e.Source())
	}
	w := f.opts.Writer
	return bibtex.Join(
		w.Comments(f.comments),
		w.Preambles(f.preambles),
		w.Strings(f.local),
		strings.Join(sources, "\n"),
	)
}

// ParseEntry validates a single entry typed into a source editor. The file's
// macros are prepended so the fragment parses in the file's context.
func (f *File) ParseEntry(text string) (*bibtex.Entry, error) {
	db, err := bibtex.Parse(f.opts.Writer.Strings(f.Strings()) + text)
	if err != nil {
		return nil, err
	}
	if len(db.Entries) != 1 {
		return nil, fmt.Errorf("%w, got %d", ErrNotSingle, len(db.Entries))
	}
	return db.Entries[0], nil
}
