package entry

import (
	"fmt"
	"sort"
	"strings"

	"tableflip.dev/bib/pkg/bibtex"
	"tableflip.dev/bib/pkg/field"
	"tableflip.dev/bib/pkg/latex"
	"tableflip.dev/bib/pkg/names"
)

// Pseudo field names addressing the key and the entry type.
const (
	KeyField  = "ID"
	TypeField = "ENTRYTYPE"
)

// Sort sentinels. MaxChar sorts after any real value.
const (
	MinChar = ""
	MaxChar = "\U0010FFFF"
)

// DefaultSortFields are the fields with a cached sort value.
var DefaultSortFields = []string{KeyField, "author", "title", "journal", "year"}

// Env is what an entry needs from the collection that owns it.
type Env interface {
	Strings() field.Table
	Writer() *bibtex.Writer
	SortFields() []string
}

// Entry is one record of a collection, addressed by its Index.
type Entry struct {
	Index   int
	Deleted bool

	env    Env
	record *bibtex.Entry
	sort   map[string]string
	source string
}

// New wraps record. The sort cache and source text are derived immediately.
func New(index int, record *bibtex.Entry, env Env) *Entry {
	if record.Fields == nil {
		record.Fields = map[string]field.Value{}
	}
	e := &Entry{
		Index:  index,
		env:    env,
		record: record,
	}
	e.Refresh()
	return e
}

func (e *Entry) Key() string  { return e.record.Key }
func (e *Entry) Type() string { return e.record.Type }

// Value returns the stored value of name.
func (e *Entry) Value(name string) (field.Value, bool) {
	switch name {
	case KeyField:
		return field.Plain(e.record.Key), true
	case TypeField:
		return field.Plain(e.record.Type), true
	}
	v, ok := e.record.Fields[name]
	return v, ok
}

// Fields returns the names of the stored fields in sorted order.
func (e *Entry) Fields() []string {
	out := make([]string, 0, len(e.record.Fields))
	for name := range e.record.Fields {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Raw returns the unexpanded text of name with macros upper-cased.
func (e *Entry) Raw(name string) (string, bool) {
	v, ok := e.Value(name)
	if !ok {
		return "", false
	}
	return field.Raw(v), true
}

// Pretty returns the display text of name: macros expanded, LaTeX resolved
// and names normalized.
func (e *Entry) Pretty(name string) (string, bool) {
	v, ok := e.Value(name)
	if !ok {
		return "", false
	}
	return Prettify(name, latex.ToUnicode(field.Expand(v, e.env.Strings()))), true
}

// Prettify applies the per-field display rules to already expanded text.
func Prettify(name, value string) string {
	switch name {
	case "author", "editor":
		return names.Pretty(strings.ReplaceAll(value, "\n", " "))
	case KeyField, TypeField:
		return value
	}
	return latex.Clean(value)
}

// MacroStatus describes how a field relates to the macro table.
type MacroStatus int

const (
	MacroNone MacroStatus = iota
	MacroDefined
	MacroUndefined
)

// Macros reports whether name references macros and whether they resolve.
func (e *Entry) Macros(name string) MacroStatus {
	v, ok := e.Value(name)
	if !ok {
		return MacroNone
	}
	refs := field.Refs(v)
	if len(refs) == 0 {
		return MacroNone
	}
	strs := e.env.Strings()
	for _, r := range refs {
		if !strs.Has(r) {
			return MacroUndefined
		}
	}
	return MacroDefined
}

// Set stores text as the new value of name. Keys are stored verbatim, text
// naming known macros is encoded as an expression and empty text removes
// the field.
func (e *Entry) Set(name, text string) {
	switch name {
	case KeyField:
		e.record.Key = text
	case TypeField:
		if t := strings.ToLower(strings.TrimSpace(text)); t != "" {
			e.record.Type = t
		}
	default:
		if text == "" {
			delete(e.record.Fields, name)
		} else {
			e.record.Fields[name] = field.Encode(text, e.env.Strings())
		}
	}
	e.Refresh()
}

// SetValue stores v exactly; nil removes the field.
func (e *Entry) SetValue(name string, v field.Value) {
	switch name {
	case KeyField, TypeField:
		e.Set(name, field.Raw(v))
		return
	}
	if v == nil {
		delete(e.record.Fields, name)
	} else {
		e.record.Fields[name] = v
	}
	e.Refresh()
}

// Snapshot returns a copy of the underlying record.
func (e *Entry) Snapshot() *bibtex.Entry {
	return e.record.Clone()
}

// Restore replaces the whole record with a copy of r.
func (e *Entry) Restore(r *bibtex.Entry) {
	e.record = r.Clone()
	if e.record.Fields == nil {
		e.record.Fields = map[string]field.Value{}
	}
	e.Refresh()
}

// Source is the BibTeX text of the entry as the collection would write it.
func (e *Entry) Source() string {
	return e.source
}

// Reencode turns plain values naming a macro of the current table into
// expressions, then refreshes. Collections call it after their macro table
// changes.
func (e *Entry) Reencode() {
	table := e.env.Strings()
	for name, v := range e.record.Fields {
		if p, ok := v.(field.Plain); ok && field.ContainsMacro(string(p), table) {
			e.record.Fields[name] = field.Encode(string(p), table)
		}
	}
	e.Refresh()
}

// Refresh re-derives the sort cache and the source text.
func (e *Entry) Refresh() {
	e.sort = make(map[string]string, len(e.env.SortFields()))
	for _, name := range e.env.SortFields() {
		e.sort[name] = e.sortValue(name)
	}
	e.source = e.env.Writer().Entry(e.record)
}

// SortValue returns the cached sort value of name, computing it for fields
// outside of the cache.
func (e *Entry) SortValue(name string) string {
	if v, ok := e.sort[name]; ok {
		return v
	}
	return e.sortValue(name)
}

func (e *Entry) sortValue(name string) string {
	var value string
	switch name {
	case "author":
		value = strings.Join(e.LastNames(), "")
	case "journal":
		value = e.firstPretty("journal", "booktitle")
	case "year":
		value = e.firstPretty("year", "date")
	default:
		value, _ = e.Pretty(name)
	}
	value = strings.ToLower(value)
	if value == "" {
		return MaxChar
	}
	return value
}

func (e *Entry) firstPretty(names ...string) string {
	for _, name := range names {
		if v, ok := e.Pretty(name); ok {
			return v
		}
	}
	return ""
}

// LastNames returns the family name of each parsable author.
func (e *Entry) LastNames() []string {
	pretty, ok := e.Pretty("author")
	if !ok || pretty == "" {
		return nil
	}
	families := names.Families(strings.ReplaceAll(pretty, "\\", ""))
	for i, f := range families {
		families[i] = strings.Trim(f, "{}[]()\"'.,;")
	}
	return families
}

// Row returns the columns used by listings.
func (e *Entry) Row() (string, string, string, string, string) {
	author, _ := e.Pretty("author")
	title, _ := e.Pretty("title")
	year := e.firstPretty("year", "date")
	return e.record.Key, e.record.Type, author, title, year
}

func (e *Entry) String() string {
	return fmt.Sprintf("@%s{%s}", e.record.Type, e.record.Key)
}
