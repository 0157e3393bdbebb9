package bibtex

import (
	"sort"
	"strings"

	"tableflip.dev/bib/pkg/field"
)

// Writer formats entries and blocks. The zero value writes unaligned fields
// indented by a single space.
type Writer struct {
	// Indent precedes every field line.
	Indent string
	// Align pads field names so that the '=' signs line up.
	Align bool
	// Order lists fields written first; the rest follow alphabetically.
	Order []string
}

func (w *Writer) indent() string {
	if w == nil || w.Indent == "" {
		return " "
	}
	return w.Indent
}

// FieldNames returns the names of e in write order.
func (w *Writer) FieldNames(e *Entry) []string {
	names := make([]string, 0, len(e.Fields))
	seen := map[string]bool{}
	if w != nil {
		for _, name := range w.Order {
			if _, ok := e.Fields[name]; ok && !seen[name] {
				names = append(names, name)
				seen[name] = true
			}
		}
	}
	rest := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}

// Entry formats a single entry, terminated by a newline.
func (w *Writer) Entry(e *Entry) string {
	var b strings.Builder
	b.WriteString("@")
	b.WriteString(e.Type)
	b.WriteString("{")
	b.WriteString(e.Key)

	names := w.FieldNames(e)
	width := 0
	if w != nil && w.Align {
		for _, name := range names {
			if len(name) > width {
				width = len(name)
			}
		}
	}
	for _, name := range names {
		b.WriteString(",\n")
		b.WriteString(w.indent())
		b.WriteString(name)
		if pad := width - len(name); pad > 0 {
			b.WriteString(strings.Repeat(" ", pad))
		}
		b.WriteString(" = ")
		b.WriteString(Value(e.Fields[name]))
	}
	b.WriteString("\n}\n")
	return b.String()
}

// Strings formats @string definitions in name order.
func (w *Writer) Strings(t field.Table) string {
	var b strings.Builder
	for _, name := range t.Names() {
		b.WriteString("@string{")
		b.WriteString(name)
		b.WriteString(" = ")
		b.WriteString(Value(t[name]))
		b.WriteString("}\n")
	}
	return b.String()
}

// Comments formats @comment blocks.
func (w *Writer) Comments(comments []string) string {
	var b strings.Builder
	for _, c := range comments {
		b.WriteString("@comment{")
		b.WriteString(c)
		b.WriteString("}\n")
	}
	return b.String()
}

// Preambles formats @preamble blocks.
func (w *Writer) Preambles(preambles []field.Value) string {
	var b strings.Builder
	for _, v := range preambles {
		b.WriteString("@preamble{")
		b.WriteString(Value(v))
		b.WriteString("}\n")
	}
	return b.String()
}

// Document renders db with its entries in slice order.
func (w *Writer) Document(db *Database) string {
	entries := make([]string, 0, len(db.Entries))
	for _, e := range db.Entries {
		entries = append(entries, w.Entry(e))
	}
	return Join(
		w.Comments(db.Comments),
		w.Preambles(db.Preambles),
		w.Strings(db.Strings),
		strings.Join(entries, "\n"),
	)
}

// Join concatenates the non-empty sections separated by blank lines.
func Join(sections ...string) string {
	parts := make([]string, 0, len(sections))
	for _, s := range sections {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}

// Value renders a field value in BibTeX syntax.
func Value(v field.Value) string {
	switch v := v.(type) {
	case field.Plain:
		return "{" + string(v) + "}"
	case field.Expr:
		parts := make([]string, 0, len(v))
		for _, seg := range v {
			switch seg := seg.(type) {
			case field.Literal:
				parts = append(parts, "{"+string(seg)+"}")
			case field.Ref:
				parts = append(parts, string(seg))
			}
		}
		return strings.Join(parts, " # ")
	}
	return "{}"
}
