package printers

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/bib/pkg/entry"
	"tableflip.dev/bib/pkg/field"
	"tableflip.dev/bib/pkg/session"
	"tableflip.dev/bib/pkg/timeutil"
)

type PrettyPrint struct {
	Out       io.Writer
	ShowIndex bool
}

var (
	titleColor   = color.New(color.Bold, color.Underline)
	faintColor   = color.New(color.Faint)
	noneColor    = color.New(color.Faint, color.Italic)
	keyColor     = color.New(color.FgCyan)
	indexColor   = color.New(color.FgHiYellow, color.Italic, color.Faint)
	missingColor = color.New(color.FgRed)
	warnColor    = color.New(color.FgYellow)
)

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out == nil {
		return color.Output
	}
	return pp.Out
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.out())
}

func (pp *PrettyPrint) Title(title string) {
	_, _ = titleColor.Fprintln(pp.out(), title)
}

func (pp *PrettyPrint) TitleWithCount(title string, count int) {
	w := pp.out()
	_, _ = titleColor.Fprint(w, title)
	_, _ = faintColor.Fprintf(w, " - %d", count)

	switch count {
	case 1:
		_, _ = faintColor.Fprintln(w, " entry")
	default:
		_, _ = faintColor.Fprintln(w, " entries")
	}
}

func (pp *PrettyPrint) none() {
	_, _ = noneColor.Fprint(pp.out(), " none\n\n")
}

func newTable(sep string) *uitable.Table {
	tbl := uitable.New()
	tbl.Separator = sep
	tbl.MaxColWidth = 60
	return tbl
}

// Entries writes one row per entry: key, type, authors, title and year.
func (pp *PrettyPrint) Entries(entries ...*entry.Entry) {
	if len(entries) == 0 {
		pp.none()
		return
	}

	tbl := newTable("  ")
	for _, e := range entries {
		key, typ, author, title, year := e.Row()
		if key == "" {
			key = missingColor.Sprint("<no key>")
		} else {
			key = keyColor.Sprint(key)
		}
		if pp.ShowIndex {
			tbl.AddRow(indexColor.Sprint(strconv.Itoa(e.Index)), key, typ, author, title, year)
			continue
		}
		tbl.AddRow(key, typ, author, title, year)
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

// Fields writes every field of e with its display value. Fields referencing
// undefined macros are highlighted.
func (pp *PrettyPrint) Fields(e *entry.Entry) {
	pp.Title(e.String())

	tbl := newTable(" = ")
	tbl.MaxColWidth = 80
	tbl.Wrap = true
	for _, name := range e.Fields() {
		pretty, _ := e.Pretty(name)
		if e.Macros(name) == entry.MacroUndefined {
			pretty = warnColor.Sprint(pretty)
		}
		tbl.AddRow(name, pretty)
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

// Source writes the BibTeX text of e.
func (pp *PrettyPrint) Source(e *entry.Entry) {
	_, _ = fmt.Fprint(pp.out(), e.Source())
}

// Recent lists recently closed files with their age.
func (pp *PrettyPrint) Recent(now time.Time, recent ...session.Recent) {
	pp.TitleWithCount("Recent files", len(recent))
	if len(recent) == 0 {
		pp.none()
		return
	}
	tbl := newTable("  ")
	for _, r := range recent {
		tbl.AddRow(r.Name, faintColor.Sprint(timeutil.Ago(now, r.Closed.Time)))
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

// Strings writes a macro table with expanded values.
func (pp *PrettyPrint) Strings(title string, table field.Table) {
	names := table.Names()
	pp.TitleWithCount(title, len(names))
	if len(names) == 0 {
		pp.none()
		return
	}
	tbl := newTable(" = ")
	for _, name := range names {
		tbl.AddRow(keyColor.Sprint(name), field.Expand(table[name], table))
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

// Problems writes one line per finding under a title, or a faint "none".
func (pp *PrettyPrint) Problems(title string, problems ...string) {
	pp.Title(title)
	if len(problems) == 0 {
		pp.none()
		return
	}
	for _, p := range problems {
		_, _ = warnColor.Fprintf(pp.out(), "  %s\n", p)
	}
	pp.NewLine()
}
