// Package types prints the legend of entry types the filters know.
package types

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/bib/pkg/app"
	"tableflip.dev/bib/pkg/collection"
	"tableflip.dev/bib/pkg/runner"
)

// Types lists every entry type with its meaning and, for each file given,
// how many of its entries fall into the type.
type Types struct {
	Service *app.Service
	Files   []string
	JSON    bool
	Out     io.Writer
	Encode  func(any) error
}

// Row is one type in JSON output.
type Row struct {
	Type    string         `json:"type"`
	Meaning string         `json:"meaning"`
	Counts  map[string]int `json:"counts,omitempty"`
}

// Do renders the legend.
func (n *Types) Do(ctx context.Context) error {
	var docs []*app.Document
	if len(n.Files) > 0 {
		var err error
		if docs, err = runner.Open(n.Service, n.Files...); err != nil {
			return err
		}
	}

	rows := make([]Row, 0, len(collection.AllTypes()))
	for _, t := range collection.AllTypes() {
		r := Row{Type: string(t), Meaning: t.Description()}
		if len(docs) > 0 {
			r.Counts = map[string]int{}
			for _, d := range docs {
				r.Counts[d.Name()] = count(d, t)
			}
		}
		rows = append(rows, r)
	}
	if n.JSON && n.Encode != nil {
		return n.Encode(rows)
	}

	out := n.Out
	if out == nil {
		out = color.Output
	}
	bold := color.New(color.Bold)

	tbl := uitable.New()
	tbl.Separator = "  "
	header := []interface{}{bold.Sprint("Type"), bold.Sprint("Meaning")}
	for _, d := range docs {
		header = append(header, bold.Sprint(d.File.ShortName))
	}
	tbl.AddRow(header...)
	for _, r := range rows {
		cells := []interface{}{r.Type, r.Meaning}
		for _, d := range docs {
			cells = append(cells, r.Counts[d.Name()])
		}
		tbl.AddRow(cells...)
	}
	for i := range docs {
		tbl.RightAlign(i + 2)
	}

	_, err := fmt.Fprintln(out, tbl)
	return err
}

func count(d *app.Document, t collection.Type) int {
	n := 0
	for _, e := range d.File.Active() {
		if collection.Classify(e.Type()) == t {
			n++
		}
	}
	return n
}
