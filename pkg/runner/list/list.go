package list

import (
	"context"
	"io"

	"tableflip.dev/bib/pkg/app"
	"tableflip.dev/bib/pkg/collection/viewmodel"
	"tableflip.dev/bib/pkg/entry"
	"tableflip.dev/bib/pkg/printers"
	"tableflip.dev/bib/pkg/runner"
)

type List struct {
	Service   *app.Service
	Files     []string
	View      *viewmodel.View
	ShowIndex bool
	JSON      bool
	Out       io.Writer
	Encode    func(any) error
}

// Row is the JSON form of a listed entry.
type Row struct {
	Index  int    `json:"index"`
	Key    string `json:"key"`
	Type   string `json:"type"`
	Author string `json:"author,omitempty"`
	Title  string `json:"title,omitempty"`
	Year   string `json:"year,omitempty"`
}

// Listing is the JSON form of one file.
type Listing struct {
	File    string `json:"file"`
	Entries []Row  `json:"entries"`
}

func (n *List) Do(ctx context.Context) error {
	docs, err := runner.Open(n.Service, n.Files...)
	if err != nil {
		return err
	}

	pp := printers.PrettyPrint{Out: n.Out, ShowIndex: n.ShowIndex}
	var listings []Listing
	for _, d := range docs {
		if n.View != nil {
			view := *n.View
			d.View = &view
		}
		rows := d.Rows()
		if n.JSON {
			listings = append(listings, Listing{File: d.Name(), Entries: toRows(rows)})
			continue
		}
		pp.TitleWithCount(d.File.ShortName, len(rows))
		pp.Entries(rows...)
	}
	if n.JSON && n.Encode != nil {
		return n.Encode(listings)
	}
	return nil
}

func toRows(entries []*entry.Entry) []Row {
	out := make([]Row, 0, len(entries))
	for _, e := range entries {
		key, typ, author, title, year := e.Row()
		out = append(out, Row{Index: e.Index, Key: key, Type: typ, Author: author, Title: title, Year: year})
	}
	return out
}
