package show

import (
	"context"
	"io"

	"tableflip.dev/bib/pkg/app"
	"tableflip.dev/bib/pkg/printers"
	"tableflip.dev/bib/pkg/runner"
)

type Show struct {
	Service *app.Service
	File    string
	Key     string
	Index   int
	Source  bool
	JSON    bool
	Out     io.Writer
	Encode  func(any) error
}

// Fields is the JSON form of a shown entry.
type Fields struct {
	Key    string            `json:"key"`
	Type   string            `json:"type"`
	Raw    map[string]string `json:"raw"`
	Pretty map[string]string `json:"pretty"`
	Source string            `json:"source"`
}

func (n *Show) Do(ctx context.Context) error {
	docs, err := runner.Open(n.Service, n.File)
	if err != nil {
		return err
	}
	e, err := runner.Find(docs[0], n.Key, n.Index)
	if err != nil {
		return err
	}

	if n.JSON && n.Encode != nil {
		out := Fields{
			Key:    e.Key(),
			Type:   e.Type(),
			Raw:    map[string]string{},
			Pretty: map[string]string{},
			Source: e.Source(),
		}
		for _, name := range e.Fields() {
			out.Raw[name], _ = e.Raw(name)
			out.Pretty[name], _ = e.Pretty(name)
		}
		return n.Encode(out)
	}

	pp := printers.PrettyPrint{Out: n.Out}
	if n.Source {
		pp.Source(e)
		return nil
	}
	pp.Fields(e)
	return nil
}
