package format

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"

	"tableflip.dev/bib/pkg/app"
	"tableflip.dev/bib/pkg/collection/viewmodel"
	"tableflip.dev/bib/pkg/runner"
)

// Format rewrites files with the configured layout, ordered by View.
type Format struct {
	Service *app.Service
	Files   []string
	View    *viewmodel.View
	Stdout  bool
	Force   bool
	Out     io.Writer
}

func (n *Format) Do(ctx context.Context) error {
	docs, err := runner.Open(n.Service, n.Files...)
	if err != nil {
		return err
	}
	out := n.Out
	if out == nil {
		out = color.Output
	}

	p := &runner.Prompter{Force: n.Force}
	for _, d := range docs {
		if n.View != nil {
			view := *n.View
			d.View = &view
		}
		if n.Stdout {
			_, _ = fmt.Fprint(out, d.File.Serialize(d.View))
			continue
		}
		d.Changes.MarkUnsaved()
		ok, err := n.Service.Save(d.Name(), p)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("fmt: %s was not saved", d.Name())
		}
	}
	return nil
}
