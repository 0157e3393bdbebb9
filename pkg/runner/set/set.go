package set

import (
	"context"
	"fmt"

	"tableflip.dev/bib/pkg/app"
	"tableflip.dev/bib/pkg/runner"
)

// Set changes one field of an entry, or replaces the entry by Source, and
// saves the file.
type Set struct {
	Service *app.Service
	File    string
	Key     string
	Index   int
	Field   string
	Value   string
	Source  string
	Force   bool
}

func (n *Set) Do(ctx context.Context) error {
	docs, err := runner.Open(n.Service, n.File)
	if err != nil {
		return err
	}
	d := docs[0]
	e, err := runner.Find(d, n.Key, n.Index)
	if err != nil {
		return err
	}

	if n.Source != "" {
		err = n.Service.ReplaceSource(d.Name(), e.Index, n.Source)
	} else {
		err = n.Service.EditField(d.Name(), e.Index, n.Field, n.Value)
	}
	if err != nil {
		return err
	}

	ok, err := n.Service.Save(d.Name(), &runner.Prompter{Force: n.Force})
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("set: %s was not saved", d.Name())
	}
	return nil
}
