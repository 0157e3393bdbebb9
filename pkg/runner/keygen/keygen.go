package keygen

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"

	"tableflip.dev/bib/pkg/app"
	"tableflip.dev/bib/pkg/runner"
)

// KeyGen generates keys for the entries of a file and saves it. Only
// entries without a key are touched unless All is set.
type KeyGen struct {
	Service *app.Service
	File    string
	All     bool
	DryRun  bool
	Force   bool
	Out     io.Writer
}

func (n *KeyGen) Do(ctx context.Context) error {
	docs, err := runner.Open(n.Service, n.File)
	if err != nil {
		return err
	}
	d := docs[0]
	out := n.Out
	if out == nil {
		out = color.Output
	}

	changed := 0
	for _, e := range d.File.Active() {
		if e.Key() != "" && !n.All {
			continue
		}
		old := e.Key()
		key, err := n.Service.GenerateKey(d.Name(), e.Index)
		if err != nil {
			return err
		}
		if key == old {
			continue
		}
		changed++
		if old == "" {
			old = "<no key>"
		}
		_, _ = fmt.Fprintf(out, "%s -> %s\n", old, color.CyanString(key))
	}

	if changed == 0 || n.DryRun {
		return nil
	}
	ok, err := n.Service.Save(d.Name(), &runner.Prompter{Force: n.Force})
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("keygen: %s was not saved", d.Name())
	}
	return nil
}
