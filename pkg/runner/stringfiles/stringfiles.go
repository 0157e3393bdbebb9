package stringfiles

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"

	"tableflip.dev/bib/pkg/app"
	"tableflip.dev/bib/pkg/field"
	"tableflip.dev/bib/pkg/printers"
	"tableflip.dev/bib/pkg/runner"
	"tableflip.dev/bib/pkg/store"
)

// Strings imports string files and prints the resulting macro table. With
// Remember the remembered string files are loaded first and the new set is
// stored for the next session. With File the @string definitions of that
// file are changed by Set and Unset and the file is saved.
type Strings struct {
	Service    *app.Service
	Import     []string
	Forget     []string
	Remember   bool
	Duplicates bool
	File       string
	Set        map[string]string
	Unset      []string
	Force      bool
	JSON       bool
	Out        io.Writer
	Encode     func(any) error
}

// Table is the JSON form of the macro table.
type Table struct {
	Files      []string          `json:"files"`
	Status     map[string]string `json:"status,omitempty"`
	Strings    map[string]string `json:"strings"`
	Local      map[string]string `json:"local,omitempty"`
	Duplicates []string          `json:"duplicates,omitempty"`
}

func (n *Strings) Do(ctx context.Context) error {
	if n.Service == nil {
		return runner.ErrNoService
	}
	if n.Remember {
		if _, _, err := n.Service.Restore(); err != nil {
			return err
		}
	}

	status := map[string]string{}
	var failed []string
	for _, path := range n.Import {
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		s := n.Service.ImportStrings(abs)
		status[abs] = s.String()
		if s != store.StringsImported {
			failed = append(failed, abs)
		}
	}
	for _, path := range n.Forget {
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		n.Service.Store.RemoveStrings(abs)
	}
	if n.Remember {
		if err := n.Service.RememberStringFiles(); err != nil {
			return err
		}
	}

	var (
		local field.Table
		dups  []string
	)
	if n.File != "" {
		d, err := n.updateFile()
		if err != nil {
			return err
		}
		local = d.File.LocalStrings()
		// Duplicates are always reported after a change.
		dups = n.Service.Store.DuplicateStrings()
	} else if n.Duplicates {
		dups = n.Service.Store.DuplicateStrings()
	}
	global := n.Service.Store.GlobalStrings()

	if n.JSON && n.Encode != nil {
		t := Table{
			Files:      n.Service.Store.StringFiles(),
			Status:     status,
			Strings:    map[string]string{},
			Duplicates: dups,
		}
		for _, name := range global.Names() {
			t.Strings[name] = field.Expand(global[name], global)
		}
		if local != nil {
			t.Local = map[string]string{}
			for _, name := range local.Names() {
				t.Local[name] = field.Raw(local[name])
			}
		}
		return n.Encode(t)
	}

	out := n.Out
	if out == nil {
		out = color.Output
	}
	for _, path := range n.Import {
		abs, _ := filepath.Abs(path)
		_, _ = fmt.Fprintf(out, "%s: %s\n", abs, status[abs])
	}
	pp := printers.PrettyPrint{Out: n.Out}
	pp.Strings("Strings", global)
	if local != nil {
		pp.Strings(filepath.Base(n.File), local)
	}
	if n.Duplicates || len(dups) > 0 {
		pp.Problems("Defined more than once", dups...)
	}
	if len(failed) > 0 {
		return fmt.Errorf("strings: could not import %d file(s)", len(failed))
	}
	return nil
}

// updateFile applies Set and Unset to the local strings of File and saves it.
func (n *Strings) updateFile() (*app.Document, error) {
	docs, err := runner.Open(n.Service, n.File)
	if err != nil {
		return nil, err
	}
	d := docs[0]
	if _, err := n.Service.UpdateStrings(d.Name(), n.Set, n.Unset); err != nil {
		return nil, err
	}
	ok, err := n.Service.Save(d.Name(), &runner.Prompter{Force: n.Force})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("strings: %s was not saved", d.Name())
	}
	return d, nil
}
