package check

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"tableflip.dev/bib/pkg/app"
	"tableflip.dev/bib/pkg/entry"
	"tableflip.dev/bib/pkg/printers"
	"tableflip.dev/bib/pkg/runner"
)

var ErrProblems = errors.New("check: problems found")

// Check reports entries without keys, keys used twice, fields referencing
// undefined macros and macros defined by more than one source.
type Check struct {
	Service *app.Service
	Files   []string
	Strings []string
	JSON    bool
	Out     io.Writer
	Encode  func(any) error
}

// Report is the result for one file.
type Report struct {
	File          string   `json:"file"`
	EmptyKeys     []string `json:"emptyKeys,omitempty"`
	DuplicateKeys []string `json:"duplicateKeys,omitempty"`
	Undefined     []string `json:"undefinedMacros,omitempty"`
}

func (r Report) count() int {
	return len(r.EmptyKeys) + len(r.DuplicateKeys) + len(r.Undefined)
}

// Result is everything Check found.
type Result struct {
	Files            []Report `json:"files"`
	DuplicateStrings []string `json:"duplicateStrings,omitempty"`
}

func (n *Check) Do(ctx context.Context) error {
	if n.Service == nil {
		return runner.ErrNoService
	}
	for _, path := range n.Strings {
		n.Service.ImportStrings(path)
	}
	docs, err := runner.Open(n.Service, n.Files...)
	if err != nil {
		return err
	}

	res := Result{DuplicateStrings: n.Service.Store.DuplicateStrings()}
	problems := len(res.DuplicateStrings)
	for _, d := range docs {
		r := inspect(d)
		problems += r.count()
		res.Files = append(res.Files, r)
	}

	if n.JSON && n.Encode != nil {
		if err := n.Encode(res); err != nil {
			return err
		}
	} else {
		pp := printers.PrettyPrint{Out: n.Out}
		for _, r := range res.Files {
			pp.TitleWithCount(r.File, r.count())
			pp.Problems("Entries without key", r.EmptyKeys...)
			pp.Problems("Duplicate keys", r.DuplicateKeys...)
			pp.Problems("Undefined macros", r.Undefined...)
		}
		pp.Problems("Strings defined more than once", res.DuplicateStrings...)
	}

	if problems > 0 {
		return fmt.Errorf("%w: %d", ErrProblems, problems)
	}
	return nil
}

func inspect(d *app.Document) Report {
	r := Report{File: d.Name(), DuplicateKeys: d.File.DuplicateKeys()}
	for _, e := range d.File.Active() {
		if e.Key() == "" {
			r.EmptyKeys = append(r.EmptyKeys, "#"+strconv.Itoa(e.Index)+" "+e.String())
		}
		for _, name := range e.Fields() {
			if e.Macros(name) == entry.MacroUndefined {
				raw, _ := e.Raw(name)
				r.Undefined = append(r.Undefined, fmt.Sprintf("%s %s = %s", label(e), name, raw))
			}
		}
	}
	return r
}

func label(e *entry.Entry) string {
	if e.Key() == "" {
		return "#" + strconv.Itoa(e.Index)
	}
	return e.Key()
}
