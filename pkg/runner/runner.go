// Package runner holds what the command runners share: opening the files
// named on the command line and answering the save questions without a
// terminal.
package runner

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"tableflip.dev/bib/pkg/app"
	"tableflip.dev/bib/pkg/entry"
)

var (
	ErrNoService = errors.New("runner: no service")
	ErrNoEntry   = errors.New("runner: no such entry")
)

// Open opens the named files synchronously and returns their documents in
// the given order. Failures are joined into one error.
func Open(svc *app.Service, names ...string) ([]*app.Document, error) {
	if svc == nil {
		return nil, ErrNoService
	}
	paths := make([]string, 0, len(names))
	seen := map[string]bool{}
	for _, name := range names {
		abs, err := filepath.Abs(name)
		if err != nil {
			return nil, err
		}
		if seen[abs] || svc.Document(abs) != nil {
			seen[abs] = true
			continue
		}
		seen[abs] = true
		paths = append(paths, abs)
	}

	var errs []error
	for _, r := range svc.OpenNow(app.Requests(paths...)...) {
		if !r.OK() && r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	docs := make([]*app.Document, 0, len(names))
	for _, name := range names {
		abs, _ := filepath.Abs(name)
		if d := svc.Document(abs); d != nil && seen[abs] {
			docs = append(docs, d)
			delete(seen, abs)
		}
	}
	return docs, nil
}

// Find returns the active entry with key, or the entry at index when key is
// empty.
func Find(d *app.Document, key string, index int) (*entry.Entry, error) {
	if key == "" {
		if e := d.File.Entry(index); e != nil && !e.Deleted {
			return e, nil
		}
		return nil, fmt.Errorf("%w: %s #%d", ErrNoEntry, d.Name(), index)
	}
	for _, e := range d.File.Active() {
		if e.Key() == key {
			return e, nil
		}
	}
	return nil, fmt.Errorf("%w: %s %q", ErrNoEntry, d.Name(), key)
}

// Prompter answers the save questions of app.Service for non-interactive
// commands. Files with empty or duplicate keys are only written when Force
// is set; the problems are reported either way.
type Prompter struct {
	Force bool
	Out   io.Writer
}

var _ app.Prompter = (*Prompter)(nil)

func (p *Prompter) out() io.Writer {
	if p.Out == nil {
		return color.Error
	}
	return p.Out
}

func (p *Prompter) SaveChanges(*app.Document) app.Answer {
	return app.AnswerSave
}

func (p *Prompter) ConfirmSave(d *app.Document, emptyKeys bool, duplicates []string) bool {
	warn := color.New(color.FgYellow)
	if emptyKeys {
		_, _ = warn.Fprintf(p.out(), "%s: some entries have no key\n", d.Name())
	}
	if len(duplicates) > 0 {
		_, _ = warn.Fprintf(p.out(), "%s: duplicate keys: %s\n", d.Name(), strings.Join(duplicates, ", "))
	}
	if !p.Force {
		_, _ = warn.Fprintln(p.out(), "not saved, use --force to save anyway")
	}
	return p.Force
}

func (p *Prompter) SaveName(*app.Document) string {
	return ""
}
