package tui

import (
	"fmt"
	"strings"

	"tableflip.dev/bib/pkg/app"
)

type flowKind int

const (
	flowSave flowKind = iota
	flowClose
	flowQuit
)

type question int

const (
	askNothing question = iota
	askSaveChanges
	askConfirmSave
	askSaveName
)

// reply collects the answers for one document.
type reply struct {
	save      app.Answer
	asked     bool
	confirmed bool
	confirm   bool
	name      string
	named     bool
}

// flow walks the documents of a save, close or quit request one after the
// other. Every document gets its questions answered and is handled before
// the next one is asked about, so cancelling leaves the remaining documents
// untouched.
type flow struct {
	kind    flowKind
	names   []string
	pos     int
	replies map[string]*reply
}

func newFlow(kind flowKind, names ...string) *flow {
	return &flow{kind: kind, names: names, replies: map[string]*reply{}}
}

func (f *flow) current() string {
	if f.pos >= len(f.names) {
		return ""
	}
	return f.names[f.pos]
}

func (f *flow) reply(name string) *reply {
	r, ok := f.replies[name]
	if !ok {
		r = &reply{}
		if f.kind == flowSave {
			r.save = app.AnswerSave
			r.asked = true
		}
		f.replies[name] = r
	}
	return r
}

// next returns the question still open for the current document, or
// askNothing when it can be handled.
func (f *flow) next(d *app.Document) question {
	if d == nil {
		return askNothing
	}
	r := f.reply(d.Name())
	if f.kind != flowSave && !d.File.Unsaved {
		return askNothing
	}
	if !r.asked {
		return askSaveChanges
	}
	if r.save != app.AnswerSave {
		return askNothing
	}
	if !r.confirmed && (d.File.HasEmptyKeys() || len(d.File.DuplicateKeys()) > 0) {
		return askConfirmSave
	}
	if !r.named && d.File.Created {
		return askSaveName
	}
	return askNothing
}

func (f *flow) prompt(q question, d *app.Document) string {
	switch q {
	case askSaveChanges:
		return fmt.Sprintf("Save changes to %s? [y]es [n]o [c]ancel", d.File.ShortName)
	case askConfirmSave:
		var problems []string
		if d.File.HasEmptyKeys() {
			problems = append(problems, "entries without key")
		}
		if dups := d.File.DuplicateKeys(); len(dups) > 0 {
			problems = append(problems, "duplicate keys "+strings.Join(dups, ", "))
		}
		return fmt.Sprintf("%s has %s. Save anyway? [y]es [n]o", d.File.ShortName, strings.Join(problems, " and "))
	case askSaveName:
		return "Save as: "
	}
	return ""
}

// prompter replays the collected answers to the service.
type prompter struct {
	f *flow
}

var _ app.Prompter = prompter{}

func (p prompter) SaveChanges(d *app.Document) app.Answer {
	return p.f.reply(d.Name()).save
}

func (p prompter) ConfirmSave(d *app.Document, _ bool, _ []string) bool {
	r := p.f.reply(d.Name())
	return !r.confirmed || r.confirm
}

func (p prompter) SaveName(d *app.Document) string {
	return p.f.reply(d.Name()).name
}
