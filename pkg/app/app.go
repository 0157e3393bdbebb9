// Package app ties the store, the per-file views and undo buffers, the
// session and the file watchers together so the CLI and the terminal UI share
// one implementation of the editor workflows.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tableflip.dev/bib/pkg/bibtex"
	"tableflip.dev/bib/pkg/changelog"
	"tableflip.dev/bib/pkg/collection"
	"tableflip.dev/bib/pkg/collection/viewmodel"
	"tableflip.dev/bib/pkg/entry"
	"tableflip.dev/bib/pkg/field"
	"tableflip.dev/bib/pkg/logging"
	"tableflip.dev/bib/pkg/session"
	"tableflip.dev/bib/pkg/store"
)

var (
	ErrNotOpen   = errors.New("app: file not open")
	ErrNoEntry   = errors.New("app: no such entry")
	ErrCancelled = errors.New("app: cancelled")
)

// Document is an open file with its view and undo history.
type Document struct {
	File    *collection.File
	View    *viewmodel.View
	Changes *changelog.Buffer

	stopWatch context.CancelFunc
}

// Name is the file name of the document.
func (d *Document) Name() string { return d.File.Name }

// Rows returns the visible entries in display order.
func (d *Document) Rows() []*entry.Entry { return d.View.Rows(d.File) }

// Option customises New.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithSession enables remembering open and recent files.
func WithSession(sess *session.Session) Option {
	return func(s *Service) {
		s.session = sess
	}
}

// WithClock replaces time.Now in the undo buffers.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithoutWatch disables file watching.
func WithoutWatch() Option {
	return func(s *Service) {
		s.watch = false
	}
}

// Service provides the editor operations. It is not safe for concurrent use:
// every method must be called from the goroutine that owns the service.
// Only the callbacks passed to Open run elsewhere.
type Service struct {
	Store *store.Store

	session *session.Session
	log     logging.Logger
	now     func() time.Time
	watch   bool

	docs    map[string]*Document
	notices []Notice
	events  chan store.Event
	ctx     context.Context
}

// New returns a service over st.
func New(st *store.Store, opts ...Option) *Service {
	s := &Service{
		Store:  st,
		log:    logging.NewNop(),
		now:    time.Now,
		watch:  true,
		docs:   map[string]*Document{},
		events: make(chan store.Event, 16),
		ctx:    context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Events delivers file watcher events. Pass them to HandleEvent.
func (s *Service) Events() <-chan store.Event {
	return s.events
}

// Document returns the open document called name, or nil.
func (s *Service) Document(name string) *Document {
	return s.docs[name]
}

// Documents returns the open documents in the order they were opened.
func (s *Service) Documents() []*Document {
	var out []*Document
	for _, name := range s.Store.Names() {
		if d, ok := s.docs[name]; ok {
			out = append(out, d)
		}
	}
	return out
}

func (s *Service) doc(name string) (*Document, error) {
	d, ok := s.docs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotOpen, name)
	}
	return d, nil
}

func (s *Service) entry(name string, i int) (*Document, *entry.Entry, error) {
	d, err := s.doc(name)
	if err != nil {
		return nil, nil, err
	}
	e := d.File.Entry(i)
	if e == nil {
		return nil, nil, fmt.Errorf("%w: %s #%d", ErrNoEntry, name, i)
	}
	return d, e, nil
}

func (s *Service) attach(f *collection.File, state string) *Document {
	var opts []viewmodel.Option
	if state != "" {
		opts = append(opts, viewmodel.WithState(state))
	}
	d := &Document{
		File: f,
		View: viewmodel.New(opts...),
		Changes: changelog.New(f,
			changelog.WithDelay(s.Store.Config().UndoDelay),
			changelog.WithClock(s.now),
			changelog.WithObserver(&changeLogger{log: s.log.With("file", f.Name)}),
		),
	}
	s.docs[f.Name] = d
	return d
}

// NewFile creates an empty unsaved document.
func (s *Service) NewFile() *Document {
	return s.attach(s.Store.New(), "")
}

// AddEntries appends entries to a file as one undoable change. nil records
// create blank entries of the default type. It returns the new indices.
func (s *Service) AddEntries(name string, records ...*bibtex.Entry) ([]int, error) {
	d, err := s.doc(name)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		records = []*bibtex.Entry{nil}
	}
	indices := make([]int, 0, len(records))
	for _, r := range records {
		indices = append(indices, d.File.Append(r).Index)
	}
	d.Changes.Push(&changelog.Show{Indices: indices})
	return indices, nil
}

// Delete soft-deletes entries as one undoable change.
func (s *Service) Delete(name string, indices ...int) error {
	d, err := s.doc(name)
	if err != nil {
		return err
	}
	if len(indices) == 0 {
		return nil
	}
	d.Changes.Push(&changelog.Hide{Indices: indices})
	return nil
}

// EditField sets one field. Setting the current value is a no-op.
func (s *Service) EditField(name string, i int, fieldName, text string) error {
	d, e, err := s.entry(name, i)
	if err != nil {
		return err
	}
	if old, ok := e.Raw(fieldName); ok && old == text || !ok && text == "" {
		return nil
	}
	d.Changes.Push(changelog.NewEdit(e, fieldName, text))
	return nil
}

// ReplaceSource commits an edit of the BibTeX source of one entry. Text that
// does not parse as exactly one entry is rejected; text equal to the current
// entry changes nothing.
func (s *Service) ReplaceSource(name string, i int, text string) error {
	d, e, err := s.entry(name, i)
	if err != nil {
		return err
	}
	r, err := d.File.ParseEntry(text)
	if err != nil {
		return err
	}
	if bibtex.Equal(e.Snapshot(), r) {
		return nil
	}
	d.Changes.Push(changelog.NewReplace(e, r))
	return nil
}

// GenerateKey replaces the key of an entry by a generated one as an
// undoable edit and returns the new key.
func (s *Service) GenerateKey(name string, i int) (string, error) {
	d, e, err := s.entry(name, i)
	if err != nil {
		return "", err
	}
	key := d.File.GenerateKey(e)
	if key != e.Key() {
		d.Changes.Push(changelog.NewEdit(e, entry.KeyField, key))
	}
	return key, nil
}

// Undo reverts the last change of a file.
func (s *Service) Undo(name string) (bool, error) {
	d, err := s.doc(name)
	if err != nil {
		return false, err
	}
	return d.Changes.Undo(), nil
}

// Redo re-applies the next change of a file.
func (s *Service) Redo(name string) (bool, error) {
	d, err := s.doc(name)
	if err != nil {
		return false, err
	}
	return d.Changes.Redo(), nil
}

// ImportStrings imports a string file for all open files.
func (s *Service) ImportStrings(path string) store.StringStatus {
	status := s.Store.ImportStrings(path)
	s.log.Info(s.ctx, "import strings", "path", path, "status", status.String())
	return status
}

// UpdateStrings changes the @string definitions of an open file: set adds or
// replaces macros, unset removes them. A change leaves the file unsaved. It
// returns the macro names defined by more than one source afterwards.
func (s *Service) UpdateStrings(name string, set map[string]string, unset []string) ([]string, error) {
	d, err := s.doc(name)
	if err != nil {
		return nil, err
	}
	t := d.File.LocalStrings()
	changed := false
	for _, m := range unset {
		m = strings.ToLower(m)
		if _, ok := t[m]; ok {
			delete(t, m)
			changed = true
		}
	}
	for m, text := range set {
		m = strings.ToLower(m)
		v := field.Plain(text)
		if old, ok := t[m]; !ok || !field.Equal(old, v) {
			t[m] = v
			changed = true
		}
	}
	if changed {
		if err := s.Store.UpdateLocalStrings(name, t); err != nil {
			return nil, err
		}
		d.Changes.MarkUnsaved()
	}

	dups := s.Store.DuplicateStrings()
	s.log.Info(s.ctx, "update strings", "name", name, "changed", changed, "macros", len(t))
	if len(dups) > 0 {
		s.log.Warn(s.ctx, "strings defined more than once", "names", strings.Join(dups, ", "))
	}
	return dups, nil
}

// changeLogger records applied and reverted changes at debug level.
type changeLogger struct {
	log logging.Logger
}

func (c *changeLogger) Applied(ch changelog.Change, redo bool) {
	c.log.Debug(context.Background(), "change applied", "kind", ch.Kind().String(), "redo", redo)
}

func (c *changeLogger) Reverted(ch changelog.Change) {
	c.log.Debug(context.Background(), "change reverted", "kind", ch.Kind().String())
}
