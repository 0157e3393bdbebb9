package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/bib/pkg/bibtex"
	"tableflip.dev/bib/pkg/entry"
	"tableflip.dev/bib/pkg/field"
	"tableflip.dev/bib/pkg/session"
	"tableflip.dev/bib/pkg/store"
)

// fakePrompter answers from fixed replies and records what it was asked.
type fakePrompter struct {
	answers  []Answer
	confirm  bool
	name     string
	asked    []string
	confirms int
}

func (p *fakePrompter) SaveChanges(d *Document) Answer {
	p.asked = append(p.asked, d.Name())
	if len(p.answers) == 0 {
		return AnswerCancel
	}
	a := p.answers[0]
	p.answers = p.answers[1:]
	return a
}

func (p *fakePrompter) ConfirmSave(*Document, bool, []string) bool {
	p.confirms++
	return p.confirm
}

func (p *fakePrompter) SaveName(*Document) string {
	return p.name
}

func testConfig() store.Config {
	cfg := store.DefaultConfig()
	cfg.CreateBackup = false
	return cfg
}

func newService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	return New(store.New(testConfig()), append([]Option{WithoutWatch()}, opts...)...)
}

func writeBib(t *testing.T, dir, name, text string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func openOne(t *testing.T, s *Service, name string) *Document {
	t.Helper()
	results := s.OpenNow(OpenRequest{Name: name})
	require.Len(t, results, 1)
	require.True(t, results[0].OK(), "open %s: %v", name, results[0].Err)
	return s.Document(name)
}

func TestOpenInBackground(t *testing.T) {
	dir := t.TempDir()
	a := writeBib(t, dir, "a.bib", "@article{a1, title = {One}}\n")
	b := writeBib(t, dir, "b.bib", "@article{b1,}\n@book{b2,}\n")
	missing := filepath.Join(dir, "missing.bib")
	bad := writeBib(t, dir, "bad.bib", "@article{x, title = {")

	s := newService(t)
	done := make(chan []Opened, 1)
	s.Open(context.Background(), []OpenRequest{
		{Name: a, State: "title|true"},
		{Name: b},
		{Name: missing},
		{Name: bad},
	}, func(o []Opened) { done <- o })

	var opened []Opened
	select {
	case opened = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("open did not call back")
	}
	results := s.Finish(opened)
	require.Len(t, results, 4)

	assert.Equal(t, []string{a, b}, s.Store.Names())
	assert.Equal(t, "title", s.Document(a).View.SortKey)
	assert.True(t, s.Document(a).View.Descending)
	assert.Len(t, s.Document(b).Rows(), 2)

	general := s.Notices("")
	require.Len(t, general, 1, "failures are batched into one notice")
	assert.Equal(t, NoticeOpenFailed, general[0].Kind)
	assert.Contains(t, general[0].Message, missing)
	assert.Contains(t, general[0].Message, bad)
}

func TestOpenAlreadyOpen(t *testing.T) {
	dir := t.TempDir()
	a := writeBib(t, dir, "a.bib", "@article{a1,}\n")
	s := newService(t)
	d := openOne(t, s, a)

	results := s.OpenNow(OpenRequest{Name: a})
	assert.True(t, results[0].Status.Has(store.StatusAlreadyOpen))
	assert.Same(t, d, s.Document(a))
	assert.Empty(t, s.AllNotices())
}

func TestOpenReplacesUntouchedNewFile(t *testing.T) {
	dir := t.TempDir()
	a := writeBib(t, dir, "a.bib", "@article{a1,}\n")
	s := newService(t)
	s.NewFile()
	openOne(t, s, a)
	assert.Equal(t, []string{a}, s.Store.Names())
}

func TestOpenEmptyFileNotice(t *testing.T) {
	dir := t.TempDir()
	a := writeBib(t, dir, "a.bib", "")
	s := newService(t)
	openOne(t, s, a)
	notices := s.Notices(a)
	require.Len(t, notices, 1)
	assert.Equal(t, NoticeEmpty, notices[0].Kind)

	assert.True(t, s.Dismiss(notices[0].ID))
	assert.Empty(t, s.Notices(a))
	assert.False(t, s.Dismiss(notices[0].ID))
}

func TestEditUndoRedo(t *testing.T) {
	dir := t.TempDir()
	a := writeBib(t, dir, "a.bib", "@article{E, title = {Foo}}\n")
	s := newService(t)
	d := openOne(t, s, a)

	require.NoError(t, s.EditField(a, 0, "title", "Foobar"))
	assert.True(t, d.File.Unsaved)
	title, _ := d.File.Entry(0).Raw("title")
	assert.Equal(t, "Foobar", title)

	require.NoError(t, s.EditField(a, 0, "title", "Foobar"))
	assert.Equal(t, 1, d.Changes.Len(), "setting the same value is a no-op")

	ok, err := s.Undo(a)
	require.NoError(t, err)
	assert.True(t, ok)
	title, _ = d.File.Entry(0).Raw("title")
	assert.Equal(t, "Foo", title)
	assert.Contains(t, d.File.Entry(0).Source(), "{Foo}")
	assert.False(t, d.File.Unsaved)

	ok, err = s.Redo(a)
	require.NoError(t, err)
	assert.True(t, ok)
	title, _ = d.File.Entry(0).Raw("title")
	assert.Equal(t, "Foobar", title)

	assert.ErrorIs(t, s.EditField(a, 7, "title", "x"), ErrNoEntry)
	assert.ErrorIs(t, s.EditField("nope.bib", 0, "title", "x"), ErrNotOpen)
}

func TestUpdateStrings(t *testing.T) {
	dir := t.TempDir()
	strs := writeBib(t, dir, "strings.bib", "@string{acm = {ACM}}\n")
	a := writeBib(t, dir, "a.bib", "@string{old = {Old}}\n@article{E, journal = {jacm}}\n")
	s := newService(t)
	d := openOne(t, s, a)
	require.Equal(t, store.StringsImported, s.ImportStrings(strs))

	dups, err := s.UpdateStrings(a, map[string]string{"JACM": "J. ACM", "acm": "Local ACM"}, []string{"old"})
	require.NoError(t, err)
	assert.Equal(t, []string{"acm"}, dups)
	assert.True(t, d.File.Unsaved)
	assert.Equal(t, field.Table{"jacm": field.Plain("J. ACM"), "acm": field.Plain("Local ACM")}, d.File.LocalStrings())

	e := d.File.Entry(0)
	journal, _ := e.Pretty("journal")
	assert.Equal(t, "J. ACM", journal)

	ok, err := s.Save(a, &fakePrompter{})
	require.NoError(t, err)
	require.True(t, ok)
	data, err := os.ReadFile(a)
	require.NoError(t, err)
	assert.Contains(t, string(data), "@string{jacm = {J. ACM}}")
	assert.NotContains(t, string(data), "Old")

	_, err = s.UpdateStrings(a, map[string]string{"jacm": "J. ACM"}, []string{"missing"})
	require.NoError(t, err)
	assert.False(t, d.File.Unsaved, "setting the same value is a no-op")

	_, err = s.UpdateStrings("nope.bib", nil, []string{"x"})
	assert.ErrorIs(t, err, ErrNotOpen)
}

func TestAddAndDelete(t *testing.T) {
	dir := t.TempDir()
	a := writeBib(t, dir, "a.bib", "@article{E,}\n")
	s := newService(t)
	d := openOne(t, s, a)

	record := bibtex.NewEntry("book", "B")
	record.Fields["title"] = field.Plain("Title")
	indices, err := s.AddEntries(a, nil, record)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, indices)
	assert.Equal(t, "article", d.File.Entry(1).Type())
	assert.Len(t, d.Rows(), 3)

	// The blank entry has no key and therefore sorts first.
	assert.Equal(t, "", d.Rows()[0].Key())

	_, err = s.Undo(a)
	require.NoError(t, err)
	assert.Len(t, d.Rows(), 1, "undoing an insert hides the entries")

	_, err = s.Redo(a)
	require.NoError(t, err)
	require.NoError(t, s.Delete(a, 0, 2))
	assert.Len(t, d.Rows(), 1)
	_, err = s.Undo(a)
	require.NoError(t, err)
	assert.Len(t, d.Rows(), 3)
}

func TestReplaceSource(t *testing.T) {
	dir := t.TempDir()
	a := writeBib(t, dir, "a.bib", "@article{E, title = {Foo}}\n")
	s := newService(t)
	d := openOne(t, s, a)
	e := d.File.Entry(0)

	require.Error(t, s.ReplaceSource(a, 0, "@article{E, title = {Foo}"))
	require.NoError(t, s.ReplaceSource(a, 0, e.Source()))
	assert.Equal(t, 0, d.Changes.Len(), "an unchanged source is not a change")

	require.NoError(t, s.ReplaceSource(a, 0, "@book{F, title = {Bar}, year = 2001}"))
	assert.Equal(t, "F", e.Key())
	assert.Equal(t, "book", e.Type())

	_, err := s.Undo(a)
	require.NoError(t, err)
	assert.Equal(t, "E", e.Key())
	_, ok := e.Value("year")
	assert.False(t, ok)
}

func TestGenerateKeyIsUndoable(t *testing.T) {
	dir := t.TempDir()
	a := writeBib(t, dir, "a.bib", "@article{tmp, author = {Smith, John}, year = 2020}\n")
	s := newService(t)
	d := openOne(t, s, a)

	key, err := s.GenerateKey(a, 0)
	require.NoError(t, err)
	assert.Equal(t, "Smith2020", key)
	assert.Equal(t, "Smith2020", d.File.Entry(0).Key())

	_, err = s.Undo(a)
	require.NoError(t, err)
	assert.Equal(t, "tmp", d.File.Entry(0).Key())
}

func TestSaveNewFile(t *testing.T) {
	dir := t.TempDir()
	s := newService(t)
	d := s.NewFile()
	_, err := s.AddEntries(d.Name(), nil)
	require.NoError(t, err)
	require.NoError(t, s.EditField(d.Name(), 0, entry.KeyField, "k"))

	target := filepath.Join(dir, "saved")
	p := &fakePrompter{name: target}
	ok, err := s.Save(d.Name(), p)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, target+".bib", d.Name())
	assert.False(t, d.File.Created)
	assert.False(t, d.File.Unsaved)
	assert.Same(t, d, s.Document(target+".bib"))
	data, err := os.ReadFile(target + ".bib")
	require.NoError(t, err)
	assert.Contains(t, string(data), "@article{k\n}")
}

func TestSaveConfirmsEmptyKeys(t *testing.T) {
	dir := t.TempDir()
	a := writeBib(t, dir, "a.bib", "@article{E,}\n")
	s := newService(t)
	openOne(t, s, a)
	_, err := s.AddEntries(a, nil)
	require.NoError(t, err)

	p := &fakePrompter{confirm: false}
	ok, err := s.Save(a, p)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, p.confirms)

	p.confirm = true
	ok, err = s.Save(a, p)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSaveFailure(t *testing.T) {
	dir := t.TempDir()
	s := newService(t)
	d := s.NewFile()
	_, err := s.AddEntries(d.Name(), bibtex.NewEntry("misc", "k"))
	require.NoError(t, err)

	p := &fakePrompter{name: filepath.Join(dir, "missing", "out.bib")}
	ok, err := s.Save(d.Name(), p)
	assert.False(t, ok)
	assert.ErrorIs(t, err, store.ErrSave)
	assert.True(t, d.File.Unsaved)
	assert.True(t, d.File.Created)
	notices := s.Notices(d.Name())
	require.Len(t, notices, 1)
	assert.Equal(t, NoticeSaveFailed, notices[0].Kind)
}

func TestCloseFlow(t *testing.T) {
	dir := t.TempDir()
	a := writeBib(t, dir, "a.bib", "@article{A,}\n")
	b := writeBib(t, dir, "b.bib", "@article{B,}\n")
	c := writeBib(t, dir, "c.bib", "@article{C,}\n")

	sess, err := session.Open(t.TempDir())
	require.NoError(t, err)
	s := newService(t, WithSession(sess))
	for _, name := range []string{a, b, c} {
		openOne(t, s, name)
		require.NoError(t, s.EditField(name, 0, "title", "changed"))
	}

	// Cancel on the second file stops the flow before anything is closed.
	p := &fakePrompter{answers: []Answer{AnswerDiscard, AnswerCancel}}
	ok, err := s.Close([]string{a, b, c}, p, false)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []string{a, b}, p.asked)
	assert.Len(t, s.Documents(), 3)

	p = &fakePrompter{answers: []Answer{AnswerSave, AnswerDiscard, AnswerDiscard}}
	ok, err = s.Close([]string{a, b, c}, p, false)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, s.Documents())

	data, err := os.ReadFile(a)
	require.NoError(t, err)
	assert.Contains(t, string(data), "changed")
	data, err = os.ReadFile(b)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "changed")

	recent := s.Recent(context.Background())
	assert.Len(t, recent, 3)
}

func TestCloseStopsOnSaveFailure(t *testing.T) {
	dir := t.TempDir()
	s := newService(t)
	d := s.NewFile()
	_, err := s.AddEntries(d.Name(), bibtex.NewEntry("misc", "k"))
	require.NoError(t, err)

	p := &fakePrompter{answers: []Answer{AnswerSave}, name: filepath.Join(dir, "missing", "x.bib")}
	ok, err := s.Close([]string{d.Name()}, p, false)
	assert.False(t, ok)
	assert.ErrorIs(t, err, store.ErrSave)
	assert.Len(t, s.Documents(), 1)
}

func TestSessionRoundTrip(t *testing.T) {
	dir := t.TempDir()
	a := writeBib(t, dir, "a.bib", "@article{A,}\n")
	strs := writeBib(t, dir, "strings.bib", "@string{jacm = {J. ACM}}\n")
	sessDir := t.TempDir()

	sess, err := session.Open(sessDir)
	require.NoError(t, err)
	s := newService(t, WithSession(sess))
	assert.Equal(t, store.StringsImported, s.ImportStrings(strs))
	d := openOne(t, s, a)
	d.View.ToggleSort("year")
	s.NewFile()
	require.NoError(t, s.SetOpenTab(a))

	ok, err := s.Close(s.Store.Names(), nil, true)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Empty(t, s.Recent(context.Background()), "closing the app does not record recent files")

	sess, err = session.Open(sessDir)
	require.NoError(t, err)
	restored := newService(t, WithSession(sess))
	reqs, tab, err := restored.Restore()
	require.NoError(t, err)
	assert.Equal(t, a, tab)
	require.Len(t, reqs, 1, "new files are not remembered")
	assert.Equal(t, a, reqs[0].Name)
	assert.Equal(t, []string{strs}, restored.Store.StringFiles())

	restored.OpenNow(reqs...)
	assert.Equal(t, "year", restored.Document(a).View.SortKey)
}

func TestWatchEvents(t *testing.T) {
	dir := t.TempDir()
	a := writeBib(t, dir, "a.bib", "@article{A,}\n")
	s := New(store.New(testConfig()))
	openOne(t, s, a)

	// Events for our own saves are not reported.
	s.HandleEvent(store.Event{Type: store.EventModified, Name: a})
	assert.Empty(t, s.Notices(a))

	require.NoError(t, os.WriteFile(a, []byte("@book{B,}\n"), 0o644))
	s.HandleEvent(store.Event{Type: store.EventModified, Name: a})
	s.HandleEvent(store.Event{Type: store.EventModified, Name: a})
	notices := s.Notices(a)
	require.Len(t, notices, 1)
	assert.Equal(t, NoticeChanged, notices[0].Kind)

	r := s.Reload(a)
	require.True(t, r.OK())
	assert.Equal(t, "B", s.Document(a).File.Entry(0).Key())
	assert.Empty(t, s.Notices(a))

	require.NoError(t, os.Remove(a))
	s.HandleEvent(store.Event{Type: store.EventRemoved, Name: a})
	d := s.Document(a)
	assert.True(t, d.File.Created)
	assert.True(t, d.File.Unsaved)
	notices = s.Notices(a)
	require.Len(t, notices, 1)
	assert.Equal(t, NoticeDeleted, notices[0].Kind)

	// A stopped watcher ignores late events.
	s.HandleEvent(store.Event{Type: store.EventRemoved, Name: a})
	assert.Len(t, s.Notices(a), 1)
}
