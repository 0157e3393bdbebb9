package entry

import (
	"reflect"
	"strings"
	"testing"

	"tableflip.dev/bib/pkg/bibtex"
	"tableflip.dev/bib/pkg/field"
)

type testEnv struct {
	strings field.Table
	writer  *bibtex.Writer
}

func (e *testEnv) Strings() field.Table   { return e.strings }
func (e *testEnv) Writer() *bibtex.Writer { return e.writer }
func (e *testEnv) SortFields() []string   { return DefaultSortFields }

func newTestEnv() *testEnv {
	strs := field.Months()
	strs["ieee"] = field.Plain("IEEE")
	return &testEnv{strings: strs, writer: &bibtex.Writer{}}
}

func newEntry(t *testing.T, env Env, fields map[string]string) *Entry {
	t.Helper()
	r := bibtex.NewEntry("article", "")
	for k, v := range fields {
		r.Fields[k] = field.Plain(v)
	}
	return New(0, r, env)
}

func TestMonthMacro(t *testing.T) {
	e := newEntry(t, newTestEnv(), nil)
	e.Set("month", "jan")

	if got, _ := e.Raw("month"); got != "JAN" {
		t.Errorf("Raw(month) = %q, want JAN", got)
	}
	if got, _ := e.Pretty("month"); got != "January" {
		t.Errorf("Pretty(month) = %q, want January", got)
	}
	if got := e.Macros("month"); got != MacroDefined {
		t.Errorf("Macros(month) = %v, want defined", got)
	}
	if !strings.Contains(e.Source(), "month = jan") {
		t.Errorf("source missing macro reference:\n%s", e.Source())
	}
}

func TestUndefinedMacro(t *testing.T) {
	env := newTestEnv()
	e := newEntry(t, env, nil)
	e.SetValue("journal", field.Expr{field.Ref("jacm")})

	if got, _ := e.Pretty("journal"); got != "JACM" {
		t.Errorf("Pretty(journal) = %q, want JACM", got)
	}
	if got := e.Macros("journal"); got != MacroUndefined {
		t.Errorf("Macros(journal) = %v, want undefined", got)
	}
}

func TestSetField(t *testing.T) {
	e := newEntry(t, newTestEnv(), map[string]string{"title": "Foo"})

	e.Set(KeyField, "Smith2020")
	if e.Key() != "Smith2020" {
		t.Errorf("Key() = %q", e.Key())
	}
	if got := e.SortValue(KeyField); got != "smith2020" {
		t.Errorf("SortValue(ID) = %q", got)
	}

	e.Set("title", "Foobar")
	if got, _ := e.Raw("title"); got != "Foobar" {
		t.Errorf("Raw(title) = %q", got)
	}
	if got := e.SortValue("title"); got != "foobar" {
		t.Errorf("SortValue(title) = %q", got)
	}
	if !strings.Contains(e.Source(), "title = {Foobar}") {
		t.Errorf("stale source:\n%s", e.Source())
	}

	e.Set("title", "")
	if _, ok := e.Raw("title"); ok {
		t.Error("empty text should remove the field")
	}
	if got := e.SortValue("title"); got != MaxChar {
		t.Errorf("SortValue(title) = %q, want MaxChar", got)
	}

	e.Set(TypeField, "Book")
	if e.Type() != "book" || !strings.HasPrefix(e.Source(), "@book{Smith2020") {
		t.Errorf("type not updated: %s", e.Source())
	}
}

func TestSortFallbacks(t *testing.T) {
	e := newEntry(t, newTestEnv(), map[string]string{
		"booktitle": "Proc. of Things",
		"date":      "2019-05-01",
	})
	if got := e.SortValue("journal"); got != "proc. of things" {
		t.Errorf("journal sort = %q", got)
	}
	if got := e.SortValue("year"); got != "2019-05-01" {
		t.Errorf("year sort = %q", got)
	}
	if got := e.SortValue("author"); got != MaxChar {
		t.Errorf("author sort = %q, want MaxChar", got)
	}
}

func TestLastNames(t *testing.T) {
	e := newEntry(t, newTestEnv(), map[string]string{
		"author": `Smith, John and J{\"u}rgen M{\"u}ller and a, b, c, d and {World Health Organization}`,
	})
	want := []string{"Smith", "Müller", "Organization"}
	if got := e.LastNames(); !reflect.DeepEqual(got, want) {
		t.Fatalf("LastNames() = %q, want %q", got, want)
	}
	if got := e.SortValue("author"); got != "smithmüllerorganization" {
		t.Errorf("author sort = %q", got)
	}
}

func TestPrettyFields(t *testing.T) {
	e := newEntry(t, newTestEnv(), map[string]string{
		"author": "John Smith and Jane Doe",
		"pages":  "1--10",
		"title":  "The {$\\alpha$} of\nThings",
	})
	if got, _ := e.Pretty("author"); got != "Smith, John and Doe, Jane" {
		t.Errorf("Pretty(author) = %q", got)
	}
	if got, _ := e.Pretty("pages"); got != "1–10" {
		t.Errorf("Pretty(pages) = %q", got)
	}
	if got, _ := e.Pretty("title"); got != "The \\alpha of Things" {
		t.Errorf("Pretty(title) = %q", got)
	}
}

func TestSnapshotRestore(t *testing.T) {
	e := newEntry(t, newTestEnv(), map[string]string{"title": "Foo", "year": "2020"})
	before := e.Snapshot()
	source := e.Source()

	e.Set("title", "Bar")
	e.Set(KeyField, "k")
	e.Restore(before)

	if !reflect.DeepEqual(e.Snapshot(), before) || e.Source() != source {
		t.Fatalf("Restore() did not bring the entry back:\n%s", e.Source())
	}
}
