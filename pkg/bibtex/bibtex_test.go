package bibtex

import (
	"errors"
	"reflect"
	"testing"

	"tableflip.dev/bib/pkg/field"
)

const sample = `% leading note

@string{ieee = "IEEE"}
@STRING(tacm = {Transactions of the } # acm)

@comment{managed by bib}

@Article{smith2020,
  Author = {Smith, John and Doe, Jane},
  title = "A {Study} of Things",
  journal = ieee # { Letters},
  year = 2020,
  month = jan,
}

@misc{, title = {untitled}}
`

func TestParse(t *testing.T) {
	db, err := Parse(sample)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if got, want := db.Comments, []string{"% leading note", "managed by bib"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Comments = %q, want %q", got, want)
	}
	if got := db.Strings["ieee"]; got != field.Plain("IEEE") {
		t.Errorf("ieee = %#v", got)
	}
	if got := db.Strings["tacm"]; !reflect.DeepEqual(got, field.Expr{field.Literal("Transactions of the "), field.Ref("acm")}) {
		t.Errorf("tacm = %#v", got)
	}
	if len(db.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(db.Entries))
	}

	e := db.Entries[0]
	if e.Type != "article" || e.Key != "smith2020" {
		t.Errorf("entry = %s/%s", e.Type, e.Key)
	}
	want := map[string]field.Value{
		"author":  field.Plain("Smith, John and Doe, Jane"),
		"title":   field.Plain("A {Study} of Things"),
		"journal": field.Expr{field.Ref("ieee"), field.Literal(" Letters")},
		"year":    field.Plain("2020"),
		"month":   field.Expr{field.Ref("jan")},
	}
	if !reflect.DeepEqual(e.Fields, want) {
		t.Errorf("fields = %#v, want %#v", e.Fields, want)
	}

	if db.Entries[1].Key != "" || db.Entries[1].Fields["title"] != field.Plain("untitled") {
		t.Errorf("empty key entry = %#v", db.Entries[1])
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{name: "unbalanced", in: "@article{a, title = {foo}"},
		{name: "missing equals", in: "@article{a, title {foo}}"},
		{name: "unterminated quote", in: `@article{a, title = "foo}`},
		{name: "stray close", in: "@comment(a } b)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.in)
			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("Parse() error = %v, want *SyntaxError", err)
			}
		})
	}
}

func TestParseAtInFreeText(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		comments []string
		entries  int
	}{
		{name: "mail address", in: "% contact: someone@example.org\n@article{k, title={x}}", comments: []string{"% contact: someone@example.org"}, entries: 1},
		{name: "no delimiter", in: "@article a", comments: []string{"@article a"}},
		{name: "lone at", in: "see @ below\n@misc{m,}\ntrailing @", comments: []string{"see @ below", "trailing @"}, entries: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, err := Parse(tt.in)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if !reflect.DeepEqual(db.Comments, tt.comments) {
				t.Errorf("Comments = %q, want %q", db.Comments, tt.comments)
			}
			if len(db.Entries) != tt.entries {
				t.Errorf("got %d entries, want %d", len(db.Entries), tt.entries)
			}
		})
	}
}

func TestWriterEntry(t *testing.T) {
	e := NewEntry("article", "smith2020")
	e.Fields["author"] = field.Plain("Smith, John")
	e.Fields["year"] = field.Plain("2020")
	e.Fields["month"] = field.Expr{field.Ref("jan")}

	tests := []struct {
		name string
		w    *Writer
		want string
	}{
		{
			name: "default",
			w:    &Writer{},
			want: "@article{smith2020,\n author = {Smith, John},\n month = jan,\n year = {2020}\n}\n",
		},
		{
			name: "aligned with order",
			w:    &Writer{Indent: "\t", Align: true, Order: []string{"year"}},
			want: "@article{smith2020,\n\tyear   = {2020},\n\tauthor = {Smith, John},\n\tmonth  = jan\n}\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.w.Entry(e); got != tt.want {
				t.Fatalf("Entry() =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	db, err := Parse(sample)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	w := &Writer{Indent: "  ", Align: true}
	text := w.Document(db)

	again, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse(Document()) error = %v\n%s", err, text)
	}
	if !reflect.DeepEqual(db, again) {
		t.Fatalf("round trip mismatch:\n%#v\n%#v", db, again)
	}
	if w.Document(again) != text {
		t.Fatal("writing is not stable")
	}
}
