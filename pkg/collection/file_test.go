package collection

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"

	"tableflip.dev/bib/pkg/bibtex"
	"tableflip.dev/bib/pkg/entry"
	"tableflip.dev/bib/pkg/field"
)

func newTestFile(t *testing.T, text string) *File {
	t.Helper()
	db, err := bibtex.Parse(text)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return New("/tmp/refs.bib", db, nil, Options{})
}

func TestGenerateKey(t *testing.T) {
	f := New("refs.bib", nil, nil, Options{})
	e := f.Append(nil)
	e.Set("author", "Smith, John")
	e.Set("year", "2020")

	if got := f.GenerateKey(e); got != "Smith2020" {
		t.Fatalf("GenerateKey() = %q, want Smith2020", got)
	}

	other := f.Append(nil)
	other.Set(entry.KeyField, "Smith2020")
	if got := f.GenerateKey(e); got != "Smith2020a" {
		t.Fatalf("GenerateKey() with collision = %q, want Smith2020a", got)
	}

	third := f.Append(nil)
	third.Set(entry.KeyField, "Smith2020a")
	if got := f.GenerateKey(e); got != "Smith2020b" {
		t.Fatalf("GenerateKey() with two collisions = %q, want Smith2020b", got)
	}

	other.Deleted = true
	third.Deleted = true
	if got := f.GenerateKey(e); got != "Smith2020" {
		t.Fatalf("deleted entries should not collide, got %q", got)
	}
}

func TestGenerateKeySuffixPastASCII(t *testing.T) {
	f := New("refs.bib", nil, nil, Options{})
	e := f.Append(nil)
	e.Set("author", "Smith, John")
	e.Set("year", "2020")

	taken := []string{"Smith2020"}
	for r := 'a'; r <= 0x82; r++ {
		taken = append(taken, "Smith2020"+string(r))
	}
	for _, key := range taken {
		f.Append(nil).Set(entry.KeyField, key)
	}

	got := f.GenerateKey(e)
	if !utf8.ValidString(got) {
		t.Fatalf("GenerateKey() = %q is not valid UTF-8", got)
	}
	if want := "Smith2020\u0083"; got != want {
		t.Fatalf("GenerateKey() = %q, want %q", got, want)
	}
}

func TestGenerateKeyVariants(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]string
		typ    string
		want   string
	}{
		{name: "two authors", fields: map[string]string{"author": "Smith, John and Doe, Jane", "year": "1999"}, want: "SmithDoe1999"},
		{name: "three authors", fields: map[string]string{"author": "Smith, J. and Doe, J. and Roe, R."}, want: "Smith"},
		{name: "accents", fields: map[string]string{"author": `M{\"u}ller, J{\"o}rg`, "year": "2001"}, want: "Muller2001"},
		{name: "von part dropped", fields: map[string]string{"author": "de la Cruz, Maria"}, want: "Cruz"},
		{name: "no author", typ: "book", fields: map[string]string{"year": "1984"}, want: "book1984"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New("refs.bib", nil, nil, Options{})
			typ := tt.typ
			if typ == "" {
				typ = "article"
			}
			r := bibtex.NewEntry(typ, "")
			for k, v := range tt.fields {
				r.Fields[k] = field.Plain(v)
			}
			e := f.Append(r)
			if got := f.GenerateKey(e); got != tt.want {
				t.Fatalf("GenerateKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGenerateKeyUpperSuffixAfterLowercase(t *testing.T) {
	f := New("refs.bib", nil, nil, Options{})
	e := f.Append(bibtex.NewEntry("misc", ""))
	f.Append(bibtex.NewEntry("misc", "misc"))
	if got := f.GenerateKey(e); got != "miscA" {
		t.Fatalf("GenerateKey() = %q, want miscA", got)
	}
}

func TestDuplicateAndEmptyKeys(t *testing.T) {
	f := newTestFile(t, `
@article{a, title = {1}}
@article{a, title = {2}}
@article{b, title = {3}}
@article{, title = {4}}
`)
	if got := f.DuplicateKeys(); !reflect.DeepEqual(got, []string{"a"}) {
		t.Fatalf("DuplicateKeys() = %q", got)
	}
	if !f.HasEmptyKeys() {
		t.Fatal("HasEmptyKeys() = false")
	}

	f.SetDeleted(1, true)
	f.SetDeleted(3, true)
	if got := f.DuplicateKeys(); len(got) != 0 {
		t.Fatalf("DuplicateKeys() after delete = %q", got)
	}
	if f.HasEmptyKeys() {
		t.Fatal("deleted entries should not count as empty keys")
	}
}

type reverseKeys struct{}

func (reverseKeys) Sort(entries []*entry.Entry) {
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
}

func TestSerialize(t *testing.T) {
	f := newTestFile(t, `% note
@string{ieee = {IEEE}}
@article{first, journal = ieee}
@article{second, title = {Two}}
@article{gone, title = {Deleted}}
`)
	f.SetGlobalStrings(field.Table{"acm": field.Plain("ACM")})
	f.SetDeleted(2, true)

	got := f.Serialize(reverseKeys{})
	want := "@comment{% note}\n" +
		"\n" +
		"@string{ieee = {IEEE}}\n" +
		"\n" +
		"@article{second,\n title = {Two}\n}\n" +
		"\n" +
		"@article{first,\n journal = ieee\n}\n"
	if got != want {
		t.Fatalf("Serialize() =\n%s\nwant\n%s", got, want)
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	f := New("refs.bib", nil, nil, Options{Writer: &bibtex.Writer{Indent: "\t", Align: true}})
	e := f.Append(nil)
	e.Set(entry.KeyField, "Doe2021")
	e.Set("author", "Doe, Jane")
	e.Set("title", "On {Things}")
	e.Set("year", "2021")

	r, err := f.ParseEntry(f.Serialize(nil))
	if err != nil {
		t.Fatalf("ParseEntry() error = %v", err)
	}
	if !bibtex.Equal(r, e.Snapshot()) {
		t.Fatalf("round trip mismatch: %#v vs %#v", r, e.Snapshot())
	}
}

func TestParseEntry(t *testing.T) {
	f := newTestFile(t, "@string{ieee = {IEEE}}\n")

	r, err := f.ParseEntry("@inproceedings{k, booktitle = ieee # { Conf}}")
	if err != nil {
		t.Fatalf("ParseEntry() error = %v", err)
	}
	if r.Key != "k" || field.Raw(r.Fields["booktitle"]) != "IEEE Conf" {
		t.Fatalf("ParseEntry() = %#v", r)
	}

	if _, err := f.ParseEntry("@article{k, title = {unbalanced}"); err == nil {
		t.Fatal("expected a syntax error")
	}
	if _, err := f.ParseEntry("@article{a,}\n@article{b,}"); !errors.Is(err, ErrNotSingle) {
		t.Fatalf("ParseEntry() error = %v, want ErrNotSingle", err)
	}
}

func TestGlobalStringsRefresh(t *testing.T) {
	f := newTestFile(t, "@article{k, journal = jacm}\n")
	e := f.Entry(0)
	if got, _ := e.Pretty("journal"); got != "JACM" {
		t.Fatalf("Pretty() before import = %q", got)
	}

	f.SetGlobalStrings(field.Table{"jacm": field.Plain("Journal of the ACM")})
	if got, _ := e.Pretty("journal"); got != "Journal of the ACM" {
		t.Fatalf("Pretty() after import = %q", got)
	}
	if got := e.SortValue("journal"); got != "journal of the acm" {
		t.Fatalf("SortValue() after import = %q", got)
	}

	f.SetLocalStrings(field.Table{"jacm": field.Plain("J. ACM")})
	if got, _ := e.Pretty("journal"); got != "J. ACM" {
		t.Fatalf("local strings should win, got %q", got)
	}
	if !strings.Contains(f.Serialize(nil), "@string{jacm = {J. ACM}}") {
		t.Fatal("local strings should be written")
	}
}

func TestStringsChangeReencodesPlainValues(t *testing.T) {
	f := newTestFile(t, "@article{k, journal = {ieee}, note = {see ieee and acm}}\n")
	e := f.Entry(0)

	f.SetGlobalStrings(field.Table{"ieee": field.Plain("IEEE Transactions")})
	if got, _ := e.Raw("journal"); got != "IEEE" {
		t.Fatalf("Raw() after import = %q, want IEEE", got)
	}
	if got, _ := e.Pretty("journal"); got != "IEEE Transactions" {
		t.Fatalf("Pretty() after import = %q", got)
	}
	if got, _ := e.Pretty("note"); got != "see IEEE Transactions and acm" {
		t.Fatalf("Pretty(note) = %q", got)
	}
	if !strings.Contains(e.Source(), "journal = ieee") {
		t.Fatalf("expected a macro reference in the source:\n%s", e.Source())
	}

	f.SetGlobalStrings(nil)
	if got, _ := e.Raw("journal"); got != "IEEE" {
		t.Fatalf("references must survive removal, got %q", got)
	}
}

func TestMetaLegacy(t *testing.T) {
	metas, err := UnmarshalList([]byte(`["a.bib", "b.bib"]`))
	if err != nil {
		t.Fatalf("UnmarshalList() error = %v", err)
	}
	if len(metas) != 2 || metas[1].Name != "b.bib" {
		t.Fatalf("UnmarshalList() = %#v", metas)
	}

	data, err := MarshalList([]Meta{{Name: "a.bib", State: "ID|false"}})
	if err != nil {
		t.Fatalf("MarshalList() error = %v", err)
	}
	metas, err = UnmarshalList(data)
	if err != nil || metas[0].State != "ID|false" {
		t.Fatalf("UnmarshalList() = %#v, %v", metas, err)
	}
}

func TestClassify(t *testing.T) {
	if Classify("InProceedings") != TypeInProceedings {
		t.Fatal("Classify should ignore case")
	}
	if Classify("patent") != TypeOther {
		t.Fatal("unknown types should classify as other")
	}
}
