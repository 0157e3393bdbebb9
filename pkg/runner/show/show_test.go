package show

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"tableflip.dev/bib/pkg/app"
	"tableflip.dev/bib/pkg/store"
)

func init() {
	color.NoColor = true
}

func newService(t *testing.T) *app.Service {
	t.Helper()
	cfg := store.DefaultConfig()
	cfg.CreateBackup = false
	return app.New(store.New(cfg), app.WithoutWatch())
}

func writeFile(t *testing.T, name, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const refs = "@article{a, author = {Sch{\\\"o}nberg, Arnold}, month = feb}\n"

func TestShowFields(t *testing.T) {
	path := writeFile(t, "refs.bib", refs)
	var buf bytes.Buffer
	s := Show{Service: newService(t), File: path, Key: "a", Out: &buf}
	if err := s.Do(context.Background()); err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if !strings.Contains(buf.String(), "Schönberg, Arnold") {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
}

func TestShowSource(t *testing.T) {
	path := writeFile(t, "refs.bib", refs)
	var buf bytes.Buffer
	s := Show{Service: newService(t), File: path, Index: 0, Source: true, Out: &buf}
	if err := s.Do(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "@article{a,") || !strings.Contains(buf.String(), "= feb") {
		t.Fatalf("unexpected source:\n%s", buf.String())
	}
}

func TestShowJSON(t *testing.T) {
	path := writeFile(t, "refs.bib", refs)
	var got Fields
	s := Show{Service: newService(t), File: path, Key: "a", JSON: true, Encode: func(v any) error {
		got = v.(Fields)
		return nil
	}}
	if err := s.Do(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got.Raw["month"] != "FEB" || got.Pretty["month"] != "February" {
		t.Fatalf("unexpected fields: %+v", got)
	}
}
