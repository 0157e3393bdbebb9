package store

import (
	"context"
	"fmt"
	"os"

	"tableflip.dev/bib/pkg/bibtex"
	"tableflip.dev/bib/pkg/field"
)

// StringStatus is the outcome of importing a string file.
type StringStatus int

const (
	StringsImported StringStatus = iota
	StringsEmpty
	StringsParseError
	StringsFileError
)

func (s StringStatus) String() string {
	switch s {
	case StringsImported:
		return "success"
	case StringsEmpty:
		return "empty"
	case StringsParseError:
		return "parse-error"
	case StringsFileError:
		return "file-error"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// ImportStrings adds the @string definitions of path to the global macro
// table and refreshes every open file. Importing the same path twice is a
// no-op.
func (s *Store) ImportStrings(path string) StringStatus {
	if _, ok := s.stringFiles[path]; ok {
		return StringsImported
	}
	data, err := os.ReadFile(path)
	if err != nil {
		s.log.Warn(context.Background(), "import strings", "path", path, "err", err)
		return StringsFileError
	}
	db, err := bibtex.Parse(string(data))
	if err != nil {
		s.log.Warn(context.Background(), "import strings", "path", path, "err", err)
		return StringsParseError
	}
	if len(db.Strings) == 0 {
		return StringsEmpty
	}
	s.stringFiles[path] = db.Strings
	s.stringOrder = append(s.stringOrder, path)
	s.updateGlobalStrings()
	return StringsImported
}

// RemoveStrings drops an imported string file and refreshes every open file.
func (s *Store) RemoveStrings(path string) bool {
	if _, ok := s.stringFiles[path]; !ok {
		return false
	}
	delete(s.stringFiles, path)
	for i, p := range s.stringOrder {
		if p == path {
			s.stringOrder = append(s.stringOrder[:i], s.stringOrder[i+1:]...)
			break
		}
	}
	s.updateGlobalStrings()
	return true
}

// StringFiles returns the imported string files in import order.
func (s *Store) StringFiles() []string {
	return append([]string(nil), s.stringOrder...)
}

// GlobalStrings returns the macro table shared by all files.
func (s *Store) GlobalStrings() field.Table {
	return s.global
}

// UpdateLocalStrings replaces the @string definitions of an open file.
func (s *Store) UpdateLocalStrings(name string, t field.Table) error {
	f, ok := s.files[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotOpen, name)
	}
	f.SetLocalStrings(t)
	return nil
}

// DuplicateStrings returns the macro names defined by more than one source,
// sources being the imported string files and the open files.
func (s *Store) DuplicateStrings() []string {
	count := map[string]int{}
	for _, path := range s.stringOrder {
		for name := range s.stringFiles[path] {
			count[name]++
		}
	}
	for _, name := range s.order {
		for m := range s.files[name].LocalStrings() {
			count[m]++
		}
	}
	for name, n := range count {
		if n < 2 {
			delete(count, name)
		}
	}
	return sortedKeys(count)
}

// updateGlobalStrings rebuilds the global table, earlier imports winning
// over later ones, and pushes it to every open file.
func (s *Store) updateGlobalStrings() {
	global := field.Table{}
	if s.cfg.CommonStrings {
		global = field.Months()
	}
	for i := len(s.stringOrder) - 1; i >= 0; i-- {
		for name, v := range s.stringFiles[s.stringOrder[i]] {
			global[name] = v
		}
	}
	s.global = global
	for _, f := range s.files {
		f.SetGlobalStrings(global)
	}
}
