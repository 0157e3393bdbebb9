// Package store owns the open BibTeX files, the macro tables shared between
// them, and their persistence on disk.
package store

import (
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"tableflip.dev/bib/pkg/bibtex"
	"tableflip.dev/bib/pkg/collection"
	"tableflip.dev/bib/pkg/field"
	"tableflip.dev/bib/pkg/logging"
)

// BackupTag is the first line of every backup the store writes.
const BackupTag = "% bib backup file"

var (
	ErrAlreadyOpen = errors.New("store: file already open")
	ErrNotOpen     = errors.New("store: file not open")
	ErrParse       = errors.New("store: parse error")
	ErrFile        = errors.New("store: file error")
	ErrBackup      = errors.New("store: backup failed")
	ErrSave        = errors.New("store: save failed")
)

// Status flags describe the outcome of opening a file.
type Status int

const (
	StatusOpened Status = 1 << iota
	StatusParseError
	StatusFileError
	StatusAlreadyOpen
	StatusNoBackup
	StatusEmpty
)

// Has reports whether every flag of f is set.
func (s Status) Has(f Status) bool {
	return s&f == f
}

func (s Status) String() string {
	names := []string{}
	for _, f := range []struct {
		flag Status
		name string
	}{
		{StatusOpened, "opened"},
		{StatusParseError, "parse-error"},
		{StatusFileError, "file-error"},
		{StatusAlreadyOpen, "already-open"},
		{StatusNoBackup, "no-backup"},
		{StatusEmpty, "empty"},
	} {
		if s.Has(f.flag) {
			names = append(names, f.name)
		}
	}
	return strings.Join(names, ",")
}

// Loaded is a file read from disk but not yet added to the store.
type Loaded struct {
	Name   string
	DB     *bibtex.Database
	Status Status
	Err    error
	digest [md5.Size]byte
}

// Result is the outcome of Open or Reload.
type Result struct {
	Name   string
	File   *collection.File
	Status Status
	Err    error
}

// OK reports whether the file was opened.
func (r Result) OK() bool {
	return r.Status.Has(StatusOpened)
}

// Option customises New.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// Store holds every open file by name. It is not safe for concurrent use;
// only Read may run off the owning goroutine.
type Store struct {
	cfg   Config
	log   logging.Logger
	files map[string]*collection.File
	order []string

	stringFiles map[string]field.Table
	stringOrder []string
	global      field.Table

	digests map[string][md5.Size]byte
}

// New returns an empty store.
func New(cfg Config, opts ...Option) *Store {
	s := &Store{
		cfg:         cfg,
		log:         logging.NewNop(),
		files:       map[string]*collection.File{},
		stringFiles: map[string]field.Table{},
		digests:     map[string][md5.Size]byte{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.updateGlobalStrings()
	return s
}

// Config returns the configuration the store was created with.
func (s *Store) Config() Config { return s.cfg }

// Read loads and parses name and creates its backup. It touches no store
// state.
func (s *Store) Read(name string) *Loaded {
	l := &Loaded{Name: name}
	data, err := os.ReadFile(name)
	if err != nil {
		l.Status = StatusFileError
		l.Err = fmt.Errorf("%w: %v", ErrFile, err)
		return l
	}
	db, err := bibtex.Parse(string(data))
	if err != nil {
		l.Status = StatusParseError
		l.Err = fmt.Errorf("%w: %s: %v", ErrParse, name, err)
		return l
	}
	l.DB = db
	l.digest = md5.Sum(data)
	l.Status = StatusOpened

	if s.cfg.CreateBackup {
		if err := backup(name); err != nil {
			l.Status |= StatusNoBackup
			l.Err = err
		}
	}
	db.Comments = stripBackupTag(db.Comments)
	if len(db.Entries) == 0 {
		l.Status |= StatusEmpty
	}
	return l
}

// Add registers a file returned by Read.
func (s *Store) Add(l *Loaded) Result {
	r := Result{Name: l.Name, Status: l.Status, Err: l.Err}
	if _, ok := s.files[l.Name]; ok {
		r.Status = StatusAlreadyOpen
		r.Err = fmt.Errorf("%w: %s", ErrAlreadyOpen, l.Name)
		return r
	}
	if !l.Status.Has(StatusOpened) {
		return r
	}
	f := collection.New(l.Name, l.DB, s.global, s.cfg.FileOptions())
	s.files[l.Name] = f
	s.order = append(s.order, l.Name)
	s.digests[l.Name] = l.digest
	s.updateShortNames()
	r.File = f
	s.log.Info(context.Background(), "opened file", "name", l.Name, "entries", f.Len(), "status", r.Status.String())
	return r
}

// Open reads name and adds it.
func (s *Store) Open(name string) Result {
	if _, ok := s.files[name]; ok {
		return Result{Name: name, Status: StatusAlreadyOpen, Err: fmt.Errorf("%w: %s", ErrAlreadyOpen, name)}
	}
	return s.Add(s.Read(name))
}

// Reload re-reads an open file from disk. The old file is replaced only when
// the new contents could be parsed.
func (s *Store) Reload(name string) Result {
	if _, ok := s.files[name]; !ok {
		return Result{Name: name, Status: StatusFileError, Err: fmt.Errorf("%w: %s", ErrNotOpen, name)}
	}
	l := s.Read(name)
	r := Result{Name: name, Status: l.Status, Err: l.Err}
	if !l.Status.Has(StatusOpened) {
		return r
	}
	f := collection.New(name, l.DB, s.global, s.cfg.FileOptions())
	f.ShortName = s.files[name].ShortName
	s.files[name] = f
	s.digests[name] = l.digest
	r.File = f
	return r
}

// New creates an empty file that has no backing file yet. It is named after
// the configured new file name, numbered to be unique among open files.
func (s *Store) New() *collection.File {
	base := s.cfg.NewFileName
	if base == "" {
		base = "new.bib"
	}
	name := base
	for n := 1; s.files[name] != nil; n++ {
		name = strings.TrimSuffix(base, ".bib") + " " + strconv.Itoa(n) + ".bib"
	}
	f := collection.New(name, nil, s.global, s.cfg.FileOptions())
	f.Created = true
	s.files[name] = f
	s.order = append(s.order, name)
	s.updateShortNames()
	return f
}

// File returns the open file called name, or nil.
func (s *Store) File(name string) *collection.File {
	return s.files[name]
}

// Files returns the open files in the order they were opened.
func (s *Store) Files() []*collection.File {
	out := make([]*collection.File, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.files[name])
	}
	return out
}

// Names returns the names of the open files in the order they were opened.
func (s *Store) Names() []string {
	return append([]string(nil), s.order...)
}

// Save writes the file called name, ordering entries with sorter.
func (s *Store) Save(name string, sorter collection.Sorter) error {
	f, ok := s.files[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotOpen, name)
	}
	data := []byte(f.Serialize(sorter))
	if err := os.WriteFile(name, data, 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrSave, err)
	}
	s.digests[name] = md5.Sum(data)
	f.Created = false
	s.log.Info(context.Background(), "saved file", "name", name, "entries", len(f.Active()))
	return nil
}

// Rename moves an open file to a new name. Nothing is written to disk.
func (s *Store) Rename(old, name string) error {
	f, ok := s.files[old]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotOpen, old)
	}
	if old == name {
		return nil
	}
	if _, ok := s.files[name]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyOpen, name)
	}
	delete(s.files, old)
	s.files[name] = f
	f.Name = name
	for i, n := range s.order {
		if n == old {
			s.order[i] = name
		}
	}
	if d, ok := s.digests[old]; ok {
		delete(s.digests, old)
		s.digests[name] = d
	}
	s.updateShortNames()
	return nil
}

// Close forgets an open file and returns it.
func (s *Store) Close(name string) (*collection.File, error) {
	f, ok := s.files[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotOpen, name)
	}
	delete(s.files, name)
	delete(s.digests, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.updateShortNames()
	return f, nil
}

// ChangedOnDisk reports whether the file on disk differs from what the store
// last read or wrote. A missing file reports an error wrapping ErrFile.
func (s *Store) ChangedOnDisk(name string) (bool, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrFile, err)
	}
	return md5.Sum(data) != s.digests[name], nil
}

func (s *Store) updateShortNames() {
	names := ShortNames(s.order)
	for name, f := range s.files {
		f.ShortName = names[name]
	}
}

// ShortNames maps every path to its shortest suffix that is unique among
// paths.
func ShortNames(paths []string) map[string]string {
	names := make(map[string]string, len(paths))
	heads := make(map[string][]string, len(paths))
	for _, p := range paths {
		dir, file := filepath.Split(filepath.Clean(p))
		names[p] = file
		dir = strings.Trim(filepath.ToSlash(dir), "/")
		if dir != "" {
			heads[p] = strings.Split(dir, "/")
		}
	}
	for {
		seen := map[string]int{}
		for _, n := range names {
			seen[n]++
		}
		progress := false
		for _, p := range paths {
			if seen[names[p]] < 2 || len(heads[p]) == 0 {
				continue
			}
			h := heads[p]
			names[p] = h[len(h)-1] + "/" + names[p]
			heads[p] = h[:len(h)-1]
			progress = true
		}
		if !progress {
			return names
		}
	}
}

// backup copies name to name.bak, prefixed with BackupTag. A previous backup
// is itself backed up first; an untagged .bak file is never overwritten.
func backup(name string) error {
	bak := name + ".bak"
	if _, err := os.Stat(bak); err == nil {
		if err := backupFile(bak); err != nil {
			return err
		}
	}
	return backupFile(name)
}

func backupFile(name string) error {
	bak := name + ".bak"
	if _, err := os.Stat(bak); err == nil && !hasBackupTag(bak) {
		return fmt.Errorf("%w: %s exists and is not a backup", ErrBackup, bak)
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackup, err)
	}
	if !strings.HasPrefix(string(data), BackupTag) {
		data = append([]byte(BackupTag+"\n\n"), data...)
	}
	if err := os.WriteFile(bak, data, 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrBackup, err)
	}
	return nil
}

func hasBackupTag(name string) bool {
	f, err := os.Open(name)
	if err != nil {
		return false
	}
	defer f.Close()
	buf := make([]byte, len(BackupTag))
	n, _ := f.Read(buf)
	return string(buf[:n]) == BackupTag
}

// stripBackupTag removes the tag from the comments the parser kept.
func stripBackupTag(comments []string) []string {
	out := comments[:0]
	for _, c := range comments {
		if strings.HasPrefix(c, BackupTag) {
			c = strings.TrimSpace(strings.TrimPrefix(c, BackupTag))
		}
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

// sortedKeys returns the names of t in order.
func sortedKeys(m map[string]int) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
