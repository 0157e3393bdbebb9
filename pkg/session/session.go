// Package session remembers the editor state between runs: the files that
// were open, the string files that were imported and the recently closed
// files.
package session

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/peterbourgon/diskv/v3"

	"tableflip.dev/bib/pkg/collection"
	"tableflip.dev/bib/pkg/logging"
)

const (
	keyOpenFiles   = "session/open-files"
	keyOpenTab     = "session/open-tab"
	keyStringFiles = "session/string-files"
	recentPrefix   = "recent/"
)

// Recent is a file that was closed after being saved.
type Recent struct {
	Name   string    `json:"name"`
	State  string    `json:"state,omitempty"`
	Closed Timestamp `json:"closed"`
}

// Option customises Open.
type Option func(*Session)

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock replaces time.Now for recent file timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// Session is a diskv store below a base directory. Keys are slash separated
// paths.
type Session struct {
	d        *diskv.Diskv
	basePath string
	log      logging.Logger
	now      func() time.Time
}

// Open creates the base directory if needed.
func Open(basePath string, opts ...Option) (*Session, error) {
	if basePath == "" {
		return nil, errors.New("session: base path required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("session: ensure base path: %w", err)
	}
	s := &Session{
		d: diskv.New(diskv.Options{
			BasePath:          basePath,
			AdvancedTransform: keyToPathTransform,
			InverseTransform:  pathToKeyTransform,
			CacheSizeMax:      64 * 1024,
		}),
		basePath: basePath,
		log:      logging.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// OpenFiles returns the files that were open, with their view states.
func (s *Session) OpenFiles() ([]collection.Meta, error) {
	data, err := s.read(keyOpenFiles)
	if err != nil {
		return nil, err
	}
	return collection.UnmarshalList(data)
}

// SetOpenFiles remembers the open files in order.
func (s *Session) SetOpenFiles(metas []collection.Meta) error {
	data, err := collection.MarshalList(metas)
	if err != nil {
		return err
	}
	return s.d.Write(keyOpenFiles, data)
}

// OpenTab returns the name of the file that had focus.
func (s *Session) OpenTab() string {
	data, err := s.read(keyOpenTab)
	if err != nil {
		return ""
	}
	return string(data)
}

// SetOpenTab remembers the file that has focus.
func (s *Session) SetOpenTab(name string) error {
	return s.d.WriteString(keyOpenTab, name)
}

// StringFiles returns the imported string files.
func (s *Session) StringFiles() ([]string, error) {
	data, err := s.read(keyStringFiles)
	if err != nil || len(data) == 0 {
		return nil, err
	}
	var paths []string
	if err := json.Unmarshal(data, &paths); err != nil {
		return nil, fmt.Errorf("session: string files: %w", err)
	}
	return paths, nil
}

// SetStringFiles remembers the imported string files.
func (s *Session) SetStringFiles(paths []string) error {
	if paths == nil {
		paths = []string{}
	}
	data, err := json.Marshal(paths)
	if err != nil {
		return err
	}
	return s.d.Write(keyStringFiles, data)
}

// Recent returns the recently closed files, most recent first.
func (s *Session) Recent(ctx context.Context) []Recent {
	var all []Recent
	for key := range s.d.KeysPrefix(recentPrefix, ctx.Done()) {
		data, err := s.d.Read(key)
		if err != nil {
			s.log.Warn(ctx, "read recent file", "key", key, "err", err)
			continue
		}
		r := &Recent{}
		if err := json.Unmarshal(data, r); err != nil {
			s.log.Warn(ctx, "decode recent file", "key", key, "err", err)
			continue
		}
		all = append(all, *r)
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Closed.Equal(all[j].Closed.Time) {
			return all[i].Name < all[j].Name
		}
		return all[i].Closed.After(all[j].Closed.Time)
	})
	return all
}

// AddRecent moves name to the top of the recent files and forgets the oldest
// ones beyond limit.
func (s *Session) AddRecent(ctx context.Context, name, state string, limit int) error {
	r := &Recent{Name: name, State: state, Closed: Timestamp{s.now()}}
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	if err := s.d.Write(recentKey(name), data); err != nil {
		return fmt.Errorf("session: add recent: %w", err)
	}
	all := s.Recent(ctx)
	if limit < 0 {
		limit = 0
	}
	for _, old := range all[min(limit, len(all)):] {
		if err := s.RemoveRecent(old.Name); err != nil {
			return err
		}
	}
	return nil
}

// RemoveRecent forgets name. Unknown names are ignored.
func (s *Session) RemoveRecent(name string) error {
	key := recentKey(name)
	if !s.d.Has(key) {
		return nil
	}
	return s.d.Erase(key)
}

func (s *Session) read(key string) ([]byte, error) {
	if !s.d.Has(key) {
		return nil, nil
	}
	data, err := s.d.Read(key)
	if err != nil {
		return nil, fmt.Errorf("session: read %s: %w", key, err)
	}
	return data, nil
}

func recentKey(name string) string {
	return recentPrefix + base64.URLEncoding.EncodeToString([]byte(name))
}

func keyToPathTransform(s string) *diskv.PathKey {
	parts := strings.Split(s, "/")
	return &diskv.PathKey{
		Path:     parts[:len(parts)-1],
		FileName: parts[len(parts)-1],
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	return strings.Join(append(append([]string(nil), pathKey.Path...), pathKey.FileName), "/")
}
