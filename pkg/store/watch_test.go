package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func waitEvent(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "channel closed")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for watch event")
	}
	return Event{}
}

func TestWatchReportsModifiedAndRemoved(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "refs.bib")
	require.NoError(t, os.WriteFile(name, []byte("@article{a,}\n"), 0o644))

	cfg := DefaultConfig()
	cfg.WatchDelay = 20 * time.Millisecond
	s := New(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, err := s.Watch(ctx, name)
	require.NoError(t, err)

	// Other files in the directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.bib"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(name, []byte("@article{b,}\n"), 0o644))
	ev := waitEvent(t, ch)
	require.Equal(t, EventModified, ev.Type)
	require.Equal(t, name, ev.Name)

	require.NoError(t, os.Remove(name))
	for ev.Type != EventRemoved {
		ev = waitEvent(t, ch)
	}
}

func TestWatchStopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "refs.bib")
	require.NoError(t, os.WriteFile(name, nil, 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := New(DefaultConfig()).Watch(ctx, name)
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-ch:
		for ok {
			_, ok = <-ch
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watch channel not closed after cancel")
	}
}

func TestWatchMissingDirectory(t *testing.T) {
	_, err := New(DefaultConfig()).Watch(context.Background(), filepath.Join(t.TempDir(), "nope", "refs.bib"))
	require.Error(t, err)
}
