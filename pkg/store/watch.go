package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventType describes what happened to a watched file.
type EventType int

const (
	// EventModified means the file was written by someone.
	EventModified EventType = iota
	// EventRemoved means the file no longer exists.
	EventRemoved
)

func (t EventType) String() string {
	if t == EventRemoved {
		return "removed"
	}
	return "modified"
}

// Event is emitted by Watch.
type Event struct {
	Type EventType
	Name string
}

// Watch streams change events for the file name until ctx is cancelled.
// The directory is watched rather than the file so that editors replacing
// the file by rename are seen. Bursts of writes are reported once. The
// channel is closed once ctx is done or the watcher fails.
func (s *Store) Watch(ctx context.Context, name string) (<-chan Event, error) {
	path, err := filepath.Abs(name)
	if err != nil {
		return nil, fmt.Errorf("store: watch %s: %w", name, err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("store: create watcher: %w", err)
	}
	var closeOnce sync.Once
	closeWatcher := func() {
		closeOnce.Do(func() {
			if err := watcher.Close(); err != nil {
				s.log.Warn(ctx, "watcher close", "name", name, "err", err)
			}
		})
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		closeWatcher()
		return nil, fmt.Errorf("store: watch %s: %w", name, err)
	}

	events := make(chan Event, 8)
	delay := s.cfg.WatchDelay
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}

	go func() {
		defer close(events)
		defer closeWatcher()

		var mu sync.Mutex
		done := false
		send := func(ev Event) {
			mu.Lock()
			defer mu.Unlock()
			if done {
				return
			}
			select {
			case events <- ev:
			default:
				// The consumer still has an unread event for this file.
			}
		}
		defer func() {
			mu.Lock()
			done = true
			mu.Unlock()
		}()

		throttle := newEventThrottle(delay, name)
		defer throttle.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.log.Warn(ctx, "watcher error", "name", name, "err", err)
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(evt.Name) != path || evt.Op == fsnotify.Chmod {
					continue
				}
				throttle.Enqueue(send)
			}
		}
	}()

	return events, nil
}

// eventThrottle coalesces a burst of notifications into one event, decided
// by whether the file exists once the burst is over.
type eventThrottle struct {
	mu    sync.Mutex
	timer *time.Timer
	delay time.Duration
	name  string
}

func newEventThrottle(delay time.Duration, name string) *eventThrottle {
	return &eventThrottle{delay: delay, name: name}
}

func (t *eventThrottle) Enqueue(send func(Event)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer == nil {
		t.timer = time.AfterFunc(t.delay, func() {
			t.flush(send)
		})
	}
}

func (t *eventThrottle) flush(send func(Event)) {
	t.mu.Lock()
	t.timer = nil
	t.mu.Unlock()

	ev := Event{Type: EventModified, Name: t.name}
	if _, err := os.Stat(t.name); errors.Is(err, os.ErrNotExist) {
		ev.Type = EventRemoved
	}
	send(ev)
}

func (t *eventThrottle) Stop() {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.mu.Unlock()
}
