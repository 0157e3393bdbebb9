package changelog

import "time"

// DefaultDelay is the window in which consecutive edits of the same field
// are merged into one undo step.
const DefaultDelay = time.Second

// Observer is told about every change the buffer applies or reverts.
type Observer interface {
	Applied(c Change, redo bool)
	Reverted(c Change)
}

// Option customises New.
type Option func(*Buffer)

// WithDelay sets the merge window. Zero disables merging.
func WithDelay(d time.Duration) Option {
	return func(b *Buffer) {
		b.delay = d
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(b *Buffer) {
		if now != nil {
			b.now = now
		}
	}
}

// WithObserver registers o.
func WithObserver(o Observer) Option {
	return func(b *Buffer) {
		if o != nil {
			b.observers = append(b.observers, o)
		}
	}
}

// Buffer is a linear undo history. log[0] is a sentinel; pos is the index of
// the last applied change and saved the index at the last save, or -1 when
// that state can no longer be reached.
type Buffer struct {
	target    Target
	log       []Change
	pos       int
	saved     int
	lastPush  time.Time
	delay     time.Duration
	now       func() time.Time
	observers []Observer
}

// New returns an empty buffer operating on t.
func New(t Target, opts ...Option) *Buffer {
	b := &Buffer{
		target: t,
		log:    []Change{nil},
		delay:  DefaultDelay,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Push applies c and records it. An Edit of the same field of the same
// entry, or a Replace of the same entry, pushed within the delay of the
// previous push is merged into the previous change instead.
func (b *Buffer) Push(c Change) {
	now := b.now()
	prev := b.log[b.pos]
	merged := prev != nil &&
		prev.Kind() == c.Kind() &&
		now.Sub(b.lastPush) < b.delay &&
		prev.absorb(c)

	b.truncate()
	if merged {
		if b.saved == b.pos {
			b.saved = -1
		}
	} else {
		b.log = append(b.log, c)
		b.pos++
	}

	c.Apply(b.target, false)
	b.lastPush = now
	b.sync()
	for _, o := range b.observers {
		o.Applied(c, false)
	}
}

// truncate drops the redo tail.
func (b *Buffer) truncate() {
	if b.saved > b.pos {
		b.saved = -1
	}
	b.log = b.log[:b.pos+1]
}

// Undo reverts the last applied change. It reports false at the bottom.
func (b *Buffer) Undo() bool {
	if !b.CanUndo() {
		return false
	}
	c := b.log[b.pos]
	b.pos--
	c.Revert(b.target)
	b.sync()
	for _, o := range b.observers {
		o.Reverted(c)
	}
	return true
}

// Redo re-applies the next change. It reports false at the tail.
func (b *Buffer) Redo() bool {
	if !b.CanRedo() {
		return false
	}
	b.pos++
	c := b.log[b.pos]
	c.Apply(b.target, true)
	b.sync()
	for _, o := range b.observers {
		o.Applied(c, true)
	}
	return true
}

func (b *Buffer) CanUndo() bool { return b.pos > 0 }
func (b *Buffer) CanRedo() bool { return b.pos < len(b.log)-1 }

// MarkSaved records the current position as the saved state.
func (b *Buffer) MarkSaved() {
	b.saved = b.pos
	b.sync()
}

// MarkUnsaved forgets the saved state, e.g. when the file vanished on disk.
func (b *Buffer) MarkUnsaved() {
	b.saved = -1
	b.sync()
}

// Unsaved reports whether the current state differs from the saved one.
func (b *Buffer) Unsaved() bool {
	return b.pos != b.saved
}

// Position is the index of the last applied change; 0 means none.
func (b *Buffer) Position() int { return b.pos }

// Len is the number of recorded changes.
func (b *Buffer) Len() int { return len(b.log) - 1 }

func (b *Buffer) sync() {
	b.target.SetUnsaved(b.Unsaved())
}
