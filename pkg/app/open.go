package app

import (
	"context"
	"strings"

	"tableflip.dev/bib/pkg/store"
)

// OpenRequest names a file to open and the view state to restore.
type OpenRequest struct {
	Name  string
	State string
}

// Opened is a file read by Open, waiting to be passed to Finish.
type Opened struct {
	Request OpenRequest
	Loaded  *store.Loaded
}

// Requests turns plain names into open requests.
func Requests(names ...string) []OpenRequest {
	out := make([]OpenRequest, 0, len(names))
	for _, name := range names {
		out = append(out, OpenRequest{Name: name})
	}
	return out
}

// Open reads and parses the requested files on a background goroutine and
// calls done there with the results. The caller hands them back to the
// goroutine owning the service and passes them to Finish. Files already open
// are skipped without being read.
func (s *Service) Open(ctx context.Context, reqs []OpenRequest, done func([]Opened)) {
	var todo []OpenRequest
	var skipped []Opened
	for _, r := range reqs {
		if _, ok := s.docs[r.Name]; ok {
			skipped = append(skipped, Opened{Request: r, Loaded: &store.Loaded{Name: r.Name}})
			continue
		}
		todo = append(todo, r)
	}
	go func() {
		out := append([]Opened(nil), skipped...)
		for _, r := range todo {
			if ctx.Err() != nil {
				return
			}
			out = append(out, Opened{Request: r, Loaded: s.Store.Read(r.Name)})
		}
		done(out)
	}()
}

// OpenNow opens files synchronously.
func (s *Service) OpenNow(reqs ...OpenRequest) []store.Result {
	opened := make([]Opened, 0, len(reqs))
	for _, r := range reqs {
		opened = append(opened, Opened{Request: r, Loaded: s.Store.Read(r.Name)})
	}
	return s.Finish(opened)
}

// Finish adds files read by Open. Failures are reported together in one
// notice and dropped from the recent files. An untouched empty new file is
// closed once another file opened.
func (s *Service) Finish(opened []Opened) []store.Result {
	placeholders := s.placeholders()
	results := make([]store.Result, 0, len(opened))
	var failed []string
	added := false
	for _, o := range opened {
		r := s.Store.Add(o.Loaded)
		results = append(results, r)
		switch {
		case r.Status.Has(store.StatusAlreadyOpen):
			continue
		case !r.OK():
			failed = append(failed, o.Request.Name)
			s.log.Warn(s.ctx, "open failed", "name", o.Request.Name, "err", r.Err)
			if s.session != nil {
				if err := s.session.RemoveRecent(o.Request.Name); err != nil {
					s.log.Warn(s.ctx, "remove recent", "name", o.Request.Name, "err", err)
				}
			}
			continue
		}
		added = true
		d := s.attach(r.File, o.Request.State)
		if r.Status.Has(store.StatusEmpty) {
			s.notify(d.Name(), NoticeEmpty, "The file contains no entries.")
		}
		if r.Status.Has(store.StatusNoBackup) {
			s.notify(d.Name(), NoticeNoBackup, "No backup was created for this file.")
		}
		s.startWatch(d)
	}
	if len(failed) > 0 {
		s.notify("", NoticeOpenFailed, "Could not open: "+strings.Join(failed, ", "))
	}
	if added {
		for _, name := range placeholders {
			s.forget(name)
		}
	}
	return results
}

// placeholders lists the new files nobody has touched yet.
func (s *Service) placeholders() []string {
	var out []string
	for name, d := range s.docs {
		if d.File.Created && d.File.IsEmpty() && !d.File.Unsaved {
			out = append(out, name)
		}
	}
	return out
}

// Reload replaces a document by the file's current contents on disk, keeping
// its view. The undo history is lost.
func (s *Service) Reload(name string) store.Result {
	d, err := s.doc(name)
	if err != nil {
		return store.Result{Name: name, Status: store.StatusFileError, Err: err}
	}
	s.stopWatch(d)
	r := s.Store.Reload(name)
	if !r.OK() {
		s.startWatch(d)
		return r
	}
	state := d.View.State()
	search := d.View.Search
	nd := s.attach(r.File, state)
	nd.View.Search = search
	s.dismissKind(name, NoticeChanged)
	s.startWatch(nd)
	return r
}

// DeclareCreated marks a file whose backing file vanished as new and unsaved.
func (s *Service) DeclareCreated(name string) error {
	d, err := s.doc(name)
	if err != nil {
		return err
	}
	s.stopWatch(d)
	d.File.Created = true
	d.Changes.MarkUnsaved()
	s.notify(name, NoticeDeleted, "The file was deleted on disk.")
	return nil
}

// HandleEvent reacts to a watcher event: a file that changed on disk gets a
// notice offering a reload, a file that vanished is declared created.
func (s *Service) HandleEvent(ev store.Event) {
	d, ok := s.docs[ev.Name]
	if !ok || d.stopWatch == nil {
		return
	}
	switch ev.Type {
	case store.EventRemoved:
		if err := s.DeclareCreated(ev.Name); err != nil {
			s.log.Warn(s.ctx, "declare created", "name", ev.Name, "err", err)
		}
	case store.EventModified:
		changed, err := s.Store.ChangedOnDisk(ev.Name)
		if err != nil {
			s.log.Warn(s.ctx, "check file", "name", ev.Name, "err", err)
			return
		}
		if changed && !s.hasNotice(ev.Name, NoticeChanged) {
			s.notify(ev.Name, NoticeChanged, "The file was changed on disk. Reload to see the changes.")
		}
	}
}

func (s *Service) startWatch(d *Document) {
	if !s.watch || d.File.Created {
		return
	}
	ctx, cancel := context.WithCancel(s.ctx)
	ch, err := s.Store.Watch(ctx, d.Name())
	if err != nil {
		cancel()
		s.log.Warn(s.ctx, "watch file", "name", d.Name(), "err", err)
		return
	}
	d.stopWatch = cancel
	go func() {
		for ev := range ch {
			select {
			case s.events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (s *Service) stopWatch(d *Document) {
	if d.stopWatch != nil {
		d.stopWatch()
		d.stopWatch = nil
	}
}
