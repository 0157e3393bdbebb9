package app

import (
	"context"

	"tableflip.dev/bib/pkg/collection"
	"tableflip.dev/bib/pkg/session"
)

// SaveSession remembers the open files that exist on disk, their view
// states and, when configured, the imported string files.
func (s *Service) SaveSession() error {
	if s.session == nil {
		return nil
	}
	var metas []collection.Meta
	for _, d := range s.Documents() {
		if d.File.Created {
			continue
		}
		metas = append(metas, collection.Meta{Name: d.Name(), State: d.View.State()})
	}
	if err := s.session.SetOpenFiles(metas); err != nil {
		return err
	}
	var strings []string
	if s.Store.Config().RememberStrings {
		strings = s.Store.StringFiles()
	}
	return s.session.SetStringFiles(strings)
}

// SetOpenTab remembers the document that has focus.
func (s *Service) SetOpenTab(name string) error {
	if s.session == nil {
		return nil
	}
	return s.session.SetOpenTab(name)
}

// Restore imports the remembered string files and returns the files to
// reopen together with the name of the one that had focus.
func (s *Service) Restore() ([]OpenRequest, string, error) {
	if s.session == nil {
		return nil, "", nil
	}
	if s.Store.Config().RememberStrings {
		paths, err := s.session.StringFiles()
		if err != nil {
			return nil, "", err
		}
		for _, path := range paths {
			s.ImportStrings(path)
		}
	}
	metas, err := s.session.OpenFiles()
	if err != nil {
		return nil, "", err
	}
	reqs := make([]OpenRequest, 0, len(metas))
	for _, m := range metas {
		reqs = append(reqs, OpenRequest{Name: m.Name, State: m.State})
	}
	return reqs, s.session.OpenTab(), nil
}

// Recent returns the recently closed files, most recent first.
func (s *Service) Recent(ctx context.Context) []session.Recent {
	if s.session == nil {
		return nil
	}
	return s.session.Recent(ctx)
}

// OpenRecent reopens a recent file with the view it was closed with.
func (s *Service) OpenRecent(ctx context.Context, name string) OpenRequest {
	for _, r := range s.Recent(ctx) {
		if r.Name == name {
			return OpenRequest{Name: r.Name, State: r.State}
		}
	}
	return OpenRequest{Name: name}
}

func (s *Service) addRecent(d *Document) {
	if s.session == nil {
		return
	}
	err := s.session.AddRecent(s.ctx, d.Name(), d.View.State(), s.Store.Config().NumRecent)
	if err != nil {
		s.log.Warn(s.ctx, "add recent", "name", d.Name(), "err", err)
	}
}

// RememberStringFiles stores the imported string files for the next session
// without touching the remembered open files.
func (s *Service) RememberStringFiles() error {
	if s.session == nil {
		return nil
	}
	return s.session.SetStringFiles(s.Store.StringFiles())
}
