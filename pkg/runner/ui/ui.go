package ui

import (
	"context"
	"path/filepath"

	"tableflip.dev/bib/pkg/app"
	"tableflip.dev/bib/pkg/runner"
	"tableflip.dev/bib/pkg/tui"
)

// UI opens the named files in the terminal editor. Without files the last
// session is restored, or an empty file is created.
type UI struct {
	Service *app.Service
	Files   []string
}

func (n *UI) Do(ctx context.Context) error {
	reqs, focus, err := n.requests(ctx)
	if err != nil {
		return err
	}
	if len(reqs) == 0 {
		n.Service.NewFile()
	}
	return tui.Run(ctx, n.Service, reqs, focus)
}

func (n *UI) requests(ctx context.Context) ([]app.OpenRequest, string, error) {
	if n.Service == nil {
		return nil, "", runner.ErrNoService
	}
	if len(n.Files) == 0 {
		return n.Service.Restore()
	}
	paths := make([]string, 0, len(n.Files))
	for _, f := range n.Files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, "", err
		}
		paths = append(paths, abs)
	}
	reqs := make([]app.OpenRequest, 0, len(paths))
	for _, p := range paths {
		reqs = append(reqs, n.Service.OpenRecent(ctx, p))
	}
	return reqs, "", nil
}
