package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"tableflip.dev/bib/pkg/app"
)

// Run shows the editor until the user quits.
func Run(ctx context.Context, svc *app.Service, reqs []app.OpenRequest, focus string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(New(ctx, svc, reqs, focus), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
