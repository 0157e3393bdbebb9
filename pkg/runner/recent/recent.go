package recent

import (
	"context"
	"io"
	"time"

	"tableflip.dev/bib/pkg/app"
	"tableflip.dev/bib/pkg/printers"
	"tableflip.dev/bib/pkg/runner"
	"tableflip.dev/bib/pkg/session"
	"tableflip.dev/bib/pkg/timeutil"
)

// Recent lists the files closed within Window, most recent first.
type Recent struct {
	Service *app.Service
	Window  time.Duration
	Now     func() time.Time
	JSON    bool
	Out     io.Writer
	Encode  func(any) error
}

func (n *Recent) Do(ctx context.Context) error {
	if n.Service == nil {
		return runner.ErrNoService
	}
	now := time.Now()
	if n.Now != nil {
		now = n.Now()
	}

	var recent []session.Recent
	for _, r := range n.Service.Recent(ctx) {
		if n.Window <= 0 || timeutil.Within(now, r.Closed.Time, n.Window) {
			recent = append(recent, r)
		}
	}

	if n.JSON && n.Encode != nil {
		if recent == nil {
			recent = []session.Recent{}
		}
		return n.Encode(recent)
	}
	pp := printers.PrettyPrint{Out: n.Out}
	pp.Recent(now, recent...)
	return nil
}
