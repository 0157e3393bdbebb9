package options

import (
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/bib/pkg/timeutil"
)

// WithinOptions
type WithinOptions struct {
	Within string
}

func AddWithinArgs(cmd *cobra.Command, o *WithinOptions) {
	cmd.Flags().StringVarP(&o.Within, "within", "w", timeutil.DefaultWindow,
		`Only show files closed within this window, example: --within="1w2d".`)
}

func (o *WithinOptions) Window() (time.Duration, error) {
	d, _, err := timeutil.ParseWindow(o.Within)
	return d, err
}
