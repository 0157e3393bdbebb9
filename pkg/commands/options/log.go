package options

import (
	"os"

	"github.com/spf13/cobra"

	"tableflip.dev/bib/pkg/logging"
)

// LogOptions
type LogOptions struct {
	Verbose bool
	Level   string
}

func AddLogArgs(cmd *cobra.Command, o *LogOptions) {
	cmd.PersistentFlags().BoolVarP(&o.Verbose, "verbose", "v", false,
		"Log debug messages to stderr.")
	cmd.PersistentFlags().StringVar(&o.Level, "log-level", "warn",
		"Log level written to stderr, one of debug, info, warn or error.")
}

// Logger writes to stderr at the requested level.
func (o *LogOptions) Logger() logging.Logger {
	level := o.Level
	if o.Verbose {
		level = "debug"
	}
	return logging.New(os.Stderr, level)
}
