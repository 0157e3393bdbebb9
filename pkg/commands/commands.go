package commands

import (
	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/bib/pkg/app"
	"tableflip.dev/bib/pkg/commands/options"
	"tableflip.dev/bib/pkg/session"
	"tableflip.dev/bib/pkg/store"
)

var (
	output  = &options.OutputOptions{}
	logOpts = &options.LogOptions{}
)

func New() *cobra.Command {

	cmd := &cobra.Command{
		Use:   "bib",
		Short: base.Wrap80("Edit BibTeX bibliographies in the terminal or from scripts."),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	options.AddOutputArg(cmd, output)
	options.AddLogArgs(cmd, logOpts)

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addUI(topLevel)
	addList(topLevel)
	addShow(topLevel)
	addSet(topLevel)
	addKeyGen(topLevel)
	addFmt(topLevel)
	addCheck(topLevel)
	addStrings(topLevel)
	addRecent(topLevel)
	addTypes(topLevel)
	addVersion(topLevel)
	addCompletions(topLevel)
}

// serviceOptions tune loadService for one command.
type serviceOptions struct {
	// readOnly commands never write a backup.
	readOnly bool
	// watch starts the file watcher, which only the interactive editor needs.
	watch bool
}

// loadService reads the configuration, opens the session and wires the
// store and the application service.
func loadService(so serviceOptions) (*app.Service, error) {
	cfg, err := store.LoadConfig()
	if err != nil {
		return nil, err
	}
	if so.readOnly {
		cfg.CreateBackup = false
	}
	log := logOpts.Logger()

	st := store.New(cfg, store.WithLogger(log))
	sess, err := session.Open(cfg.SessionPath, session.WithLogger(log))
	if err != nil {
		return nil, err
	}

	opts := []app.Option{app.WithLogger(log), app.WithSession(sess)}
	if !so.watch {
		opts = append(opts, app.WithoutWatch())
	}
	return app.New(st, opts...), nil
}

// bibFiles completes file arguments to BibTeX files.
func bibFiles(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{"bib"}, cobra.ShellCompDirectiveFilterFileExt
}
