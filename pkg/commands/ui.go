package commands

import (
	"context"

	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/bib/pkg/runner/ui"
)

func addUI(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "ui [FILE...]",
		Short: "Open the terminal editor.",
		Long: base.Wrap80(`Open the terminal editor on the given files. Without files the files of the last session are restored.
Press ? inside the editor for the key bindings.`),
		Example: `
bib ui
bib ui refs.bib other.bib
`,
		ValidArgsFunction: bibFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			svc, err := loadService(serviceOptions{watch: true})
			if err != nil {
				return err
			}
			i := ui.UI{Service: svc, Files: args}
			return i.Do(context.Background())
		},
	}

	topLevel.AddCommand(cmd)
}
