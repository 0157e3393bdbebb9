package commands

import (
	"context"

	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/bib/pkg/commands/options"
	"tableflip.dev/bib/pkg/runner/format"
)

func addFmt(topLevel *cobra.Command) {
	vo := &options.ViewOptions{}
	stdout := false
	force := false

	cmd := &cobra.Command{
		Use:   "fmt FILE...",
		Short: "Rewrite BibTeX files in canonical form.",
		Long: base.Wrap80(`Rewrite BibTeX files with aligned fields, entries in the requested order and string definitions first.
Hidden entries are written too.`),
		Example: `
bib fmt refs.bib
bib fmt refs.bib --sort year --stdout
`,
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: bibFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			view, err := vo.View()
			if err != nil {
				return err
			}
			svc, err := loadService(serviceOptions{readOnly: stdout})
			if err != nil {
				return output.HandleError(err)
			}
			f := format.Format{
				Service: svc,
				Files:   args,
				View:    view,
				Stdout:  stdout,
				Force:   force,
			}
			return output.HandleError(f.Do(context.Background()))
		},
	}

	cmd.Flags().StringVarP(&vo.Sort, "sort", "s", "", "Order entries by a field.")
	cmd.Flags().BoolVar(&vo.Descending, "desc", false, "Order in descending order.")
	cmd.Flags().BoolVar(&stdout, "stdout", false, "Print the result instead of saving.")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Save even with empty or duplicate keys.")

	topLevel.AddCommand(cmd)
}
