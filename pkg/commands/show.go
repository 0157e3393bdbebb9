package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/bib/pkg/commands/options"
	"tableflip.dev/bib/pkg/runner/show"
)

func addShow(topLevel *cobra.Command) {
	eo := &options.EntryOptions{}
	source := false

	cmd := &cobra.Command{
		Use:   "show FILE",
		Short: "Show the fields of one entry.",
		Example: `
bib show refs.bib --key Smith2020
bib show refs.bib --index 3 --source
`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: bibFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			svc, err := loadService(serviceOptions{readOnly: true})
			if err != nil {
				return output.HandleError(err)
			}
			s := show.Show{
				Service: svc,
				File:    args[0],
				Key:     eo.Key,
				Index:   eo.Index,
				Source:  source,
				JSON:    output.JSON,
				Encode:  output.Encode,
			}
			return output.HandleError(s.Do(context.Background()))
		},
	}

	options.AddEntryArgs(cmd, eo)
	cmd.Flags().BoolVar(&source, "source", false, "Print the BibTeX source of the entry.")

	topLevel.AddCommand(cmd)
}
