package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/bib/pkg/runner/check"
)

func addCheck(topLevel *cobra.Command) {
	var stringFiles []string

	cmd := &cobra.Command{
		Use:   "check FILE...",
		Short: "Report missing keys, duplicate keys and undefined macros.",
		Example: `
bib check refs.bib
bib check refs.bib --strings journals.bib --json
`,
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: bibFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			svc, err := loadService(serviceOptions{readOnly: true})
			if err != nil {
				return output.HandleError(err)
			}
			c := check.Check{
				Service: svc,
				Files:   args,
				Strings: stringFiles,
				JSON:    output.JSON,
				Encode:  output.Encode,
			}
			return output.HandleError(c.Do(context.Background()))
		},
	}

	cmd.Flags().StringSliceVar(&stringFiles, "strings", nil, "Import string definitions from these files first.")
	_ = cmd.RegisterFlagCompletionFunc("strings", bibFiles)

	topLevel.AddCommand(cmd)
}
