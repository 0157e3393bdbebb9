package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/bib/pkg/runner/types"
)

func addTypes(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "types [FILE...]",
		Short: "Show the entry types used by --type, with counts per file.",
		Example: `
bib types
bib types refs.bib
`,
		ValidArgsFunction: bibFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			svc, err := loadService(serviceOptions{readOnly: true})
			if err != nil {
				return output.HandleError(err)
			}
			t := types.Types{
				Service: svc,
				Files:   args,
				JSON:    output.JSON,
				Encode:  output.Encode,
			}
			return output.HandleError(t.Do(context.Background()))
		},
	}

	topLevel.AddCommand(cmd)
}
