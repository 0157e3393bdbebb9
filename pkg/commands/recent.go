package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/bib/pkg/commands/options"
	"tableflip.dev/bib/pkg/runner/recent"
)

func addRecent(topLevel *cobra.Command) {
	wo := &options.WithinOptions{}

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List recently closed files.",
		Example: `
bib recent
bib recent --within 3d
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			window, err := wo.Window()
			if err != nil {
				return err
			}
			svc, err := loadService(serviceOptions{readOnly: true})
			if err != nil {
				return output.HandleError(err)
			}
			r := recent.Recent{
				Service: svc,
				Window:  window,
				JSON:    output.JSON,
				Encode:  output.Encode,
			}
			return output.HandleError(r.Do(context.Background()))
		},
	}

	options.AddWithinArgs(cmd, wo)

	topLevel.AddCommand(cmd)
}
