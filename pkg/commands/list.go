package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/bib/pkg/commands/options"
	"tableflip.dev/bib/pkg/runner/list"
)

func addList(topLevel *cobra.Command) {
	vo := &options.ViewOptions{}

	cmd := &cobra.Command{
		Use:     "list FILE...",
		Aliases: []string{"ls"},
		Short:   "List the entries of BibTeX files.",
		Example: `
bib list refs.bib
bib list refs.bib --sort year --desc
bib list refs.bib --type article,book --search "author:smith gravity"
`,
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: bibFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			view, err := vo.View()
			if err != nil {
				return err
			}
			svc, err := loadService(serviceOptions{readOnly: true})
			if err != nil {
				return output.HandleError(err)
			}
			l := list.List{
				Service:   svc,
				Files:     args,
				View:      view,
				ShowIndex: vo.ShowIndex,
				JSON:      output.JSON,
				Encode:    output.Encode,
			}
			return output.HandleError(l.Do(context.Background()))
		},
	}

	options.AddViewArgs(cmd, vo)

	topLevel.AddCommand(cmd)
}
