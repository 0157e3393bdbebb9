package commands

import (
	"context"

	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/bib/pkg/runner/keygen"
)

func addKeyGen(topLevel *cobra.Command) {
	all := false
	dryRun := false
	force := false

	cmd := &cobra.Command{
		Use:   "keygen FILE",
		Short: "Generate keys for entries without one.",
		Long: base.Wrap80(`Generate keys of the form AuthorYear for every entry without a key, or for all entries with --all.
Keys already taken get a letter suffix.`),
		Example: `
bib keygen refs.bib
bib keygen refs.bib --all --dry-run
`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: bibFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			svc, err := loadService(serviceOptions{readOnly: dryRun})
			if err != nil {
				return output.HandleError(err)
			}
			k := keygen.KeyGen{
				Service: svc,
				File:    args[0],
				All:     all,
				DryRun:  dryRun,
				Force:   force,
			}
			return output.HandleError(k.Do(context.Background()))
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Regenerate the keys of all entries.")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Print the new keys without saving.")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Save even with duplicate keys.")

	topLevel.AddCommand(cmd)
}
