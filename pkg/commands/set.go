package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/bib/pkg/commands/options"
	"tableflip.dev/bib/pkg/runner/set"
)

func addSet(topLevel *cobra.Command) {
	eo := &options.EntryOptions{}
	source := ""
	force := false

	cmd := &cobra.Command{
		Use:   "set FILE [FIELD VALUE]",
		Short: "Change a field of one entry, or replace its source.",
		Long: base.Wrap80(`Change a field of one entry and save the file. An empty value removes the field, the field ID changes the key.
With --source the whole entry is replaced by the given BibTeX text.`),
		Example: `
bib set refs.bib --key Smith2020 title "A {B}etter Title"
bib set refs.bib --key Smith2020 ID Smith2021
bib set refs.bib --index 0 --source "@book{Doe, title = {T}}"
`,
		Args: func(cmd *cobra.Command, args []string) error {
			if source != "" {
				return cobra.ExactArgs(1)(cmd, args)
			}
			if len(args) != 3 {
				return errors.New("expected FILE FIELD VALUE")
			}
			return nil
		},
		ValidArgsFunction: bibFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			svc, err := loadService(serviceOptions{})
			if err != nil {
				return output.HandleError(err)
			}
			s := set.Set{
				Service: svc,
				File:    args[0],
				Key:     eo.Key,
				Index:   eo.Index,
				Source:  source,
				Force:   force,
			}
			if len(args) == 3 {
				s.Field, s.Value = args[1], args[2]
			}
			return output.HandleError(s.Do(context.Background()))
		},
	}

	options.AddEntryArgs(cmd, eo)
	cmd.Flags().StringVar(&source, "source", "", "Replace the entry by this BibTeX source.")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Save even with empty or duplicate keys.")

	topLevel.AddCommand(cmd)
}
