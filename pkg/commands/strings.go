package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/bib/pkg/runner/stringfiles"
)

func addStrings(topLevel *cobra.Command) {
	var forget []string
	remember := false
	duplicates := false
	file := ""
	set := map[string]string{}
	var unset []string
	force := false

	cmd := &cobra.Command{
		Use:   "strings [FILE...]",
		Short: "Show, import or forget global string definitions, or edit those of one file.",
		Long: base.Wrap80(`Import @string definitions from files into the global table used to expand macros.
Files imported earlier take precedence. With --remember the imported files are restored by the editor on the next start.
With --file the @string definitions of that file are changed by --set and --unset and the file is saved.`),
		Example: `
bib strings journals.bib
bib strings journals.bib --remember
bib strings --forget journals.bib
bib strings --duplicates
bib strings --file refs.bib --set jacm="Journal of the ACM" --unset tcs
`,
		ValidArgsFunction: bibFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			if file == "" && (len(set) > 0 || len(unset) > 0) {
				return errors.New("--set and --unset need --file")
			}
			svc, err := loadService(serviceOptions{readOnly: file == ""})
			if err != nil {
				return output.HandleError(err)
			}
			s := stringfiles.Strings{
				Service:    svc,
				Import:     args,
				Forget:     forget,
				Remember:   remember,
				Duplicates: duplicates,
				File:       file,
				Set:        set,
				Unset:      unset,
				Force:      force,
				JSON:       output.JSON,
				Encode:     output.Encode,
			}
			return output.HandleError(s.Do(context.Background()))
		},
	}

	cmd.Flags().StringSliceVar(&forget, "forget", nil, "Remove the definitions imported from these files.")
	cmd.Flags().BoolVar(&remember, "remember", false, "Remember the string files for the next session.")
	cmd.Flags().BoolVar(&duplicates, "duplicates", false, "Only show macros defined by more than one file.")
	cmd.Flags().StringVar(&file, "file", "", "Change the @string definitions of this file.")
	cmd.Flags().StringToStringVar(&set, "set", nil, "Define or replace a macro of --file, as name=value.")
	cmd.Flags().StringSliceVar(&unset, "unset", nil, "Remove a macro from --file.")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Save even with empty or duplicate keys.")
	_ = cmd.RegisterFlagCompletionFunc("forget", bibFiles)
	_ = cmd.RegisterFlagCompletionFunc("file", bibFiles)

	topLevel.AddCommand(cmd)
}
