package options

import (
	"fmt"

	"github.com/spf13/cobra"

	"tableflip.dev/bib/pkg/collection"
	"tableflip.dev/bib/pkg/collection/viewmodel"
)

// ViewOptions select and order the entries of a file.
type ViewOptions struct {
	Sort       string
	Descending bool
	Types      []string
	Search     string
	ShowIndex  bool
}

func AddViewArgs(cmd *cobra.Command, o *ViewOptions) {
	cmd.Flags().StringVarP(&o.Sort, "sort", "s", "",
		"Sort by a field, for example ID, author, title, journal or year.")
	cmd.Flags().BoolVar(&o.Descending, "desc", false,
		"Sort in descending order.")
	cmd.Flags().StringSliceVarP(&o.Types, "type", "t", nil,
		"Only show entries of these types, for example article or book.")
	cmd.Flags().StringVarP(&o.Search, "search", "q", "",
		"Only show entries matching all words; field:word limits a word to a field.")
	cmd.Flags().BoolVarP(&o.ShowIndex, "show-index", "i", false,
		"Show the index of every entry.")
	_ = cmd.RegisterFlagCompletionFunc("type", typeCompletions)
}

func typeCompletions(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	all := collection.AllTypes()
	names := make([]string, 0, len(all))
	for _, t := range all {
		names = append(names, string(t))
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

// View builds the view model these options describe.
func (o *ViewOptions) View() (*viewmodel.View, error) {
	var opts []viewmodel.Option
	if o.Sort != "" {
		opts = append(opts, viewmodel.WithSortKey(o.Sort))
	}
	v := viewmodel.New(opts...)
	v.Descending = o.Descending
	if len(o.Types) > 0 {
		types := make([]collection.Type, 0, len(o.Types))
		for _, raw := range o.Types {
			t, err := collection.ParseType(raw)
			if err != nil {
				return nil, fmt.Errorf("--type: %w", err)
			}
			types = append(types, t)
		}
		v.ShowOnly(types...)
	}
	v.Search = o.Search
	return v, nil
}
