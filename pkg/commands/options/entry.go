package options

import (
	"github.com/spf13/cobra"
)

// EntryOptions pick an entry of a file by key or by index.
type EntryOptions struct {
	Key   string
	Index int
}

func AddEntryArgs(cmd *cobra.Command, o *EntryOptions) {
	cmd.Flags().StringVarP(&o.Key, "key", "k", "",
		"Select the entry with this key.")
	cmd.Flags().IntVar(&o.Index, "index", -1,
		"Select the entry at this index, as shown by list --show-index.")
}
