package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newFieldsCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "fields",
		Short: "List indexed fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := root.loadIndex(root.logger(cmd))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Documents: %d\n", idx.Len())
			fmt.Fprintln(out, "Text fields:")
			for _, field := range idx.TextFields() {
				fmt.Fprintf(out, "  %s\n", field)
			}
			fmt.Fprintln(out, "Keyword fields:")
			for _, field := range idx.KeywordFields() {
				fmt.Fprintf(out, "  %s\n", field)
			}
			return nil
		},
	}
}
