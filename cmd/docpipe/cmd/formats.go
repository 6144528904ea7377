package cmd

import (
	"fmt"

	"github.com/MeKo-Tech/docpipe/internal/format"
	"github.com/spf13/cobra"
)

// formatsCmd lists the supported input formats.
var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List supported input formats",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, f := range format.All() {
			kind := "declarative"
			if f.Paginated() {
				kind = "paginated"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s\n", f.String(), kind)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(formatsCmd)
}
