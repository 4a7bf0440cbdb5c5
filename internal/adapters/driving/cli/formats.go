package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List supported input formats",
	RunE:  runFormats,
}

func init() {
	rootCmd.AddCommand(formatsCmd)
}

func runFormats(cmd *cobra.Command, _ []string) error {
	if conversionService == nil {
		return errNotConfigured("conversion")
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "EXTENSION\tMIME TYPE\tDESCRIPTION")
	for _, f := range conversionService.Formats() {
		fmt.Fprintf(w, "%s\t%s\t%s\n", f.Extension(), f.MIMEType(), f.Description())
	}
	return w.Flush()
}
