package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/officepdf/internal/core/domain"
)

var (
	historyLimit  int
	historyOutput string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent conversions",
	Long: `Show recent conversions, newest first.

Only metadata is recorded: file names, sizes, formats and outcomes.
Document content and passwords are never stored.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all recorded conversions",
	Args:  cobra.NoArgs,
	RunE:  runHistoryClear,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of entries (-1 for all)")
	historyCmd.Flags().StringVarP(&historyOutput, "output", "o", "table", "output format: table, json or yaml")
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if historyService == nil {
		return errNotConfigured("history")
	}

	records, err := historyService.List(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}
	if records == nil {
		records = []domain.ConversionRecord{}
	}

	switch historyOutput {
	case "json":
		return outputHistoryJSON(cmd, records)
	case "yaml":
		return outputHistoryYAML(cmd, records)
	case "table", "":
		return outputHistoryTable(cmd, records)
	default:
		return fmt.Errorf("%w: output %q (expected table, json or yaml)", domain.ErrInvalidInput, historyOutput)
	}
}

func runHistoryClear(cmd *cobra.Command, _ []string) error {
	if historyService == nil {
		return errNotConfigured("history")
	}
	if err := historyService.Clear(cmd.Context()); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	cmd.Println("History cleared.")
	return nil
}

func outputHistoryJSON(cmd *cobra.Command, records []domain.ConversionRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputHistoryYAML(cmd *cobra.Command, records []domain.ConversionRecord) error {
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}
	return enc.Close()
}

func outputHistoryTable(cmd *cobra.Command, records []domain.ConversionRecord) error {
	if len(records) == 0 {
		cmd.Println("No conversions recorded.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tFILE\tSIZE\tSTATUS\tRESULT")
	for i := range records {
		r := &records[i]
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			humanize.Time(r.FinishedAt),
			r.SourceName,
			humanize.Bytes(uint64(max(r.SourceSize, 0))),
			r.Status,
			historyResult(r),
		)
	}
	return w.Flush()
}

func historyResult(r *domain.ConversionRecord) string {
	if r.Status == domain.StatusFailed {
		return r.Reason
	}
	result := fmt.Sprintf("%s (%s, %s", r.OutputName, humanize.Bytes(uint64(max(r.OutputSize, 0))), r.Quality)
	if r.Encrypted {
		result += ", encrypted"
	}
	return result + ", " + r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String() + ")"
}
