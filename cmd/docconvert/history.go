// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/docconvert/internal/journal"
	"github.com/pdiddy/docconvert/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List or export past conversions",
	Long: `History lists the conversions recorded in the local SQLite journal,
newest first. Use --yaml or --json to export the entries instead.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum number of entries")
	historyCmd.Flags().String("status", "", "filter by status: ok or error")
	historyCmd.Flags().String("method", "", "filter by method: native, ocr_sandwich, office, or failed")
	historyCmd.Flags().Bool("yaml", false, "export as YAML")
	historyCmd.Flags().Bool("json", false, "export as JSON")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(viper.GetViper())
	store, err := journal.Open(cfg.Journal)
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	status, _ := cmd.Flags().GetString("status")
	method, _ := cmd.Flags().GetString("method")
	q := journal.Query{
		Status: types.OutcomeStatus(status),
		Method: types.Method(method),
		Limit:  limit,
	}

	asYAML, _ := cmd.Flags().GetBool("yaml")
	asJSON, _ := cmd.Flags().GetBool("json")
	switch {
	case asYAML && asJSON:
		return fmt.Errorf("--yaml and --json are mutually exclusive")
	case asYAML:
		return store.Export(cmd.Context(), cmd.OutOrStdout(), q, journal.FormatYAML)
	case asJSON:
		return store.Export(cmd.Context(), cmd.OutOrStdout(), q, journal.FormatJSON)
	}

	entries, err := store.List(cmd.Context(), q)
	if err != nil {
		return err
	}
	sum, err := store.Summarize(cmd.Context())
	if err != nil {
		return err
	}
	formatHistory(cmd.OutOrStdout(), entries, sum)
	return nil
}

func formatHistory(w io.Writer, entries []journal.Entry, sum journal.Summary) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No conversions recorded.")
		return
	}

	fmt.Fprintf(w, "%-20s  %-6s  %-12s  %-40s  %s\n", "When", "Status", "Method", "Input", "Message")
	fmt.Fprintln(w, strings.Repeat("-", 110))
	for _, e := range entries {
		input := e.Input
		if len(input) > 40 {
			input = "..." + input[len(input)-37:]
		}
		fmt.Fprintf(w, "%-20s  %-6s  %-12s  %-40s  %s\n",
			e.CreatedAt.Local().Format("2006-01-02 15:04:05"), e.Status, e.Method, input, e.Message)
	}
	fmt.Fprintf(w, "\n%d ok, %d error (all time)\n", sum.OK, sum.Error)
}
