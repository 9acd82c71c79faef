package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/idf_analyzer_go/internal/summary"
)

func newSummaryCommand(ctx *commandContext) *cobra.Command {
	summaryCmd := &cobra.Command{
		Use:   "summary",
		Short: "Inspect the cumulative summary table",
	}
	summaryCmd.AddCommand(newSummaryShowCommand(ctx))
	return summaryCmd
}

func newSummaryShowCommand(ctx *commandContext) *cobra.Command {
	var (
		fromDB  bool
		batchID string
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the summary rows recorded so far",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			var records []summary.Record
			var batches []string
			if fromDB {
				if cfg.Summary.SQLitePath == "" {
					return fmt.Errorf("summary.sqlite_path is not configured")
				}
				store, err := summary.OpenSQLite(cmd.Context(), cfg.Summary.SQLitePath)
				if err != nil {
					return err
				}
				defer store.Close()
				stored, err := store.List(cmd.Context(), batchID)
				if err != nil {
					return err
				}
				for _, s := range stored {
					records = append(records, s.Record)
					batches = append(batches, s.BatchID)
				}
			} else {
				if batchID != "" {
					return fmt.Errorf("--batch requires --db")
				}
				records, err = summary.ReadCSV(cfg.Summary.CSVPath)
				if err != nil {
					return err
				}
			}

			headers := append([]string{}, summary.Columns...)
			if fromDB {
				headers = append(headers, "Batch")
			}
			rows := make([][]string, len(records))
			for i, r := range records {
				rows[i] = r.Strings()
				if fromDB {
					rows[i] = append(rows[i], batches[i])
				}
			}
			aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, aligns))
			return nil
		},
	}
	cmd.Flags().BoolVar(&fromDB, "db", false, "Read from the SQLite store instead of the CSV table")
	cmd.Flags().StringVar(&batchID, "batch", "", "Only show rows from this batch (requires --db)")
	return cmd
}
