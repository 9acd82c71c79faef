package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gonum.org/v1/plot/vg"

	"github.com/user/idf_analyzer_go/internal/analysis"
	"github.com/user/idf_analyzer_go/internal/batch"
	"github.com/user/idf_analyzer_go/internal/config"
	"github.com/user/idf_analyzer_go/internal/queue"
	"github.com/user/idf_analyzer_go/internal/report"
	"github.com/user/idf_analyzer_go/internal/summary"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var (
		workers     int
		batchReport string
		noReport    bool
		noExport    bool
	)

	cmd := &cobra.Command{
		Use:   "analyze [files...]",
		Short: "Analyse the given IDF files, or every file in the queue file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}

			files := args
			if len(files) == 0 {
				names, err := queue.Read(cfg.Paths.QueueFile, cfg.Queue.Sorted)
				if err != nil {
					return err
				}
				files = queue.Resolve(cfg.Paths.DataDir, names)
				logger.Info("queue loaded", zap.String("queue_file", cfg.Paths.QueueFile), zap.Int("files", len(files)))
			}

			sink, closeSink, err := openSinks(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeSink()

			opts := batch.Options{
				OutputDir:     cfg.Paths.OutputDir,
				ScanIDLength:  cfg.Analysis.ScanIDLength,
				Workers:       cfg.Analysis.Workers,
				Sink:          sink,
				ExportEnabled: cfg.Export.Enabled && !noExport,
				ReportEnabled: cfg.Report.Enabled && !noReport,
				PlotOptions: report.PlotOptions{
					Width:  vg.Points(cfg.Report.WidthPt),
					Height: vg.Points(cfg.Report.HeightPt),
				},
				BatchPDFPath: batchReport,
				Logger:       logger,
			}
			if cmd.Flags().Changed("workers") {
				opts.Workers = workers
			}

			rep, err := batch.Run(cmd.Context(), files, opts)
			if rep != nil {
				fmt.Fprintln(cmd.OutOrStdout(), renderOutcomes(rep))
			}
			if err != nil {
				return err
			}
			analyzed, skipped, failed := rep.Counts()
			fmt.Fprintf(cmd.OutOrStdout(), "%d analyzed, %d skipped, %d failed (batch %s)\n", analyzed, skipped, failed, rep.BatchID)
			return nil
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", 1, "Number of files analysed in parallel (overrides analysis.workers)")
	cmd.Flags().StringVar(&batchReport, "batch-report", "", "Also write a PDF overview of the whole batch to this path")
	cmd.Flags().BoolVar(&noReport, "no-report", false, "Skip per-run charts and PDF pages")
	cmd.Flags().BoolVar(&noExport, "no-export", false, "Skip per-run .dat tables")
	return cmd
}

// openSinks builds the summary sinks named in cfg. The returned func closes them.
func openSinks(ctx context.Context, cfg *config.Config) (summary.Sink, func(), error) {
	sinks := summary.MultiSink{summary.NewCSVWriter(cfg.Summary.CSVPath, cfg.Summary.WriteHeader)}
	closeFn := func() {}
	if cfg.Summary.SQLitePath != "" {
		store, err := summary.OpenSQLite(ctx, cfg.Summary.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, store)
		closeFn = func() { _ = store.Close() }
	}
	return sinks, closeFn, nil
}

func renderOutcomes(rep *batch.Report) string {
	rows := make([][]string, 0, len(rep.Results))
	for _, res := range rep.Results {
		row := []string{res.ScanID, res.Outcome.String(), "", "", ""}
		if res.Summary != nil {
			row[2] = res.Summary.TechniqueName
			row[3] = fmt.Sprintf("%.6f", res.Summary.Stats.TotalCharge)
		}
		if res.Outcome != analysis.OutcomeAnalyzed && res.Err != nil {
			row[4] = res.Err.Error()
		}
		rows = append(rows, row)
	}
	return renderTable(
		[]string{"Scan ID", "Outcome", "Technique", "Charge (mAh)", "Detail"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
	)
}
