// Package batch runs the analysis pipeline over a list of instrument files and
// hands each successful run to the export, report and summary collaborators.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/user/idf_analyzer_go/internal/analysis"
	"github.com/user/idf_analyzer_go/internal/export"
	"github.com/user/idf_analyzer_go/internal/queue"
	"github.com/user/idf_analyzer_go/internal/report"
	"github.com/user/idf_analyzer_go/internal/summary"
)

// ErrNotProcessed marks a file the batch never reached before it was interrupted.
var ErrNotProcessed = errors.New("not processed: batch interrupted")

// Options configures a batch run.
type Options struct {
	OutputDir     string
	ScanIDLength  int
	Workers       int
	Sink          summary.Sink // nil disables the summary table
	ExportEnabled bool
	ReportEnabled bool
	PlotOptions   report.PlotOptions
	BatchPDFPath  string // optional overview PDF
	Logger        *zap.Logger
}

// FileResult is the outcome for one queued file.
type FileResult struct {
	File       string
	ScanID     string
	Outcome    analysis.Outcome
	Summary    *analysis.RunSummary
	Err        error
	ExportPath string
	ReportPath string

	plot []byte
}

// Report collects every file's outcome in input order.
type Report struct {
	BatchID string
	Results []FileResult
}

// Counts returns the number of analyzed, skipped and failed files.
func (r *Report) Counts() (analyzed, skipped, failed int) {
	for _, res := range r.Results {
		switch res.Outcome {
		case analysis.OutcomeAnalyzed:
			analyzed++
		case analysis.OutcomeSkipped:
			skipped++
		default:
			failed++
		}
	}
	return analyzed, skipped, failed
}

// Run processes files and never stops on a per-file failure. The returned
// error is non-nil only when ctx is cancelled or the batch report cannot be written.
func Run(ctx context.Context, files []string, opts Options) (*Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	if opts.OutputDir != "" && (opts.ExportEnabled || opts.ReportEnabled) {
		if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}

	rep := &Report{
		BatchID: uuid.NewString(),
		Results: make([]FileResult, len(files)),
	}
	logger = logger.With(zap.String("batch_id", rep.BatchID))
	logger.Info("batch started", zap.Int("files", len(files)), zap.Int("workers", workers))

	p := &processor{opts: opts, batchID: rep.BatchID, logger: logger}
	for i, file := range files {
		rep.Results[i] = FileResult{
			File:    file,
			ScanID:  queue.ScanID(file, opts.ScanIDLength),
			Outcome: analysis.OutcomeFailed,
			Err:     ErrNotProcessed,
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				rep.Results[i].Err = fmt.Errorf("%w: %w", ErrNotProcessed, err)
				return err
			}
			rep.Results[i] = p.process(gctx, file)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return rep, fmt.Errorf("batch interrupted: %w", err)
	}

	analyzed, skipped, failed := rep.Counts()
	logger.Info("batch finished",
		zap.Int("analyzed", analyzed),
		zap.Int("skipped", skipped),
		zap.Int("failed", failed))

	if opts.BatchPDFPath != "" {
		if err := report.BuildBatchPDF(opts.BatchPDFPath, rep.BatchID, rep.entries(), logger); err != nil {
			return rep, err
		}
		logger.Info("batch report written", zap.String("path", opts.BatchPDFPath))
	}
	return rep, nil
}

func (r *Report) entries() []report.BatchEntry {
	out := make([]report.BatchEntry, len(r.Results))
	for i, res := range r.Results {
		e := report.BatchEntry{
			File:    filepath.Base(res.File),
			ScanID:  res.ScanID,
			Outcome: res.Outcome,
			Summary: res.Summary,
			Plot:    res.plot,
		}
		if res.Err != nil {
			e.Detail = res.Err.Error()
		}
		out[i] = e
	}
	return out
}

type processor struct {
	opts    Options
	batchID string
	logger  *zap.Logger
}

func (p *processor) process(ctx context.Context, file string) FileResult {
	res := FileResult{File: file, ScanID: queue.ScanID(file, p.opts.ScanIDLength)}
	log := p.logger.With(zap.String("file", filepath.Base(file)), zap.String("scan_id", res.ScanID))
	log.Debug("processing file")

	raw, err := os.ReadFile(file)
	if err != nil {
		res.Outcome, res.Err = analysis.OutcomeFailed, fmt.Errorf("read input: %w", err)
		log.Error("file failed", zap.Error(res.Err))
		return res
	}

	out := analysis.AnalyzeRun(res.ScanID, raw)
	res.Outcome, res.Err = out.Outcome, out.Err
	switch out.Outcome {
	case analysis.OutcomeSkipped:
		log.Warn("file skipped", zap.Error(out.Err))
		return res
	case analysis.OutcomeFailed:
		log.Error("file failed", zap.Error(out.Err))
		return res
	}

	if err := p.deliver(ctx, &res, out); err != nil {
		res.Outcome, res.Err, res.Summary = analysis.OutcomeFailed, err, nil
		log.Error("file failed", zap.Error(err))
		return res
	}

	log.Info("file analyzed",
		zap.String("technique", out.Summary.TechniqueName),
		zap.Int("points", out.Series.Len()),
		zap.Float64("charge_mah", out.Summary.Stats.TotalCharge))
	return res
}

// deliver runs the per-run collaborators. The summary row is appended last so
// a failure in any earlier step leaves the table untouched.
func (p *processor) deliver(ctx context.Context, res *FileResult, out analysis.Result) error {
	sum := out.Summary

	if p.opts.ExportEnabled {
		path, err := export.WriteDatFile(p.opts.OutputDir, res.ScanID, out.Series)
		if err != nil {
			return err
		}
		res.ExportPath = path
	}

	if p.opts.ReportEnabled {
		img, err := report.CreateRunPlot(res.ScanID, out.Series, sum.Title, sum.TechniqueName, p.opts.PlotOptions)
		if err != nil {
			return err
		}
		path := filepath.Join(p.opts.OutputDir, report.RunPDFName(res.ScanID))
		if err := report.BuildRunPDF(path, sum, img, p.logger); err != nil {
			return err
		}
		res.ReportPath = path
		if p.opts.BatchPDFPath != "" {
			res.plot = img
		}
	}

	if p.opts.Sink != nil {
		if err := p.opts.Sink.Append(ctx, p.batchID, sum); err != nil {
			return fmt.Errorf("append summary row: %w", err)
		}
	}
	res.Summary = sum
	return nil
}
