package analysis

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/user/idf_analyzer_go/internal/parser"
)

// ErrDegenerateSeries is returned when a series is too short to integrate.
var ErrDegenerateSeries = errors.New("degenerate series: at least 2 samples are required")

// IntegrateCharge accumulates current over time with a left Riemann sum and
// returns the running charge in mAh. The spacing of the first two samples is
// used for the whole series; non-uniform sampling gives an approximate result.
func IntegrateCharge(time, current []float64) ([]float64, error) {
	if len(time) != len(current) {
		return nil, fmt.Errorf("time and current lengths differ: %d != %d", len(time), len(current))
	}
	n := len(time)
	if n < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrDegenerateSeries, n)
	}

	dt := time[1] - time[0]
	charge := make([]float64, n)
	charge[0] = current[0] * dt
	for i := 1; i < n; i++ {
		charge[i] = charge[i-1] + current[i]*dt // A*s
	}
	for i := range charge {
		charge[i] = charge[i] * 1000.0 / 3600.0 // mAh
	}
	return charge, nil
}

// ComputeStats derives the run statistics from a fully populated series.
func ComputeStats(s *RunSeries) (RunStats, error) {
	n := s.Len()
	if n == 0 || len(s.Charge) != n || len(s.Current) != n || len(s.Voltage) != n {
		return RunStats{}, fmt.Errorf("%w: series lengths time=%d current=%d voltage=%d charge=%d",
			ErrDegenerateSeries, n, len(s.Current), len(s.Voltage), len(s.Charge))
	}
	return RunStats{
		DurationSeconds: s.Time[n-1],
		TotalCharge:     s.Charge[n-1],
		CurrentMin:      floats.Min(s.Current),
		CurrentMax:      floats.Max(s.Current),
		VoltageMin:      floats.Min(s.Voltage),
		VoltageMax:      floats.Max(s.Voltage),
	}, nil
}

// BuildSeries resolves the technique of a parsed file, maps its columns and integrates charge.
func BuildSeries(f *parser.IDFFile) (Technique, *RunSeries, error) {
	tech, err := ResolveTechnique(f.Metadata.Technique)
	if err != nil {
		return tech, nil, err
	}
	series, err := MapColumns(tech, f.Block.Samples)
	if err != nil {
		return tech, nil, err
	}
	series.Charge, err = IntegrateCharge(series.Time, series.Current)
	if err != nil {
		return tech, nil, err
	}
	return tech, series, nil
}

// AnalyzeRun parses one file's contents and produces its summary. A file
// with an unknown technique yields OutcomeSkipped; any other error yields
// OutcomeFailed.
func AnalyzeRun(scanID string, contents []byte) Result {
	f, err := parser.ParseIDF(contents)
	if err != nil {
		return Result{Outcome: OutcomeFailed, Err: err}
	}

	tech, series, err := BuildSeries(f)
	if err != nil {
		var unknown *UnrecognizedTechniqueError
		if errors.As(err, &unknown) {
			return Result{Outcome: OutcomeSkipped, Err: err}
		}
		return Result{Outcome: OutcomeFailed, Err: err}
	}

	stats, err := ComputeStats(series)
	if err != nil {
		return Result{Outcome: OutcomeFailed, Err: err}
	}

	return Result{
		Outcome: OutcomeAnalyzed,
		Series:  series,
		Summary: &RunSummary{
			ScanID:        scanID,
			Technique:     tech,
			TechniqueName: f.Metadata.Technique,
			Title:         f.Metadata.Title,
			Stats:         stats,
			Metadata:      f.Metadata,
		},
	}
}
