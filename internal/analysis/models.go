package analysis

import "github.com/user/idf_analyzer_go/internal/parser"

// RunSeries holds the time series of one run. All four slices share the
// same length, which is the point count of the data block.
type RunSeries struct {
	Time    []float64 // s
	Current []float64 // A
	Voltage []float64 // V
	Charge  []float64 // cumulative, mAh
}

// Len returns the number of samples in the series.
func (s *RunSeries) Len() int { return len(s.Time) }

// RunStats summarises a run.
type RunStats struct {
	DurationSeconds float64
	TotalCharge     float64 // mAh
	CurrentMin      float64 // A
	CurrentMax      float64 // A
	VoltageMin      float64 // V
	VoltageMax      float64 // V
}

// RunSummary is the per-file result handed to the plotting and persistence collaborators.
type RunSummary struct {
	ScanID        string
	Technique     Technique
	TechniqueName string // as written in the file
	Title         string
	Stats         RunStats
	Metadata      parser.Metadata
}

// Outcome tags the result of analysing one file.
type Outcome int

const (
	OutcomeAnalyzed Outcome = iota
	OutcomeSkipped
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAnalyzed:
		return "analyzed"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	}
	return "unknown"
}

// Result is the tagged outcome of AnalyzeRun. Summary and Series are set only
// when Outcome is OutcomeAnalyzed; Err is set otherwise.
type Result struct {
	Outcome Outcome
	Summary *RunSummary
	Series  *RunSeries
	Err     error
}
