// Package summary persists one row per analysed run to the cumulative summary table.
package summary

import (
	"context"
	"fmt"
	"strconv"

	"github.com/user/idf_analyzer_go/internal/analysis"
)

// Columns is the fixed column order of the summary table.
var Columns = []string{
	"Scan ID",
	"Technique",
	"Title",
	"Charge",
	"µAmps min",
	"µAmps max",
	"Volts min",
	"Volts max",
}

// Sink receives one summary per successfully analysed file.
type Sink interface {
	Append(ctx context.Context, batchID string, s *analysis.RunSummary) error
}

// Record is a summary row in display units: charge in mAh, current in µA, voltage in V.
type Record struct {
	ScanID       string
	Technique    string
	Title        string
	Charge       float64
	MicroAmpsMin float64
	MicroAmpsMax float64
	VoltsMin     float64
	VoltsMax     float64
}

// NewRecord converts a run summary into summary-table units.
func NewRecord(s *analysis.RunSummary) Record {
	return Record{
		ScanID:       s.ScanID,
		Technique:    s.TechniqueName,
		Title:        s.Title,
		Charge:       s.Stats.TotalCharge,
		MicroAmpsMin: s.Stats.CurrentMin * 1.0e6,
		MicroAmpsMax: s.Stats.CurrentMax * 1.0e6,
		VoltsMin:     s.Stats.VoltageMin,
		VoltsMax:     s.Stats.VoltageMax,
	}
}

// Strings renders the record in Columns order.
func (r Record) Strings() []string {
	return []string{
		r.ScanID,
		r.Technique,
		r.Title,
		formatFloat(r.Charge),
		formatFloat(r.MicroAmpsMin),
		formatFloat(r.MicroAmpsMax),
		formatFloat(r.VoltsMin),
		formatFloat(r.VoltsMax),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func recordFromStrings(row []string) (Record, error) {
	rec := Record{ScanID: row[0], Technique: row[1], Title: row[2]}
	targets := []*float64{&rec.Charge, &rec.MicroAmpsMin, &rec.MicroAmpsMax, &rec.VoltsMin, &rec.VoltsMax}
	for i, dst := range targets {
		v, err := strconv.ParseFloat(row[3+i], 64)
		if err != nil {
			return Record{}, fmt.Errorf("column %q: %w", Columns[3+i], err)
		}
		*dst = v
	}
	return rec, nil
}

// MultiSink appends to each sink in order and stops at the first error.
type MultiSink []Sink

func (m MultiSink) Append(ctx context.Context, batchID string, s *analysis.RunSummary) error {
	for _, sink := range m {
		if err := sink.Append(ctx, batchID, s); err != nil {
			return err
		}
	}
	return nil
}
