package report

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/vg"

	"github.com/user/idf_analyzer_go/internal/analysis"
	"github.com/user/idf_analyzer_go/internal/parser"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func testSeries(n int) *analysis.RunSeries {
	s := &analysis.RunSeries{
		Time:    make([]float64, n),
		Current: make([]float64, n),
		Voltage: make([]float64, n),
		Charge:  make([]float64, n),
	}
	for i := 0; i < n; i++ {
		s.Time[i] = float64(i)
		s.Current[i] = 1e-3 * math.Sin(float64(i)/5)
		s.Voltage[i] = 3 + 0.1*math.Cos(float64(i)/5)
	}
	return s
}

func testSummary() *analysis.RunSummary {
	interval := 1.0
	return &analysis.RunSummary{
		ScanID:        "0001",
		Technique:     analysis.TechniqueChronoAmperometry,
		TechniqueName: "ChronoAmperometry",
		Title:         "Na half cell µA",
		Stats:         analysis.RunStats{DurationSeconds: 49, TotalCharge: 0.01, CurrentMin: -1e-3, CurrentMax: 1e-3, VoltageMin: 2.9, VoltageMax: 3.1},
		Metadata:      parser.Metadata{Method: "TR", Interval: &interval, Points: 50},
	}
}

func TestCreateRunPlot(t *testing.T) {
	img, err := CreateRunPlot("0001", testSeries(50), "Run A", "ChronoAmperometry", PlotOptions{})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, pngMagic))
}

func TestCreateRunPlotErrors(t *testing.T) {
	_, err := CreateRunPlot("0001", &analysis.RunSeries{}, "", "", DefaultPlotOptions)
	assert.Error(t, err)

	s := testSeries(3)
	s.Current[1] = math.NaN()
	_, err = CreateRunPlot("0001", s, "", "", DefaultPlotOptions)
	assert.Error(t, err)
}

func TestBuildRunPDF(t *testing.T) {
	img, err := CreateRunPlot("0001", testSeries(20), "Run A", "ChronoAmperometry", DefaultPlotOptions)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), RunPDFName("0001"))
	require.NoError(t, BuildRunPDF(path, testSummary(), img, nil))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))
}

func TestImageHeightFollowsPlotSize(t *testing.T) {
	cases := []struct {
		name   string
		opts   PlotOptions
		aspect float64
	}{
		{"default", DefaultPlotOptions, 500.0 / 800.0},
		{"square", PlotOptions{Width: vg.Points(400), Height: vg.Points(400)}, 1},
		{"wide", PlotOptions{Width: vg.Points(800), Height: vg.Points(300)}, 300.0 / 800.0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			img, err := CreateRunPlot("0001", testSeries(20), "Run A", "ChronoAmperometry", tc.opts)
			require.NoError(t, err)
			assert.InDelta(t, 100*tc.aspect, imageHeight(img, 100), 0.5)
		})
	}

	t.Run("tall is capped", func(t *testing.T) {
		img, err := CreateRunPlot("0001", testSeries(20), "", "", PlotOptions{Width: vg.Points(200), Height: vg.Points(800)})
		require.NoError(t, err)
		assert.Equal(t, pdfMaxImageHeight, imageHeight(img, 100))
	})

	t.Run("undecodable falls back", func(t *testing.T) {
		assert.InDelta(t, 62.5, imageHeight([]byte("not a png"), 100), 1e-9)
	})
}

func TestBuildBatchPDF(t *testing.T) {
	img, err := CreateRunPlot("0001", testSeries(20), "Run A", "ChronoAmperometry", DefaultPlotOptions)
	require.NoError(t, err)

	entries := []BatchEntry{
		{File: "0001_TR.idf", ScanID: "0001", Outcome: analysis.OutcomeAnalyzed, Summary: testSummary(), Plot: img},
		{File: "0002_TR.idf", ScanID: "0002", Outcome: analysis.OutcomeSkipped, Detail: `skipped: unrecognized technique "CyclicVoltammetry"`},
		{File: "0003_TR.idf", ScanID: "0003", Outcome: analysis.OutcomeFailed, Detail: errors.New("malformed file: truncated data block").Error()},
	}
	path := filepath.Join(t.TempDir(), "batch.pdf")
	require.NoError(t, BuildBatchPDF(path, "b1", entries, nil))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
