package analysis

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/idf_analyzer_go/internal/parser"
)

func buildIDF(technique string, rows ...string) []byte {
	var b strings.Builder
	b.WriteString("Method=TR\n")
	b.WriteString("Technique=" + technique + "\n")
	b.WriteString("Title=Run A\n")
	b.WriteString(parser.DataMarker + "\n")
	b.WriteString("3\n")
	fmt.Fprintf(&b, "%d\n", len(rows))
	for _, r := range rows {
		b.WriteString(r + "\n")
	}
	return []byte(b.String())
}

func TestAnalyzeRunEndToEnd(t *testing.T) {
	res := AnalyzeRun("0001", buildIDF("ChronoAmperometry", "0.0 1.0 5.0", "1.0 2.0 6.0"))
	require.Equal(t, OutcomeAnalyzed, res.Outcome, "err: %v", res.Err)
	require.NotNil(t, res.Series)
	require.NotNil(t, res.Summary)

	s := res.Series
	assert.Equal(t, []float64{0, 1}, s.Time)
	assert.Equal(t, []float64{1, 2}, s.Current)
	assert.Equal(t, []float64{5, 6}, s.Voltage)
	require.Len(t, s.Charge, 2)
	assert.InDelta(t, 0.2778, s.Charge[0], 1e-4)
	assert.InDelta(t, 0.8333, s.Charge[1], 1e-4)

	st := res.Summary.Stats
	assert.Equal(t, 1.0, st.DurationSeconds)
	assert.InDelta(t, 0.8333, st.TotalCharge, 1e-4)
	assert.Equal(t, 1.0, st.CurrentMin)
	assert.Equal(t, 2.0, st.CurrentMax)
	assert.Equal(t, 5.0, st.VoltageMin)
	assert.Equal(t, 6.0, st.VoltageMax)
	assert.Equal(t, "0001", res.Summary.ScanID)
	assert.Equal(t, "Run A", res.Summary.Title)
	assert.Equal(t, TechniqueChronoAmperometry, res.Summary.Technique)
}

func TestTechniqueColumnMapping(t *testing.T) {
	cases := []struct {
		technique      string
		current, volts float64
	}{
		{"ChronoPotentiometry", 2.0, 1.0},
		{"ChronoAmperometry", 1.0, 2.0},
		{"Mixed Mode", 1.0, 2.0},
		{"MixedMode", 1.0, 2.0},
	}
	for _, tc := range cases {
		t.Run(tc.technique, func(t *testing.T) {
			res := AnalyzeRun("x", buildIDF(tc.technique, "0 1.0 2.0", "1 1.0 2.0", "2 1.0 2.0"))
			require.Equal(t, OutcomeAnalyzed, res.Outcome)
			for i := 0; i < 3; i++ {
				assert.Equal(t, tc.current, res.Series.Current[i])
				assert.Equal(t, tc.volts, res.Series.Voltage[i])
			}
		})
	}
}

func TestAnalyzeRunOutcomes(t *testing.T) {
	t.Run("unrecognized technique is skipped", func(t *testing.T) {
		res := AnalyzeRun("x", buildIDF("CyclicVoltammetry", "0 1 2", "1 1 2"))
		assert.Equal(t, OutcomeSkipped, res.Outcome)
		assert.Nil(t, res.Summary)
		assert.Nil(t, res.Series)
		var unknown *UnrecognizedTechniqueError
		require.ErrorAs(t, res.Err, &unknown)
		assert.Equal(t, "CyclicVoltammetry", unknown.Name)
	})

	t.Run("truncated file fails", func(t *testing.T) {
		raw := string(buildIDF("ChronoAmperometry", "0 1 2", "1 1 2", "2 1 2"))
		raw = raw[:strings.LastIndex(strings.TrimSuffix(raw, "\n"), "\n")+1]
		res := AnalyzeRun("x", []byte(raw))
		assert.Equal(t, OutcomeFailed, res.Outcome)
		assert.ErrorIs(t, res.Err, parser.ErrMalformedFile)
		assert.Nil(t, res.Summary)
	})

	t.Run("single sample is degenerate", func(t *testing.T) {
		res := AnalyzeRun("x", buildIDF("ChronoAmperometry", "0 1 2"))
		assert.Equal(t, OutcomeFailed, res.Outcome)
		assert.ErrorIs(t, res.Err, ErrDegenerateSeries)
	})

	t.Run("empty block is degenerate", func(t *testing.T) {
		res := AnalyzeRun("x", buildIDF("ChronoAmperometry"))
		assert.Equal(t, OutcomeFailed, res.Outcome)
		assert.ErrorIs(t, res.Err, ErrDegenerateSeries)
	})
}

func TestIntegrateCharge(t *testing.T) {
	t.Run("constant current", func(t *testing.T) {
		const (
			n  = 500
			dt = 0.2
			i0 = 0.003
		)
		time := make([]float64, n)
		current := make([]float64, n)
		for k := range time {
			time[k] = float64(k) * dt
			current[k] = i0
		}
		charge, err := IntegrateCharge(time, current)
		require.NoError(t, err)
		require.Len(t, charge, n)
		assert.InDelta(t, i0*n*dt*1000/3600, charge[n-1], 1e-9)
	})

	t.Run("non-negative current gives non-decreasing charge", func(t *testing.T) {
		time := []float64{0, 1, 2, 3, 4, 5}
		current := []float64{0, 0.5, 0, 2, 0.1, -3}
		charge, err := IntegrateCharge(time, current)
		require.NoError(t, err)
		for k := 1; k <= 4; k++ {
			assert.GreaterOrEqual(t, charge[k], charge[k-1])
		}
		assert.Less(t, charge[5], charge[4])
	})

	t.Run("uses first spacing for every sample", func(t *testing.T) {
		charge, err := IntegrateCharge([]float64{0, 1, 10}, []float64{3.6, 3.6, 3.6})
		require.NoError(t, err)
		assert.InDelta(t, 3.0, charge[2], 1e-12)
	})

	t.Run("length mismatch", func(t *testing.T) {
		_, err := IntegrateCharge([]float64{0, 1}, []float64{1})
		assert.Error(t, err)
	})

	t.Run("degenerate", func(t *testing.T) {
		_, err := IntegrateCharge([]float64{0}, []float64{1})
		assert.ErrorIs(t, err, ErrDegenerateSeries)
	})
}

func TestSeriesLengthsMatchPointCount(t *testing.T) {
	rows := make([]string, 0, 37)
	for i := 0; i < 37; i++ {
		rows = append(rows, fmt.Sprintf("%d %g %g", i, float64(i)*1e-4, 3.1+float64(i)*0.01))
	}
	res := AnalyzeRun("x", buildIDF("ChronoAmperometry", rows...))
	require.Equal(t, OutcomeAnalyzed, res.Outcome)
	s := res.Series
	assert.Equal(t, 37, res.Summary.Metadata.Points)
	assert.Len(t, s.Time, 37)
	assert.Len(t, s.Current, 37)
	assert.Len(t, s.Voltage, 37)
	assert.Len(t, s.Charge, 37)
}

func TestResolveTechnique(t *testing.T) {
	tech, err := ResolveTechnique("ChronoPotentiometry")
	require.NoError(t, err)
	assert.Equal(t, TechniqueChronoPotentiometry, tech)

	tech, err = ResolveTechnique("")
	assert.Equal(t, TechniqueUnrecognized, tech)
	assert.EqualError(t, err, `skipped: unrecognized technique ""`)
}

func TestComputeStatsRejectsMismatchedSeries(t *testing.T) {
	_, err := ComputeStats(&RunSeries{Time: []float64{0, 1}, Current: []float64{1, 2}, Voltage: []float64{1, 2}})
	assert.ErrorIs(t, err, ErrDegenerateSeries)
}
