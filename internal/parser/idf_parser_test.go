package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func idfText(header []string, cols, points string, data []string) string {
	var b strings.Builder
	for _, h := range header {
		b.WriteString(h + "\n")
	}
	b.WriteString(DataMarker + "\n")
	b.WriteString(cols + "\n")
	b.WriteString(points + "\n")
	for _, d := range data {
		b.WriteString(d + "\n")
	}
	return b.String()
}

func TestScanMetadata(t *testing.T) {
	t.Run("extracts recognised fields", func(t *testing.T) {
		lines := []string{
			"[Main]",
			"Method=TR   ",
			"Technique=ChronoAmperometry",
			"Title=Run A",
			"Stages=3",
			"Interval time=0.5",
			DataMarker,
		}
		meta, marker, err := ScanMetadata(lines)
		require.NoError(t, err)
		assert.Equal(t, 6, marker)
		assert.Equal(t, "TR", meta.Method)
		assert.Equal(t, "ChronoAmperometry", meta.Technique)
		assert.Equal(t, "Run A", meta.Title)
		require.NotNil(t, meta.Stages)
		assert.Equal(t, 3, *meta.Stages)
		require.NotNil(t, meta.Interval)
		assert.InDelta(t, 0.5, *meta.Interval, 1e-12)
	})

	t.Run("absent fields are valid", func(t *testing.T) {
		meta, marker, err := ScanMetadata([]string{"x", DataMarker})
		require.NoError(t, err)
		assert.Equal(t, 1, marker)
		assert.Empty(t, meta.Technique)
		assert.Empty(t, meta.Title)
		assert.Nil(t, meta.Stages)
		assert.Nil(t, meta.Interval)
	})

	t.Run("title only matched at start of line", func(t *testing.T) {
		meta, _, err := ScanMetadata([]string{
			"SomeOtherKey=Title=foo",
			DataMarker,
		})
		require.NoError(t, err)
		assert.Empty(t, meta.Title)

		meta, _, err = ScanMetadata([]string{
			"Title=Run A",
			"SomeOtherKey=Title=foo",
			DataMarker,
		})
		require.NoError(t, err)
		assert.Equal(t, "Run A", meta.Title)
	})

	t.Run("value split on first equals sign", func(t *testing.T) {
		meta, _, err := ScanMetadata([]string{"Title=a=b", DataMarker})
		require.NoError(t, err)
		assert.Equal(t, "a=b", meta.Title)
	})

	t.Run("keys after marker are ignored", func(t *testing.T) {
		meta, _, err := ScanMetadata([]string{
			"Technique=ChronoAmperometry",
			DataMarker,
			"Technique=ChronoPotentiometry",
			"Title=late",
		})
		require.NoError(t, err)
		assert.Equal(t, "ChronoAmperometry", meta.Technique)
		assert.Empty(t, meta.Title)
	})

	t.Run("missing marker", func(t *testing.T) {
		_, _, err := ScanMetadata([]string{"Technique=ChronoAmperometry"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMalformedFile))
		assert.Contains(t, err.Error(), "no data marker found")
	})

	t.Run("non numeric stages", func(t *testing.T) {
		_, _, err := ScanMetadata([]string{"Stages=three", DataMarker})
		var mf *MalformedFileError
		require.ErrorAs(t, err, &mf)
		assert.Equal(t, 1, mf.Line)
	})

	t.Run("non numeric interval", func(t *testing.T) {
		_, _, err := ScanMetadata([]string{"a", "Interval time=fast", DataMarker})
		var mf *MalformedFileError
		require.ErrorAs(t, err, &mf)
		assert.Equal(t, 2, mf.Line)
	})
}

func TestReadDataBlock(t *testing.T) {
	t.Run("reads samples in order", func(t *testing.T) {
		lines := SplitLines(idfText(nil, "3", "2", []string{"0.0 1.0 5.0", "1.0\t2.0  6.0"}))
		block, err := ReadDataBlock(lines, 0)
		require.NoError(t, err)
		assert.Equal(t, 3, block.ColumnCount)
		assert.Equal(t, 2, block.PointCount)
		require.Len(t, block.Samples, 2)
		assert.Equal(t, SampleTriple{0, 1, 5}, block.Samples[0])
		assert.Equal(t, SampleTriple{1, 2, 6}, block.Samples[1])
	})

	t.Run("column count is not validated against fields", func(t *testing.T) {
		lines := SplitLines(idfText(nil, "7", "1", []string{"0 1 2"}))
		block, err := ReadDataBlock(lines, 0)
		require.NoError(t, err)
		assert.Equal(t, 7, block.ColumnCount)
	})

	t.Run("lines after the block are ignored", func(t *testing.T) {
		lines := SplitLines(idfText(nil, "3", "1", []string{"0 1 2", "trailer text"}))
		block, err := ReadDataBlock(lines, 0)
		require.NoError(t, err)
		assert.Len(t, block.Samples, 1)
	})

	cases := []struct {
		name   string
		text   string
		line   int
		reason string
	}{
		{"bad column count", idfText(nil, "x", "1", []string{"0 1 2"}), 2, "invalid column count"},
		{"bad point count", idfText(nil, "3", "two", []string{"0 1 2"}), 3, "invalid point count"},
		{"truncated", idfText(nil, "3", "3", []string{"0 1 2", "1 1 2"}), 0, "truncated data block"},
		{"wrong field count", idfText(nil, "3", "2", []string{"0 1 2", "1 1"}), 5, "expected 3 fields"},
		{"bad float", idfText(nil, "3", "1", []string{"0 1 abc"}), 4, "invalid number"},
		{"missing governing lines", DataMarker + "\n3\n", 0, "truncated data block"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadDataBlock(SplitLines(tc.text), 0)
			var mf *MalformedFileError
			require.ErrorAs(t, err, &mf)
			assert.Equal(t, tc.line, mf.Line)
			assert.Contains(t, mf.Error(), tc.reason)
			assert.ErrorIs(t, err, ErrMalformedFile)
		})
	}
}

func TestParseIDF(t *testing.T) {
	text := idfText(
		[]string{"Method=TR", "Technique=ChronoAmperometry", "Title=Run A"},
		"3", "2",
		[]string{"0.0 1.0 5.0", "1.0 2.0 6.0"},
	)
	f, err := ParseIDF([]byte(strings.ReplaceAll(text, "\n", "\r\n")))
	require.NoError(t, err)
	assert.Equal(t, 3, f.MarkerIndex)
	assert.Equal(t, 2, f.Metadata.Points)
	assert.Equal(t, 3, f.Metadata.Columns)
	assert.Equal(t, "Run A", f.Metadata.Title)
	assert.Len(t, f.Block.Samples, 2)
}

func TestParseIDFDecodesLatin1(t *testing.T) {
	raw := []byte("Title=Na \xb5A cell\n" + DataMarker + "\n3\n1\n0 1 2\n")
	f, err := ParseIDF(raw)
	require.NoError(t, err)
	assert.Equal(t, "Na µA cell", f.Metadata.Title)
}

func TestSplitLines(t *testing.T) {
	assert.Nil(t, SplitLines(""))
	assert.Equal(t, []string{"a", "b"}, SplitLines("a\r\nb\n"))
	assert.Equal(t, []string{"a", "", "b"}, SplitLines("a\n\nb"))
}
