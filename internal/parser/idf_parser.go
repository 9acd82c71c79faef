package parser

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// DecodeLatin1 converts ISO-8859-1 file bytes into a UTF-8 string.
func DecodeLatin1(raw []byte) (string, error) {
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("failed to decode ISO-8859-1 input: %w", err)
	}
	return string(decoded), nil
}

// SplitLines splits text into lines the way a line reader would: a trailing
// newline does not produce an extra empty line and "\r\n" endings are accepted.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(text, "\n")
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

type scanState int

const (
	stateScanningHeader scanState = iota
	stateFoundMarker
)

// headerScanner walks header lines until the data marker is seen.
type headerScanner struct {
	state  scanState
	meta   Metadata
	marker int
}

// step consumes one line. Once the marker has been found further lines are ignored.
func (s *headerScanner) step(idx int, line string) error {
	if s.state == stateFoundMarker {
		return nil
	}

	if strings.Contains(line, keyMethod) {
		s.meta.Method = headerValue(line)
	}
	if strings.Contains(line, keyTechnique) {
		s.meta.Technique = headerValue(line)
	}
	if strings.Contains(line[:min(len(line), titleWindow)], keyTitle) {
		s.meta.Title = headerValue(line)
	}
	if strings.Contains(line, keyStages) {
		v := strings.TrimSpace(headerValue(line))
		stages, err := strconv.Atoi(v)
		if err != nil {
			return malformed(idx+1, fmt.Sprintf("invalid Stages value %q", v), err)
		}
		s.meta.Stages = &stages
	}
	if strings.Contains(line, keyInterval) {
		v := strings.TrimSpace(headerValue(line))
		interval, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return malformed(idx+1, fmt.Sprintf("invalid Interval time value %q", v), err)
		}
		s.meta.Interval = &interval
	}

	if strings.Contains(line, DataMarker) {
		s.state = stateFoundMarker
		s.marker = idx
	}
	return nil
}

// headerValue returns everything after the first '=' with trailing whitespace removed.
func headerValue(line string) string {
	_, value, _ := strings.Cut(line, "=")
	return strings.TrimRight(value, " \t\r\n")
}

// ScanMetadata extracts header fields up to and including the marker line and
// returns the zero-based index of that line.
func ScanMetadata(lines []string) (Metadata, int, error) {
	s := &headerScanner{state: stateScanningHeader}
	for idx, line := range lines {
		if err := s.step(idx, line); err != nil {
			return Metadata{}, 0, err
		}
		if s.state == stateFoundMarker {
			return s.meta, s.marker, nil
		}
	}
	return Metadata{}, 0, malformed(0, "no data marker found", nil)
}

// ReadDataBlock reads the column count, point count and sample lines that
// follow the marker at markerIndex.
func ReadDataBlock(lines []string, markerIndex int) (DataBlock, error) {
	var block DataBlock

	colIdx, ptsIdx := markerIndex+1, markerIndex+2
	if ptsIdx >= len(lines) {
		return block, malformed(0, "truncated data block", nil)
	}

	cols, err := strconv.Atoi(strings.TrimSpace(lines[colIdx]))
	if err != nil {
		return block, malformed(colIdx+1, "invalid column count", err)
	}
	points, err := strconv.Atoi(strings.TrimSpace(lines[ptsIdx]))
	if err != nil {
		return block, malformed(ptsIdx+1, "invalid point count", err)
	}
	if points < 0 {
		return block, malformed(ptsIdx+1, fmt.Sprintf("negative point count %d", points), nil)
	}

	first := markerIndex + 3
	if len(lines)-first < points {
		return block, malformed(0, "truncated data block", nil)
	}

	block.ColumnCount = cols
	block.PointCount = points
	block.Samples = make([]SampleTriple, points)
	for i := 0; i < points; i++ {
		lineNo := first + i + 1
		fields := strings.Fields(lines[first+i])
		if len(fields) != 3 {
			return DataBlock{}, malformed(lineNo, fmt.Sprintf("expected 3 fields, found %d", len(fields)), nil)
		}
		for j, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return DataBlock{}, malformed(lineNo, fmt.Sprintf("invalid number %q", f), err)
			}
			block.Samples[i][j] = v
		}
	}
	return block, nil
}

// ParseIDF decodes and parses the complete contents of one IDF file.
func ParseIDF(raw []byte) (*IDFFile, error) {
	text, err := DecodeLatin1(raw)
	if err != nil {
		return nil, err
	}
	lines := SplitLines(text)

	meta, marker, err := ScanMetadata(lines)
	if err != nil {
		return nil, err
	}
	block, err := ReadDataBlock(lines, marker)
	if err != nil {
		return nil, err
	}
	meta.Columns = block.ColumnCount
	meta.Points = block.PointCount

	return &IDFFile{Metadata: meta, MarkerIndex: marker, Block: block}, nil
}

// ParseIDFFile reads filepath from disk and parses it.
func ParseIDFFile(filepath string) (*IDFFile, error) {
	raw, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to open IDF file: %w", err)
	}
	return ParseIDF(raw)
}
