// Package export writes and reads the per-run tab-separated data table.
package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/user/idf_analyzer_go/internal/analysis"
)

// Header is the fixed first line of every .dat file.
const Header = "time\tcharge\tamps\tvolts"

// FileName returns the export file name for a scan.
func FileName(scanID string) string { return scanID + ".dat" }

// WriteDat writes series as one "%f" formatted tab-separated row per sample.
func WriteDat(w io.Writer, s *analysis.RunSeries) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(Header + "\n"); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i := 0; i < s.Len(); i++ {
		if _, err := fmt.Fprintf(bw, "%f\t%f\t%f\t%f\n", s.Time[i], s.Charge[i], s.Current[i], s.Voltage[i]); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}
	return bw.Flush()
}

// WriteDatFile writes series to <dir>/<scanID>.dat and returns the path.
func WriteDatFile(dir, scanID string, s *analysis.RunSeries) (string, error) {
	path := filepath.Join(dir, FileName(scanID))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	if err := WriteDat(f, s); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close export file: %w", err)
	}
	return path, nil
}

// ReadDat parses a table produced by WriteDat.
func ReadDat(r io.Reader) (*analysis.RunSeries, error) {
	sc := bufio.NewScanner(r)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("failed to read header: %w", err)
		}
		return nil, fmt.Errorf("empty export table")
	}
	if got := strings.TrimRight(sc.Text(), "\r"); got != Header {
		return nil, fmt.Errorf("unexpected header %q", got)
	}

	s := &analysis.RunSeries{}
	lineNo := 1
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 4 {
			return nil, fmt.Errorf("line %d: expected 4 fields, found %d", lineNo, len(fields))
		}
		var vals [4]float64
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid number %q: %w", lineNo, f, err)
			}
			vals[i] = v
		}
		s.Time = append(s.Time, vals[0])
		s.Charge = append(s.Charge, vals[1])
		s.Current = append(s.Current, vals[2])
		s.Voltage = append(s.Voltage, vals[3])
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read export table: %w", err)
	}
	return s, nil
}
