package config

import (
	"path/filepath"

	"github.com/user/idf_analyzer_go/internal/queue"
)

const (
	defaultScanIDLength = 4
	defaultPattern      = "TR"
	defaultSummaryFile  = "scan_summary.csv"
	defaultWidthPt      = 800
	defaultHeightPt     = 500
)

// Default returns the configuration used when no file overrides it.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:   ".",
			OutputDir: ".",
		},
		Queue: Queue{
			Pattern: defaultPattern,
			Sorted:  true,
		},
		Analysis: Analysis{
			ScanIDLength: defaultScanIDLength,
			Workers:      1,
		},
		Report: Report{
			Enabled:  true,
			WidthPt:  defaultWidthPt,
			HeightPt: defaultHeightPt,
		},
		Export: Export{Enabled: true},
		Logging: Logging{
			Level:  "info",
			Format: "console",
		},
	}
}

// normalize expands paths and fills values derived from other fields.
func (c *Config) normalize() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return err
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return err
	}
	if c.Paths.QueueFile == "" {
		c.Paths.QueueFile = filepath.Join(c.Paths.DataDir, queue.DefaultFileName)
	}
	if c.Paths.QueueFile, err = expandPath(c.Paths.QueueFile); err != nil {
		return err
	}
	if c.Summary.CSVPath == "" {
		c.Summary.CSVPath = filepath.Join(c.Paths.OutputDir, defaultSummaryFile)
	}
	if c.Summary.CSVPath, err = expandPath(c.Summary.CSVPath); err != nil {
		return err
	}
	if c.Summary.SQLitePath, err = expandPath(c.Summary.SQLitePath); err != nil {
		return err
	}
	return nil
}
