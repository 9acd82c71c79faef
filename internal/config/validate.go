package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks value ranges after normalisation.
func (c *Config) Validate() error {
	var errs []error
	if c.Analysis.ScanIDLength < 0 {
		errs = append(errs, fmt.Errorf("analysis.scan_id_length must be >= 0, got %d", c.Analysis.ScanIDLength))
	}
	if c.Analysis.Workers < 1 {
		errs = append(errs, fmt.Errorf("analysis.workers must be >= 1, got %d", c.Analysis.Workers))
	}
	if c.Report.Enabled && (c.Report.WidthPt <= 0 || c.Report.HeightPt <= 0) {
		errs = append(errs, fmt.Errorf("report.width_pt and report.height_pt must be positive"))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format))
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level))
	}
	return errors.Join(errs...)
}
