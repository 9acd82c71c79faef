// Package queue builds and reads the queue file that names the IDF files to process.
package queue

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultFileName is the queue file created inside a data directory.
const DefaultFileName = "queuefile.in"

// Scan lists regular files in dir whose names contain pattern, sorted by name.
// The queue file itself is never listed.
func Scan(dir, pattern string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if !e.Type().IsRegular() || e.Name() == DefaultFileName {
			continue
		}
		if strings.Contains(e.Name(), pattern) {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// Make scans dir for matching files and writes them, one per line, to queuePath.
func Make(dir, pattern, queuePath string) ([]string, error) {
	names, err := Scan(dir, pattern)
	if err != nil {
		return nil, err
	}
	if err := Write(queuePath, names); err != nil {
		return nil, err
	}
	return names, nil
}

// Write replaces queuePath with one name per line.
func Write(queuePath string, names []string) error {
	var b strings.Builder
	for _, n := range names {
		b.WriteString(n)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(queuePath, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write queue file: %w", err)
	}
	return nil
}

// Read returns the file names listed in queuePath. Blank lines are dropped.
func Read(queuePath string, sorted bool) ([]string, error) {
	f, err := os.Open(queuePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open queue file: %w", err)
	}
	defer f.Close()

	var names []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		name := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(name) == "" {
			continue
		}
		names = append(names, name)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read queue file: %w", err)
	}
	if sorted {
		sort.Strings(names)
	}
	return names, nil
}

// Resolve joins each queued name onto dir.
func Resolve(dir string, names []string) []string {
	paths := make([]string, len(names))
	for i, n := range names {
		paths[i] = filepath.Join(dir, n)
	}
	return paths
}

// ScanID derives the run identifier from the first n characters of a file's base name.
func ScanID(path string, n int) string {
	base := filepath.Base(path)
	runes := []rune(base)
	if n <= 0 || n >= len(runes) {
		return base
	}
	return string(runes[:n])
}
