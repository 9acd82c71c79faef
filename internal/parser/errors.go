package parser

import (
	"errors"
	"fmt"
)

// ErrMalformedFile is matched by every MalformedFileError via errors.Is.
var ErrMalformedFile = errors.New("malformed file")

// MalformedFileError reports a structural problem in an IDF file.
// Line is 1-based; zero means the problem is not tied to a single line.
type MalformedFileError struct {
	Line   int
	Reason string
	Err    error
}

func (e *MalformedFileError) Error() string {
	msg := "malformed file: " + e.Reason
	if e.Line > 0 {
		msg = fmt.Sprintf("malformed file: line %d: %s", e.Line, e.Reason)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedFileError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrMalformedFile) match any MalformedFileError.
func (e *MalformedFileError) Is(target error) bool {
	return target == ErrMalformedFile
}

func malformed(line int, reason string, err error) error {
	return &MalformedFileError{Line: line, Reason: reason, Err: err}
}
