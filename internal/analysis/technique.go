package analysis

import (
	"fmt"

	"github.com/user/idf_analyzer_go/internal/parser"
)

// Technique is the electrochemical measurement mode of a run.
type Technique int

const (
	TechniqueUnrecognized Technique = iota
	TechniqueMixedMode
	TechniqueChronoAmperometry
	TechniqueChronoPotentiometry
)

func (t Technique) String() string {
	switch t {
	case TechniqueMixedMode:
		return "MixedMode"
	case TechniqueChronoAmperometry:
		return "ChronoAmperometry"
	case TechniqueChronoPotentiometry:
		return "ChronoPotentiometry"
	}
	return "Unrecognized"
}

// UnrecognizedTechniqueError names a technique the pipeline cannot map.
type UnrecognizedTechniqueError struct {
	Name string
}

func (e *UnrecognizedTechniqueError) Error() string {
	return fmt.Sprintf("skipped: unrecognized technique %q", e.Name)
}

var techniqueNames = map[string]Technique{
	"Mixed Mode":          TechniqueMixedMode,
	"MixedMode":           TechniqueMixedMode,
	"ChronoAmperometry":   TechniqueChronoAmperometry,
	"ChronoPotentiometry": TechniqueChronoPotentiometry,
}

// ResolveTechnique maps the technique string from a file header.
func ResolveTechnique(name string) (Technique, error) {
	if t, ok := techniqueNames[name]; ok {
		return t, nil
	}
	return TechniqueUnrecognized, &UnrecognizedTechniqueError{Name: name}
}

// MapColumns splits samples into time, current and voltage according to the technique.
// The returned series has Charge unset.
func MapColumns(t Technique, samples []parser.SampleTriple) (*RunSeries, error) {
	var currentCol, voltageCol int
	switch t {
	case TechniqueMixedMode, TechniqueChronoAmperometry:
		currentCol, voltageCol = 1, 2
	case TechniqueChronoPotentiometry:
		currentCol, voltageCol = 2, 1
	default:
		return nil, &UnrecognizedTechniqueError{Name: t.String()}
	}

	n := len(samples)
	s := &RunSeries{
		Time:    make([]float64, n),
		Current: make([]float64, n),
		Voltage: make([]float64, n),
	}
	for i, row := range samples {
		s.Time[i] = row[0]
		s.Current[i] = row[currentCol]
		s.Voltage[i] = row[voltageCol]
	}
	return s, nil
}
