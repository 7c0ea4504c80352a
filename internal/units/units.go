// Package units handles the measurement systems used by machine programs.
// All internal geometry is unit-agnostic; the system only matters when a
// program header is emitted or operator-facing values are formatted.
package units

import (
	"fmt"
	"strings"
)

// MMPerInch is the exact conversion factor.
const MMPerInch = 25.4

// System identifies the linear measurement system of a program.
type System int

const (
	// Inch selects imperial units (G20 programs, in/min feeds).
	Inch System = iota
	// Millimeter selects metric units (G21 programs, mm/min feeds).
	Millimeter
)

// Parse resolves a configuration string to a System. Accepted spellings:
// "inch", "in", "mm", "millimeter", "millimetre". Empty means inches.
func Parse(s string) (System, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "inch", "in", "":
		return Inch, nil
	case "mm", "millimeter", "millimetre":
		return Millimeter, nil
	default:
		return Inch, fmt.Errorf("units: unknown system %q", s)
	}
}

// GCode returns the modal units word for the system.
func (s System) GCode() string {
	if s == Millimeter {
		return "G21"
	}
	return "G20"
}

// Label returns the length unit suffix for operator-facing text.
func (s System) Label() string {
	if s == Millimeter {
		return "mm"
	}
	return "in"
}

// FeedLabel returns the feed-rate unit suffix.
func (s System) FeedLabel() string {
	return s.Label() + "/min"
}

func (s System) String() string {
	if s == Millimeter {
		return "millimeter"
	}
	return "inch"
}

// InchToMM converts inches to millimeters.
func InchToMM(v float64) float64 { return v * MMPerInch }

// MMToInch converts millimeters to inches.
func MMToInch(v float64) float64 { return v / MMPerInch }
