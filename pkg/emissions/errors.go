package emissions

import (
	"errors"
	"fmt"
)

// IngestionError reports a reference table that cannot be read or is structurally invalid
type IngestionError struct {
	Source string
	Line   int
	Reason string
	Err    error
}

// Error implements the error interface
func (e *IngestionError) Error() string {
	msg := "reference table"
	if e.Source != "" {
		msg += " " + e.Source
	}
	if e.Line > 0 {
		msg += fmt.Sprintf(" line %d", e.Line)
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause
func (e *IngestionError) Unwrap() error {
	return e.Err
}

// NoMatchError reports that no reference row matches a (vehicle, fuel, region) triple.
// It carries the caller's original, un-normalized inputs.
type NoMatchError struct {
	VehicleType string
	Fuel        string
	Region      string
}

// Error implements the error interface
func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no match found for: %s with fuel: %s in region: %s",
		e.VehicleType, e.Fuel, e.Region)
}

// IsNoMatch reports whether err is, or wraps, a NoMatchError
func IsNoMatch(err error) bool {
	var nm *NoMatchError
	return errors.As(err, &nm)
}
