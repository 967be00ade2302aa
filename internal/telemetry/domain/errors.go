package telemetry

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTable is returned when a table selector is unsupported.
	ErrInvalidTable = errors.New("telemetry: invalid table")
	// ErrInvalidWindow is returned when a window is empty or reversed.
	ErrInvalidWindow = errors.New("telemetry: invalid window")
)

// MissingVariableError reports that a variable has no rows in the requested window.
type MissingVariableError struct {
	VariableID int64
	Label      string
}

func (e *MissingVariableError) Error() string {
	if e.Label != "" {
		return fmt.Sprintf("telemetry: no data for variable %d (%s)", e.VariableID, e.Label)
	}
	return fmt.Sprintf("telemetry: no data for variable %d", e.VariableID)
}

// IsMissingVariable reports whether err is (or wraps) a MissingVariableError.
func IsMissingVariable(err error) bool {
	var target *MissingVariableError
	return errors.As(err, &target)
}
