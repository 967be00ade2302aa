package telemetry

import (
	"context"
	"math"
	"time"
)

// Table selects one of the two raw log tables.
type Table string

const (
	TableFloat  Table = "float"
	TableString Table = "string"
)

// IsValid checks if the table is one of the supported log tables.
func (t Table) IsValid() bool {
	switch t {
	case TableFloat, TableString:
		return true
	default:
		return false
	}
}

// RawRow is a single log row as stored: either a numeric sample or a serialized string.
type RawRow struct {
	VariableID int64
	At         time.Time
	Numeric    *float64
	Text       *string
}

// Sample is one numeric reading of a variable.
type Sample struct {
	Timestamp  time.Time `json:"timestamp"`
	Value      *float64  `json:"value"`
	VariableID int64     `json:"variable_id"`
	Label      string    `json:"label,omitempty"`
}

// HasValue reports whether the sample carries a usable number.
func (s Sample) HasValue() bool {
	return s.Value != nil && !math.IsNaN(*s.Value)
}

// AlarmSnapshot is one row of the alarm variable: zero or more alarms active at At.
type AlarmSnapshot struct {
	Timestamp time.Time
	Raw       *string
}

// LogReader loads raw rows for one variable within [start, end), ordered by timestamp.
type LogReader interface {
	Fetch(ctx context.Context, table Table, variableID int64, start, end time.Time) ([]RawRow, error)
	Recent(ctx context.Context, query RecentQuery) ([]RawRow, error)
}

// RecentQuery selects the most recent rows of several variables, ordered by variable id
// and then by time.
type RecentQuery struct {
	Table       Table
	VariableIDs []int64
	Limit       int
	NewestFirst bool
}

// Float returns a pointer to v. Handy for building samples.
func Float(v float64) *float64 { return &v }

// String returns a pointer to v.
func String(v string) *string { return &v }
