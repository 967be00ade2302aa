package telemetry

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ErrInvalidDay is returned when a day argument cannot be parsed.
var ErrInvalidDay = errors.New("telemetry: invalid day")

const dayLayout = "2006-01-02"

// DayWindow is one calendar day in the analysis timezone. Rows are read from
// [Start, End); the last operational interval closes at DayEnd.
type DayWindow struct {
	Start  time.Time
	End    time.Time
	DayEnd time.Time
}

// NewDayWindow returns the window of the calendar day containing t, in loc.
func NewDayWindow(t time.Time, loc *time.Location) DayWindow {
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)
	return DayWindow{Start: start, End: end, DayEnd: end.Add(-time.Second)}
}

// ParseDay accepts YYYY-MM-DD and the other layouts dateparse understands.
func ParseDay(value string, loc *time.Location) (DayWindow, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return DayWindow{}, fmt.Errorf("%w: day is required", ErrInvalidDay)
	}
	if loc == nil {
		loc = time.UTC
	}
	if t, err := time.ParseInLocation(dayLayout, value, loc); err == nil {
		return NewDayWindow(t, loc), nil
	}
	t, err := dateparse.ParseIn(value, loc)
	if err != nil {
		return DayWindow{}, fmt.Errorf("%w: %q", ErrInvalidDay, value)
	}
	return NewDayWindow(t, loc), nil
}

// Label formats the window's day as YYYY-MM-DD.
func (w DayWindow) Label() string {
	return w.Start.Format(dayLayout)
}

// Hours is the window length in hours; 23 or 25 on DST changes.
func (w DayWindow) Hours() float64 {
	return w.End.Sub(w.Start).Hours()
}
