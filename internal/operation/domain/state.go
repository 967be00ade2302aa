package operation

import (
	"errors"
	"math"
	"time"

	telemetry "machine-insights/internal/telemetry/domain"
)

// State is the operational state of a machine derived from a sampled signal.
type State int

const (
	StateOffNoSignal State = iota
	StateIdle
	StateOn
)

// ErrEmptyInput is returned when there are no samples to build intervals from.
var ErrEmptyInput = errors.New("operation: no samples")

// String returns the dashboard label of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateOn:
		return "ON"
	default:
		return "OFF_NO_SIGNAL"
	}
}

// MarshalText encodes the state by its label.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Classify maps one sample value to a state: missing is off, zero is idle,
// anything else (negative included) is on.
func Classify(value *float64) State {
	if value == nil || math.IsNaN(*value) {
		return StateOffNoSignal
	}
	if *value == 0 {
		return StateIdle
	}
	return StateOn
}

// StateSample is a classified point of the signal.
type StateSample struct {
	At    time.Time
	State State
}

// ClassifySamples classifies numeric samples, keeping their order.
func ClassifySamples(samples []telemetry.Sample) []StateSample {
	result := make([]StateSample, 0, len(samples))
	for _, sample := range samples {
		result = append(result, StateSample{At: sample.Timestamp, State: Classify(sample.Value)})
	}
	return result
}
