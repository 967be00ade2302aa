package operation

import "time"

// Interval is a maximal span of constant state.
type Interval struct {
	Start time.Time `json:"start" msgpack:"start"`
	End   time.Time `json:"end" msgpack:"end"`
	State State     `json:"state" msgpack:"state"`
}

// Duration returns the length of the interval.
func (i Interval) Duration() time.Duration { return i.End.Sub(i.Start) }

// BuildIntervals collapses consecutive equal states into intervals. Each state change
// closes the open interval at the new sample's time; the last interval is closed at
// dayEnd no matter when the last sample was taken.
func BuildIntervals(samples []StateSample, dayEnd time.Time) ([]Interval, error) {
	if len(samples) == 0 {
		return nil, ErrEmptyInput
	}

	intervals := make([]Interval, 0)
	start := samples[0].At
	current := samples[0].State
	for _, sample := range samples[1:] {
		if sample.State == current {
			continue
		}
		intervals = append(intervals, Interval{Start: start, End: sample.At, State: current})
		start = sample.At
		current = sample.State
	}
	intervals = append(intervals, Interval{Start: start, End: dayEnd, State: current})
	return intervals, nil
}

// Totals sums the time spent in each state.
func Totals(intervals []Interval) map[State]time.Duration {
	totals := map[State]time.Duration{
		StateOffNoSignal: 0,
		StateIdle:        0,
		StateOn:          0,
	}
	for _, interval := range intervals {
		if d := interval.Duration(); d > 0 {
			totals[interval.State] += d
		}
	}
	return totals
}

// Utilization is the share of the covered time spent ON, in [0, 1].
func Utilization(intervals []Interval) float64 {
	totals := Totals(intervals)
	var covered time.Duration
	for _, d := range totals {
		covered += d
	}
	if covered <= 0 {
		return 0
	}
	return float64(totals[StateOn]) / float64(covered)
}
