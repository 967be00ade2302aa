package resample

import (
	"errors"
	"fmt"
	"time"

	telemetry "machine-insights/internal/telemetry/domain"
)

// Stat selects a per-bucket statistic.
type Stat string

const (
	StatMean Stat = "mean"
	StatMax  Stat = "max"
)

// MaxBuckets caps the number of buckets a single series may span.
const MaxBuckets = 10_000

var (
	// ErrInvalidWidth is returned for a non-positive bucket width.
	ErrInvalidWidth = errors.New("resample: bucket width must be positive")
	// ErrTooManyBuckets is returned when width is too narrow for the sampled span.
	ErrTooManyBuckets = fmt.Errorf("resample: more than %d buckets requested", MaxBuckets)
)

// Bucket holds the statistics of one fixed-width window. Stats of a bucket without
// usable samples, or not requested, are nil.
type Bucket struct {
	Start time.Time `json:"start" msgpack:"start"`
	Mean  *float64  `json:"mean" msgpack:"mean"`
	Max   *float64  `json:"max" msgpack:"max"`
	Count int       `json:"count" msgpack:"count"`
}

// Options tweak bucket placement.
type Options struct {
	// Origin, when set, anchors the first bucket at Origin instead of at the
	// truncated time of the first sample. Buckets between Origin and the first
	// sample are emitted empty.
	Origin time.Time
}

// Resample aggregates samples into contiguous buckets of width, from the bucket
// holding the first sample through the bucket holding the last one.
// Samples must be ordered by time.
func Resample(samples []telemetry.Sample, width time.Duration, stats []Stat, opts ...Options) ([]Bucket, error) {
	if width <= 0 {
		return nil, ErrInvalidWidth
	}
	if len(samples) == 0 {
		return nil, nil
	}
	var opt Options
	if len(opts) > 0 {
		opt = opts[0]
	}

	wantMean, wantMax := false, false
	for _, stat := range stats {
		switch stat {
		case StatMean:
			wantMean = true
		case StatMax:
			wantMax = true
		}
	}

	origin := samples[0].Timestamp.Truncate(width)
	if !opt.Origin.IsZero() && opt.Origin.Before(origin) {
		origin = opt.Origin
	}
	last := samples[len(samples)-1].Timestamp
	span := last.Sub(origin) / width
	if span < 0 {
		return nil, fmt.Errorf("%w: samples are not ordered by time", ErrInvalidWidth)
	}
	if span >= MaxBuckets {
		return nil, ErrTooManyBuckets
	}
	count := int(span) + 1

	buckets := make([]Bucket, count)
	sums := make([]float64, count)
	maxes := make([]float64, count)
	for i := range buckets {
		buckets[i].Start = origin.Add(time.Duration(i) * width)
	}

	for _, sample := range samples {
		if !sample.HasValue() || sample.Timestamp.Before(origin) {
			continue
		}
		idx := int(sample.Timestamp.Sub(origin) / width)
		if idx >= count {
			continue
		}
		value := *sample.Value
		if buckets[idx].Count == 0 || value > maxes[idx] {
			maxes[idx] = value
		}
		sums[idx] += value
		buckets[idx].Count++
	}

	for i := range buckets {
		if buckets[i].Count == 0 {
			continue
		}
		if wantMean {
			mean := sums[i] / float64(buckets[i].Count)
			buckets[i].Mean = &mean
		}
		if wantMax {
			peak := maxes[i]
			buckets[i].Max = &peak
		}
	}
	return buckets, nil
}

// ResampleByVariable resamples each variable on its own.
func ResampleByVariable(samples []telemetry.Sample, width time.Duration, stats []Stat, opts ...Options) (map[int64][]Bucket, error) {
	if width <= 0 {
		return nil, ErrInvalidWidth
	}
	grouped := make(map[int64][]telemetry.Sample)
	for _, sample := range samples {
		grouped[sample.VariableID] = append(grouped[sample.VariableID], sample)
	}
	result := make(map[int64][]Bucket, len(grouped))
	for id, series := range grouped {
		buckets, err := Resample(series, width, stats, opts...)
		if err != nil {
			return nil, err
		}
		result[id] = buckets
	}
	return result, nil
}
