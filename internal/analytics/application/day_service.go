package application

import (
	"context"
	"errors"
	"time"

	"github.com/samber/lo"

	"machine-insights/internal/analytics/domain/resample"
	"machine-insights/internal/observability/metrics"
	telemetry "machine-insights/internal/telemetry/domain"
)

const (
	viewTemperatures = "temperatures"
	viewUtilization  = "utilization"
	viewEnergy       = "energy"
)

// Variable is a logged numeric variable with its display label.
type Variable struct {
	ID    int64
	Label string
}

// Settings configures the day analyses.
type Settings struct {
	Temperatures []Variable
	Utilization  []Variable
	SpindleLoad  Variable
	BucketWidth  time.Duration
	MaxPowerKW   float64
}

// Series is one variable's resampled curve.
type Series struct {
	Label   string            `json:"label" msgpack:"label"`
	Buckets []resample.Bucket `json:"buckets" msgpack:"buckets"`
}

// TemperatureReport holds the temperature curves of one day, keyed by variable id.
type TemperatureReport struct {
	Day     string           `json:"day" msgpack:"day"`
	Width   string           `json:"width" msgpack:"width"`
	Series  map[int64]Series `json:"series" msgpack:"series"`
	Missing []int64          `json:"missing,omitempty" msgpack:"missing,omitempty"`
}

// Point is one raw sample value.
type Point struct {
	Timestamp time.Time `json:"timestamp" msgpack:"timestamp"`
	Value     *float64  `json:"value" msgpack:"value"`
}

// RawSeries is one variable's raw samples.
type RawSeries struct {
	Label   string  `json:"label" msgpack:"label"`
	Samples []Point `json:"samples" msgpack:"samples"`
}

// UtilizationReport holds the raw motor utilization samples of one day.
type UtilizationReport struct {
	Day     string              `json:"day" msgpack:"day"`
	Series  map[int64]RawSeries `json:"series" msgpack:"series"`
	Missing []int64             `json:"missing,omitempty" msgpack:"missing,omitempty"`
}

// HourlyPower is the mean power of one hour.
type HourlyPower struct {
	Start  time.Time `json:"start" msgpack:"start"`
	MeanKW *float64  `json:"mean_kw" msgpack:"mean_kw"`
}

// EnergyReport is the spindle energy use of one day.
type EnergyReport struct {
	Day        string        `json:"day" msgpack:"day"`
	MaxPowerKW float64       `json:"max_power_kw" msgpack:"max_power_kw"`
	TotalKWh   float64       `json:"total_kwh" msgpack:"total_kwh"`
	Hourly     []HourlyPower `json:"hourly" msgpack:"hourly"`
}

// TemperatureQuery tunes the temperature resampling.
type TemperatureQuery struct {
	// Width overrides the configured bucket width when positive.
	Width time.Duration
	// AlignToDay pads the buckets from the start of the day.
	AlignToDay bool
}

// Service runs the numeric day analyses.
type Service struct {
	reader   telemetry.LogReader
	settings Settings
}

// NewService constructs an analytics service.
func NewService(reader telemetry.LogReader, settings Settings) (*Service, error) {
	if reader == nil {
		return nil, errors.New("analytics: nil reader")
	}
	if settings.BucketWidth <= 0 {
		return nil, resample.ErrInvalidWidth
	}
	if settings.MaxPowerKW <= 0 {
		return nil, errors.New("analytics: max power must be positive")
	}
	return &Service{reader: reader, settings: settings}, nil
}

// Temperatures resamples every temperature variable to mean and max per bucket.
// Variables without rows are listed as missing; a day with no rows at all is an error.
func (s *Service) Temperatures(ctx context.Context, window telemetry.DayWindow, query TemperatureQuery) (*TemperatureReport, error) {
	start := time.Now()
	report, err := s.temperatures(ctx, window, query)
	metrics.ObserveAnalysis(viewTemperatures, analysisResult(err), time.Since(start))
	return report, err
}

func (s *Service) temperatures(ctx context.Context, window telemetry.DayWindow, query TemperatureQuery) (*TemperatureReport, error) {
	width := s.settings.BucketWidth
	if query.Width > 0 {
		width = query.Width
	}
	var opts []resample.Options
	if query.AlignToDay {
		opts = append(opts, resample.Options{Origin: window.Start})
	}

	found, missing, err := s.fetchAll(ctx, s.settings.Temperatures, window)
	if err != nil {
		return nil, err
	}
	report := &TemperatureReport{
		Day:     window.Label(),
		Width:   width.String(),
		Series:  make(map[int64]Series, len(found)),
		Missing: missing,
	}
	var samples []telemetry.Sample
	for _, series := range found {
		samples = append(samples, series...)
	}
	byVariable, err := resample.ResampleByVariable(samples, width, []resample.Stat{resample.StatMean, resample.StatMax}, opts...)
	if err != nil {
		return nil, err
	}
	for _, variable := range s.settings.Temperatures {
		buckets, ok := byVariable[variable.ID]
		if !ok {
			continue
		}
		report.Series[variable.ID] = Series{Label: variable.Label, Buckets: buckets}
	}
	return report, nil
}

// Utilization returns the raw utilization samples of every axis motor.
func (s *Service) Utilization(ctx context.Context, window telemetry.DayWindow) (*UtilizationReport, error) {
	start := time.Now()
	found, missing, err := s.fetchAll(ctx, s.settings.Utilization, window)
	metrics.ObserveAnalysis(viewUtilization, analysisResult(err), time.Since(start))
	if err != nil {
		return nil, err
	}
	report := &UtilizationReport{
		Day:     window.Label(),
		Series:  make(map[int64]RawSeries, len(found)),
		Missing: missing,
	}
	for _, variable := range s.settings.Utilization {
		samples, ok := found[variable.ID]
		if !ok {
			continue
		}
		report.Series[variable.ID] = RawSeries{
			Label: variable.Label,
			Samples: lo.Map(samples, func(sample telemetry.Sample, _ int) Point {
				return Point{Timestamp: sample.Timestamp, Value: sample.Value}
			}),
		}
	}
	return report, nil
}

// Energy integrates the spindle load of the day and averages its power per hour.
func (s *Service) Energy(ctx context.Context, window telemetry.DayWindow) (*EnergyReport, error) {
	start := time.Now()
	report, err := s.energy(ctx, window)
	metrics.ObserveAnalysis(viewEnergy, analysisResult(err), time.Since(start))
	return report, err
}

func (s *Service) energy(ctx context.Context, window telemetry.DayWindow) (*EnergyReport, error) {
	load := s.settings.SpindleLoad
	samples, err := telemetry.FetchSamples(ctx, s.reader, load.ID, load.Label, window.Start, window.End)
	if err != nil {
		return nil, err
	}
	energy := resample.StepEnergy(samples, s.settings.MaxPowerKW)
	buckets, err := resample.HourlyMeanPower(samples, s.settings.MaxPowerKW)
	if err != nil {
		return nil, err
	}
	return &EnergyReport{
		Day:        window.Label(),
		MaxPowerKW: s.settings.MaxPowerKW,
		TotalKWh:   energy.TotalKWh,
		Hourly: lo.Map(buckets, func(bucket resample.Bucket, _ int) HourlyPower {
			return HourlyPower{Start: bucket.Start, MeanKW: bucket.Mean}
		}),
	}, nil
}

// fetchAll loads every variable of the window. Variables without rows are returned
// as missing; when none has rows the first MissingVariableError is returned.
func (s *Service) fetchAll(ctx context.Context, variables []Variable, window telemetry.DayWindow) (map[int64][]telemetry.Sample, []int64, error) {
	found := make(map[int64][]telemetry.Sample, len(variables))
	var (
		missing    []int64
		firstEmpty error
	)
	for _, variable := range variables {
		samples, err := telemetry.FetchSamples(ctx, s.reader, variable.ID, variable.Label, window.Start, window.End)
		switch {
		case err == nil:
			found[variable.ID] = samples
		case telemetry.IsMissingVariable(err):
			missing = append(missing, variable.ID)
			if firstEmpty == nil {
				firstEmpty = err
			}
		default:
			return nil, nil, err
		}
	}
	if len(found) == 0 {
		if firstEmpty == nil {
			firstEmpty = &telemetry.MissingVariableError{}
		}
		return nil, nil, firstEmpty
	}
	return found, missing, nil
}

func analysisResult(err error) string {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case telemetry.IsMissingVariable(err):
		return metrics.ResultNoData
	default:
		return metrics.ResultError
	}
}
