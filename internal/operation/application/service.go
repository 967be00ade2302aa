package application

import (
	"context"
	"errors"
	"math"
	"time"

	"machine-insights/internal/observability/metrics"
	operation "machine-insights/internal/operation/domain"
	telemetry "machine-insights/internal/telemetry/domain"
)

const (
	viewOperation    = "operation"
	machineStateName = "MACHINE_IN_OPERATION"
)

// Variables names the logged variables the service reads.
type Variables struct {
	MachineInOperation int64
	RecentRun          int64
	Zones              []int64
}

// DayTimeline is the machine state timeline of one day.
type DayTimeline struct {
	Day         string               `json:"day" msgpack:"day"`
	Intervals   []operation.Interval `json:"intervals" msgpack:"intervals"`
	Totals      map[string]float64   `json:"totals" msgpack:"totals"`
	Utilization float64              `json:"utilization" msgpack:"utilization"`
}

// Run is one program run reported by the machine.
type Run struct {
	Date  time.Time `json:"date" msgpack:"date"`
	Value string    `json:"value" msgpack:"value"`
}

// Service derives operational views from the raw log.
type Service struct {
	reader    telemetry.LogReader
	variables Variables
}

// NewService constructs an operation service.
func NewService(reader telemetry.LogReader, variables Variables) (*Service, error) {
	if reader == nil {
		return nil, errors.New("operation: nil reader")
	}
	if variables.MachineInOperation <= 0 {
		return nil, errors.New("operation: invalid machine variable id")
	}
	return &Service{reader: reader, variables: variables}, nil
}

// DayTimeline classifies the machine signal of the day into state intervals.
func (s *Service) DayTimeline(ctx context.Context, window telemetry.DayWindow) (*DayTimeline, error) {
	start := time.Now()
	timeline, err := s.dayTimeline(ctx, window)
	result := metrics.ResultSuccess
	switch {
	case err == nil:
	case telemetry.IsMissingVariable(err), errors.Is(err, operation.ErrEmptyInput):
		result = metrics.ResultNoData
	default:
		result = metrics.ResultError
	}
	metrics.ObserveAnalysis(viewOperation, result, time.Since(start))
	return timeline, err
}

func (s *Service) dayTimeline(ctx context.Context, window telemetry.DayWindow) (*DayTimeline, error) {
	samples, err := telemetry.FetchSamples(ctx, s.reader, s.variables.MachineInOperation, machineStateName, window.Start, window.End)
	if err != nil {
		return nil, err
	}
	intervals, err := operation.BuildIntervals(operation.ClassifySamples(samples), window.DayEnd)
	if err != nil {
		return nil, err
	}
	totals := make(map[string]float64, 3)
	for state, d := range operation.Totals(intervals) {
		totals[state.String()] = d.Seconds()
	}
	return &DayTimeline{
		Day:         window.Label(),
		Intervals:   intervals,
		Totals:      totals,
		Utilization: operation.Utilization(intervals),
	}, nil
}

// ActiveZones reports, per configured zone, whether its latest value is non-zero.
// A zone without any logged value is inactive.
func (s *Service) ActiveZones(ctx context.Context) ([]bool, error) {
	zones := make([]bool, 0, len(s.variables.Zones))
	for _, id := range s.variables.Zones {
		rows, err := telemetry.Latest(ctx, s.reader, telemetry.TableFloat, id, 1)
		if err != nil {
			return nil, err
		}
		active := false
		if len(rows) > 0 && rows[0].Numeric != nil {
			v := *rows[0].Numeric
			active = v != 0 && !math.IsNaN(v)
		}
		zones = append(zones, active)
	}
	return zones, nil
}

// RecentRuns returns up to limit program runs, newest first.
func (s *Service) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if s.variables.RecentRun <= 0 {
		return nil, errors.New("operation: recent run variable not configured")
	}
	rows, err := telemetry.Latest(ctx, s.reader, telemetry.TableString, s.variables.RecentRun, limit)
	if err != nil {
		return nil, err
	}
	runs := make([]Run, 0, len(rows))
	for _, row := range rows {
		run := Run{Date: row.At}
		if row.Text != nil {
			run.Value = *row.Text
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// RecentRun returns the latest program run.
func (s *Service) RecentRun(ctx context.Context) (*Run, error) {
	runs, err := s.RecentRuns(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, &telemetry.MissingVariableError{VariableID: s.variables.RecentRun}
	}
	return &runs[0], nil
}
