package report

import (
	"context"
	"errors"
	"time"

	alarmapp "machine-insights/internal/alarms/application"
	analyticsapp "machine-insights/internal/analytics/application"
	operation "machine-insights/internal/operation/domain"
	operationapp "machine-insights/internal/operation/application"
	telemetry "machine-insights/internal/telemetry/domain"
)

// AlarmSource produces the alarm analysis of a day.
type AlarmSource interface {
	AnalyzeDay(ctx context.Context, window telemetry.DayWindow) (*alarmapp.DayReport, error)
}

// OperationSource produces the machine state timeline of a day.
type OperationSource interface {
	DayTimeline(ctx context.Context, window telemetry.DayWindow) (*operationapp.DayTimeline, error)
}

// AnalyticsSource produces the numeric analyses of a day.
type AnalyticsSource interface {
	Temperatures(ctx context.Context, window telemetry.DayWindow, query analyticsapp.TemperatureQuery) (*analyticsapp.TemperatureReport, error)
	Energy(ctx context.Context, window telemetry.DayWindow) (*analyticsapp.EnergyReport, error)
}

// DayReport gathers every view of one day. A section without data is nil.
type DayReport struct {
	Day          string
	Location     *time.Location
	Alarms       *alarmapp.DayReport
	Operation    *operationapp.DayTimeline
	Temperatures *analyticsapp.TemperatureReport
	Energy       *analyticsapp.EnergyReport
}

// Collector assembles day reports from the analysis services.
type Collector struct {
	alarms    AlarmSource
	operation OperationSource
	analytics AnalyticsSource
}

// NewCollector constructs a Collector.
func NewCollector(alarms AlarmSource, operation OperationSource, analytics AnalyticsSource) (*Collector, error) {
	if alarms == nil || operation == nil || analytics == nil {
		return nil, errors.New("report: nil source")
	}
	return &Collector{alarms: alarms, operation: operation, analytics: analytics}, nil
}

// Collect runs every analysis for the window. Sections without data are left nil;
// when no section has data the first no-data error is returned.
func (c *Collector) Collect(ctx context.Context, window telemetry.DayWindow) (*DayReport, error) {
	report := &DayReport{Day: window.Label(), Location: window.Start.Location()}
	var noData error
	keep := func(err error) error {
		if err == nil {
			return nil
		}
		if telemetry.IsMissingVariable(err) || errors.Is(err, operation.ErrEmptyInput) {
			if noData == nil {
				noData = err
			}
			return nil
		}
		return err
	}

	var err error
	if report.Alarms, err = c.alarms.AnalyzeDay(ctx, window); keep(err) != nil {
		return nil, err
	}
	if report.Operation, err = c.operation.DayTimeline(ctx, window); keep(err) != nil {
		return nil, err
	}
	if report.Temperatures, err = c.analytics.Temperatures(ctx, window, analyticsapp.TemperatureQuery{}); keep(err) != nil {
		return nil, err
	}
	if report.Energy, err = c.analytics.Energy(ctx, window); keep(err) != nil {
		return nil, err
	}

	if report.Alarms == nil && report.Operation == nil && report.Temperatures == nil && report.Energy == nil {
		return nil, noData
	}
	return report, nil
}

func (r *DayReport) localTime(t time.Time) string {
	loc := r.Location
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("2006-01-02 15:04:05")
}
