package application

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	alarms "machine-insights/internal/alarms/domain"
	"machine-insights/internal/observability/metrics"
	telemetry "machine-insights/internal/telemetry/domain"
)

const viewAlarms = "alarms"

// DayReport is the alarm analysis of one day.
type DayReport struct {
	Day        string                 `json:"day" msgpack:"day"`
	Summary    []alarms.SummaryRow    `json:"summary" msgpack:"summary"`
	Total      int                    `json:"total" msgpack:"total"`
	Rejected   int                    `json:"rejected_snapshots" msgpack:"rejected_snapshots"`
	Categories []string               `json:"categories" msgpack:"categories"`
	Points     []alarms.TimelinePoint `json:"points" msgpack:"points"`
	Hourly     []alarms.HourCount     `json:"hourly" msgpack:"hourly"`
}

// Snapshot is one decoded alarm snapshot. Error is set when the raw value was rejected.
type Snapshot struct {
	Timestamp time.Time      `json:"timestamp" msgpack:"timestamp"`
	Alarms    []alarms.Entry `json:"alarms" msgpack:"alarms"`
	Error     string         `json:"error,omitempty" msgpack:"error,omitempty"`
}

// Service runs alarm analyses over the raw log.
type Service struct {
	reader     telemetry.LogReader
	variableID int64
	logger     zerolog.Logger
}

// ServiceOption customizes the alarm service.
type ServiceOption func(*Service)

// WithLogger assigns a logger.
func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService constructs an alarm service reading snapshots of variableID.
func NewService(reader telemetry.LogReader, variableID int64, opts ...ServiceOption) (*Service, error) {
	if reader == nil {
		return nil, errors.New("alarms: nil reader")
	}
	if variableID <= 0 {
		return nil, errors.New("alarms: invalid variable id")
	}
	service := &Service{reader: reader, variableID: variableID, logger: zerolog.Nop()}
	for _, opt := range opts {
		if opt != nil {
			opt(service)
		}
	}
	return service, nil
}

// AnalyzeDay decodes every snapshot of the day and aggregates the alarms.
// Rejected snapshots are logged and counted, never fatal.
func (s *Service) AnalyzeDay(ctx context.Context, window telemetry.DayWindow) (*DayReport, error) {
	start := time.Now()
	report, err := s.analyzeDay(ctx, window)
	metrics.ObserveAnalysis(viewAlarms, analysisResult(err), time.Since(start))
	return report, err
}

func (s *Service) analyzeDay(ctx context.Context, window telemetry.DayWindow) (*DayReport, error) {
	snapshots, err := telemetry.FetchSnapshots(ctx, s.reader, s.variableID, window.Start, window.End)
	if err != nil {
		return nil, err
	}
	records, rejected := alarms.DecodeSnapshots(snapshots, s.logger)
	metrics.IncAlarmDecodeFailure(rejected)

	summary := alarms.Summarize(records)
	categories, points := alarms.Timeline(records)
	return &DayReport{
		Day:        window.Label(),
		Summary:    summary,
		Total:      alarms.TotalOccurrences(summary),
		Rejected:   rejected,
		Categories: categories,
		Points:     points,
		Hourly:     alarms.HourlyCounts(records, window.Start, window.End),
	}, nil
}

// Latest decodes the most recent snapshots, newest first.
func (s *Service) Latest(ctx context.Context, limit int) ([]Snapshot, error) {
	rows, err := telemetry.Latest(ctx, s.reader, telemetry.TableString, s.variableID, limit)
	if err != nil {
		return nil, err
	}
	result := make([]Snapshot, 0, len(rows))
	for _, snapshot := range telemetry.SnapshotsFromRows(rows) {
		entries, err := alarms.Decode(snapshot.Raw)
		item := Snapshot{Timestamp: snapshot.Timestamp, Alarms: entries}
		if err != nil {
			item.Error = err.Error()
			metrics.IncAlarmDecodeFailure(1)
		}
		if item.Alarms == nil {
			item.Alarms = []alarms.Entry{}
		}
		result = append(result, item)
	}
	return result, nil
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
