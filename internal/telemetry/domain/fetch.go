package telemetry

import (
	"context"
	"errors"
	"time"
)

// FetchSamples loads numeric samples of one variable within [start, end).
// Zero rows yields a MissingVariableError.
func FetchSamples(ctx context.Context, reader LogReader, variableID int64, label string, start, end time.Time) ([]Sample, error) {
	if reader == nil {
		return nil, errors.New("telemetry: nil reader")
	}
	rows, err := reader.Fetch(ctx, TableFloat, variableID, start, end)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &MissingVariableError{VariableID: variableID, Label: label}
	}
	samples := make([]Sample, 0, len(rows))
	for _, row := range rows {
		samples = append(samples, Sample{
			Timestamp:  row.At,
			Value:      row.Numeric,
			VariableID: variableID,
			Label:      label,
		})
	}
	return samples, nil
}

// FetchSnapshots loads alarm snapshots of one string variable within [start, end).
// Zero rows yields a MissingVariableError.
func FetchSnapshots(ctx context.Context, reader LogReader, variableID int64, start, end time.Time) ([]AlarmSnapshot, error) {
	if reader == nil {
		return nil, errors.New("telemetry: nil reader")
	}
	rows, err := reader.Fetch(ctx, TableString, variableID, start, end)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &MissingVariableError{VariableID: variableID}
	}
	return SnapshotsFromRows(rows), nil
}

// SnapshotsFromRows converts string rows into alarm snapshots, keeping row order.
func SnapshotsFromRows(rows []RawRow) []AlarmSnapshot {
	snapshots := make([]AlarmSnapshot, 0, len(rows))
	for _, row := range rows {
		snapshots = append(snapshots, AlarmSnapshot{Timestamp: row.At, Raw: row.Text})
	}
	return snapshots
}

// Latest returns up to limit most recent rows of one variable, newest first.
func Latest(ctx context.Context, reader LogReader, table Table, variableID int64, limit int) ([]RawRow, error) {
	if reader == nil {
		return nil, errors.New("telemetry: nil reader")
	}
	if limit <= 0 {
		limit = 1
	}
	return reader.Recent(ctx, RecentQuery{
		Table:       table,
		VariableIDs: []int64{variableID},
		Limit:       limit,
		NewestFirst: true,
	})
}
