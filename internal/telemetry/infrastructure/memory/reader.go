package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	telemetry "machine-insights/internal/telemetry/domain"
)

type key struct {
	table      telemetry.Table
	variableID int64
}

// LogReader is an in-memory log store for demo/testing.
type LogReader struct {
	mu   sync.RWMutex
	rows map[key][]telemetry.RawRow
	err  error
}

// NewLogReader constructs an empty reader.
func NewLogReader() *LogReader {
	return &LogReader{rows: make(map[key][]telemetry.RawRow)}
}

// AddFloat appends a numeric row. A nil value stores a null sample.
func (r *LogReader) AddFloat(variableID int64, at time.Time, value *float64) {
	r.add(telemetry.TableFloat, telemetry.RawRow{VariableID: variableID, At: at.UTC(), Numeric: value})
}

// AddString appends a string row. A nil value stores a null row.
func (r *LogReader) AddString(variableID int64, at time.Time, value *string) {
	r.add(telemetry.TableString, telemetry.RawRow{VariableID: variableID, At: at.UTC(), Text: value})
}

// FailWith makes every subsequent read return err.
func (r *LogReader) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *LogReader) add(table telemetry.Table, row telemetry.RawRow) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key{table: table, variableID: row.VariableID}
	list := append(r.rows[k], row)
	sort.SliceStable(list, func(i, j int) bool { return list[i].At.Before(list[j].At) })
	r.rows[k] = list
}

// Fetch returns rows within [start, end) ordered by time.
func (r *LogReader) Fetch(ctx context.Context, table telemetry.Table, variableID int64, start, end time.Time) ([]telemetry.RawRow, error) {
	_ = ctx
	if !table.IsValid() {
		return nil, telemetry.ErrInvalidTable
	}
	if start.IsZero() || end.IsZero() || !end.After(start) {
		return nil, telemetry.ErrInvalidWindow
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.err != nil {
		return nil, r.err
	}
	var result []telemetry.RawRow
	for _, row := range r.rows[key{table: table, variableID: variableID}] {
		if row.At.Before(start) || !row.At.Before(end) {
			continue
		}
		result = append(result, row)
	}
	return result, nil
}

// Recent returns up to Limit rows ordered by variable id then time.
func (r *LogReader) Recent(ctx context.Context, q telemetry.RecentQuery) ([]telemetry.RawRow, error) {
	_ = ctx
	if !q.Table.IsValid() {
		return nil, telemetry.ErrInvalidTable
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.err != nil {
		return nil, r.err
	}
	ids := append([]int64(nil), q.VariableIDs...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var result []telemetry.RawRow
	for _, id := range ids {
		list := r.rows[key{table: q.Table, variableID: id}]
		if q.NewestFirst {
			for i := len(list) - 1; i >= 0; i-- {
				result = append(result, list[i])
			}
			continue
		}
		result = append(result, list...)
	}
	if q.Limit > 0 && len(result) > q.Limit {
		result = result[:q.Limit]
	}
	return result, nil
}
