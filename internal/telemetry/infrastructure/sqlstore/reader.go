package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"machine-insights/internal/observability/metrics"
	telemetry "machine-insights/internal/telemetry/domain"
)

const (
	defaultSchema      = "public"
	defaultTablePrefix = "variable_log_"
)

// LogReader reads the variable_log_* tables through database/sql.
// Works with the pgx and duckdb drivers; both accept $n placeholders.
type LogReader struct {
	db          *sql.DB
	schema      string
	tablePrefix string
	attempts    int
	retryDelay  time.Duration
}

// NewLogReader constructs a reader with the default schema and table names.
func NewLogReader(db *sql.DB, opts ...Option) *LogReader {
	reader := &LogReader{
		db:          db,
		schema:      defaultSchema,
		tablePrefix: defaultTablePrefix,
		attempts:    1,
	}
	for _, opt := range opts {
		opt(reader)
	}
	return reader
}

// Option configures the reader.
type Option func(*LogReader)

// WithSchema overrides the schema holding the log tables. An empty schema drops the qualifier.
func WithSchema(schema string) Option {
	return func(reader *LogReader) {
		if reader != nil {
			reader.schema = schema
		}
	}
}

// WithTablePrefix overrides the log table prefix.
func WithTablePrefix(prefix string) Option {
	return func(reader *LogReader) {
		if reader != nil && prefix != "" {
			reader.tablePrefix = prefix
		}
	}
}

// WithRetry retries failed reads. Context cancellation is never retried.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(reader *LogReader) {
		if reader != nil && attempts > 0 {
			reader.attempts = attempts
			reader.retryDelay = delay
		}
	}
}

// Fetch returns rows of one variable within [start, end) ordered by time ascending.
func (r *LogReader) Fetch(ctx context.Context, table telemetry.Table, variableID int64, start, end time.Time) ([]telemetry.RawRow, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("log reader: nil db")
	}
	if !table.IsValid() {
		return nil, telemetry.ErrInvalidTable
	}
	if start.IsZero() || end.IsZero() || !end.After(start) {
		return nil, telemetry.ErrInvalidWindow
	}

	query := fmt.Sprintf(`
SELECT id_var, date, value
FROM %s
WHERE id_var = $1
	AND date >= $2
	AND date < $3
ORDER BY date ASC`, r.tableName(table))

	var rows []telemetry.RawRow
	err := r.withRetry(ctx, table, func() error {
		var err error
		rows, err = r.query(ctx, table, query, variableID, start.UnixMilli(), end.UnixMilli())
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("log reader: fetch %s %d: %w", table, variableID, err)
	}
	return rows, nil
}

// Recent returns up to Limit rows across the given variables, ordered by id_var then time.
func (r *LogReader) Recent(ctx context.Context, q telemetry.RecentQuery) ([]telemetry.RawRow, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("log reader: nil db")
	}
	if !q.Table.IsValid() {
		return nil, telemetry.ErrInvalidTable
	}
	if len(q.VariableIDs) == 0 {
		return nil, nil
	}
	if q.Limit <= 0 {
		return nil, errors.New("log reader: limit must be positive")
	}

	direction := "ASC"
	if q.NewestFirst {
		direction = "DESC"
	}
	placeholders := make([]string, 0, len(q.VariableIDs))
	args := make([]any, 0, len(q.VariableIDs)+1)
	for i, id := range q.VariableIDs {
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+1))
		args = append(args, id)
	}
	args = append(args, q.Limit)

	query := fmt.Sprintf(`
SELECT id_var, date, value
FROM %s
WHERE id_var IN (%s)
ORDER BY id_var ASC, date %s
LIMIT $%d`, r.tableName(q.Table), strings.Join(placeholders, ", "), direction, len(args))

	var rows []telemetry.RawRow
	err := r.withRetry(ctx, q.Table, func() error {
		var err error
		rows, err = r.query(ctx, q.Table, query, args...)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("log reader: recent %s: %w", q.Table, err)
	}
	return rows, nil
}

func (r *LogReader) query(ctx context.Context, table telemetry.Table, query string, args ...any) ([]telemetry.RawRow, error) {
	started := time.Now()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		metrics.ObserveStoreQuery(string(table), err, time.Since(started))
		return nil, err
	}
	defer rows.Close()

	var result []telemetry.RawRow
	for rows.Next() {
		var (
			row    telemetry.RawRow
			dateMS int64
		)
		switch table {
		case telemetry.TableFloat:
			var value sql.NullFloat64
			if err := rows.Scan(&row.VariableID, &dateMS, &value); err != nil {
				metrics.ObserveStoreQuery(string(table), err, time.Since(started))
				return nil, err
			}
			if value.Valid {
				v := value.Float64
				row.Numeric = &v
			}
		default:
			var value sql.NullString
			if err := rows.Scan(&row.VariableID, &dateMS, &value); err != nil {
				metrics.ObserveStoreQuery(string(table), err, time.Since(started))
				return nil, err
			}
			if value.Valid {
				v := value.String
				row.Text = &v
			}
		}
		row.At = time.UnixMilli(dateMS).UTC()
		result = append(result, row)
	}
	err = rows.Err()
	metrics.ObserveStoreQuery(string(table), err, time.Since(started))
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *LogReader) withRetry(ctx context.Context, table telemetry.Table, fn func() error) error {
	var err error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || attempt == r.attempts {
			return err
		}
		metrics.IncStoreRetry(string(table))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.retryDelay):
		}
	}
	return err
}

func (r *LogReader) tableName(table telemetry.Table) string {
	name := r.tablePrefix + string(table)
	if r.schema == "" {
		return name
	}
	return r.schema + "." + name
}
