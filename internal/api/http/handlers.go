package apihttp

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"machine-insights/internal/report"
	telemetry "machine-insights/internal/telemetry/domain"
)

const (
	defaultExportLimit = 100
	maxExportLimit     = 100000
)

// HealthHandler answers liveness probes.
func HealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

// RawExportHandler dumps recent raw log rows as CSV.
type RawExportHandler struct {
	reader telemetry.LogReader
}

// NewRawExportHandler constructs a RawExportHandler.
func NewRawExportHandler(reader telemetry.LogReader) (*RawExportHandler, error) {
	if reader == nil {
		return nil, errors.New("export handler: nil reader")
	}
	return &RawExportHandler{reader: reader}, nil
}

// ServeHTTP handles GET /api/v1/exports/raw.csv.
func (h *RawExportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	query, err := ParseRecentQuery(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	rows, err := h.reader.Recent(r.Context(), query)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	filename := fmt.Sprintf("%s_data_%s.csv", query.Table, time.Now().UTC().Format("2006-01-02_15-04-05"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := report.WriteRawCSV(w, rows); err != nil {
		// headers are already sent
		zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Int("rows", len(rows)).Msg("raw export aborted")
	}
}

// ParseRecentQuery reads table, ids, limit and order from the query string.
func ParseRecentQuery(r *http.Request) (telemetry.RecentQuery, error) {
	values := r.URL.Query()
	query := telemetry.RecentQuery{
		Table:       telemetry.Table(strings.ToLower(values.Get("table"))),
		Limit:       defaultExportLimit,
		NewestFirst: true,
	}
	if query.Table == "" {
		query.Table = telemetry.TableFloat
	}
	if !query.Table.IsValid() {
		return query, telemetry.ErrInvalidTable
	}

	ids, err := ParseIDs(values.Get("ids"))
	if err != nil {
		return query, err
	}
	if len(ids) == 0 {
		return query, badRequest("ids is required")
	}
	query.VariableIDs = ids

	if raw := values.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 || limit > maxExportLimit {
			return query, badRequest(fmt.Sprintf("limit must be between 1 and %d", maxExportLimit))
		}
		query.Limit = limit
	}
	switch strings.ToLower(values.Get("order")) {
	case "", "desc", "newest":
	case "asc", "oldest":
		query.NewestFirst = false
	default:
		return query, badRequest("order must be asc or desc")
	}
	return query, nil
}

// ParseIDs parses a comma separated list of variable ids, dropping duplicates.
func ParseIDs(value string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			return nil, badRequest(fmt.Sprintf("invalid variable id %q", part))
		}
		ids = append(ids, id)
	}
	return lo.Uniq(ids), nil
}

// ParseLimit reads a positive limit query parameter, falling back to def.
func ParseLimit(r *http.Request, def, maxLimit int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 || limit > maxLimit {
		return 0, badRequest(fmt.Sprintf("limit must be between 1 and %d", maxLimit))
	}
	return limit, nil
}
