package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	apihttp "machine-insights/internal/api/http"
	"machine-insights/internal/observability/metrics"
	"machine-insights/internal/report"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF  = "application/pdf"
)

// Handler serves downloadable day reports.
type Handler struct {
	collector *report.Collector
	location  *time.Location
}

// NewHandler constructs a handler. Days are resolved in loc.
func NewHandler(collector *report.Collector, loc *time.Location) (*Handler, error) {
	if collector == nil {
		return nil, errors.New("report handler: nil collector")
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{collector: collector, location: loc}, nil
}

// ServeHTTP handles /api/v1/reports/day.xlsx and /api/v1/reports/day.pdf.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !apihttp.MethodGet(w, r) {
		return
	}
	var (
		build       func(*report.DayReport) ([]byte, error)
		contentType string
		format      string
	)
	switch r.URL.Path {
	case "/api/v1/reports/day.xlsx":
		build, contentType, format = report.BuildDayXLSX, contentTypeXLSX, "xlsx"
	case "/api/v1/reports/day.pdf":
		build, contentType, format = report.BuildDayPDF, contentTypePDF, "pdf"
	default:
		w.WriteHeader(http.StatusNotFound)
		return
	}

	window, err := apihttp.DayFromQuery(r, h.location)
	if err != nil {
		apihttp.WriteError(w, r, err)
		return
	}
	start := time.Now()
	day, err := h.collector.Collect(r.Context(), window)
	if err != nil {
		metrics.ObserveAnalysis("report_"+format, metrics.ResultError, time.Since(start))
		apihttp.WriteError(w, r, err)
		return
	}
	data, err := build(day)
	if err != nil {
		metrics.ObserveAnalysis("report_"+format, metrics.ResultError, time.Since(start))
		apihttp.WriteError(w, r, err)
		return
	}
	metrics.ObserveAnalysis("report_"+format, metrics.ResultSuccess, time.Since(start))

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("machine_%s.%s", day.Day, format)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
