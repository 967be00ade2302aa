package http

import (
	"errors"
	"net/http"
	"time"

	alarmapp "machine-insights/internal/alarms/application"
	alarms "machine-insights/internal/alarms/domain"
	apihttp "machine-insights/internal/api/http"
)

const (
	defaultLatestLimit = 10
	maxLatestLimit     = 1000
)

// Handler provides alarm HTTP endpoints.
type Handler struct {
	service  *alarmapp.Service
	location *time.Location
}

// NewHandler constructs a handler. Days are resolved in loc.
func NewHandler(service *alarmapp.Service, loc *time.Location) (*Handler, error) {
	if service == nil {
		return nil, errors.New("alarms handler: nil service")
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{service: service, location: loc}, nil
}

type summaryResponse struct {
	Day      string              `json:"day" msgpack:"day"`
	Summary  []alarms.SummaryRow `json:"summary" msgpack:"summary"`
	Total    int                 `json:"total" msgpack:"total"`
	Rejected int                 `json:"rejected_snapshots" msgpack:"rejected_snapshots"`
}

type timelineResponse struct {
	Day        string                 `json:"day" msgpack:"day"`
	Categories []string               `json:"categories" msgpack:"categories"`
	Points     []alarms.TimelinePoint `json:"points" msgpack:"points"`
	Hourly     []alarms.HourCount     `json:"hourly" msgpack:"hourly"`
}

// ServeHTTP handles /api/v1/alarms subroutes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !apihttp.MethodGet(w, r) {
		return
	}
	switch r.URL.Path {
	case "/api/v1/alarms/summary":
		h.handleSummary(w, r)
	case "/api/v1/alarms/timeline":
		h.handleTimeline(w, r)
	case "/api/v1/alarms/latest":
		h.handleLatest(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	window, err := apihttp.DayFromQuery(r, h.location)
	if err != nil {
		apihttp.WriteError(w, r, err)
		return
	}
	report, err := h.service.AnalyzeDay(r.Context(), window)
	if err != nil {
		apihttp.WriteError(w, r, err)
		return
	}
	apihttp.Render(w, r, http.StatusOK, summaryResponse{
		Day:      report.Day,
		Summary:  report.Summary,
		Total:    report.Total,
		Rejected: report.Rejected,
	})
}

func (h *Handler) handleTimeline(w http.ResponseWriter, r *http.Request) {
	window, err := apihttp.DayFromQuery(r, h.location)
	if err != nil {
		apihttp.WriteError(w, r, err)
		return
	}
	report, err := h.service.AnalyzeDay(r.Context(), window)
	if err != nil {
		apihttp.WriteError(w, r, err)
		return
	}
	apihttp.Render(w, r, http.StatusOK, timelineResponse{
		Day:        report.Day,
		Categories: report.Categories,
		Points:     report.Points,
		Hourly:     report.Hourly,
	})
}

func (h *Handler) handleLatest(w http.ResponseWriter, r *http.Request) {
	limit, err := apihttp.ParseLimit(r, defaultLatestLimit, maxLatestLimit)
	if err != nil {
		apihttp.WriteError(w, r, err)
		return
	}
	latest, err := h.service.Latest(r.Context(), limit)
	if err != nil {
		apihttp.WriteError(w, r, err)
		return
	}
	apihttp.Render(w, r, http.StatusOK, latest)
}
