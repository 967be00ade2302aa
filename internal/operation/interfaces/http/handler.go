package http

import (
	"errors"
	"net/http"
	"time"

	apihttp "machine-insights/internal/api/http"
	operationapp "machine-insights/internal/operation/application"
)

const (
	defaultRunsLimit = 10
	maxRunsLimit     = 1000
)

// Handler provides machine operation endpoints.
type Handler struct {
	service  *operationapp.Service
	location *time.Location
}

// NewHandler constructs a handler. Days are resolved in loc.
func NewHandler(service *operationapp.Service, loc *time.Location) (*Handler, error) {
	if service == nil {
		return nil, errors.New("operation handler: nil service")
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{service: service, location: loc}, nil
}

type zonesResponse struct {
	Zones []bool `json:"zones" msgpack:"zones"`
}

// ServeHTTP handles the operation, zone and run routes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !apihttp.MethodGet(w, r) {
		return
	}
	switch r.URL.Path {
	case "/api/v1/operation/timeline":
		h.handleTimeline(w, r)
	case "/api/v1/zones/active":
		h.handleZones(w, r)
	case "/api/v1/runs/recent":
		h.handleRecentRun(w, r)
	case "/api/v1/runs":
		h.handleRuns(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handleTimeline(w http.ResponseWriter, r *http.Request) {
	window, err := apihttp.DayFromQuery(r, h.location)
	if err != nil {
		apihttp.WriteError(w, r, err)
		return
	}
	timeline, err := h.service.DayTimeline(r.Context(), window)
	if err != nil {
		apihttp.WriteError(w, r, err)
		return
	}
	apihttp.Render(w, r, http.StatusOK, timeline)
}

func (h *Handler) handleZones(w http.ResponseWriter, r *http.Request) {
	zones, err := h.service.ActiveZones(r.Context())
	if err != nil {
		apihttp.WriteError(w, r, err)
		return
	}
	apihttp.Render(w, r, http.StatusOK, zonesResponse{Zones: zones})
}

func (h *Handler) handleRecentRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.service.RecentRun(r.Context())
	if err != nil {
		apihttp.WriteError(w, r, err)
		return
	}
	apihttp.Render(w, r, http.StatusOK, run)
}

func (h *Handler) handleRuns(w http.ResponseWriter, r *http.Request) {
	limit, err := apihttp.ParseLimit(r, defaultRunsLimit, maxRunsLimit)
	if err != nil {
		apihttp.WriteError(w, r, err)
		return
	}
	runs, err := h.service.RecentRuns(r.Context(), limit)
	if err != nil {
		apihttp.WriteError(w, r, err)
		return
	}
	apihttp.Render(w, r, http.StatusOK, runs)
}
