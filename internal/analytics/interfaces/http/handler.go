package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	analyticsapp "machine-insights/internal/analytics/application"
	"machine-insights/internal/analytics/domain/resample"
	apihttp "machine-insights/internal/api/http"
)

const minWidth = time.Second

// Handler provides the temperature, utilization and energy endpoints.
type Handler struct {
	service  *analyticsapp.Service
	location *time.Location
}

// NewHandler constructs a handler. Days are resolved in loc.
func NewHandler(service *analyticsapp.Service, loc *time.Location) (*Handler, error) {
	if service == nil {
		return nil, errors.New("analytics handler: nil service")
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{service: service, location: loc}, nil
}

// ServeHTTP handles /api/v1/temperatures, /api/v1/utilization and /api/v1/energy.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !apihttp.MethodGet(w, r) {
		return
	}
	window, err := apihttp.DayFromQuery(r, h.location)
	if err != nil {
		apihttp.WriteError(w, r, err)
		return
	}

	var payload any
	switch r.URL.Path {
	case "/api/v1/temperatures":
		query, qerr := parseTemperatureQuery(r)
		if qerr != nil {
			apihttp.WriteError(w, r, qerr)
			return
		}
		payload, err = h.service.Temperatures(r.Context(), window, query)
	case "/api/v1/utilization":
		payload, err = h.service.Utilization(r.Context(), window)
	case "/api/v1/energy":
		payload, err = h.service.Energy(r.Context(), window)
	default:
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err != nil {
		apihttp.WriteError(w, r, err)
		return
	}
	apihttp.Render(w, r, http.StatusOK, payload)
}

func parseTemperatureQuery(r *http.Request) (analyticsapp.TemperatureQuery, error) {
	var query analyticsapp.TemperatureQuery
	values := r.URL.Query()
	if raw := values.Get("width"); raw != "" {
		width, err := time.ParseDuration(raw)
		if err != nil || width <= 0 {
			return query, resample.ErrInvalidWidth
		}
		if width < minWidth {
			return query, &apihttp.BadRequestError{Reason: "width must be at least " + minWidth.String()}
		}
		query.Width = width
	}
	switch strings.ToLower(values.Get("align")) {
	case "", "first":
	case "day":
		query.AlignToDay = true
	default:
		return query, &apihttp.BadRequestError{Reason: "align must be first or day"}
	}
	return query, nil
}
