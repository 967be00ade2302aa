package apihttp

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"machine-insights/internal/analytics/domain/resample"
	operation "machine-insights/internal/operation/domain"
	telemetry "machine-insights/internal/telemetry/domain"
)

const (
	contentTypeJSON    = "application/json"
	contentTypeMsgpack = "application/msgpack"

	// NoDataMessage is the body of every 404 caused by an empty day.
	NoDataMessage = "no data for this day"
)

// BadRequestError marks an invalid request parameter.
type BadRequestError struct {
	Reason string
}

func (e *BadRequestError) Error() string { return e.Reason }

func badRequest(reason string) error {
	return &BadRequestError{Reason: reason}
}

type errorBody struct {
	Error string `json:"error" msgpack:"error"`
}

// Render writes payload as JSON, or as MessagePack when format=msgpack or the
// client accepts application/msgpack.
func Render(w http.ResponseWriter, r *http.Request, status int, payload any) {
	if wantsMsgpack(r) {
		data, err := msgpack.Marshal(payload)
		if err != nil {
			http.Error(w, "encode response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", contentTypeMsgpack)
		w.WriteHeader(status)
		_, _ = w.Write(data)
		return
	}
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// WriteError maps err onto a status code and renders it.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := StatusOf(err)
	if status >= http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	Render(w, r, status, errorBody{Error: message})
}

// StatusOf returns the HTTP status and client message for err.
func StatusOf(err error) (int, string) {
	var bad *BadRequestError
	switch {
	case err == nil:
		return http.StatusOK, ""
	case telemetry.IsMissingVariable(err), errors.Is(err, operation.ErrEmptyInput):
		return http.StatusNotFound, NoDataMessage
	case errors.As(err, &bad),
		errors.Is(err, telemetry.ErrInvalidDay),
		errors.Is(err, telemetry.ErrInvalidTable),
		errors.Is(err, telemetry.ErrInvalidWindow),
		errors.Is(err, resample.ErrInvalidWidth),
		errors.Is(err, resample.ErrTooManyBuckets):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// DayFromQuery parses the day query parameter in loc.
func DayFromQuery(r *http.Request, loc *time.Location) (telemetry.DayWindow, error) {
	return telemetry.ParseDay(r.URL.Query().Get("day"), loc)
}

// MethodGet rejects anything but GET and HEAD. It returns false when the request was answered.
func MethodGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return true
	}
	w.Header().Set("Allow", "GET, HEAD")
	w.WriteHeader(http.StatusMethodNotAllowed)
	return false
}

func wantsMsgpack(r *http.Request) bool {
	switch strings.ToLower(r.URL.Query().Get("format")) {
	case "msgpack":
		return true
	case "json":
		return false
	}
	return strings.Contains(r.Header.Get("Accept"), contentTypeMsgpack)
}
