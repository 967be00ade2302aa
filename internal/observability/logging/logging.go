package logging

import (
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"machine-insights/internal/observability/metrics"
)

const (
	requestIDHeader = "X-Request-ID"
	unmatchedRoute  = "unmatched"
)

// New builds the service logger. Format "console" writes human-readable lines,
// anything else writes JSON.
func New(level, format string) zerolog.Logger {
	var out io.Writer = os.Stdout
	if strings.EqualFold(format, "console") {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Str("service", "machine-insights").Logger()
}

// Middleware logs every request and records HTTP metrics. Metrics are labelled by
// the matching entry of routes; any other path is recorded as "unmatched".
func Middleware(next http.Handler, logger zerolog.Logger, routes []string) http.Handler {
	known := lo.SliceToMap(routes, func(route string) (string, struct{}) {
		return route, struct{}{}
	})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		reqLogger := logger.With().Str("request_id", requestID).Logger()
		next.ServeHTTP(resp, r.WithContext(reqLogger.WithContext(r.Context())))

		elapsed := time.Since(start)
		route := unmatchedRoute
		if _, ok := known[r.URL.Path]; ok {
			route = r.URL.Path
		}
		metrics.ObserveHTTP(route, resp.status, elapsed)
		reqLogger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", resp.status).
			Dur("duration", elapsed).
			Msg("http request")
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
