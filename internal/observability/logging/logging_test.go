package logging

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"machine-insights/internal/observability/metrics"
)

func TestMiddlewareLogsAndTagsRequests(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	var ctxLogger *zerolog.Logger
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxLogger = zerolog.Ctx(r.Context())
		w.WriteHeader(http.StatusNotFound)
	})
	handler := Middleware(next, logger, []string{"/api/v1/energy", "/healthz"})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/energy", nil))
	assert.Len(t, rec.Header().Get(requestIDHeader), 36)
	assert.NotNil(t, ctxLogger)
	assert.Contains(t, buf.String(), `"status":404`)
	assert.Contains(t, buf.String(), `"path":"/api/v1/energy"`)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
}

func TestNewFallsBackToInfo(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, New("shouting", "json").GetLevel())
	assert.Equal(t, zerolog.DebugLevel, New("DEBUG", "console").GetLevel())
}

func TestMiddlewareKeepsRouteLabelsBounded(t *testing.T) {
	metrics.Init(nil, zerolog.Nop())
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	handler := Middleware(next, zerolog.Nop(), []string{"/api/v1/alarms/summary"})

	for i := 0; i < 50; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/alarms/x%d", i), nil))
	}
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/alarms/summary", nil))

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	routes := map[string]bool{}
	for _, family := range families {
		if family.GetName() != "mi_http_requests_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "route" {
					routes[label.GetValue()] = true
				}
			}
		}
	}
	assert.True(t, routes["unmatched"])
	assert.True(t, routes["/api/v1/alarms/summary"])
	for route := range routes {
		assert.NotContains(t, route, "/api/v1/alarms/x")
	}
}
