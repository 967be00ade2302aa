package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	analyticsapp "machine-insights/internal/analytics/application"
	telemetry "machine-insights/internal/telemetry/domain"
	"machine-insights/internal/telemetry/infrastructure/memory"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	reader := memory.NewLogReader()
	day := time.Date(2021, 1, 12, 0, 0, 0, 0, time.UTC)
	reader.AddFloat(449, day.Add(7*time.Hour+5*time.Minute), telemetry.Float(40))
	reader.AddFloat(449, day.Add(7*time.Hour+40*time.Minute), telemetry.Float(60))
	reader.AddFloat(584, day.Add(time.Hour), telemetry.Float(12))
	reader.AddFloat(630, day, telemetry.Float(100))
	reader.AddFloat(630, day.Add(time.Hour), telemetry.Float(0))

	service, err := analyticsapp.NewService(reader, analyticsapp.Settings{
		Temperatures: []analyticsapp.Variable{{ID: 449, Label: "TEMPERATURA_MOTOR_8"}},
		Utilization:  []analyticsapp.Variable{{ID: 584, Label: "Axis_8_Motor_Utilization"}},
		SpindleLoad:  analyticsapp.Variable{ID: 630, Label: "MANDRINO_CONSUMO_VISUALIZADO"},
		BucketWidth:  30 * time.Minute,
		MaxPowerKW:   37,
	})
	require.NoError(t, err)
	handler, err := NewHandler(service, time.UTC)
	require.NoError(t, err)
	return handler
}

func TestTemperaturesEndpoint(t *testing.T) {
	handler := newTestHandler(t)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/temperatures?day=2021-01-12&width=1h", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body analyticsapp.TemperatureReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "1h0m0s", body.Width)
	series, ok := body.Series[449]
	require.True(t, ok)
	require.Len(t, series.Buckets, 1)
	assert.InDelta(t, 50, *series.Buckets[0].Mean, 1e-9)
	assert.InDelta(t, 60, *series.Buckets[0].Max, 1e-9)
}

func TestTemperaturesEndpointBadParams(t *testing.T) {
	handler := newTestHandler(t)
	for _, target := range []string{
		"/api/v1/temperatures?day=2021-01-12&width=-5m",
		"/api/v1/temperatures?day=2021-01-12&width=1ns",
		"/api/v1/temperatures?day=2021-01-12&width=1ms",
		"/api/v1/temperatures?day=2021-01-12&width=1s&align=day",
		"/api/v1/temperatures?day=2021-01-12&align=week",
		"/api/v1/temperatures?day=yesterday-ish",
	} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestEnergyEndpoint(t *testing.T) {
	handler := newTestHandler(t)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/energy?day=2021-01-12", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body analyticsapp.EnergyReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.InDelta(t, 37, body.TotalKWh, 1e-9)
	assert.Len(t, body.Hourly, 2)
}

func TestUtilizationEndpointNoData(t *testing.T) {
	handler := newTestHandler(t)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/utilization?day=2021-01-13", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
