package metrics

import (
	"database/sql"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

const (
	metricPrefix = "mi_"

	resultSuccess = "success"
	resultError   = "error"
	resultNoData  = "no_data"
)

var (
	registerOnce sync.Once

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec

	storeQueries      *prometheus.CounterVec
	storeQueryLatency *prometheus.HistogramVec
	storeRetries      *prometheus.CounterVec

	alarmDecodeFailures prometheus.Counter

	analysisTotal   *prometheus.CounterVec
	analysisLatency *prometheus.HistogramVec
)

// Init registers service metrics and DB pool gauges. Calling it again is a no-op.
func Init(db *sql.DB, logger zerolog.Logger) {
	registerOnce.Do(func() {
		httpRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "http_requests_total",
				Help: "Total HTTP requests by route and status",
			},
			[]string{"route", "status"},
		)
		httpLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "http_latency_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		)

		storeQueries = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "store_queries_total",
				Help: "Total log store queries by table and result",
			},
			[]string{"table", "result"},
		)
		storeQueryLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "store_query_latency_seconds",
				Help:    "Log store query latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"table"},
		)
		storeRetries = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "store_retries_total",
				Help: "Total retried log store queries",
			},
			[]string{"table"},
		)

		alarmDecodeFailures = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "alarm_decode_failures_total",
				Help: "Alarm snapshots rejected by the literal decoder",
			},
		)

		analysisTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "analysis_total",
				Help: "Total day analyses by view and result",
			},
			[]string{"view", "result"},
		)
		analysisLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "analysis_latency_seconds",
				Help:    "Day analysis latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"view"},
		)

		prometheus.MustRegister(
			httpRequests,
			httpLatency,
			storeQueries,
			storeQueryLatency,
			storeRetries,
			alarmDecodeFailures,
			analysisTotal,
			analysisLatency,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

// ObserveHTTP records one served request.
func ObserveHTTP(route string, status int, duration time.Duration) {
	if route == "" {
		route = "unknown"
	}
	if httpRequests != nil {
		httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	}
	if httpLatency != nil {
		httpLatency.WithLabelValues(route).Observe(duration.Seconds())
	}
}

// ObserveStoreQuery records one log store query.
func ObserveStoreQuery(table string, err error, duration time.Duration) {
	result := resultSuccess
	if err != nil {
		result = resultError
	}
	if storeQueries != nil {
		storeQueries.WithLabelValues(table, result).Inc()
	}
	if storeQueryLatency != nil {
		storeQueryLatency.WithLabelValues(table).Observe(duration.Seconds())
	}
}

// IncStoreRetry counts a retried log store query.
func IncStoreRetry(table string) {
	if storeRetries != nil {
		storeRetries.WithLabelValues(table).Inc()
	}
}

// IncAlarmDecodeFailure adds n rejected alarm snapshots.
func IncAlarmDecodeFailure(n int) {
	if n <= 0 {
		return
	}
	if alarmDecodeFailures != nil {
		alarmDecodeFailures.Add(float64(n))
	}
}

// ObserveAnalysis records analysis latency and result for a dashboard view.
func ObserveAnalysis(view, result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if analysisTotal != nil {
		analysisTotal.WithLabelValues(view, result).Inc()
	}
	if analysisLatency != nil {
		analysisLatency.WithLabelValues(view).Observe(duration.Seconds())
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
	ResultNoData  = resultNoData
)
