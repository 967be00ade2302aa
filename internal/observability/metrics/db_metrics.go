package metrics

import (
	"database/sql"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

func registerDBMetrics(db *sql.DB, logger zerolog.Logger) {
	gauges := []struct {
		name string
		help string
		read func(sql.DBStats) float64
	}{
		{"db_open_connections", "Open connections to the log store", func(s sql.DBStats) float64 { return float64(s.OpenConnections) }},
		{"db_in_use_connections", "Connections currently in use", func(s sql.DBStats) float64 { return float64(s.InUse) }},
		{"db_idle_connections", "Idle connections in the pool", func(s sql.DBStats) float64 { return float64(s.Idle) }},
		{"db_wait_count", "Connections waited for", func(s sql.DBStats) float64 { return float64(s.WaitCount) }},
	}
	for _, g := range gauges {
		read := g.read
		prometheus.MustRegister(prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: metricPrefix + g.name,
				Help: g.help,
			},
			func() float64 { return read(db.Stats()) },
		))
	}
	logger.Debug().Int("gauges", len(gauges)).Msg("db pool metrics registered")
}
