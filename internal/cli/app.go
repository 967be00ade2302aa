package cli

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	alarmapp "machine-insights/internal/alarms/application"
	analyticsapp "machine-insights/internal/analytics/application"
	"machine-insights/internal/config"
	operationapp "machine-insights/internal/operation/application"
	"machine-insights/internal/report"
	telemetry "machine-insights/internal/telemetry/domain"
	"machine-insights/internal/telemetry/infrastructure/sqlstore"
)

// app carries what every command needs once the configuration is loaded.
type app struct {
	cfg      config.Config
	logger   zerolog.Logger
	location *time.Location
	db       *sql.DB
	reader   telemetry.LogReader
}

type services struct {
	alarms    *alarmapp.Service
	operation *operationapp.Service
	analytics *analyticsapp.Service
	reports   *report.Collector
}

func (a *app) openStore(ctx context.Context) error {
	if a.reader != nil {
		return nil
	}
	db, err := sqlstore.Open(ctx, sqlstore.PoolConfig{
		Driver:          a.cfg.Database.Driver,
		DSN:             a.cfg.DataSourceName(),
		MaxOpenConns:    a.cfg.Database.MaxOpenConns,
		MaxIdleConns:    a.cfg.Database.MaxIdleConns,
		ConnMaxLifetime: a.cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		return fmt.Errorf("open log store: %w", err)
	}
	a.db = db
	a.reader = sqlstore.NewLogReader(db,
		sqlstore.WithSchema(a.cfg.Database.Schema),
		sqlstore.WithRetry(a.cfg.Database.ReadRetries, a.cfg.Database.RetryDelay),
	)
	a.logger.Info().Str("driver", a.cfg.Database.Driver).Msg("log store connected")
	return nil
}

func (a *app) close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("close log store")
		}
	}
}

func (a *app) buildServices() (*services, error) {
	vars := a.cfg.Variables
	alarms, err := alarmapp.NewService(a.reader, vars.Alarms, alarmapp.WithLogger(a.logger))
	if err != nil {
		return nil, err
	}
	operation, err := operationapp.NewService(a.reader, operationapp.Variables{
		MachineInOperation: vars.MachineInOperation,
		RecentRun:          vars.RecentRun,
		Zones:              vars.Zones,
	})
	if err != nil {
		return nil, err
	}
	analytics, err := analyticsapp.NewService(a.reader, analyticsapp.Settings{
		Temperatures: toVariables(vars.Temperatures),
		Utilization:  toVariables(vars.Utilization),
		SpindleLoad:  analyticsapp.Variable{ID: vars.SpindleLoad.ID, Label: vars.SpindleLoad.Label},
		BucketWidth:  a.cfg.Analysis.BucketWidth,
		MaxPowerKW:   a.cfg.Analysis.MaxPowerKW,
	})
	if err != nil {
		return nil, err
	}
	reports, err := report.NewCollector(alarms, operation, analytics)
	if err != nil {
		return nil, err
	}
	return &services{alarms: alarms, operation: operation, analytics: analytics, reports: reports}, nil
}

func toVariables(list []config.Variable) []analyticsapp.Variable {
	return lo.Map(list, func(v config.Variable, _ int) analyticsapp.Variable {
		return analyticsapp.Variable{ID: v.ID, Label: v.Label}
	})
}
