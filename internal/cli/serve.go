package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	alarmhttp "machine-insights/internal/alarms/interfaces/http"
	analyticshttp "machine-insights/internal/analytics/interfaces/http"
	apihttp "machine-insights/internal/api/http"
	"machine-insights/internal/observability/logging"
	"machine-insights/internal/observability/metrics"
	operationhttp "machine-insights/internal/operation/interfaces/http"
	reporthttp "machine-insights/internal/report/interfaces/http"
	telemetry "machine-insights/internal/telemetry/domain"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				a.cfg.HTTP.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address, overrides http.addr")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	if err := a.openStore(ctx); err != nil {
		return err
	}
	metrics.Init(a.db, a.logger)

	router, err := a.newRouter()
	if err != nil {
		return err
	}
	server := &http.Server{
		Addr:         a.cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  a.cfg.HTTP.ReadTimeout,
		WriteTimeout: a.cfg.HTTP.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info().Str("addr", server.Addr).Msg("http server listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	a.logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func (a *app) newRouter() (http.Handler, error) {
	svc, err := a.buildServices()
	if err != nil {
		return nil, err
	}
	return newRouter(a.reader, svc, a.location, a.cfg.HTTP.AllowOrigins, a.logger)
}

func newRouter(reader telemetry.LogReader, svc *services, loc *time.Location, origins []string, logger zerolog.Logger) (http.Handler, error) {
	alarmHandler, err := alarmhttp.NewHandler(svc.alarms, loc)
	if err != nil {
		return nil, err
	}
	operationHandler, err := operationhttp.NewHandler(svc.operation, loc)
	if err != nil {
		return nil, err
	}
	analyticsHandler, err := analyticshttp.NewHandler(svc.analytics, loc)
	if err != nil {
		return nil, err
	}
	reportHandler, err := reporthttp.NewHandler(svc.reports, loc)
	if err != nil {
		return nil, err
	}
	exportHandler, err := apihttp.NewRawExportHandler(reader)
	if err != nil {
		return nil, err
	}

	routes := []struct {
		pattern string
		handler http.Handler
	}{
		{"/api/v1/alarms/summary", alarmHandler},
		{"/api/v1/alarms/timeline", alarmHandler},
		{"/api/v1/alarms/latest", alarmHandler},
		{"/api/v1/operation/timeline", operationHandler},
		{"/api/v1/zones/active", operationHandler},
		{"/api/v1/runs", operationHandler},
		{"/api/v1/runs/recent", operationHandler},
		{"/api/v1/temperatures", analyticsHandler},
		{"/api/v1/utilization", analyticsHandler},
		{"/api/v1/energy", analyticsHandler},
		{"/api/v1/reports/day.xlsx", reportHandler},
		{"/api/v1/reports/day.pdf", reportHandler},
		{"/api/v1/exports/raw.csv", exportHandler},
		{"/metrics", promhttp.Handler()},
		{"/healthz", apihttp.HealthHandler()},
	}

	mux := http.NewServeMux()
	patterns := make([]string, 0, len(routes))
	for _, route := range routes {
		mux.Handle(route.pattern, route.handler)
		patterns = append(patterns, route.pattern)
	}

	return logging.Middleware(apihttp.CORS(mux, origins), logger, patterns), nil
}
