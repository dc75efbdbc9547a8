package main

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/teapotsmashers/calcd/internal/calculator"
	"github.com/teapotsmashers/calcd/internal/config"
	"github.com/teapotsmashers/calcd/internal/observability"
)

// initTelemetry starts the enabled OTLP signals and the calculator's metric
// instruments. The instruments are created even when metrics export is off;
// they then record into the no-op global meter.
func initTelemetry(ctx context.Context, cfg config.Config) (observability.Shutdown, error) {
	shutdown, err := observability.Start(ctx, observability.Telemetry{
		ServiceName: cfg.ServiceName,
		Traces:      cfg.Telemetry.Traces,
		Metrics:     cfg.Telemetry.Metrics,
		Logs:        cfg.Telemetry.Logs,
	})
	if err != nil {
		return nil, err
	}

	if err := calculator.InitMetrics(); err != nil {
		_ = shutdown(ctx)
		return nil, err
	}

	return shutdown, nil
}

// initRegistry builds the Prometheus registry served on /metrics. Add new
// domain collectors here as the project grows.
func initRegistry(session *calculator.Session) (*prometheus.Registry, error) {
	reg := observability.NewPrometheusRegistry()
	if err := calculator.RegisterCollectors(reg, session); err != nil {
		return nil, err
	}
	return reg, nil
}
