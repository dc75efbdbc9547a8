package observability

import (
	"context"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// InitLogging exports logs over OTLP/HTTP in addition to stdout. It must run
// after InitLogger because it wraps the current Logger core.
func InitLogging(ctx context.Context, serviceName string) (Shutdown, error) {
	exporter, err := otlploghttp.New(ctx)
	if err != nil {
		return nil, err
	}

	res, err := newResource(ctx, serviceName)
	if err != nil {
		return nil, err
	}

	provider := sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(
			sdklog.NewBatchProcessor(exporter),
		),
	)

	otelCore := otelzap.NewCore(serviceName, otelzap.WithLoggerProvider(provider))
	Logger = zap.New(zapcore.NewTee(Logger.Core(), otelCore))

	return provider.Shutdown, nil
}

// Telemetry says which OTLP signals to start.
type Telemetry struct {
	ServiceName string
	Traces      bool
	Metrics     bool
	Logs        bool
}

// Start brings up the enabled signals and returns one Shutdown that stops
// them in reverse order. On error, anything already started is shut down.
func Start(ctx context.Context, t Telemetry) (Shutdown, error) {
	var shutdowns []Shutdown

	stop := func(ctx context.Context) error {
		var firstErr error
		for i := len(shutdowns) - 1; i >= 0; i-- {
			if err := shutdowns[i](ctx); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}

	steps := []struct {
		enabled bool
		start   func(context.Context, string) (Shutdown, error)
	}{
		{t.Traces, InitTracing},
		{t.Metrics, InitMetrics},
		{t.Logs, InitLogging},
	}

	for _, step := range steps {
		if !step.enabled {
			continue
		}
		shutdown, err := step.start(ctx, t.ServiceName)
		if err != nil {
			_ = stop(ctx)
			return noopShutdown, err
		}
		shutdowns = append(shutdowns, shutdown)
	}

	return stop, nil
}
