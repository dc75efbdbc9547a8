package observability

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the process-wide structured logger. It starts as a no-op so that
// packages and tests can log before InitLogger runs.
var Logger = zap.NewNop()

// InitLogger installs a production JSON logger at the given level.
func InitLogger(level zapcore.Level) error {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := cfg.Build()
	if err != nil {
		return err
	}

	Logger = logger
	return nil
}

func SyncLogger() {
	_ = Logger.Sync()
}

// LoggerWithTrace returns a child logger carrying trace_id and span_id of the
// active span in ctx.
//
// ctx itself is attached as the "context" field: the otelzap core picks up any
// field holding a context.Context and emits the OTLP record with it, which
// fills the native TraceID/SpanID used for log-to-trace correlation. The plain
// string fields keep stdout logs greppable.
func LoggerWithTrace(ctx context.Context) *zap.Logger {
	span := trace.SpanContextFromContext(ctx)

	if !span.IsValid() {
		return Logger
	}

	return Logger.With(
		zap.Any("context", ctx),
		zap.String("trace_id", span.TraceID().String()),
		zap.String("span_id", span.SpanID().String()),
	)
}
