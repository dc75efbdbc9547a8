package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/teapotsmashers/calcd/internal/calculator"
	"github.com/teapotsmashers/calcd/internal/config"
	"github.com/teapotsmashers/calcd/internal/history"
	"github.com/teapotsmashers/calcd/internal/observability"
	"github.com/teapotsmashers/calcd/internal/server"
)

func main() {

	ctx := context.Background()

	if err := loadDotEnv(); err != nil {
		panic(err)
	}

	cfg, err := config.Load(os.Getenv("CALC_CONFIG"))
	if err != nil {
		panic(err)
	}

	// Logger
	if err := observability.InitLogger(cfg.Level()); err != nil {
		panic(err)
	}
	defer observability.SyncLogger()

	// Traces, metrics and OTLP logs
	telemetryShutdown, err := initTelemetry(ctx, cfg)
	if err != nil {
		observability.Logger.Fatal("starting telemetry", zap.Error(err))
	}
	defer telemetryShutdown(ctx)

	// History store and session
	store, err := history.Open(ctx, cfg.History.Backend, cfg.History.Path)
	if err != nil {
		observability.Logger.Fatal("opening history store", zap.Error(err),
			zap.String("backend", cfg.History.Backend),
			zap.String("path", cfg.History.Path),
		)
	}
	defer store.Close()

	session := calculator.NewSession(ctx, store,
		calculator.WithAngleMode(cfg.Mode()),
		calculator.WithHistoryLimit(cfg.History.Limit),
		calculator.WithLogger(observability.Logger.Named("session")),
	)

	reg, err := initRegistry(session)
	if err != nil {
		observability.Logger.Fatal("registering collectors", zap.Error(err))
	}

	// Router
	router := server.NewRouter(calculator.NewHandler(session), reg)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		observability.Logger.Info("server started",
			zap.String("addr", cfg.Addr),
			zap.Stringer("angle_mode", cfg.Mode()),
			zap.String("history_backend", cfg.History.Backend),
			zap.Int("history_entries", session.HistoryLen()),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			observability.Logger.Fatal("server failed", zap.Error(err))
		}
	}()

	waitForShutdown(srv)
}

func waitForShutdown(srv *http.Server) {

	stop := make(chan os.Signal, 1)

	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		observability.Logger.Warn("graceful shutdown failed", zap.Error(err))
	}
	observability.Logger.Info("server stopped")
}
