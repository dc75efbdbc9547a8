package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/teapotsmashers/calcd/internal/calculator"
	"github.com/teapotsmashers/calcd/internal/handlers"
	"github.com/teapotsmashers/calcd/internal/observability"
)

func NewRouter(calc *calculator.Handler, reg *prometheus.Registry) http.Handler {

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(observability.RequestIDMiddleware)
	r.Use(observability.TracingMiddleware)
	r.Use(observability.LoggingMiddleware)

	r.Get("/health", handlers.Health)

	r.Handle("/metrics", observability.PrometheusHandler(reg))

	calculator.RegisterRoutes(r, calc)

	return r
}
