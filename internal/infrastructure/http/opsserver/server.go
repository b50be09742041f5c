// Package opsserver provides the operations listener: Prometheus metrics
// and health probes, kept off the public API port
package opsserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/recipewiz/backend/internal/infrastructure/config"
	"github.com/recipewiz/backend/internal/infrastructure/http/middleware"
	"github.com/recipewiz/backend/pkg/healthcheck"
)

// Server serves /metrics, /healthz, /readyz and /livez
type Server struct {
	logger *zap.Logger
	router *chi.Mux
	server *http.Server
}

// NewServer creates the ops server. metrics may be nil, in which case
// /metrics is not mounted.
func NewServer(cfg *config.Config, logger *zap.Logger, metrics http.Handler, health *healthcheck.HealthCheck) *Server {
	s := &Server{
		logger: logger.Named("ops-server"),
	}

	s.router = s.setupRouter(cfg.Monitoring, metrics, health)
	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Monitoring.MetricsPort),
		Handler:           s.router,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return s
}

func (s *Server) setupRouter(cfg config.MonitoringConfig, metrics http.Handler, health *healthcheck.HealthCheck) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.OpsLogger(s.logger))

	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}

	r.Get("/healthz", health.Handler())
	r.Get("/readyz", health.ReadinessHandler())
	r.Get("/livez", health.LivenessHandler())

	// configurable aliases
	if p := cfg.HealthCheckPath; p != "" && p != "/healthz" {
		r.Get(p, health.Handler())
	}
	if p := cfg.ReadinessPath; p != "" && p != "/readyz" {
		r.Get(p, health.ReadinessHandler())
	}

	return r
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.server.Addr
}

// Start starts the ops server and blocks until it stops
func (s *Server) Start() error {
	s.logger.Info("Starting ops server", zap.String("address", s.server.Addr))
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the ops server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down ops server")
	return s.server.Shutdown(ctx)
}
