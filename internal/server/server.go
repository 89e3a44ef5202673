// Package server exposes the topodraw pipeline over HTTP.
//
// # Routes
//
//	POST /v1/diagrams   topology (JSON or YAML) → artifact in ?format=
//	POST /v1/layouts    topology (JSON or YAML) → diagram JSON
//	GET  /v1/formats    supported output formats
//	GET  /healthz       liveness and build version
//	GET  /metrics       Prometheus exposition (when a registry is set)
//
// Layout and render knobs are query parameters named like the JSON fields
// of [pipeline.Options], for example ?orientation=vertical&legend=true.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/topodraw/pkg/observability/metrics"
	"github.com/matzehuels/topodraw/pkg/pipeline"
)

// Defaults for Config.
const (
	DefaultAddr         = ":8080"
	DefaultMaxBodyBytes = 8 << 20
	DefaultTimeout      = 60 * time.Second
	shutdownTimeout     = 15 * time.Second
)

// Config configures a Server.
type Config struct {
	Addr         string
	Runner       *pipeline.Runner
	Logger       *log.Logger
	Metrics      *metrics.Registry // nil disables /metrics
	MaxBodyBytes int64
	Timeout      time.Duration // per request
}

// Server is the HTTP front end of a pipeline runner.
type Server struct {
	addr    string
	runner  *pipeline.Runner
	logger  *log.Logger
	metrics *metrics.Registry
	maxBody int64
	timeout time.Duration
	router  chi.Router
}

// New builds a server and its routes.
func New(cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Runner == nil {
		cfg.Runner = pipeline.NewRunner(nil, nil, cfg.Logger)
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	s := &Server{
		addr:    cfg.Addr,
		runner:  cfg.Runner,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
		maxBody: cfg.MaxBodyBytes,
		timeout: cfg.Timeout,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)
	r.Use(instrument)

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(s.timeout))
		r.Get("/formats", s.handleFormats)
		r.Post("/diagrams", s.handleDiagram)
		r.Post("/layouts", s.handleLayout)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, errNotFound(r))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody(r, "METHOD_NOT_ALLOWED", r.Method+" not allowed"))
	})
	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      s.timeout + 10*time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", "timeout", shutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
