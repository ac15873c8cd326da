package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/ayefimenko/sharklearning-sub001/pkg/config"
	"github.com/ayefimenko/sharklearning-sub001/pkg/dashboard"
	"github.com/ayefimenko/sharklearning-sub001/pkg/limits/ratelimit"
	"github.com/ayefimenko/sharklearning-sub001/pkg/telemetry/health"
	"github.com/ayefimenko/sharklearning-sub001/pkg/telemetry/logging"
	"github.com/ayefimenko/sharklearning-sub001/pkg/telemetry/metrics"
	"github.com/ayefimenko/sharklearning-sub001/pkg/telemetry/tracing"
)

// Telemetry bundles the subsystems the server exposes over HTTP. The
// composition root constructs every subsystem and injects it here;
// nothing in this package reaches for process-global state.
type Telemetry struct {
	Logger     *logging.Logger
	Registry   *metrics.Registry
	Tracer     *tracing.Tracer
	Monitor    *health.Monitor
	Aggregator *dashboard.Aggregator

	// Limiter is optional; nil disables rate limiting.
	Limiter *ratelimit.Limiter
}

// Server is the HTTP server for the observability endpoints.
type Server struct {
	cfg config.ServerConfig
	t   Telemetry

	httpServer   *http.Server
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// NewServer creates the server. The telemetry bundle must carry at
// least a logger, registry, tracer, monitor and aggregator.
func NewServer(cfg config.ServerConfig, t Telemetry) *Server {
	if t.Logger == nil {
		t.Logger = logging.NewNop()
	}

	return &Server{
		cfg:          cfg,
		t:            t,
		shutdownChan: make(chan struct{}),
	}
}

// Start starts the HTTP server and blocks until shutdown, triggered by
// context cancellation, SIGINT/SIGTERM or a Shutdown call.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	s.httpServer = &http.Server{
		Addr:         s.cfg.ListenAddress,
		Handler:      s.setupRoutes(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		s.t.Logger.Info("starting server", "address", s.cfg.ListenAddress)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		s.t.Logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		s.t.Logger.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	case <-s.shutdownChan:
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		s.t.Logger.Info("initiating graceful shutdown", "timeout", s.cfg.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				s.t.Logger.Error("error during server shutdown", "error", err.Error())
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.t.Logger.Info("server stopped")
	})

	return shutdownErr
}

// IsRunning reports whether the server is serving.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the fully wired HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

// setupRoutes builds the route table and middleware chain.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/metrics", s.t.Registry.Handler())
	mux.Handle("/metrics/prom", s.t.Registry.PrometheusHandler())
	mux.Handle("/health", health.HealthHandler(s.t.Monitor))
	mux.Handle("/ready", health.ReadinessHandler(s.t.Monitor))
	mux.Handle("/alive", health.LivenessHandler(s.t.Monitor))
	mux.Handle("/dashboard", dashboard.OverviewHandler(s.t.Aggregator))
	mux.Handle("/traces", dashboard.TracesHandler(s.t.Tracer))
	mux.Handle("/system", dashboard.SystemHandler(s.t.Aggregator))

	var handler http.Handler = mux

	// Innermost to outermost: the limiter decides before handlers run,
	// tracing and metrics observe the final status, recovery catches
	// everything.
	if s.t.Limiter != nil {
		handler = ratelimit.Middleware(s.t.Limiter, nil, s.t.Logger)(handler)
	}
	handler = tracingMiddleware(s.t.Tracer)(handler)
	handler = newMetricsMiddleware(s.t.Registry).wrap(handler)
	handler = loggingMiddleware(s.t.Logger)(handler)
	handler = requestIDMiddleware(handler)
	handler = recoveryMiddleware(s.t.Logger)(handler)

	return handler
}
