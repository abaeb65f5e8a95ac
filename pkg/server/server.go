package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"bastion-hq/gateway/pkg/config"
	"bastion-hq/gateway/pkg/proxy/handlers"
	"bastion-hq/gateway/pkg/proxy/middleware"
	"bastion-hq/gateway/pkg/telemetry/health"
	"bastion-hq/gateway/pkg/telemetry/tracing"
)

// BuildInfo identifies the running binary on /version.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// Dependencies are the components the HTTP routes are served by. Metrics
// may be nil, in which case no metrics endpoint is mounted.
type Dependencies struct {
	Pipeline  handlers.Processor
	Audit     handlers.AuditReader
	Documents handlers.DocumentStore
	Providers handlers.ProviderHealthSource
	Health    *health.Checker
	Metrics   http.Handler
	Build     BuildInfo
}

// Server is the gateway's HTTP server.
type Server struct {
	config       *config.Config
	deps         Dependencies
	httpServer   *http.Server
	listener     net.Listener
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
	logger       *slog.Logger
}

// NewServer creates a server for cfg. The server does not listen until
// Start is called.
func NewServer(cfg *config.Config, deps Dependencies) *Server {
	return &Server{
		config:       cfg,
		deps:         deps,
		shutdownChan: make(chan struct{}),
		logger:       slog.Default().With("component", "server"),
	}
}

// Start listens on the configured address and serves until ctx is
// cancelled, SIGINT or SIGTERM arrives, Stop is called, or serving fails.
// It always shuts down gracefully before returning.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}

	listener, err := net.Listen("tcp", s.config.Server.ListenAddress)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("listen on %s: %w", s.config.Server.ListenAddress, err)
	}

	s.listener = listener
	s.httpServer = &http.Server{
		Handler:        s.Handler(),
		ReadTimeout:    s.config.Server.ReadTimeout,
		WriteTimeout:   s.config.Server.WriteTimeout,
		IdleTimeout:    s.config.Server.IdleTimeout,
		MaxHeaderBytes: s.config.Server.MaxHeaderBytes,
	}
	s.isRunning = true
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting gateway server", "address", listener.Addr().String())

		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
	case sig := <-sigChan:
		s.logger.Info("received shutdown signal", "signal", sig.String())
	case <-s.shutdownChan:
		s.logger.Info("shutdown requested")
	case err := <-errChan:
		_ = s.Shutdown(context.Background())
		return err
	}

	return s.Shutdown(context.Background())
}

// Stop asks a running Start to shut down.
func (s *Server) Stop() {
	select {
	case <-s.shutdownChan:
	default:
		close(s.shutdownChan)
	}
}

// Shutdown gracefully shuts down the server, waiting at most the configured
// shutdown timeout for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		s.logger.Info("initiating graceful shutdown", "timeout", s.config.Server.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("error during server shutdown", "error", err)
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("gateway server stopped")
	})

	return shutdownErr
}

// Handler returns the routes wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := s.routes()

	handler := middleware.Chain(mux,
		middleware.RecoveryMiddleware,
		middleware.RequestIDMiddleware,
		middleware.LoggingMiddleware,
		middleware.CORSMiddleware(s.config.Server.CORS),
		middleware.BodyLimitMiddleware(s.config.Server.MaxBodyBytes),
		middleware.TimeoutMiddleware(s.config.Server.RequestTimeout),
	)

	handler = tracing.TraceIDMiddleware(handler)
	return otelhttp.NewHandler(handler, "bastion.gateway",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}

// routes registers every endpoint on a new mux.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	d := s.deps

	mux.Handle("/api/gateway", handlers.NewGatewayHandler(d.Pipeline, s.config.Server.MaxBodyBytes))

	auditHandler := handlers.NewAuditHandler(d.Audit, s.config.Audit.DefaultQueryLimit, s.config.Audit.MaxQueryLimit)
	mux.HandleFunc("GET /api/audit/logs", auditHandler.Logs)
	mux.HandleFunc("GET /api/audit/stats", auditHandler.Stats)

	mux.Handle("GET /api/providers/health", handlers.NewProvidersHandler(d.Providers))

	docs := handlers.NewDocumentsHandler(d.Documents, s.config.Retrieval.SearchMinSimilarity, s.config.Server.MaxBodyBytes)
	mux.HandleFunc("GET /api/documents/{id}", docs.Get)
	mux.HandleFunc("POST /api/documents", docs.Add)
	mux.HandleFunc("POST /api/documents/search", docs.Search)

	checker := d.Health
	if checker == nil {
		checker = health.New(s.config.Telemetry.Health.CheckTimeout)
	}
	health.Register(mux, checker, d.Build.Version, d.Build.Commit, d.Build.BuildTime)

	if d.Metrics != nil && s.config.Telemetry.Metrics.Enabled {
		mux.Handle("GET "+s.config.Telemetry.Metrics.Path, d.Metrics)
	}

	return mux
}

// IsRunning reports whether the server is serving.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Addr returns the bound listen address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}
