// Package server exposes the enhancement pipeline over HTTP.
//
// Endpoints:
//   - POST /api/enhance       - proxy a composed prompt to the model router
//   - POST /api/enhancements  - compose, enhance and record in one call
//   - GET  /api/catalog       - models, techniques and output formats
//   - GET  /api/history       - recorded enhancements (signed-in clients)
//   - GET  /api/stats         - usage counters (signed-in clients)
//   - GET  /healthz           - liveness
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/thomas-vilte/promptforge/internal/auth"
	"github.com/thomas-vilte/promptforge/internal/cache"
	"github.com/thomas-vilte/promptforge/internal/catalog"
	"github.com/thomas-vilte/promptforge/internal/config"
	"github.com/thomas-vilte/promptforge/internal/logger"
	"github.com/thomas-vilte/promptforge/internal/ports"
	"github.com/thomas-vilte/promptforge/internal/services/cost"
	"github.com/thomas-vilte/promptforge/internal/services/usage"
)

const (
	MaxRequestBodySize = 1 << 20
	shutdownTimeout    = 10 * time.Second
)

type Server struct {
	cfg      *config.Config
	catalog  *catalog.Registry
	streamer ports.CompletionStreamer
	recorder *usage.Recorder
	spend    *cost.Manager
	cache    *cache.Cache
	limiter  *ClientLimiter
	mux      *http.ServeMux
}

type Option func(*Server)

// WithCache serves repeated /api/enhance requests from c.
func WithCache(c *cache.Cache) Option {
	return func(s *Server) {
		s.cache = c
	}
}

// WithSpendLedger records the cost of pipeline enhancements.
func WithSpendLedger(m *cost.Manager) Option {
	return func(s *Server) {
		s.spend = m
	}
}

// New builds the server. streamer may be nil when no upstream key is
// configured; enhancement endpoints then answer 500.
func New(cfg *config.Config, reg *catalog.Registry, streamer ports.CompletionStreamer, rec *usage.Recorder, opts ...Option) *Server {
	s := &Server{
		cfg:      cfg,
		catalog:  reg,
		streamer: streamer,
		recorder: rec,
		limiter:  NewClientLimiter(cfg.Server.RateLimit, cfg.Server.Burst),
		mux:      http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	limited := RateLimitMiddleware(s.limiter)

	s.mux.Handle("/api/enhance", limited(http.HandlerFunc(s.handleEnhance)))
	s.mux.Handle("/api/enhancements", limited(http.HandlerFunc(s.handleEnhancements)))
	s.mux.HandleFunc("GET /api/catalog", s.handleCatalog)
	s.mux.HandleFunc("GET /api/history", s.handleHistory)
	s.mux.HandleFunc("GET /api/stats", s.handleStats)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
}

// Handler returns the routes wrapped in the standard middleware chain.
func (s *Server) Handler() http.Handler {
	return Chain(
		RecoveryMiddleware(),
		LoggingMiddleware(),
		auth.Middleware(s.cfg.AuthToken()),
	)(s.mux)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return logger.WithLogger(context.Background(), logger.FromContext(ctx))
		},
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "server listening", "addr", s.cfg.Server.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	logger.Info(ctx, "server shutting down")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	<-errCh
	return nil
}
