package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jonathan/roommate-matcher/internal/db"
	"github.com/jonathan/roommate-matcher/internal/matching"
	"github.com/jonathan/roommate-matcher/internal/server/middleware"
	"github.com/jonathan/roommate-matcher/internal/server/ratelimit"
	"github.com/jonathan/roommate-matcher/internal/types"
)

// maxBodyBytes bounds request bodies; a full RankRequest pool fits well inside.
const maxBodyBytes = 16 << 20

// Store is the persistence the authenticated endpoints need. *db.DB implements it.
type Store interface {
	Ping(ctx context.Context) error
	GetProfile(ctx context.Context, userID uuid.UUID) (*db.Profile, error)
	ListCandidates(ctx context.Context, userID uuid.UUID, limit int) ([]types.RawProfileRecord, error)
	GetWeightConfig(ctx context.Context, userID uuid.UUID) (types.WeightConfig, error)
	SaveWeightConfig(ctx context.Context, userID uuid.UUID, weights types.WeightConfig) error
	DismissMatch(ctx context.Context, userID, dismissedID uuid.UUID) error
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	store      Store
	ranker     *matching.Ranker
	logger     *slog.Logger

	poolLimit       int
	defaultWeights  types.WeightConfig
	shutdownTimeout time.Duration
}

// Config holds server configuration
type Config struct {
	Addr   string
	Store  Store
	Tokens middleware.TokenValidator
	Ranker *matching.Ranker
	Logger *slog.Logger

	// Gatherer backs /metrics; nil means prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer

	// RateLimiter limits requests per client; nil disables rate limiting.
	RateLimiter *ratelimit.Limiter

	CandidatePoolLimit int                // Maximum candidates loaded per /v1/matches request
	DefaultWeights     types.WeightConfig // Used when a user has no saved weights
	RequestTimeout     time.Duration      // Per-request deadline; 0 disables
	ShutdownTimeout    time.Duration      // Grace period for in-flight requests
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("server config: store is required")
	}
	if cfg.Tokens == nil {
		return nil, fmt.Errorf("server config: token validator is required")
	}

	s := &Server{
		store:           cfg.Store,
		ranker:          cfg.Ranker,
		logger:          cfg.Logger,
		poolLimit:       cfg.CandidatePoolLimit,
		defaultWeights:  cfg.DefaultWeights,
		shutdownTimeout: cfg.ShutdownTimeout,
	}
	if s.ranker == nil {
		s.ranker = &matching.Ranker{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.poolLimit <= 0 {
		s.poolLimit = db.DefaultCandidateLimit
	}
	if len(s.defaultWeights) == 0 {
		s.defaultWeights = types.DefaultWeights()
	}
	if s.shutdownTimeout <= 0 {
		s.shutdownTimeout = 10 * time.Second
	}
	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Logging(s.logger), middleware.Recover)
	if cfg.RateLimiter != nil {
		r.Use(ratelimit.Middleware(cfg.RateLimiter))
	}
	if cfg.RequestTimeout > 0 {
		r.Use(chimw.Timeout(cfg.RequestTimeout))
	}

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/rank", s.handleRank)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(cfg.Tokens))
			r.Get("/matches", s.handleListMatches)
			r.Post("/matches/{id}/dismiss", s.handleDismissMatch)
			r.Get("/preferences", s.handleGetPreferences)
			r.Put("/preferences", s.handleSavePreferences)
		})
	})

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", slog.String("addr", s.httpServer.Addr))
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}
