package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/jonathan/roommate-matcher/internal/config"
	"github.com/jonathan/roommate-matcher/internal/db"
	"github.com/jonathan/roommate-matcher/internal/logctx"
	"github.com/jonathan/roommate-matcher/internal/matching"
	"github.com/jonathan/roommate-matcher/internal/server"
	"github.com/jonathan/roommate-matcher/internal/server/ratelimit"
	"github.com/jonathan/roommate-matcher/migrations"
)

var (
	servePort    string
	serveMigrate bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that ranks matches for authenticated users from the
profile store, and exposes stateless ranking, health and metrics endpoints.

Configuration is read from the environment (DATABASE_URL and JWT_SECRET are required).`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "Port to listen on (overrides PORT)")
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "Apply database migrations before serving")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadServerConfig()
	if err != nil {
		return err
	}
	if servePort != "" {
		cfg.Port = servePort
	}

	logger := logctx.NewJSON(os.Stderr, cfg.SlogLevel())
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	if serveMigrate {
		if err := applyMigrations(ctx, database); err != nil {
			return err
		}
		logger.Info("migrations applied")
	}

	limiter := ratelimit.NewLimiter(ratelimit.Config{
		Enabled:         cfg.RateLimit.Enabled,
		DefaultLimit:    cfg.RateLimit.DefaultLimit,
		DefaultWindow:   cfg.RateLimit.DefaultWindow,
		CleanupInterval: cfg.RateLimit.CleanupInterval,
		Allowlist:       cfg.RateLimit.Allowlist,
		Blocklist:       cfg.RateLimit.Blocklist,
		Endpoints:       ratelimit.DefaultEndpoints(),
	})
	defer limiter.Stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	srv, err := server.New(server.Config{
		Addr:   cfg.Addr(),
		Store:  database,
		Tokens: server.NewJWTService(cfg.JWT).AsTokenValidator(),
		Ranker: &matching.Ranker{
			Workers: cfg.RankWorkers,
			Metrics: matching.NewMetrics(registry),
		},
		Logger:             logger,
		Gatherer:           registry,
		RateLimiter:        limiter,
		CandidatePoolLimit: cfg.CandidatePoolLimit,
		RequestTimeout:     cfg.RequestTimeout,
		ShutdownTimeout:    cfg.ShutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Run(ctx)
}

func applyMigrations(ctx context.Context, database *db.DB) error {
	scripts, err := migrations.Scripts()
	if err != nil {
		return err
	}
	for _, script := range scripts {
		if err := database.Migrate(ctx, script); err != nil {
			return err
		}
	}
	return nil
}
