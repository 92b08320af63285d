package config

import (
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// ServerConfig is the environment configuration for the HTTP server.
type ServerConfig struct {
	Host        string `env:"HOST" env-default:"0.0.0.0"`
	Port        string `env:"PORT" env-default:"8080"`
	DatabaseURL string `env:"DATABASE_URL" env-required:"true"`
	LogLevel    string `env:"LOG_LEVEL" env-default:"info"`

	JWT       JWTConfig
	RateLimit RateLimitConfig

	RankWorkers        int           `env:"RANK_WORKERS" env-default:"0"`
	CandidatePoolLimit int           `env:"CANDIDATE_POOL_LIMIT" env-default:"500"`
	RequestTimeout     time.Duration `env:"REQUEST_TIMEOUT" env-default:"30s"`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// JWTConfig holds configuration for validating bearer tokens.
type JWTConfig struct {
	Secret string `env:"JWT_SECRET" env-required:"true"`
	Issuer string `env:"JWT_ISSUER"`
}

// RateLimitConfig holds per-client rate limiting settings. Endpoint-specific
// limits are built in; these settings cover everything else.
type RateLimitConfig struct {
	Enabled         bool          `env:"RATE_LIMIT_ENABLED" env-default:"true"`
	DefaultLimit    int           `env:"RATE_LIMIT_DEFAULT_LIMIT" env-default:"600"`
	DefaultWindow   time.Duration `env:"RATE_LIMIT_DEFAULT_WINDOW" env-default:"1m"`
	CleanupInterval time.Duration `env:"RATE_LIMIT_CLEANUP_INTERVAL" env-default:"5m"`
	Allowlist       []string      `env:"RATE_LIMIT_ALLOWLIST" env-separator:","`
	Blocklist       []string      `env:"RATE_LIMIT_BLOCKLIST" env-separator:","`
}

// LoadServerConfig reads ServerConfig from the environment.
func LoadServerConfig() (*ServerConfig, error) {
	var cfg ServerConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read server config from environment: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// normalize validates the configuration.
func (c *ServerConfig) normalize() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL cannot be empty")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET cannot be empty")
	}
	if c.RankWorkers < 0 {
		return fmt.Errorf("RANK_WORKERS must be non-negative, got: %d", c.RankWorkers)
	}
	if c.CandidatePoolLimit < 1 {
		return fmt.Errorf("CANDIDATE_POOL_LIMIT must be at least 1, got: %d", c.CandidatePoolLimit)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be non-negative, got: %s", c.RequestTimeout)
	}
	if c.RateLimit.Enabled && c.RateLimit.DefaultLimit < 1 {
		return fmt.Errorf("RATE_LIMIT_DEFAULT_LIMIT must be at least 1, got: %d", c.RateLimit.DefaultLimit)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive, got: %s", c.ShutdownTimeout)
	}
	return nil
}

// Addr returns host:port.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// SlogLevel maps LogLevel to a slog.Level, defaulting to info.
func (c *ServerConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
