package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const defaultJWTSecret = "dev-secret-change-in-production"

// Auth modes.
const (
	AuthModeMulti  = "multi"
	AuthModeSingle = "single"
)

// Database drivers.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverPgx      = "pgx"
	DriverMemory   = "memory"
)

type Config struct {
	Port           string
	Env            string
	LogLevel       slog.Level
	DatabaseDriver string
	DatabaseDSN    string
	DBMaxOpenConns int
	JWTSecret      string
	JWTExpiry      time.Duration
	AuthMode       string
	DefaultUserID  string
	CORSOrigins    []string
	AuthRateLimit  float64
	AuthRateBurst  int
}

// Load reads the configuration from the environment and exits on invalid values.
func Load() Config {
	cfg, err := Parse(os.Getenv)
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	return cfg
}

// Parse builds a Config from the given lookup function.
func Parse(getenv func(string) string) (Config, error) {
	env := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}

	cfg := Config{
		Port:           env("PORT", "3000"),
		Env:            env("ENV", "development"),
		DatabaseDriver: strings.ToLower(env("DB_DRIVER", DriverMySQL)),
		DatabaseDSN:    env("DATABASE_DSN", "root:password@tcp(127.0.0.1:3306)/media_tracker?parseTime=true&multiStatements=true"),
		JWTSecret:      env("JWT_SECRET", defaultJWTSecret),
		AuthMode:       strings.ToLower(env("AUTH_MODE", AuthModeMulti)),
		DefaultUserID:  env("DEFAULT_USER_ID", "default-user"),
		CORSOrigins:    parseCSV(env("CORS_ORIGINS", "*")),
	}

	var err error
	if cfg.LogLevel, err = parseLevel(env("LOG_LEVEL", "info")); err != nil {
		return Config{}, err
	}
	if cfg.JWTExpiry, err = parseExpiry(env("JWT_EXPIRES_IN", "24h")); err != nil {
		return Config{}, fmt.Errorf("JWT_EXPIRES_IN: %w", err)
	}
	if cfg.DBMaxOpenConns, err = strconv.Atoi(env("DB_MAX_OPEN_CONNS", "10")); err != nil || cfg.DBMaxOpenConns < 1 {
		return Config{}, errors.New("DB_MAX_OPEN_CONNS must be a positive integer")
	}
	if cfg.AuthRateLimit, err = strconv.ParseFloat(env("AUTH_RATE_LIMIT", "5"), 64); err != nil || cfg.AuthRateLimit <= 0 {
		return Config{}, errors.New("AUTH_RATE_LIMIT must be a positive number")
	}
	if cfg.AuthRateBurst, err = strconv.Atoi(env("AUTH_RATE_BURST", "10")); err != nil || cfg.AuthRateBurst < 1 {
		return Config{}, errors.New("AUTH_RATE_BURST must be a positive integer")
	}

	switch cfg.DatabaseDriver {
	case DriverMySQL, DriverPostgres, DriverPgx, DriverMemory:
	default:
		return Config{}, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DatabaseDriver)
	}

	switch cfg.AuthMode {
	case AuthModeMulti, AuthModeSingle:
	default:
		return Config{}, fmt.Errorf("unsupported AUTH_MODE %q", cfg.AuthMode)
	}

	if cfg.IsProduction() && cfg.JWTSecret == defaultJWTSecret {
		return Config{}, errors.New("JWT_SECRET must be set in production environment")
	}

	return cfg, nil
}

// IsProduction reports whether the process runs with ENV=production.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// IsDevelopment reports whether internal error details may be sent to clients.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// SingleUser reports whether media routes run without authentication.
func (c Config) SingleUser() bool {
	return c.AuthMode == AuthModeSingle
}

// parseExpiry accepts Go durations ("90m", "24h") and whole days ("7d").
func parseExpiry(raw string) (time.Duration, error) {
	if days, ok := strings.CutSuffix(raw, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n < 1 {
			return 0, fmt.Errorf("invalid day count %q", raw)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("expiry must be positive, got %s", raw)
	}
	return d, nil
}

func parseLevel(raw string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return level, nil
}

func parseCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		if v := strings.TrimSpace(part); v != "" {
			items = append(items, v)
		}
	}
	return items
}
