// Package config resolves runtime settings from flags, environment and
// defaults, in that order.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Environment variables.
const (
	EnvDB       = "KANDANG_DB"
	EnvAPIURL   = "KANDANG_SHEETS_URL"
	EnvTimeout  = "KANDANG_TIMEOUT"
	EnvAddr     = "KANDANG_ADDR"
	EnvLogLevel = "KANDANG_LOG_LEVEL"
)

// Defaults.
const (
	DefaultTimeout = 30 * time.Second
	DefaultAddr    = "127.0.0.1:8080"
)

// Config is everything a command needs to build the cache service.
type Config struct {
	DBPath   string
	APIURL   string
	Timeout  time.Duration
	Addr     string
	LogLevel slog.Level
}

// Load reads the environment through lookup (os.LookupEnv in production)
// on top of the defaults.
func Load(lookup func(string) (string, bool)) (Config, error) {
	cfg := Config{
		DBPath:   defaultDBPath(),
		Timeout:  DefaultTimeout,
		Addr:     DefaultAddr,
		LogLevel: slog.LevelInfo,
	}

	if v, ok := lookup(EnvDB); ok && v != "" {
		cfg.DBPath = v
	}
	if v, ok := lookup(EnvAPIURL); ok {
		cfg.APIURL = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvAddr); ok && v != "" {
		cfg.Addr = v
	}
	if v, ok := lookup(EnvTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		if d <= 0 {
			return cfg, fmt.Errorf("%s: must be positive, got %s", EnvTimeout, v)
		}
		cfg.Timeout = d
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		lvl, err := ParseLevel(v)
		if err != nil {
			return cfg, err
		}
		cfg.LogLevel = lvl
	}
	return cfg, nil
}

func defaultDBPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".kandang", "cache.db")
}

// ParseLevel accepts debug, info, warn or error (any case).
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("%s: %w", EnvLogLevel, err)
	}
	return lvl, nil
}

// Logger returns a text logger on w at the configured level.
func (c Config) Logger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: c.LogLevel}))
}

// RequireRemote reports a usable error when no sheet URL is configured.
func (c Config) RequireRemote() error {
	if c.APIURL == "" {
		return fmt.Errorf("no remote configured: set --api-url or %s", EnvAPIURL)
	}
	return nil
}
