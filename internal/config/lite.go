package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/uro-calc-engine/internal/domain"
	"github.com/uro-calc-engine/internal/engine"
)

// LiteConfig is the environment-only configuration of the local binaries
// (the CLI and the MCP stdio server). It needs no config file.
type LiteConfig struct {
	// Cache settings
	CacheEnabled  bool // Memoise evaluations in memory
	CacheMaxItems int  // Maximum memoised records

	// Engine settings
	StrictRanges bool    // Enforce advisory range hints
	NearZero     float64 // Smallest accepted denominator

	// Logging
	LogLevel  string // Log level: debug, info, warn, error
	LogFormat string // Log format: json, text

	// MCP identity
	ServerName    string
	ServerVersion string
}

// DefaultLiteConfig returns a configuration with sensible defaults.
func DefaultLiteConfig() *LiteConfig {
	return &LiteConfig{
		CacheEnabled:  true,
		CacheMaxItems: 1000,
		NearZero:      engine.DefaultNearZero,
		LogLevel:      "info",
		LogFormat:     "json",
		ServerName:    "urocalc-mcp",
		ServerVersion: "v0.1.0",
	}
}

// LoadLiteConfig loads configuration from UROCALC_* environment variables.
// Unset or malformed values keep their defaults.
func LoadLiteConfig() *LiteConfig {
	cfg := DefaultLiteConfig()

	// Cache settings
	if v := os.Getenv("UROCALC_CACHE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.CacheEnabled = b
		}
	}
	if v := os.Getenv("UROCALC_CACHE_MAX_ITEMS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CacheMaxItems = n
		}
	}

	// Engine
	if v := os.Getenv("UROCALC_STRICT_RANGES"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.StrictRanges = b
		}
	}
	if v := os.Getenv("UROCALC_NEAR_ZERO"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.NearZero = f
		}
	}

	// Logging
	if v := os.Getenv("UROCALC_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("UROCALC_LOG_FORMAT"); v != "" {
		cfg.LogFormat = strings.ToLower(v)
	}

	return cfg
}

// EngineOptions returns the validation options for the calculator registry.
func (c *LiteConfig) EngineOptions() engine.Options {
	return engine.Options{StrictRanges: c.StrictRanges, NearZero: c.NearZero}
}

// CacheConfig returns the service cache configuration.
func (c *LiteConfig) CacheConfig() domain.CacheConfig {
	return domain.CacheConfig{Enabled: c.CacheEnabled, MaxItems: c.CacheMaxItems}
}

// NewLogger builds a logger from the logging settings. An unknown level
// falls back to info.
func (c *LiteConfig) NewLogger() *logrus.Logger {
	return NewLogger(domain.LoggingConfig{Level: c.LogLevel, Format: c.LogFormat})
}

// NewLogger builds a logrus logger with the configured level and formatter.
func NewLogger(cfg domain.LoggingConfig) *logrus.Logger {
	logger := logrus.New()
	if cfg.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}
