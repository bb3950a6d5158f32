package config

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/uro-calc-engine/internal/domain"
	"github.com/uro-calc-engine/internal/engine"
)

func TestDefaultLiteConfig(t *testing.T) {
	cfg := DefaultLiteConfig()

	assert.True(t, cfg.CacheEnabled)
	assert.Equal(t, 1000, cfg.CacheMaxItems)
	assert.False(t, cfg.StrictRanges)
	assert.Equal(t, engine.DefaultNearZero, cfg.NearZero)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "urocalc-mcp", cfg.ServerName)
}

func TestLoadLiteConfig_Defaults(t *testing.T) {
	clearEnvVars(t)

	cfg := LoadLiteConfig()

	assert.Equal(t, DefaultLiteConfig(), cfg)
}

func TestLoadLiteConfig_EnvironmentOverrides(t *testing.T) {
	clearEnvVars(t)
	t.Setenv("UROCALC_CACHE_ENABLED", "false")
	t.Setenv("UROCALC_CACHE_MAX_ITEMS", "500")
	t.Setenv("UROCALC_STRICT_RANGES", "true")
	t.Setenv("UROCALC_NEAR_ZERO", "0.001")
	t.Setenv("UROCALC_LOG_LEVEL", "debug")
	t.Setenv("UROCALC_LOG_FORMAT", "TEXT")

	cfg := LoadLiteConfig()

	assert.False(t, cfg.CacheEnabled)
	assert.Equal(t, 500, cfg.CacheMaxItems)
	assert.True(t, cfg.StrictRanges)
	assert.Equal(t, 0.001, cfg.NearZero)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)

	assert.Equal(t, engine.Options{StrictRanges: true, NearZero: 0.001}, cfg.EngineOptions())
	assert.Equal(t, domain.CacheConfig{Enabled: false, MaxItems: 500}, cfg.CacheConfig())
}

func TestLoadLiteConfig_InvalidValues(t *testing.T) {
	clearEnvVars(t)
	t.Setenv("UROCALC_CACHE_MAX_ITEMS", "invalid")
	t.Setenv("UROCALC_STRICT_RANGES", "sometimes")
	t.Setenv("UROCALC_NEAR_ZERO", "-1")

	cfg := LoadLiteConfig()

	// Should fall back to defaults
	assert.Equal(t, 1000, cfg.CacheMaxItems)
	assert.False(t, cfg.StrictRanges)
	assert.Equal(t, engine.DefaultNearZero, cfg.NearZero)
}

func TestNewLogger(t *testing.T) {
	logger := NewLogger(domain.LoggingConfig{Level: "debug", Format: "text"})
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, logger.Formatter)

	logger = NewLogger(domain.LoggingConfig{Level: "nonsense", Format: "json"})
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)
}

func clearEnvVars(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"UROCALC_CACHE_ENABLED",
		"UROCALC_CACHE_MAX_ITEMS",
		"UROCALC_STRICT_RANGES",
		"UROCALC_NEAR_ZERO",
		"UROCALC_LOG_LEVEL",
		"UROCALC_LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
}
