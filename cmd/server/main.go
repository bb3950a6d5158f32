// Package main provides the catalog server: calculator schemas and band
// tables over HTTP for form clients.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/uro-calc-engine/internal/api"
	"github.com/uro-calc-engine/internal/calculator"
	"github.com/uro-calc-engine/internal/config"
	"github.com/uro-calc-engine/internal/domain"
	"github.com/uro-calc-engine/internal/service"
)

func main() {
	// A missing .env is fine.
	_ = godotenv.Load()

	// Load configuration
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate configuration
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	cfg := configManager.GetConfig()
	logger := config.NewLogger(cfg.Logging)

	// The catalog never evaluates, so no result cache.
	svc, err := service.NewCalculatorService(logger, calculator.NewRegistry(configManager.EngineOptions()), domain.CacheConfig{})
	if err != nil {
		logger.WithError(err).Fatal("Failed to create calculator service")
	}

	server := api.NewServer(configManager, logger, svc)

	// Setup graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.WithField("environment", cfg.Environment).Info("Starting urology calculator catalog server")

	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}

	logger.Info("Server stopped")
}
