// Package main provides the MCP stdio server for the urology calculators.
// It needs no config file: settings come from UROCALC_* environment
// variables or a local .env.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/uro-calc-engine/internal/calculator"
	"github.com/uro-calc-engine/internal/config"
	"github.com/uro-calc-engine/internal/mcp"
	"github.com/uro-calc-engine/internal/service"
)

func main() {
	// A missing .env is fine.
	_ = godotenv.Load()

	cfg := config.LoadLiteConfig()

	// Logs go to stderr; stdout carries the protocol.
	logger := cfg.NewLogger()
	logger.SetOutput(os.Stderr)

	svc, err := service.NewCalculatorService(logger, calculator.NewRegistry(cfg.EngineOptions()), cfg.CacheConfig())
	if err != nil {
		logger.WithError(err).Fatal("Failed to create calculator service")
	}

	server := mcp.NewServer(cfg.ServerName, cfg.ServerVersion, svc, mcp.WithLogger(logger))

	// Setup graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Fatal("MCP server failed")
	}
}
