// Package api serves the read-only calculator catalog over HTTP: each
// calculator's input schema and band tables. Evaluation stays on the client.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/uro-calc-engine/internal/domain"
	"github.com/uro-calc-engine/internal/middleware"
	"github.com/uro-calc-engine/internal/service"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

// Server represents the HTTP server
type Server struct {
	configManager domain.ConfigManager
	logger        *logrus.Logger
	service       *service.CalculatorService
	router        *gin.Engine
	server        *http.Server
}

// NewServer creates a new HTTP server instance
func NewServer(configManager domain.ConfigManager, logger *logrus.Logger, svc *service.CalculatorService) *Server {
	cfg := configManager.GetConfig()

	// Set Gin mode based on environment
	if configManager.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.AuditLogger(logger))
	router.Use(middleware.SecurityHeaders())
	router.Use(corsMiddleware())
	router.Use(middleware.RequestTimeout(cfg.Server.RequestTimeout))
	router.Use(middleware.NewRateLimiter(logger, cfg.RateLimit).Middleware())

	server := &Server{
		configManager: configManager,
		logger:        logger,
		service:       svc,
		router:        router,
	}

	// Setup routes
	server.setupRoutes()

	return server
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	cfg := s.configManager.GetServerConfig()
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("Catalog server listening")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	// Health check endpoint
	s.router.GET("/health", s.handleHealth)

	// API v1 routes
	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/calculators", s.handleListCalculators)
		v1.GET("/calculators/:name", s.handleGetCalculator)
	}
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"version":     Version,
		"calculators": len(s.service.Names()),
	})
}

// handleListCalculators returns the catalog of every calculator.
func (s *Server) handleListCalculators(c *gin.Context) {
	catalog := s.service.Catalog()
	c.JSON(http.StatusOK, gin.H{
		"count":       len(catalog),
		"calculators": catalog,
	})
}

// handleGetCalculator returns one calculator's schema and band tables.
func (s *Server) handleGetCalculator(c *gin.Context) {
	name := c.Param("name")
	entry, err := s.service.Describe(name)
	if err != nil {
		requestID := c.GetString(middleware.CorrelationIDKey)
		if errors.Is(err, domain.ErrUnknownCalculator) {
			c.JSON(http.StatusNotFound, domain.NewAPIError(
				domain.ErrCodeUnknownCalculator,
				fmt.Sprintf("Calculator %q not found", name),
				"",
				requestID,
			))
			return
		}
		s.logger.WithError(err).WithField("calculator", name).Error("Catalog lookup failed")
		c.JSON(http.StatusInternalServerError, domain.NewAPIError(
			domain.ErrCodeInternalServer, "Internal server error", "", requestID,
		))
		return
	}
	c.JSON(http.StatusOK, entry)
}

// corsMiddleware adds CORS headers to responses
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, X-Correlation-ID")
		c.Header("Access-Control-Expose-Headers", "X-Correlation-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
