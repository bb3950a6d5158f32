// Package mcp exposes the urology calculators as MCP tools over stdio.
// Every evaluation runs in the local process; nothing leaves the machine.
package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/uro-calc-engine/internal/service"
)

// Server is the MCP server over a CalculatorService.
type Server struct {
	logger    *logrus.Logger
	service   *service.CalculatorService
	mcpServer *mcp.Server
	tools     []string
}

// ServerOption is a functional option for Server.
type ServerOption func(*Server)

// WithLogger sets a custom logger.
func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates an MCP server with one evaluation tool per calculator
// plus the catalog tools.
func NewServer(name, version string, svc *service.CalculatorService, opts ...ServerOption) *Server {
	server := &Server{
		logger:  logrus.New(),
		service: svc,
	}
	for _, opt := range opts {
		opt(server)
	}

	server.mcpServer = mcp.NewServer(&mcp.Implementation{
		Name:    name,
		Version: version,
	}, nil)

	server.registerTools()

	server.logger.WithFields(logrus.Fields{
		"server_name": name,
		"tool_count":  len(server.tools),
	}).Info("MCP server initialized")

	return server
}

// Tools returns the registered tool names in registration order.
func (s *Server) Tools() []string {
	out := make([]string, len(s.tools))
	copy(out, s.tools)
	return out
}

// MCPServer returns the underlying SDK server.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcpServer
}

// Start serves over stdin/stdout until ctx is cancelled or the client
// disconnects.
func (s *Server) Start(ctx context.Context) error {
	return s.Run(ctx, &mcp.StdioTransport{})
}

// Run serves over the given transport.
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	s.logger.Info("Starting urology calculator MCP server")

	if err := s.mcpServer.Run(ctx, transport); err != nil && ctx.Err() == nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}

	s.logger.Info("MCP server stopped")
	return nil
}
