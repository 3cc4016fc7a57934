// Package server provides the MCP server and HTTP transports for GreenRoute.
package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/Sahilcoder4/greenroute-repo/pkg/core"
	"github.com/Sahilcoder4/greenroute-repo/pkg/tools"
	"github.com/Sahilcoder4/greenroute-repo/pkg/version"
)

// ServerName is the name of the MCP server
const ServerName = "greenroute-mcp-server"

// Server wraps the MCP server carrying the GreenRoute tools and prompts.
type Server struct {
	srv    *mcpserver.MCPServer
	logger *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewServer creates an MCP server with every tool and prompt of registry registered.
func NewServer(registry *tools.Registry, logger *slog.Logger) (*Server, error) {
	if registry == nil {
		return nil, core.NewError(core.ErrInternalError, "tool registry is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("initializing GreenRoute MCP server",
		"name", ServerName,
		"version", version.BuildVersion)

	srv := mcpserver.NewMCPServer(
		ServerName,
		version.BuildVersion,
		mcpserver.WithToolCapabilities(false),
		mcpserver.WithPromptCapabilities(false),
		mcpserver.WithRecovery(),
	)
	registry.RegisterAll(srv)

	return &Server{srv: srv, logger: logger}, nil
}

// RunWithContext serves MCP over stdin/stdout until ctx is canceled, the
// client closes stdin, or Shutdown is called.
func (s *Server) RunWithContext(ctx context.Context) error {
	s.mu.Lock()
	if s.cancel != nil {
		s.mu.Unlock()
		return core.NewError(core.ErrInternalError, "stdio transport already running")
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.cancel = nil
		s.mu.Unlock()
		cancel()
	}()

	err := mcpserver.NewStdioServer(s.srv).Listen(ctx, os.Stdin, os.Stdout)
	if err == nil || errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
		return nil
	}
	s.logger.Error("stdio transport stopped", "error", err)
	return err
}

// Shutdown stops a running stdio transport. It is a no-op otherwise.
func (s *Server) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// GetMCPServer returns the underlying MCP server, shared with the HTTP transport
func (s *Server) GetMCPServer() *mcpserver.MCPServer {
	return s.srv
}
