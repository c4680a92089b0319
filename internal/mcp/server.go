// Package mcp exposes the analyzer and prompt builder as Model Context Protocol
// tools over stdio.
package mcp

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"github.com/mvp-joe/testforge/internal/analyzer"
	"github.com/mvp-joe/testforge/internal/config"
	"github.com/sirupsen/logrus"
)

// MCPServer manages the MCP server lifecycle.
type MCPServer struct {
	mcp    *server.MCPServer
	logger *logrus.Logger
}

// NewMCPServer creates an MCP server with every testforge tool registered.
func NewMCPServer(cfg *config.Config, version string, logger *logrus.Logger) *MCPServer {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = logrus.New()
	}

	mcpServer := server.NewMCPServer(
		"testforge-mcp",
		version,
		server.WithToolCapabilities(true),
	)

	a := analyzer.New()
	AddAnalyzeTool(mcpServer, a)
	AddPromptTool(mcpServer, a, cfg)

	return &MCPServer{mcp: mcpServer, logger: logger}
}

// Serve starts the MCP server on stdio and blocks until shutdown.
func (s *MCPServer) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting MCP server on stdio")
		if err := server.ServeStdio(s.mcp); err != nil {
			errCh <- fmt.Errorf("MCP server error: %w", err)
		}
	}()

	select {
	case <-sigCh:
		s.logger.Info("received shutdown signal, stopping")
		return nil
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
