// Package mcp exposes the checker to editors and agents as an MCP tool server
// over stdio.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/mvp-joe/modelguard/internal/checker"
)

// Server manages the MCP server lifecycle.
type Server struct {
	checker *checker.Checker
	root    string
	log     *logrus.Logger
	mcp     *server.MCPServer
}

// NewServer creates an MCP server exposing modelguard_check and
// modelguard_fix. Paths passed to tools must resolve inside root.
func NewServer(c *checker.Checker, root, version string, logger *logrus.Logger) (*Server, error) {
	if c == nil {
		return nil, fmt.Errorf("checker is required")
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root: %w", err)
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}

	s := &Server{
		checker: c,
		root:    absRoot,
		log:     logger,
		mcp: server.NewMCPServer(
			"modelguard",
			version,
			server.WithToolCapabilities(true),
		),
	}

	AddCheckTool(s.mcp, s)
	AddFixTool(s.mcp, s)

	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown.
func (s *Server) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("root", s.root).Info("starting MCP server on stdio")
		if err := server.ServeStdio(s.mcp); err != nil {
			errCh <- fmt.Errorf("MCP server error: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case <-sigCh:
		s.log.Info("received shutdown signal, stopping")
		return nil
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// resolvePath makes path absolute against the root and rejects escapes.
func (s *Server) resolvePath(path string) (string, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.root, path)
	}
	path = filepath.Clean(path)

	rel, err := filepath.Rel(s.root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %s is outside project root", path)
	}
	return path, nil
}

// marshalToolResponse converts a response to a JSON text result.
func marshalToolResponse(response any) (*mcp.CallToolResult, error) {
	jsonData, err := json.Marshal(response)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
