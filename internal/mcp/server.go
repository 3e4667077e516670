// ABOUTME: MCP server implementation for feednotes
// ABOUTME: Provides tools, resources, and prompts for AI agents to work with the feed vault

package mcp

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/harper/feednotes/internal/reconcile"
	"github.com/harper/feednotes/internal/vault"
)

// Updater polls feeds. *reconcile.Poller satisfies it.
type Updater interface {
	PollAll(ctx context.Context, feeds []*vault.FeedNote) ([]reconcile.PollResult, error)
}

// Server wraps the MCP server with the feed library it exposes.
type Server struct {
	mcpServer *server.MCPServer
	lib       *vault.Library
	updater   Updater
	tagMap    reconcile.TagMap
	now       func() time.Time
}

// NewServer creates a new MCP server instance
func NewServer(lib *vault.Library, updater Updater, tagMap reconcile.TagMap, version string) *Server {
	s := &Server{
		lib:     lib,
		updater: updater,
		tagMap:  tagMap,
		now:     time.Now,
	}

	s.mcpServer = server.NewMCPServer(
		"feednotes",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
	)

	s.registerTools()
	s.registerResources()
	s.registerPrompts()

	return s
}

// ServeStdio starts the MCP server on stdio
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
