// ABOUTME: MCP server command for the feednotes CLI
// ABOUTME: Starts a stdio MCP server so AI agents can read and update the feed vault

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harper/feednotes/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server for AI agents",
	Long: `Start the Model Context Protocol (MCP) server on stdio.

Agents can list feeds and items, read item notes, update feeds, and mark
items read or pinned through structured tools.

The server communicates via JSON-RPC on stdin/stdout.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		poller, _, mapper := newPoller()
		server := mcp.NewServer(lib, poller, mapper, Version)

		if err := server.ServeStdio(); err != nil {
			return fmt.Errorf("MCP server error: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
