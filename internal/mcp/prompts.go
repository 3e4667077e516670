// ABOUTME: MCP prompt definitions and handlers
// ABOUTME: Provides workflow templates for catching up on feeds and tidying the tag map

package mcp

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	s.mcpServer.AddPrompt(mcp.Prompt{
		Name:        "catch-up",
		Description: "Update feeds and summarize unread items from the last few days",
		Arguments: []mcp.PromptArgument{
			{
				Name:        "days",
				Description: "Number of days to catch up on (default: 3)",
				Required:    false,
			},
		},
	}, s.handleCatchUp)

	s.mcpServer.AddPrompt(mcp.Prompt{
		Name:        "tidy-tags",
		Description: "Review feed category mappings in the tag map note",
		Arguments:   []mcp.PromptArgument{},
	}, s.handleTidyTags)
}

func (s *Server) handleCatchUp(_ context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	days := 3
	if d, ok := req.Params.Arguments["days"]; ok && d != "" {
		n, err := strconv.Atoi(d)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("days must be a positive number, got %q", d)
		}
		days = n
	}

	text := fmt.Sprintf(`# Catch up on feeds

1. Call update_feeds to fetch new items. Report feeds that returned an error.
2. Call list_items with unread_only=true and since="%dd".
3. Group the items by feed and pick the most relevant ones by title and tags.
4. Use get_item to read the chosen items and write a short summary of each,
   linking to the item note path.
5. Ask which summarized items should be marked read, then call mark_read for
   each. Call pin_item for anything worth keeping past the feed item limit.
6. Offer mark_read_before with before="%dd" to clear the rest.
`, days, days)

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Catch-up workflow for %d days of unread items", days),
		Messages: []mcp.PromptMessage{
			{
				Role:    mcp.RoleUser,
				Content: mcp.TextContent{Type: "text", Text: text},
			},
		},
	}, nil
}

func (s *Server) handleTidyTags(_ context.Context, _ mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	text := fmt.Sprintf(`# Tidy the tag map

1. Call sync_tags so pending category mappings are written and unused ones pruned.
2. Read %s and list the most used tags.
3. Suggest merges for near-duplicate feed tags (plurals, spelling variants).
   Each mapping row maps a feed tag to the hashtag written into new items;
   editing the second column of the tag map note applies a merge.
`, TagsURI)

	return &mcp.GetPromptResult{
		Description: "Tag map review workflow",
		Messages: []mcp.PromptMessage{
			{
				Role:    mcp.RoleUser,
				Content: mcp.TextContent{Type: "text", Text: text},
			},
		},
	}, nil
}
