// ABOUTME: MCP tool definitions and handlers for feed and item operations
// ABOUTME: Lists feeds and items, reads item notes, updates feeds and tracks read and pinned state

package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/harper/feednotes/internal/timeutil"
	"github.com/harper/feednotes/internal/vault"
)

const defaultItemLimit = 50

type FeedOutput struct {
	Name      string     `json:"name"`
	URL       string     `json:"url"`
	Site      string     `json:"site,omitempty"`
	Group     string     `json:"group,omitempty"`
	Status    string     `json:"status"`
	Error     string     `json:"error,omitempty"`
	ItemLimit int        `json:"item_limit"`
	Interval  int        `json:"interval_hours,omitempty"`
	Updated   *time.Time `json:"updated,omitempty"`
}

type ListFeedsOutput struct {
	Feeds []FeedOutput `json:"feeds"`
	Count int          `json:"count"`
}

type ListItemsInput struct {
	Feed       string `json:"feed,omitempty"`
	Collection string `json:"collection,omitempty"`
	UnreadOnly bool   `json:"unread_only,omitempty"`
	Since      string `json:"since,omitempty"`
	Limit      int    `json:"limit,omitempty"`
}

type ItemOutput struct {
	Path      string    `json:"path"`
	Title     string    `json:"title"`
	Feed      string    `json:"feed"`
	Link      string    `json:"link,omitempty"`
	Author    string    `json:"author,omitempty"`
	Published time.Time `json:"published"`
	Tags      []string  `json:"tags,omitempty"`
	Read      bool      `json:"read"`
	Pinned    bool      `json:"pinned"`
}

type ListItemsOutput struct {
	Items []ItemOutput `json:"items"`
	Count int          `json:"count"`
	Total int          `json:"total"`
}

type ItemInput struct {
	Item string `json:"item"`
}

type GetItemOutput struct {
	ItemOutput
	Content string `json:"content"`
}

type MarkBeforeInput struct {
	Before string `json:"before"`
	Feed   string `json:"feed,omitempty"`
}

type MarkBeforeOutput struct {
	Count   int       `json:"count"`
	Before  time.Time `json:"before"`
	Message string    `json:"message"`
}

type UpdateFeedsInput struct {
	Feed string `json:"feed,omitempty"`
}

type UpdateResult struct {
	Feed        string `json:"feed"`
	NewItems    int    `json:"new_items"`
	NotModified bool   `json:"not_modified,omitempty"`
	Skipped     bool   `json:"skipped,omitempty"`
	Error       string `json:"error,omitempty"`
}

type UpdateFeedsOutput struct {
	Results     []UpdateResult `json:"results"`
	TotalNew    int            `json:"total_new"`
	TotalErrors int            `json:"total_errors"`
}

type SyncTagsOutput struct {
	Added     int `json:"added"`
	Pruned    int `json:"pruned"`
	Malformed int `json:"malformed"`
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "list_feeds",
		Description: "List every subscribed feed in the vault with its URL, group, polling status, item limit and last successful update.",
		InputSchema: mcp.ToolInputSchema{Type: "object", Properties: map[string]interface{}{}},
	}, s.handleListFeeds)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "list_items",
		Description: "List item notes newest first. Filter by feed name or collection, restrict to unread items, or to items published since a period (today, yesterday, week, month, Nd, YYYY-MM-DD).",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"feed":        map[string]interface{}{"type": "string", "description": "Feed name. Example: 'Go Blog'"},
				"collection":  map[string]interface{}{"type": "string", "description": "Collection name; ignored when feed is set"},
				"unread_only": map[string]interface{}{"type": "boolean", "description": "Only unread items"},
				"since":       map[string]interface{}{"type": "string", "description": "Only items published since this period. Example: 'week'"},
				"limit":       map[string]interface{}{"type": "integer", "description": "Maximum items to return (default 50)"},
			},
		},
	}, s.handleListItems)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "get_item",
		Description: "Read one item note: its metadata and the Markdown body. The item is a vault path or a unique title fragment.",
		InputSchema: itemSchema(),
	}, s.handleGetItem)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "mark_read",
		Description: "Mark one item as read.",
		InputSchema: itemSchema(),
	}, s.itemFlagHandler(func(r *vault.ItemRecord) { r.Read = true }))

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "mark_unread",
		Description: "Mark one item as unread.",
		InputSchema: itemSchema(),
	}, s.itemFlagHandler(func(r *vault.ItemRecord) { r.Read = false }))

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "pin_item",
		Description: "Pin an item so feed updates never delete it to stay under the item limit.",
		InputSchema: itemSchema(),
	}, s.itemFlagHandler(func(r *vault.ItemRecord) { r.Pinned = true }))

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "unpin_item",
		Description: "Unpin an item so it can be deleted when its feed exceeds the item limit.",
		InputSchema: itemSchema(),
	}, s.itemFlagHandler(func(r *vault.ItemRecord) { r.Pinned = false }))

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "mark_read_before",
		Description: "Mark every item published before a period as read. Periods: today, yesterday, week, month, Nd, YYYY-MM-DD or RFC3339.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"before": map[string]interface{}{"type": "string", "description": "Cutoff period. Example: 'yesterday'"},
				"feed":   map[string]interface{}{"type": "string", "description": "Restrict to one feed"},
			},
			Required: []string{"before"},
		},
	}, s.handleMarkBefore)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "update_feeds",
		Description: "Download feeds and write new items into the vault. Updates one feed by name, or every feed when omitted. Suspended feeds are skipped.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"feed": map[string]interface{}{"type": "string", "description": "Feed name to update"},
			},
		},
	}, s.handleUpdateFeeds)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "sync_tags",
		Description: "Write pending feed category mappings to the tag map note and prune unused identity mappings.",
		InputSchema: mcp.ToolInputSchema{Type: "object", Properties: map[string]interface{}{}},
	}, s.handleSyncTags)
}

func itemSchema() mcp.ToolInputSchema {
	return mcp.ToolInputSchema{
		Type: "object",
		Properties: map[string]interface{}{
			"item": map[string]interface{}{
				"type":        "string",
				"description": "Vault path of the item note or a unique title fragment. Example: 'Feeds/Go Blog/Go 1.26 is released.md'",
			},
		},
		Required: []string{"item"},
	}
}

func (s *Server) handleListFeeds(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	feeds, err := s.lib.Feeds()
	if err != nil {
		return nil, fmt.Errorf("failed to list feeds: %w", err)
	}

	output := ListFeedsOutput{Feeds: make([]FeedOutput, 0, len(feeds)), Count: len(feeds)}
	for _, feed := range feeds {
		output.Feeds = append(output.Feeds, feedOutput(feed))
	}
	return jsonResult(output)
}

func (s *Server) handleListItems(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input ListItemsInput
	if err := req.BindArguments(&input); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	var since time.Time
	if input.Since != "" {
		var ok bool
		if since, ok = timeutil.ParsePeriod(input.Since, s.now()); !ok {
			return nil, fmt.Errorf("invalid period %q", input.Since)
		}
	}

	var items []*vault.ItemNote
	var err error
	switch {
	case input.Feed != "":
		items, err = s.lib.Items(input.Feed)
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Record.Published > items[j].Record.Published
		})
	case input.Collection != "":
		items, err = s.lib.CollectionItems(input.Collection)
	default:
		items, err = s.lib.AllItems()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultItemLimit
	}

	output := ListItemsOutput{Items: []ItemOutput{}}
	for _, item := range items {
		if input.UnreadOnly && item.Record.Read {
			continue
		}
		if !since.IsZero() && item.Record.PublishedAt().Before(since) {
			continue
		}
		output.Total++
		if len(output.Items) < limit {
			output.Items = append(output.Items, itemOutput(item))
		}
	}
	output.Count = len(output.Items)
	return jsonResult(output)
}

func (s *Server) handleGetItem(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	item, err := s.bindItem(req)
	if err != nil {
		return nil, err
	}
	text, err := s.lib.Vault().ReadNote(item.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read item: %w", err)
	}
	_, body := vault.SplitFrontmatter(text)
	return jsonResult(GetItemOutput{ItemOutput: itemOutput(item), Content: strings.TrimSpace(body)})
}

// itemFlagHandler returns a handler applying set to the resolved item.
func (s *Server) itemFlagHandler(set func(*vault.ItemRecord)) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		item, err := s.bindItem(req)
		if err != nil {
			return nil, err
		}
		set(item.Record)
		if err := s.lib.SaveItem(item); err != nil {
			return nil, fmt.Errorf("failed to save item: %w", err)
		}
		return jsonResult(itemOutput(item))
	}
}

func (s *Server) handleMarkBefore(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input MarkBeforeInput
	if err := req.BindArguments(&input); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}
	cutoff, ok := timeutil.ParsePeriod(input.Before, s.now())
	if !ok {
		return nil, fmt.Errorf("invalid period %q: use today, yesterday, week, month, Nd, or YYYY-MM-DD", input.Before)
	}

	var items []*vault.ItemNote
	var err error
	if input.Feed != "" {
		items, err = s.lib.Items(input.Feed)
	} else {
		items, err = s.lib.AllItems()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	count, err := s.lib.MarkBefore(items, cutoff, true)
	if err != nil {
		return nil, fmt.Errorf("failed to mark items as read: %w", err)
	}
	return jsonResult(MarkBeforeOutput{
		Count:   count,
		Before:  cutoff,
		Message: fmt.Sprintf("Marked %d items as read", count),
	})
}

func (s *Server) handleUpdateFeeds(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input UpdateFeedsInput
	if err := req.BindArguments(&input); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	var feeds []*vault.FeedNote
	if input.Feed != "" {
		feed, err := s.lib.Feed(input.Feed)
		if err != nil {
			return nil, fmt.Errorf("feed not found: %s", input.Feed)
		}
		feeds = []*vault.FeedNote{feed}
	} else {
		var err error
		if feeds, err = s.lib.Feeds(); err != nil {
			return nil, fmt.Errorf("failed to list feeds: %w", err)
		}
	}

	results, err := s.updater.PollAll(ctx, feeds)
	if err != nil {
		return nil, err
	}

	output := UpdateFeedsOutput{Results: make([]UpdateResult, 0, len(results))}
	for _, r := range results {
		res := UpdateResult{Feed: r.Feed, NewItems: r.New, NotModified: r.NotModified, Skipped: r.Skipped}
		if r.Err != nil {
			res.Error = r.Err.Error()
			output.TotalErrors++
		}
		output.TotalNew += r.New
		output.Results = append(output.Results, res)
	}
	return jsonResult(output)
}

func (s *Server) handleSyncTags(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := s.tagMap.UpdateTagMap()
	if err != nil {
		return nil, fmt.Errorf("failed to sync tag map: %w", err)
	}
	return jsonResult(SyncTagsOutput{Added: res.Added, Pruned: res.Pruned, Malformed: res.Malformed})
}

// bindItem resolves the "item" argument to exactly one item note.
func (s *Server) bindItem(req mcp.CallToolRequest) (*vault.ItemNote, error) {
	var input ItemInput
	if err := req.BindArguments(&input); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}
	if input.Item == "" {
		return nil, fmt.Errorf("item is required")
	}
	matches, err := s.lib.FindItems(input.Item)
	if err != nil {
		return nil, fmt.Errorf("failed to search items: %w", err)
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("item not found: %s", input.Item)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%q matches %d items; use the full path", input.Item, len(matches))
	}
}

func feedOutput(feed *vault.FeedNote) FeedOutput {
	rec := feed.Record
	status := rec.FeedStatus()
	out := FeedOutput{
		Name:      feed.Name,
		URL:       rec.FeedURL,
		Site:      rec.Site,
		Group:     rec.Group,
		Status:    stateName(status.State),
		Error:     status.Message,
		ItemLimit: rec.ItemLimit,
		Interval:  rec.Interval,
	}
	if updated := rec.UpdatedAt(); !updated.IsZero() {
		out.Updated = &updated
	}
	return out
}

func stateName(s vault.State) string {
	switch s {
	case vault.StateOK:
		return "ok"
	case vault.StateSuspended:
		return "suspended"
	case vault.StateError:
		return "error"
	default:
		return "pending"
	}
}

func itemOutput(item *vault.ItemNote) ItemOutput {
	rec := item.Record
	return ItemOutput{
		Path:      item.Path,
		Title:     item.Title(),
		Feed:      rec.Feed,
		Link:      rec.Link,
		Author:    rec.Author,
		Published: rec.PublishedAt().UTC(),
		Tags:      rec.Tags,
		Read:      rec.Read,
		Pinned:    rec.Pinned,
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal output: %w", err)
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}
