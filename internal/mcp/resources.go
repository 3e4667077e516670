// ABOUTME: MCP resource providers for feednotes
// ABOUTME: Exposes read-only JSON views of feeds, unread items and tag usage

package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

// Resource URIs.
const (
	FeedsURI       = "feednotes://feeds"
	UnreadItemsURI = "feednotes://items/unread"
	TagsURI        = "feednotes://tags"
)

// ResourceData is the standard response format for all resources.
type ResourceData struct {
	Metadata ResourceMetadata  `json:"metadata"`
	Data     interface{}       `json:"data"`
	Links    map[string]string `json:"links"`
}

// ResourceMetadata contains metadata about the resource response.
type ResourceMetadata struct {
	Timestamp   time.Time `json:"timestamp"`
	Count       int       `json:"count"`
	ResourceURI string    `json:"resource_uri"`
}

// TagCount is one row of the tags resource.
type TagCount struct {
	Tag   string `json:"tag"`
	Notes int    `json:"notes"`
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.Resource{
		URI:         FeedsURI,
		Name:        "All Feeds",
		Description: "Every subscribed feed with URL, group, status and last update",
		MIMEType:    "application/json",
	}, s.readFeeds)

	s.mcpServer.AddResource(mcp.Resource{
		URI:         UnreadItemsURI,
		Name:        "Unread Items",
		Description: "Unread item notes across all feeds, newest first",
		MIMEType:    "application/json",
	}, s.readUnreadItems)

	s.mcpServer.AddResource(mcp.Resource{
		URI:         TagsURI,
		Name:        "Tags",
		Description: "Hashtags used in the vault with the number of notes using each",
		MIMEType:    "application/json",
	}, s.readTags)
}

func (s *Server) readFeeds(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	feeds, err := s.lib.Feeds()
	if err != nil {
		return nil, fmt.Errorf("failed to list feeds: %w", err)
	}
	out := make([]FeedOutput, 0, len(feeds))
	for _, feed := range feeds {
		out = append(out, feedOutput(feed))
	}
	return s.resource(req, FeedsURI, out, len(out))
}

func (s *Server) readUnreadItems(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	items, err := s.lib.AllItems()
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	out := []ItemOutput{}
	for _, item := range items {
		if !item.Record.Read {
			out = append(out, itemOutput(item))
		}
	}
	return s.resource(req, UnreadItemsURI, out, len(out))
}

func (s *Server) readTags(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	counts, err := s.lib.Vault().TagCounts()
	if err != nil {
		return nil, fmt.Errorf("failed to count tags: %w", err)
	}
	out := make([]TagCount, 0, len(counts))
	for tag, n := range counts {
		out = append(out, TagCount{Tag: tag, Notes: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Notes != out[j].Notes {
			return out[i].Notes > out[j].Notes
		}
		return out[i].Tag < out[j].Tag
	})
	return s.resource(req, TagsURI, out, len(out))
}

func (s *Server) resource(req mcp.ReadResourceRequest, uri string, data any, count int) ([]mcp.ResourceContents, error) {
	links := map[string]string{"feeds": FeedsURI, "unread_items": UnreadItemsURI, "tags": TagsURI}
	delete(links, linkName(uri))

	jsonBytes, err := json.MarshalIndent(ResourceData{
		Metadata: ResourceMetadata{Timestamp: s.now(), Count: count, ResourceURI: uri},
		Data:     data,
		Links:    links,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource data: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}

func linkName(uri string) string {
	switch uri {
	case FeedsURI:
		return "feeds"
	case UnreadItemsURI:
		return "unread_items"
	default:
		return "tags"
	}
}
