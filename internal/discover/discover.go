// ABOUTME: Feed discovery for subscribing from a site URL instead of a feed URL
// ABOUTME: Tries the URL as a feed, then <link rel="alternate"> headers, then common feed paths

package discover

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/harper/feednotes/internal/fetch"
	"github.com/harper/feednotes/internal/models"
	"github.com/harper/feednotes/internal/parse"
)

// Common feed paths to try when other discovery methods fail
var commonFeedPaths = []string{
	"/feed.xml",
	"/feed",
	"/rss.xml",
	"/rss",
	"/atom.xml",
	"/atom",
	"/index.xml",
	"/feed/rss",
	"/feed/atom",
	"/feeds/posts/default",
}

// Errors returned by discovery functions
var (
	ErrNoFeedFound = errors.New("no RSS/Atom feed found at URL")
	ErrInvalidURL  = errors.New("invalid URL")
)

// DiscoveredFeed is a feed found during discovery together with its
// normalized content, so callers need not fetch it again.
type DiscoveredFeed struct {
	URL   string
	Title string
	Feed  *models.TrackedFeed
}

// Discover finds an RSS/Atom feed for inputURL. Strategies, in order:
//  1. Parse URL as a direct feed
//  2. Parse URL as HTML and follow <link rel="alternate"> headers
//  3. Try common feed URL patterns
func Discover(ctx context.Context, inputURL string) (*DiscoveredFeed, error) {
	parsedURL, err := url.Parse(inputURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("%w: missing scheme or host", ErrInvalidURL)
	}

	feed, body, err := tryDirectFeed(ctx, inputURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	if feed != nil {
		return feed, nil
	}

	for _, candidate := range extractFeedLinks(body, parsedURL) {
		verified, _, verifyErr := tryDirectFeed(ctx, candidate.URL)
		if verifyErr != nil || verified == nil {
			continue
		}
		if verified.Title == "" {
			verified.Title = candidate.Title
		}
		return verified, nil
	}

	if feed := tryCommonPaths(ctx, parsedURL); feed != nil {
		return feed, nil
	}
	return nil, ErrNoFeedFound
}

// tryDirectFeed fetches feedURL and parses it as a feed. A body that is not
// a feed is returned for link extraction with a nil feed and nil error.
func tryDirectFeed(ctx context.Context, feedURL string) (*DiscoveredFeed, []byte, error) {
	result, err := fetch.Fetch(ctx, feedURL, fetch.Validators{})
	if err != nil {
		return nil, nil, err
	}

	parsed, parseErr := parse.Parse(result.Body, feedURL)
	if parseErr != nil {
		return nil, result.Body, nil //nolint:nilerr // parseErr means not a feed, which is expected
	}

	return &DiscoveredFeed{URL: feedURL, Title: parsed.Title, Feed: parsed}, result.Body, nil
}

// extractFeedLinks returns the feed URLs advertised by <link rel="alternate">
// elements, resolved against baseURL, in document order.
func extractFeedLinks(htmlBody []byte, baseURL *url.URL) []DiscoveredFeed {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(htmlBody))
	if err != nil {
		return nil
	}

	var feeds []DiscoveredFeed
	doc.Find("link[href]").Each(func(_ int, link *goquery.Selection) {
		rel, _ := link.Attr("rel")
		linkType, _ := link.Attr("type")
		href, _ := link.Attr("href")
		if !hasRel(rel, "alternate") || !isFeedContentType(linkType) || strings.TrimSpace(href) == "" {
			return
		}
		resolved, err := resolveURL(href, baseURL)
		if err != nil {
			return
		}
		title, _ := link.Attr("title")
		feeds = append(feeds, DiscoveredFeed{URL: resolved, Title: title})
	})
	return feeds
}

// tryCommonPaths tries common feed URL patterns against the site root.
func tryCommonPaths(ctx context.Context, baseURL *url.URL) *DiscoveredFeed {
	siteRoot := &url.URL{Scheme: baseURL.Scheme, Host: baseURL.Host}

	for _, path := range commonFeedPaths {
		if ctx.Err() != nil {
			return nil
		}
		feed, _, err := tryDirectFeed(ctx, siteRoot.String()+path)
		if err == nil && feed != nil {
			return feed
		}
	}
	return nil
}

func resolveURL(href string, baseURL *url.URL) (string, error) {
	refURL, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", err
	}
	return baseURL.ResolveReference(refURL).String(), nil
}

func hasRel(rel, want string) bool {
	for _, r := range strings.Fields(strings.ToLower(rel)) {
		if r == want {
			return true
		}
	}
	return false
}

// isFeedContentType checks if the content type indicates a feed
func isFeedContentType(contentType string) bool {
	contentType = strings.ToLower(contentType)
	return strings.Contains(contentType, "rss") ||
		strings.Contains(contentType, "atom") ||
		strings.Contains(contentType, "xml")
}
