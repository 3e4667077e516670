// ABOUTME: Feed normalizer turning RSS/Atom/JSON feeds into the TrackedFeed model
// ABOUTME: Uses gofeed for tokenizing and resolves ids, dates, titles, tags and media

package parse

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/harper/feednotes/internal/models"
)

// Parse parses RSS, Atom or JSON feed data read from source and returns the
// normalized feed. source is used as the base for path-absolute links.
func Parse(data []byte, source string) (*models.TrackedFeed, error) {
	parser := gofeed.NewParser()
	feed, err := parser.ParseString(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", source, err)
	}
	return Normalize(feed, source), nil
}

// Normalize converts a parsed gofeed.Feed into a TrackedFeed. Missing optional
// fields are left empty; missing dates are stamped with the current time.
func Normalize(feed *gofeed.Feed, source string) *models.TrackedFeed {
	return normalizeAt(feed, source, time.Now())
}

func normalizeAt(feed *gofeed.Feed, source string, now time.Time) *models.TrackedFeed {
	base := baseURL(source)

	tracked := &models.TrackedFeed{
		Title:       cleanTitle(feed.Title),
		Description: strings.TrimSpace(feed.Description),
		SiteURL:     resolveLink(siteLink(feed), base),
		Image:       feedImage(feed),
		Source:      source,
		Items:       make([]models.TrackedItem, 0, len(feed.Items)),
	}

	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		tracked.Items = append(tracked.Items, normalizeItem(item, base, now))
	}

	return tracked
}

func normalizeItem(item *gofeed.Item, base *url.URL, now time.Time) models.TrackedItem {
	link := resolveLink(strings.TrimSpace(item.Link), base)

	entry := models.TrackedItem{
		ID:          strings.TrimSpace(item.GUID),
		Link:        link,
		Published:   publishedTime(item, now),
		Author:      Creator(item),
		Tags:        Categories(item.Categories),
		Description: Description(item),
		Content:     strings.TrimSpace(item.Content),
		Image:       ItemImage(item),
		Media:       MediaList(item),
	}

	// Fallback id to the article link
	if entry.ID == "" {
		entry.ID = link
	}

	entry.Title = cleanTitle(item.Title)
	if entry.Title == "" {
		entry.Title = "Untitled " + entry.Published.Local().Format("2006-01-02 15:04")
	}

	return entry
}

// publishedTime prefers the published date, then the updated date, then now.
func publishedTime(item *gofeed.Item, now time.Time) time.Time {
	switch {
	case item.PublishedParsed != nil && !item.PublishedParsed.IsZero():
		return item.PublishedParsed.UTC()
	case item.UpdatedParsed != nil && !item.UpdatedParsed.IsZero():
		return item.UpdatedParsed.UTC()
	default:
		return now.UTC()
	}
}

// cleanTitle collapses whitespace and newlines into single spaces.
func cleanTitle(title string) string {
	return strings.Join(strings.Fields(title), " ")
}

// siteLink picks the first link that is not the feed's self link.
func siteLink(feed *gofeed.Feed) string {
	for _, l := range feed.Links {
		l = strings.TrimSpace(l)
		if l != "" && l != feed.FeedLink {
			return l
		}
	}
	return strings.TrimSpace(feed.Link)
}

func feedImage(feed *gofeed.Feed) *models.Image {
	if feed.Image != nil && feed.Image.URL != "" {
		return &models.Image{Src: feed.Image.URL}
	}
	if feed.ITunesExt != nil && feed.ITunesExt.Image != "" {
		return &models.Image{Src: feed.ITunesExt.Image}
	}
	return nil
}

// baseURL returns source as a URL when it is an absolute http(s) URL.
func baseURL(source string) *url.URL {
	u, err := url.Parse(source)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil
	}
	return u
}

// resolveLink resolves a path-absolute link against base.
func resolveLink(link string, base *url.URL) string {
	if base == nil || !strings.HasPrefix(link, "/") || strings.HasPrefix(link, "//") {
		return link
	}
	ref, err := url.Parse(link)
	if err != nil {
		return link
	}
	return base.ResolveReference(ref).String()
}
