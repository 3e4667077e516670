// ABOUTME: Feed reconciler that turns a fresh feed snapshot into item notes
// ABOUTME: Deletes the oldest unpinned items to stay within the feed's item limit

package reconcile

import (
	"errors"
	"fmt"
	"html"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/harper/feednotes/internal/content"
	"github.com/harper/feednotes/internal/models"
	"github.com/harper/feednotes/internal/vault"
)

// TagMapper maps raw item categories to hashtags.
type TagMapper interface {
	MapHashtag(raw string) string
}

// ItemError reports an item note that could not be created.
type ItemError struct {
	Item string
	Feed string
	Err  error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("create item %q of feed %q: %v", e.Item, e.Feed, e.Err)
}

func (e *ItemError) Unwrap() error { return e.Err }

// Reconciler applies feed snapshots to a library.
type Reconciler struct {
	lib        *vault.Library
	translator *content.Translator
	tags       TagMapper
	logger     *slog.Logger
	now        func() time.Time
	deleteNote func(rel string) error
}

// New creates a Reconciler. A nil logger uses slog.Default.
func New(lib *vault.Library, translator *content.Translator, tags TagMapper, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		lib:        lib,
		translator: translator,
		tags:       tags,
		logger:     logger,
		now:        time.Now,
		deleteNote: lib.Vault().DeleteNote,
	}
}

// Update stores the items of remote that are not yet on disk and returns
// how many were created. Only item ids are compared; existing notes are
// never updated in place.
//
// Deletion of old items is best effort. A failed creation stops the batch
// and is returned as an *ItemError. On success the feed status becomes OK
// and its updated and interval fields are refreshed.
func (r *Reconciler) Update(feed *vault.FeedNote, remote *models.TrackedFeed) (int, error) {
	existing, err := r.lib.Items(feed.Name)
	if err != nil && !errors.Is(err, vault.ErrNotFound) {
		return 0, fmt.Errorf("list items of %s: %w", feed.Name, err)
	}

	limit := feed.Record.ItemLimit
	if limit <= 0 {
		limit = vault.DefaultItemLimit
	}

	fresh := newItems(existing, remote.Items, limit)
	created := 0
	if len(fresh) > 0 {
		r.deleteOldest(feed, existing, len(fresh), limit)

		for i := range fresh {
			item := &fresh[i]
			if _, err := r.createItem(feed, item); err != nil {
				return created, &ItemError{Item: item.Title, Feed: feed.Name, Err: err}
			}
			created++
		}
	}

	feed.Record.SetStatus(vault.OK)
	feed.Record.Updated = r.now().UnixMilli()
	feed.Record.Interval = remote.AvgPostInterval()
	if err := r.lib.SaveFeed(feed); err != nil {
		return created, fmt.Errorf("save feed %s: %w", feed.Name, err)
	}

	r.logger.Info("feed updated", "feed", feed.Name, "new", created)
	return created, nil
}

// newItems returns the first limit remote items whose id is not on disk.
func newItems(existing []*vault.ItemNote, remote []models.TrackedItem, limit int) []models.TrackedItem {
	seen := make(map[string]bool, len(existing))
	for _, item := range existing {
		seen[item.Record.ID] = true
	}

	if len(remote) > limit {
		remote = remote[:limit]
	}

	var fresh []models.TrackedItem
	for _, item := range remote {
		if seen[item.ID] {
			continue
		}
		seen[item.ID] = true
		fresh = append(fresh, item)
	}
	return fresh
}

// deleteOldest removes the oldest unpinned items so that the items on
// disk plus the incoming ones fit the limit. Pinned items count toward the
// limit but are never deleted, so the ceiling may stay exceeded.
func (r *Reconciler) deleteOldest(feed *vault.FeedNote, existing []*vault.ItemNote, incoming, limit int) {
	var candidates []*vault.ItemNote
	for _, item := range existing {
		if !item.Record.Pinned {
			candidates = append(candidates, item)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Record.Published < candidates[j].Record.Published
	})

	excess := len(existing) + incoming - limit
	for i := 0; i < excess && i < len(candidates); i++ {
		if err := r.deleteNote(candidates[i].Path); err != nil {
			r.logger.Warn("failed to delete item", "feed", feed.Name, "path", candidates[i].Path, "error", err)
		}
	}
}

func (r *Reconciler) createItem(feed *vault.FeedNote, item *models.TrackedItem) (string, error) {
	var hashtags, tags []string
	for _, raw := range item.Tags {
		mapped := r.tags.MapHashtag(raw)
		if mapped == "" {
			continue
		}
		hashtags = append(hashtags, mapped)
		tags = append(tags, strings.TrimPrefix(mapped, "#"))
	}

	abstract := ""
	if item.Description != item.Content {
		abstract = r.translator.FragmentAsMarkdown(item.Description)
	}

	data := map[string]string{
		"title":       html.UnescapeString(item.Title),
		"link":        item.Link,
		"author":      item.Author,
		"publishDate": item.PublishedISO(),
		"image":       imageMarkdown(item.Image),
		"media":       mediaMarkdown(item.Media),
		"abstract":    abstract,
		"content":     r.translator.FragmentAsMarkdown(item.Content),
		"tags":        strings.Join(hashtags, " "),
	}

	rec := &vault.ItemRecord{
		ID:        item.ID,
		Author:    item.Author,
		Link:      item.Link,
		Published: item.Published.UnixMilli(),
		Feed:      feed.Name,
		Tags:      tags,
	}

	return r.lib.Vault().CreateNote(r.lib.FeedFolder(feed.Name), item.FileName(), vault.TemplateItem, data, func(fm map[string]any) error {
		return vault.MergeRecord(fm, rec)
	})
}

func imageMarkdown(img *models.Image) string {
	if img == nil || img.Src == "" {
		return ""
	}
	return "![](" + img.Src + ")"
}

func mediaMarkdown(media []models.Media) string {
	var b strings.Builder
	for _, m := range media {
		if m.Src == "" {
			continue
		}
		switch m.Type {
		case models.MediaImage:
			fmt.Fprintf(&b, "- ![](%s)\n", m.Src)
		default:
			fmt.Fprintf(&b, "- [%s](%s)\n", m.Type, m.Src)
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}
