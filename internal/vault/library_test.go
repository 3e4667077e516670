// ABOUTME: Tests for the folder-per-feed library
// ABOUTME: Covers feed creation, listing, renaming, removal, item lookup and collections

package vault

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addTestItem(t *testing.T, lib *Library, feed, title string, rec ItemRecord) *ItemNote {
	t.Helper()
	rec.Feed = feed
	rel, err := lib.Vault().CreateNote(lib.FeedFolder(feed), title, TemplateNote, map[string]string{"content": title}, func(fm map[string]any) error {
		return MergeRecord(fm, &rec)
	})
	require.NoError(t, err)
	return &ItemNote{Path: rel, Record: &rec}
}

func TestLibrary_CreateAndListFeeds(t *testing.T) {
	lib := NewLibrary(newTestVault(t), "Feeds")

	feeds, err := lib.Feeds()
	require.NoError(t, err)
	assert.Empty(t, feeds, "missing library folder means no feeds")

	created, err := lib.CreateFeed("Go Blog", &FeedRecord{FeedURL: "https://go.dev/blog/feed.atom", Status: Resumed.String()}, map[string]string{"description": "News"})
	require.NoError(t, err)
	assert.Equal(t, "Feeds/Go Blog/Go Blog.md", created.Path)
	assert.Equal(t, DefaultItemLimit, created.Record.ItemLimit)

	_, err = lib.CreateFeed("Go Blog", &FeedRecord{FeedURL: "x"}, nil)
	assert.ErrorIs(t, err, ErrExists)

	require.NoError(t, lib.Vault().EnsureFolder("Feeds/not-a-feed"))

	feeds, err = lib.Feeds()
	require.NoError(t, err)
	require.Len(t, feeds, 1)
	assert.Equal(t, "Go Blog", feeds[0].Name)
	assert.Equal(t, "https://go.dev/blog/feed.atom", feeds[0].Record.FeedURL)

	content, err := lib.Vault().ReadNote(created.Path)
	require.NoError(t, err)
	assert.Contains(t, content, "role: rssfeed")
	assert.Contains(t, content, "# Go Blog")
	assert.Contains(t, content, "News")
}

func TestLibrary_SaveFeed(t *testing.T) {
	lib := NewLibrary(newTestVault(t), "Feeds")
	feed, err := lib.CreateFeed("F", &FeedRecord{FeedURL: "https://example.com/rss"}, nil)
	require.NoError(t, err)

	feed.Record.SetStatus(ErrorStatus("timeout"))
	require.NoError(t, lib.SaveFeed(feed))

	reloaded, err := lib.Feed("F")
	require.NoError(t, err)
	assert.Equal(t, "timeout", reloaded.Record.FeedStatus().Message)
}

func TestLibrary_Items(t *testing.T) {
	lib := NewLibrary(newTestVault(t), "Feeds")
	_, err := lib.CreateFeed("F", &FeedRecord{FeedURL: "https://example.com/rss"}, nil)
	require.NoError(t, err)

	addTestItem(t, lib, "F", "Old post", ItemRecord{ID: "1", Published: 1000})
	addTestItem(t, lib, "F", "New post", ItemRecord{ID: "2", Published: 2000, Tags: []string{"rss/go"}})
	require.NoError(t, lib.Vault().WriteNote("Feeds/F/scratch.md", "no frontmatter"))

	items, err := lib.Items("F")
	require.NoError(t, err)
	require.Len(t, items, 2)

	all, err := lib.AllItems()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "New post", all[0].Title(), "newest first")

	found, err := lib.FindItems("old")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "1", found[0].Record.ID)

	found, err = lib.FindItems("Feeds/F/New post.md")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "2", found[0].Record.ID)
}

func TestLibrary_MarkBefore(t *testing.T) {
	lib := NewLibrary(newTestVault(t), "Feeds")
	_, err := lib.CreateFeed("F", &FeedRecord{FeedURL: "https://example.com/rss"}, nil)
	require.NoError(t, err)

	cutoff := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	addTestItem(t, lib, "F", "Old", ItemRecord{ID: "1", Published: cutoff.Add(-48 * time.Hour).UnixMilli()})
	addTestItem(t, lib, "F", "Older", ItemRecord{ID: "2", Published: cutoff.Add(-72 * time.Hour).UnixMilli()})
	addTestItem(t, lib, "F", "New", ItemRecord{ID: "3", Published: cutoff.Add(time.Hour).UnixMilli()})

	items, err := lib.Items("F")
	require.NoError(t, err)
	count, err := lib.MarkBefore(items, cutoff, true)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	items, err = lib.Items("F")
	require.NoError(t, err)
	for _, item := range items {
		assert.Equal(t, item.Title() != "New", item.Record.Read, item.Title())
	}

	count, err = lib.MarkBefore(items, cutoff, true)
	require.NoError(t, err)
	assert.Zero(t, count, "already read items are not counted")
}

func TestLibrary_RenameFeed(t *testing.T) {
	lib := NewLibrary(newTestVault(t), "Feeds")
	_, err := lib.CreateFeed("Old", &FeedRecord{FeedURL: "https://example.com/rss"}, nil)
	require.NoError(t, err)
	addTestItem(t, lib, "Old", "Post", ItemRecord{ID: "1"})

	renamed, err := lib.RenameFeed("Old", "New")
	require.NoError(t, err)
	assert.Equal(t, "Feeds/New/New.md", renamed.Path)

	items, err := lib.Items("New")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "New", items[0].Record.Feed)

	_, err = lib.Feed("Old")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLibrary_RemoveFeed(t *testing.T) {
	lib := NewLibrary(newTestVault(t), "Feeds")
	_, err := lib.CreateFeed("F", &FeedRecord{FeedURL: "https://example.com/rss"}, nil)
	require.NoError(t, err)

	require.NoError(t, lib.RemoveFeed("F"))
	assert.False(t, lib.Vault().Exists("Feeds/F"))
	assert.ErrorIs(t, lib.RemoveFeed("F"), ErrNotFound)
}

func TestLibrary_Collections(t *testing.T) {
	lib := NewLibrary(newTestVault(t), "Feeds")
	_, err := lib.CreateFeed("F", &FeedRecord{FeedURL: "https://example.com/rss"}, nil)
	require.NoError(t, err)
	addTestItem(t, lib, "F", "Go post", ItemRecord{ID: "1", Tags: []string{"rss/go"}})
	addTestItem(t, lib, "F", "Rust post", ItemRecord{ID: "2", Tags: []string{"rss/rust"}})

	rel, err := lib.CreateCollection("Gophers", &CollectionRecord{AnyTags: []string{"#rss/go"}})
	require.NoError(t, err)
	assert.Equal(t, "Feeds/Gophers.md", rel)

	_, err = lib.CreateCollection("Gophers", &CollectionRecord{})
	assert.ErrorIs(t, err, ErrExists)

	items, err := lib.CollectionItems("Gophers")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Go post", items[0].Title())

	feeds, err := lib.Feeds()
	require.NoError(t, err)
	assert.Len(t, feeds, 1, "collections are not feeds")
}
