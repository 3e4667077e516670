// ABOUTME: Folder-per-feed library layout on top of the vault
// ABOUTME: Feeds live in <feeds>/<name>/ with a <name>.md dashboard; collections are notes in <feeds>/

package vault

import (
	"errors"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strings"
	"time"
)

// FeedNote is a feed dashboard and its record.
type FeedNote struct {
	Name   string
	Path   string
	Record *FeedRecord
}

// ItemNote is an item note and its record.
type ItemNote struct {
	Path   string
	Record *ItemRecord
}

// Title returns the note name of the item.
func (i *ItemNote) Title() string { return NoteTitle(i.Path) }

// Library manages feeds, items and collections below one folder.
type Library struct {
	vault  *Vault
	folder string
	logger *slog.Logger
}

// NewLibrary returns the library rooted at folder inside v.
func NewLibrary(v *Vault, folder string) *Library {
	return &Library{vault: v, folder: strings.Trim(folder, "/"), logger: v.logger}
}

// Vault returns the underlying vault.
func (l *Library) Vault() *Vault { return l.vault }

// Folder returns the library folder.
func (l *Library) Folder() string { return l.folder }

// FeedFolder returns the folder of a feed.
func (l *Library) FeedFolder(name string) string { return path.Join(l.folder, name) }

// FeedNotePath returns the dashboard path of a feed.
func (l *Library) FeedNotePath(name string) string {
	return path.Join(l.folder, name, name+NoteExt)
}

// Feeds returns every feed in the library sorted by name. Folders without
// a readable dashboard are skipped with a warning.
func (l *Library) Feeds() ([]*FeedNote, error) {
	entries, err := l.vault.ListFolder(l.folder)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var feeds []*FeedNote
	for _, e := range entries {
		if !e.Folder {
			continue
		}
		feed, err := l.Feed(e.Name)
		if err != nil {
			l.logger.Warn("skipping feed folder", "folder", e.Path, "error", err)
			continue
		}
		feeds = append(feeds, feed)
	}
	return feeds, nil
}

// Feed loads one feed by name.
func (l *Library) Feed(name string) (*FeedNote, error) {
	notePath := l.FeedNotePath(name)
	rec, err := l.vault.Record(notePath)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("feed %q: %w", name, ErrNotFound)
		}
		return nil, err
	}
	feedRec, ok := rec.(*FeedRecord)
	if !ok {
		return nil, fmt.Errorf("feed %q: dashboard has role %s", name, rec.Role())
	}
	return &FeedNote{Name: name, Path: notePath, Record: feedRec}, nil
}

// CreateFeed creates the folder and dashboard of a new feed.
func (l *Library) CreateFeed(name string, rec *FeedRecord, data map[string]string) (*FeedNote, error) {
	folder := l.FeedFolder(name)
	if l.vault.Exists(folder) {
		return nil, fmt.Errorf("feed %q: %w", name, ErrExists)
	}
	if rec.ItemLimit <= 0 {
		rec.ItemLimit = DefaultItemLimit
	}

	values := map[string]string{"feedName": name, "feedUrl": rec.FeedURL, "site": rec.Site, "image": "", "description": ""}
	for k, v := range data {
		values[k] = v
	}
	notePath, err := l.vault.CreateNote(folder, name, TemplateFeed, values, func(fm map[string]any) error {
		return MergeRecord(fm, rec)
	})
	if err != nil {
		return nil, fmt.Errorf("create feed %q: %w", name, err)
	}
	return &FeedNote{Name: name, Path: notePath, Record: rec}, nil
}

// SaveFeed writes the feed record back to its dashboard.
func (l *Library) SaveFeed(feed *FeedNote) error {
	return l.vault.SaveRecord(feed.Path, feed.Record)
}

// RemoveFeed deletes a feed folder with all its items.
func (l *Library) RemoveFeed(name string) error {
	if _, err := l.Feed(name); err != nil {
		return err
	}
	return l.vault.DeleteFolder(l.FeedFolder(name))
}

// RenameFeed renames the folder and dashboard of a feed and rewrites the
// feed back-reference of its items.
func (l *Library) RenameFeed(oldName, newName string) (*FeedNote, error) {
	if _, err := l.Feed(oldName); err != nil {
		return nil, err
	}
	if err := l.vault.RenameFolder(l.FeedFolder(oldName), l.FeedFolder(newName)); err != nil {
		return nil, err
	}
	moved := path.Join(l.FeedFolder(newName), oldName+NoteExt)
	if err := l.vault.RenameNote(moved, l.FeedNotePath(newName)); err != nil {
		return nil, err
	}

	items, err := l.Items(newName)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		item.Record.Feed = newName
		if err := l.SaveItem(item); err != nil {
			return nil, err
		}
	}
	return l.Feed(newName)
}

// Items returns the items of a feed. Notes in the feed folder that are not
// item records are skipped.
func (l *Library) Items(feedName string) ([]*ItemNote, error) {
	entries, err := l.vault.ListFolder(l.FeedFolder(feedName))
	if err != nil {
		return nil, err
	}

	dashboard := l.FeedNotePath(feedName)
	var items []*ItemNote
	for _, e := range entries {
		if e.Folder || e.Path == dashboard {
			continue
		}
		rec, err := l.vault.Record(e.Path)
		if err != nil {
			l.logger.Debug("skipping note", "path", e.Path, "error", err)
			continue
		}
		if itemRec, ok := rec.(*ItemRecord); ok {
			items = append(items, &ItemNote{Path: e.Path, Record: itemRec})
		}
	}
	return items, nil
}

// AllItems returns the items of every feed, newest first.
func (l *Library) AllItems() ([]*ItemNote, error) {
	feeds, err := l.Feeds()
	if err != nil {
		return nil, err
	}
	var all []*ItemNote
	for _, feed := range feeds {
		items, err := l.Items(feed.Name)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Record.Published > all[j].Record.Published
	})
	return all, nil
}

// FindItems returns items whose path equals query or whose title contains
// it, ignoring case.
func (l *Library) FindItems(query string) ([]*ItemNote, error) {
	all, err := l.AllItems()
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSuffix(query, NoteExt))
	var matches []*ItemNote
	for _, item := range all {
		if strings.TrimSuffix(item.Path, NoteExt) == strings.TrimSuffix(query, NoteExt) {
			return []*ItemNote{item}, nil
		}
		if strings.Contains(strings.ToLower(item.Title()), q) {
			matches = append(matches, item)
		}
	}
	return matches, nil
}

// SaveItem writes the item record back to its note.
func (l *Library) SaveItem(item *ItemNote) error {
	return l.vault.SaveRecord(item.Path, item.Record)
}

// MarkBefore sets the read flag on items published before cutoff and
// returns how many changed.
func (l *Library) MarkBefore(items []*ItemNote, cutoff time.Time, read bool) (int, error) {
	count := 0
	for _, item := range items {
		if item.Record.Read == read || !item.Record.PublishedAt().Before(cutoff) {
			continue
		}
		item.Record.Read = read
		if err := l.SaveItem(item); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// CollectionPath returns the note path of a collection.
func (l *Library) CollectionPath(name string) string {
	return path.Join(l.folder, name+NoteExt)
}

// CreateCollection writes a new collection note.
func (l *Library) CreateCollection(name string, rec *CollectionRecord) (string, error) {
	if l.vault.Exists(l.CollectionPath(name)) {
		return "", fmt.Errorf("collection %q: %w", name, ErrExists)
	}
	return l.vault.CreateNote(l.folder, name, TemplateNote, map[string]string{"content": "# " + name}, func(fm map[string]any) error {
		return MergeRecord(fm, rec)
	})
}

// Collection loads a collection by name.
func (l *Library) Collection(name string) (*CollectionRecord, error) {
	rec, err := l.vault.Record(l.CollectionPath(name))
	if err != nil {
		return nil, err
	}
	coll, ok := rec.(*CollectionRecord)
	if !ok {
		return nil, fmt.Errorf("collection %q: note has role %s", name, rec.Role())
	}
	return coll, nil
}

// CollectionItems returns the items matching a collection, newest first.
func (l *Library) CollectionItems(name string) ([]*ItemNote, error) {
	coll, err := l.Collection(name)
	if err != nil {
		return nil, err
	}
	all, err := l.AllItems()
	if err != nil {
		return nil, err
	}
	var matches []*ItemNote
	for _, item := range all {
		if coll.Matches(item.Record) {
			matches = append(matches, item)
		}
	}
	return matches, nil
}
