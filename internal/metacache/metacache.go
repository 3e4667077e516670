// ABOUTME: Metadata cache for vault notes keyed by path, modification time and size
// ABOUTME: Holds the raw frontmatter block and the hashtags of a note so unchanged notes are not re-parsed

package metacache

import "time"

// Entry is the cached metadata of one note.
type Entry struct {
	Frontmatter string   // raw YAML between the --- fences
	Tags        []string // hashtags with leading '#', one per distinct tag
}

// Cache stores Entries. Get only hits when mtime and size match what was
// stored, so a note edited outside feednotes is re-parsed.
type Cache interface {
	Get(path string, mtime time.Time, size int64) (*Entry, bool)
	Put(path string, mtime time.Time, size int64, entry *Entry) error
	Delete(path string) error
	DeletePrefix(prefix string) error
	Close() error
}

// NopCache never hits.
type NopCache struct{}

var _ Cache = NopCache{}

func (NopCache) Get(string, time.Time, int64) (*Entry, bool) { return nil, false }
func (NopCache) Put(string, time.Time, int64, *Entry) error { return nil }
func (NopCache) Delete(string) error { return nil }
func (NopCache) DeletePrefix(string) error { return nil }
func (NopCache) Close() error { return nil }
