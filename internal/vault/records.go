// ABOUTME: Typed frontmatter records for feed dashboards, items and collections
// ABOUTME: Records are decoded once from the frontmatter map and merged back on save

package vault

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Role identifies what a note is.
type Role string

const (
	RoleFeed       Role = "rssfeed"
	RoleItem       Role = "rssitem"
	RoleCollection Role = "rsscollection"
)

// DefaultItemLimit is used when a feed has no positive itemlimit.
const DefaultItemLimit = 100

// ErrUnknownRole is returned by DecodeRecord for notes that are not records.
var ErrUnknownRole = errors.New("unknown role")

// Record is the typed frontmatter of a feednotes note. The concrete types
// are *FeedRecord, *ItemRecord and *CollectionRecord.
type Record interface {
	Role() Role
	keys() []string
}

// FeedRecord is the frontmatter of a feed dashboard note.
type FeedRecord struct {
	FeedURL      string   `yaml:"feedurl"`
	Site         string   `yaml:"site,omitempty"`
	ItemLimit    int      `yaml:"itemlimit"`
	Status       string   `yaml:"status"`
	Updated      int64    `yaml:"updated,omitempty"` // epoch millis
	Interval     int      `yaml:"interval,omitempty"`
	Tags         []string `yaml:"tags,omitempty"`
	Group        string   `yaml:"group,omitempty"`
	ETag         string   `yaml:"etag,omitempty"`
	LastModified string   `yaml:"lastmodified,omitempty"`
}

func (*FeedRecord) Role() Role { return RoleFeed }

func (*FeedRecord) keys() []string {
	return []string{"feedurl", "site", "itemlimit", "status", "updated", "interval", "tags", "group", "etag", "lastmodified"}
}

// FeedStatus returns the parsed status.
func (r *FeedRecord) FeedStatus() Status { return ParseStatus(r.Status) }

// SetStatus stores s.
func (r *FeedRecord) SetStatus(s Status) { r.Status = s.String() }

// UpdatedAt returns the last successful poll time, zero if never.
func (r *FeedRecord) UpdatedAt() time.Time {
	if r.Updated == 0 {
		return time.Time{}
	}
	return time.UnixMilli(r.Updated)
}

// ItemRecord is the frontmatter of an item note.
type ItemRecord struct {
	ID        string   `yaml:"id"`
	Author    string   `yaml:"author,omitempty"`
	Link      string   `yaml:"link,omitempty"`
	Published int64    `yaml:"published"` // epoch millis
	Feed      string   `yaml:"feed"`
	Tags      []string `yaml:"tags,omitempty"`
	Pinned    bool     `yaml:"pinned"`
	Read      bool     `yaml:"read"`
}

func (*ItemRecord) Role() Role { return RoleItem }

func (*ItemRecord) keys() []string {
	return []string{"id", "author", "link", "published", "feed", "tags", "pinned", "read"}
}

// PublishedAt returns the publish time.
func (r *ItemRecord) PublishedAt() time.Time { return time.UnixMilli(r.Published) }

// CollectionRecord is the frontmatter of a collection note: a saved filter
// over items by feed and tags.
type CollectionRecord struct {
	Feeds    []string `yaml:"feeds,omitempty"`
	AnyTags  []string `yaml:"anytags,omitempty"`
	AllTags  []string `yaml:"alltags,omitempty"`
	NoneTags []string `yaml:"nonetags,omitempty"`
}

func (*CollectionRecord) Role() Role { return RoleCollection }

func (*CollectionRecord) keys() []string {
	return []string{"feeds", "anytags", "alltags", "nonetags"}
}

// Matches reports whether an item belongs to the collection. An empty
// Feeds list matches every feed.
func (c *CollectionRecord) Matches(item *ItemRecord) bool {
	if len(c.Feeds) > 0 && !containsFold(c.Feeds, item.Feed) {
		return false
	}
	for _, t := range c.NoneTags {
		if containsFold(item.Tags, normalizeTag(t)) {
			return false
		}
	}
	for _, t := range c.AllTags {
		if !containsFold(item.Tags, normalizeTag(t)) {
			return false
		}
	}
	if len(c.AnyTags) == 0 {
		return true
	}
	for _, t := range c.AnyTags {
		if containsFold(item.Tags, normalizeTag(t)) {
			return true
		}
	}
	return false
}

func normalizeTag(t string) string {
	return strings.TrimLeft(strings.TrimSpace(t), "#")
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(normalizeTag(v), s) {
			return true
		}
	}
	return false
}

// DecodeRecord converts a frontmatter map into the record its role names,
// applying defaults and validating required fields.
func DecodeRecord(fm map[string]any) (Record, error) {
	role, _ := fm["role"].(string)

	var rec Record
	switch Role(role) {
	case RoleFeed:
		rec = &FeedRecord{}
	case RoleItem:
		rec = &ItemRecord{}
	case RoleCollection:
		rec = &CollectionRecord{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}

	data, err := yaml.Marshal(fm)
	if err != nil {
		return nil, fmt.Errorf("encode frontmatter: %w", err)
	}
	if err := yaml.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("decode %s record: %w", role, err)
	}

	switch r := rec.(type) {
	case *FeedRecord:
		if r.FeedURL == "" {
			return nil, fmt.Errorf("feed record without feedurl")
		}
		if r.ItemLimit <= 0 {
			r.ItemLimit = DefaultItemLimit
		}
	case *ItemRecord:
		if r.ID == "" {
			return nil, fmt.Errorf("item record without id")
		}
	}
	return rec, nil
}

// MergeRecord writes rec into fm, replacing every key the record owns and
// keeping keys it does not know about.
func MergeRecord(fm map[string]any, rec Record) error {
	data, err := yaml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	encoded := make(map[string]any)
	if err := yaml.Unmarshal(data, &encoded); err != nil {
		return fmt.Errorf("decode record: %w", err)
	}

	for _, k := range rec.keys() {
		delete(fm, k)
	}
	for k, v := range encoded {
		fm[k] = v
	}
	fm["role"] = string(rec.Role())
	return nil
}

// Record decodes the frontmatter of a note into its record.
func (v *Vault) Record(rel string) (Record, error) {
	fm, err := v.Frontmatter(rel)
	if err != nil {
		return nil, err
	}
	rec, err := DecodeRecord(fm)
	if err != nil {
		return nil, fmt.Errorf("note %s: %w", rel, err)
	}
	return rec, nil
}

// SaveRecord merges rec into the frontmatter of an existing note.
func (v *Vault) SaveRecord(rel string, rec Record) error {
	return v.CommitFrontmatter(rel, func(fm map[string]any) error {
		return MergeRecord(fm, rec)
	})
}
