// ABOUTME: SQLite implementation of the metadata cache using modernc.org/sqlite (pure Go)
// ABOUTME: One row per note path; entries are invalidated by mtime or size mismatch

package metacache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteCache persists cache entries in a SQLite database.
type SQLiteCache struct {
	db *sql.DB
}

var _ Cache = (*SQLiteCache)(nil)

// OpenSQLite opens or creates the cache database at dbPath.
func OpenSQLite(dbPath string) (*SQLiteCache, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}
	// Feeds are polled concurrently; a single connection serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS notes (
			path TEXT PRIMARY KEY,
			mtime INTEGER NOT NULL,
			size INTEGER NOT NULL,
			frontmatter TEXT NOT NULL,
			tags TEXT NOT NULL
		);
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize cache schema: %w", err)
	}

	return &SQLiteCache{db: db}, nil
}

// Get returns the entry for path if it was stored with the same mtime and size.
func (c *SQLiteCache) Get(path string, mtime time.Time, size int64) (*Entry, bool) {
	var frontmatter, tags string
	err := c.db.QueryRow(
		`SELECT frontmatter, tags FROM notes WHERE path = ? AND mtime = ? AND size = ?`,
		path, mtime.UnixNano(), size,
	).Scan(&frontmatter, &tags)
	if err != nil {
		return nil, false
	}

	entry := &Entry{Frontmatter: frontmatter}
	if err := json.Unmarshal([]byte(tags), &entry.Tags); err != nil {
		return nil, false
	}
	return entry, true
}

// Put stores entry for path, replacing any previous row.
func (c *SQLiteCache) Put(path string, mtime time.Time, size int64, entry *Entry) error {
	if entry == nil {
		return errors.New("nil cache entry")
	}
	tags := entry.Tags
	if tags == nil {
		tags = []string{}
	}
	encoded, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}

	_, err = c.db.Exec(`
		INSERT INTO notes (path, mtime, size, frontmatter, tags) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			mtime = excluded.mtime,
			size = excluded.size,
			frontmatter = excluded.frontmatter,
			tags = excluded.tags
	`, path, mtime.UnixNano(), size, entry.Frontmatter, string(encoded))
	if err != nil {
		return fmt.Errorf("store cache entry: %w", err)
	}
	return nil
}

// Delete removes the entry for path.
func (c *SQLiteCache) Delete(path string) error {
	if _, err := c.db.Exec(`DELETE FROM notes WHERE path = ?`, path); err != nil {
		return fmt.Errorf("delete cache entry: %w", err)
	}
	return nil
}

// DeletePrefix removes every entry under the folder prefix.
func (c *SQLiteCache) DeletePrefix(prefix string) error {
	prefix = strings.TrimSuffix(prefix, "/") + "/"
	escaped := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(prefix)
	if _, err := c.db.Exec(`DELETE FROM notes WHERE path LIKE ? ESCAPE '\'`, escaped+"%"); err != nil {
		return fmt.Errorf("delete cache entries: %w", err)
	}
	return nil
}

// Close closes the database.
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}
