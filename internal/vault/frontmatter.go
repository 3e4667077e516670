// ABOUTME: YAML frontmatter codec and cached frontmatter access for notes
// ABOUTME: Splits notes into frontmatter and body, renders them back and commits edits atomically

package vault

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/harper/feednotes/internal/metacache"
)

const fence = "---"

// SplitFrontmatter separates a leading "---" fenced YAML block from the
// body. Content without a complete block is all body.
func SplitFrontmatter(content string) (frontmatter, body string) {
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	if !strings.HasPrefix(normalized, fence+"\n") {
		return "", content
	}
	rest := normalized[len(fence)+1:]

	if strings.HasPrefix(rest, fence+"\n") || rest == fence {
		return "", strings.TrimPrefix(strings.TrimPrefix(rest, fence), "\n")
	}
	end := strings.Index(rest, "\n"+fence+"\n")
	if end < 0 {
		if strings.HasSuffix(rest, "\n"+fence) {
			return rest[:len(rest)-len(fence)], ""
		}
		return "", content
	}
	return rest[:end+1], rest[end+len(fence)+2:]
}

// RenderNote joins frontmatter and body. An empty map renders the body alone.
func RenderNote(fm map[string]any, body string) (string, error) {
	if len(fm) == 0 {
		return body, nil
	}
	data, err := yaml.Marshal(fm)
	if err != nil {
		return "", fmt.Errorf("encode frontmatter: %w", err)
	}
	return fence + "\n" + string(data) + fence + "\n" + body, nil
}

func decodeFrontmatter(raw string) (map[string]any, error) {
	fm := make(map[string]any)
	if strings.TrimSpace(raw) == "" {
		return fm, nil
	}
	if err := yaml.Unmarshal([]byte(raw), &fm); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoFrontmatter, err)
	}
	if fm == nil {
		fm = make(map[string]any)
	}
	return fm, nil
}

// Frontmatter returns the decoded frontmatter of a note. Notes without
// frontmatter yield an empty map.
func (v *Vault) Frontmatter(rel string) (map[string]any, error) {
	meta, err := v.metadata(rel)
	if err != nil {
		return nil, err
	}
	fm, err := decodeFrontmatter(meta.Frontmatter)
	if err != nil {
		return nil, fmt.Errorf("note %s: %w", rel, err)
	}
	return fm, nil
}

// CommitFrontmatter reads the frontmatter of a note, lets fn edit it and
// writes the note back with its body unchanged.
func (v *Vault) CommitFrontmatter(rel string, fn func(fm map[string]any) error) error {
	content, err := v.ReadNote(rel)
	if err != nil {
		return err
	}
	raw, body := SplitFrontmatter(content)
	fm, err := decodeFrontmatter(raw)
	if err != nil {
		return fmt.Errorf("note %s: %w", rel, err)
	}
	if err := fn(fm); err != nil {
		return err
	}
	updated, err := RenderNote(fm, body)
	if err != nil {
		return err
	}
	return v.WriteNote(rel, updated)
}

// metadata returns the cache entry of a note, parsing and caching it on a miss.
func (v *Vault) metadata(rel string) (*metacache.Entry, error) {
	full, err := v.abs(rel)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("note %s: %w", rel, ErrNotFound)
		}
		return nil, fmt.Errorf("stat note %s: %w", rel, err)
	}

	key := cleanRel(rel)
	if entry, ok := v.cache.Get(key, info.ModTime(), info.Size()); ok {
		return entry, nil
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("read note %s: %w", rel, err)
	}
	raw, body := SplitFrontmatter(string(data))
	fm, err := decodeFrontmatter(raw)
	if err != nil {
		v.logger.Warn("unreadable frontmatter", "path", rel, "error", err)
		fm = nil
	}
	entry := &metacache.Entry{Frontmatter: raw, Tags: extractTags(fm, body)}

	if err := v.cache.Put(key, info.ModTime(), info.Size(), entry); err != nil {
		v.logger.Warn("cache store failed", "path", rel, "error", err)
	}
	return entry, nil
}
