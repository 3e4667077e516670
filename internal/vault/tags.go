// ABOUTME: Hashtag extraction from note bodies and frontmatter, and vault-wide tag usage counts
// ABOUTME: Counts are per note: a tag used several times in one note counts once

package vault

import (
	"io/fs"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/harper/feednotes/internal/models"
)

// hashtagPattern matches Obsidian style tags: '#' after start of line or
// whitespace, followed by letters, digits, '_', '-', '/' or one of the
// lookalikes that category tags are normalized with.
var hashtagPattern = regexp.MustCompile(`(?:^|[\s(])#([\p{L}\p{N}_\-/` + regexp.QuoteMeta(models.TagLookalikes()) + `]+)`)

var digitsOnly = regexp.MustCompile(`^[0-9/]+$`)

// extractTags returns the distinct hashtags of a note with a leading '#'.
// Fenced code blocks are ignored.
func extractTags(fm map[string]any, body string) []string {
	seen := make(map[string]bool)
	var tags []string
	add := func(tag string) {
		tag = strings.TrimRight(strings.TrimLeft(strings.TrimSpace(tag), "#"), "/")
		if tag == "" || digitsOnly.MatchString(tag) {
			return
		}
		tag = "#" + tag
		if !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag)
		}
	}

	switch v := fm["tags"].(type) {
	case string:
		for _, t := range strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ' ' }) {
			add(t)
		}
	case []any:
		for _, t := range v {
			if s, ok := t.(string); ok {
				add(s)
			}
		}
	}

	inFence := false
	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		for _, m := range hashtagPattern.FindAllStringSubmatch(line, -1) {
			add(m[1])
		}
	}
	return tags
}

// TagCounts returns, for every hashtag in the vault, the number of notes
// using it in their body or frontmatter tags. Hidden folders are skipped.
func (v *Vault) TagCounts() (map[string]int, error) {
	counts := make(map[string]int)
	err := filepath.WalkDir(v.root, func(full string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if full != v.root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), NoteExt) {
			return nil
		}
		rel, err := filepath.Rel(v.root, full)
		if err != nil {
			return err
		}
		meta, err := v.metadata(filepath.ToSlash(rel))
		if err != nil {
			v.logger.Warn("skipping note in tag scan", "path", rel, "error", err)
			return nil
		}
		for _, tag := range meta.Tags {
			counts[tag]++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}
