// ABOUTME: TrackedItem model representing a single article of a feed
// ABOUTME: Derives the on-disk note name from the decoded item title

package models

import (
	"html"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxFileNameLength caps the rune length of a generated note name, excluding the ellipsis.
const MaxFileNameLength = 80

// TrackedItem is one normalized feed entry.
type TrackedItem struct {
	ID          string // explicit id/guid, falling back to the link
	Title       string
	Link        string
	Published   time.Time
	Author      string
	Tags        []string
	Description string
	Content     string
	Image       *Image
	Media       []Media
}

// PublishedISO returns the publish time as an ISO-8601 timestamp.
func (i *TrackedItem) PublishedISO() string {
	return i.Published.UTC().Format(time.RFC3339)
}

// FileName returns a filesystem-safe note name derived from the title.
func (i *TrackedItem) FileName() string {
	return SafeFileName(html.UnescapeString(i.Title))
}

// SafeFileName replaces characters that are hostile to file systems and
// wiki links with lookalikes and caps the result at MaxFileNameLength runes.
func SafeFileName(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	name = fileNameReplacer.Replace(name)
	if utf8.RuneCountInString(name) > MaxFileNameLength {
		runes := []rune(name)
		name = strings.TrimSpace(string(runes[:MaxFileNameLength])) + "…"
	}
	if name == "" {
		return "Untitled"
	}
	return name
}
