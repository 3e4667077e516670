// ABOUTME: Tag mapper that namespaces feed categories into a private hashtag domain
// ABOUTME: Keeps a Markdown table note of domain tags and their mappings, appending new and pruning unused rows

package tags

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"github.com/harper/feednotes/internal/vault"
)

// Store is the part of the vault the mapper needs.
type Store interface {
	ReadNote(path string) (string, error)
	WriteNote(path, content string) error
	AppendNote(path, text string) error
	TagCounts() (map[string]int, error)
}

const (
	noteTitle   = "# Tag map\n\n"
	tableHeader = "| Feed tag | Mapped tag |\n|---|---|\n"
)

var separatorCell = regexp.MustCompile(`^:?-+:?$`)

// Result summarizes one UpdateTagMap pass.
type Result struct {
	Added     int
	Pruned    int
	Malformed int
}

// Mapper maps raw feed categories to hashtags. It is safe for concurrent use.
type Mapper struct {
	mu       sync.Mutex
	store    Store
	notePath string
	prefix   string
	logger   *slog.Logger

	loaded  bool
	mapping map[string]string // domain tag without '#' -> mapped hashtag
	order   []string
	pending []string
	known   map[string]bool // lowercased hashtags in use in the vault
}

// NewMapper creates a Mapper persisting its table in notePath. Domain tags
// are "<prefix>/<tag>".
func NewMapper(store Store, notePath, prefix string, logger *slog.Logger) *Mapper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mapper{
		store:    store,
		notePath: notePath,
		prefix:   strings.Trim(prefix, "#/"),
		logger:   logger,
		mapping:  make(map[string]string),
		known:    make(map[string]bool),
	}
}

// MapHashtag returns the hashtag to write for a raw category. Tags the
// vault already uses pass through unchanged. Anything else becomes a domain
// tag, recorded as a pending identity mapping on first sight.
func (m *Mapper) MapHashtag(raw string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.loaded {
		if err := m.load(); err != nil {
			m.logger.Warn("tag map unavailable", "path", m.notePath, "error", err)
		}
	}

	tag := strings.TrimLeft(strings.TrimSpace(raw), "#")
	if tag == "" {
		return ""
	}
	if m.known[strings.ToLower("#"+tag)] {
		return "#" + tag
	}

	domain := m.prefix + "/" + tag
	if mapped, ok := m.mapping[domain]; ok {
		return mapped
	}
	mapped := "#" + domain
	m.mapping[domain] = mapped
	m.order = append(m.order, domain)
	m.pending = append(m.pending, domain)
	return mapped
}

// Pending returns the domain tags waiting to be written.
func (m *Mapper) Pending() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.pending...)
}

// Load reads the table and the vault tag usage.
func (m *Mapper) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load()
}

func (m *Mapper) load() error {
	content, _, err := m.readNote()
	if err != nil {
		return err
	}
	rows, malformed, _ := parseTable(content)
	if malformed > 0 {
		m.logger.Warn("skipped malformed tag map rows", "path", m.notePath, "count", malformed)
	}
	m.mapping, m.order = rowsToMap(rows)
	for _, d := range m.pending {
		if _, ok := m.mapping[d]; !ok {
			m.mapping[d] = "#" + d
			m.order = append(m.order, d)
		}
	}

	counts, err := m.store.TagCounts()
	if err != nil {
		return fmt.Errorf("load tag counts: %w", err)
	}
	m.setKnown(counts)
	m.loaded = true
	return nil
}

// UpdateTagMap reloads the table, appends pending mappings in one write and
// prunes identity mappings whose domain tag is used by one note only (the
// tag map itself). Pruning rewrites the whole table.
func (m *Mapper) UpdateTagMap() (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var res Result
	content, exists, err := m.readNote()
	if err != nil {
		return res, err
	}
	rows, malformed, hasHeader := parseTable(content)
	res.Malformed = malformed
	if malformed > 0 {
		m.logger.Warn("skipped malformed tag map rows", "path", m.notePath, "count", malformed)
	}
	table, order := rowsToMap(rows)

	var added []string
	for _, d := range m.pending {
		if _, ok := table[d]; ok {
			continue
		}
		mapped := m.mapping[d]
		if mapped == "" {
			mapped = "#" + d
		}
		table[d] = mapped
		order = append(order, d)
		added = append(added, d)
	}

	if len(added) > 0 {
		var b strings.Builder
		switch {
		case !exists || strings.TrimSpace(content) == "":
			b.WriteString(noteTitle + tableHeader)
		case !hasHeader:
			if !strings.HasSuffix(content, "\n") {
				b.WriteString("\n")
			}
			b.WriteString("\n" + tableHeader)
		case !strings.HasSuffix(content, "\n"):
			b.WriteString("\n")
		}
		for _, d := range added {
			b.WriteString(formatRow(d, table[d]))
		}
		if err := m.store.AppendNote(m.notePath, b.String()); err != nil {
			return res, fmt.Errorf("append tag map: %w", err)
		}
		res.Added = len(added)
	}
	m.pending = nil

	counts, err := m.store.TagCounts()
	if err != nil {
		return res, fmt.Errorf("load tag counts: %w", err)
	}
	m.setKnown(counts)

	survivors := order[:0]
	for _, d := range order {
		if table[d] == "#"+d && counts["#"+d] == 1 {
			delete(table, d)
			res.Pruned++
			continue
		}
		survivors = append(survivors, d)
	}

	if res.Pruned > 0 {
		var b strings.Builder
		b.WriteString(noteTitle + tableHeader)
		for _, d := range survivors {
			b.WriteString(formatRow(d, table[d]))
		}
		if err := m.store.WriteNote(m.notePath, b.String()); err != nil {
			return res, fmt.Errorf("rewrite tag map: %w", err)
		}
	}

	m.mapping = table
	m.order = survivors
	m.loaded = true
	m.logger.Debug("tag map updated", "added", res.Added, "pruned", res.Pruned)
	return res, nil
}

func (m *Mapper) readNote() (content string, exists bool, err error) {
	content, err = m.store.ReadNote(m.notePath)
	if errors.Is(err, vault.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read tag map: %w", err)
	}
	return content, true, nil
}

func (m *Mapper) setKnown(counts map[string]int) {
	m.known = make(map[string]bool, len(counts))
	for tag := range counts {
		m.known[strings.ToLower(tag)] = true
	}
}

type row struct {
	domain string
	mapped string
}

// parseTable reads "| domain | #mapped |" rows. Header and separator rows
// are skipped; other rows that are not two non-empty cells with a hashtag
// in the second are counted as malformed.
func parseTable(content string) (rows []row, malformed int, hasHeader bool) {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "|") {
			continue
		}
		cells := strings.Split(strings.Trim(line, "|"), "|")
		for i := range cells {
			cells[i] = strings.TrimSpace(cells[i])
		}

		if isSeparator(cells) {
			hasHeader = true
			continue
		}
		if len(cells) == 2 && strings.EqualFold(cells[0], "Feed tag") {
			continue
		}
		if len(cells) != 2 || cells[0] == "" || !strings.HasPrefix(cells[1], "#") || len(cells[1]) == 1 {
			malformed++
			continue
		}
		rows = append(rows, row{domain: strings.TrimLeft(cells[0], "#"), mapped: cells[1]})
	}
	return rows, malformed, hasHeader
}

func isSeparator(cells []string) bool {
	for _, c := range cells {
		if !separatorCell.MatchString(c) {
			return false
		}
	}
	return len(cells) > 0
}

func rowsToMap(rows []row) (map[string]string, []string) {
	table := make(map[string]string, len(rows))
	order := make([]string, 0, len(rows))
	for _, r := range rows {
		if _, dup := table[r.domain]; dup {
			continue
		}
		table[r.domain] = r.mapped
		order = append(order, r.domain)
	}
	return table, order
}

func formatRow(domain, mapped string) string {
	return "| " + domain + " | " + mapped + " |\n"
}
