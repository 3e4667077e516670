// ABOUTME: File-backed vault of Markdown notes addressed by vault-relative slash paths
// ABOUTME: Provides note and folder operations with atomic writes and metadata cache invalidation

package vault

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/harper/feednotes/internal/metacache"
)

// NoteExt is the file extension of notes.
const NoteExt = ".md"

// Errors returned by vault operations.
var (
	ErrNotFound      = errors.New("not found")
	ErrExists        = errors.New("already exists")
	ErrOutsideVault  = errors.New("path escapes vault")
	ErrNoFrontmatter = errors.New("invalid frontmatter")
)

// Options configures a Vault.
type Options struct {
	Cache       metacache.Cache // nil disables caching
	TemplateDir string          // optional directory of user templates
	Logger      *slog.Logger
}

// Vault is a directory of notes.
type Vault struct {
	root      string
	cache     metacache.Cache
	templates *Templates
	logger    *slog.Logger
}

// Entry is one child of a folder.
type Entry struct {
	Path   string
	Name   string
	Folder bool
}

// Open returns a Vault rooted at root, creating the directory if needed.
func Open(root string, opts Options) (*Vault, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("create vault directory: %w", err)
	}
	if opts.Cache == nil {
		opts.Cache = metacache.NopCache{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Vault{
		root:      filepath.Clean(root),
		cache:     opts.Cache,
		templates: NewTemplates(opts.TemplateDir),
		logger:    opts.Logger,
	}, nil
}

// Root returns the vault directory.
func (v *Vault) Root() string {
	return v.root
}

// abs maps a vault-relative path to a filesystem path.
func (v *Vault) abs(rel string) (string, error) {
	clean := cleanRel(rel)
	if clean == ".." || strings.HasPrefix(clean, "../") || path.IsAbs(clean) {
		return "", fmt.Errorf("%w: %s", ErrOutsideVault, rel)
	}
	return filepath.Join(v.root, filepath.FromSlash(clean)), nil
}

// Exists reports whether a note or folder exists at rel.
func (v *Vault) Exists(rel string) bool {
	full, err := v.abs(rel)
	if err != nil {
		return false
	}
	_, err = os.Stat(full)
	return err == nil
}

// EnsureFolder creates folder and its parents.
func (v *Vault) EnsureFolder(folder string) error {
	full, err := v.abs(folder)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(full, 0755); err != nil {
		return fmt.Errorf("create folder %s: %w", folder, err)
	}
	return nil
}

// CreateNote expands templateName with data and writes it as a new note in
// folder. postProcess may edit the frontmatter before the note is written.
// An existing note is never overwritten: "name.md" becomes "name (1).md",
// "name (2).md" and so on. The created path is returned.
func (v *Vault) CreateNote(folder, baseName, templateName string, data map[string]string, postProcess func(fm map[string]any) error) (string, error) {
	text, err := v.templates.Load(templateName)
	if err != nil {
		return "", err
	}
	expanded := expandNote(text, data)

	raw, body := SplitFrontmatter(expanded)
	fm, err := decodeFrontmatter(raw)
	if err != nil {
		return "", fmt.Errorf("template %q: %w", templateName, err)
	}
	if postProcess != nil {
		if err := postProcess(fm); err != nil {
			return "", err
		}
	}
	content, err := RenderNote(fm, body)
	if err != nil {
		return "", err
	}

	if err := v.EnsureFolder(folder); err != nil {
		return "", err
	}
	for n := 0; ; n++ {
		name := baseName
		if n > 0 {
			name = fmt.Sprintf("%s (%d)", baseName, n)
		}
		rel := path.Join(folder, name+NoteExt)
		full, err := v.abs(rel)
		if err != nil {
			return "", err
		}
		f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create note %s: %w", rel, err)
		}
		_, werr := f.WriteString(content)
		if cerr := f.Close(); werr == nil {
			werr = cerr
		}
		if werr != nil {
			os.Remove(full)
			return "", fmt.Errorf("write note %s: %w", rel, werr)
		}
		return rel, nil
	}
}

// ReadNote returns the content of a note.
func (v *Vault) ReadNote(rel string) (string, error) {
	full, err := v.abs(rel)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("note %s: %w", rel, ErrNotFound)
		}
		return "", fmt.Errorf("read note %s: %w", rel, err)
	}
	return string(data), nil
}

// ModifyNote replaces the content of an existing note.
func (v *Vault) ModifyNote(rel, content string) error {
	if !v.Exists(rel) {
		return fmt.Errorf("note %s: %w", rel, ErrNotFound)
	}
	return v.WriteNote(rel, content)
}

// WriteNote creates or replaces a note atomically.
func (v *Vault) WriteNote(rel, content string) error {
	full, err := v.abs(rel)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return fmt.Errorf("create folder for %s: %w", rel, err)
	}
	if err := atomic.WriteFile(full, strings.NewReader(content)); err != nil {
		return fmt.Errorf("write note %s: %w", rel, err)
	}
	v.invalidate(rel)
	return nil
}

// AppendNote appends text to a note, creating it if needed.
func (v *Vault) AppendNote(rel, text string) error {
	full, err := v.abs(rel)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return fmt.Errorf("create folder for %s: %w", rel, err)
	}
	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open note %s: %w", rel, err)
	}
	_, werr := f.WriteString(text)
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return fmt.Errorf("append note %s: %w", rel, werr)
	}
	v.invalidate(rel)
	return nil
}

// DeleteNote removes a note.
func (v *Vault) DeleteNote(rel string) error {
	full, err := v.abs(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("note %s: %w", rel, ErrNotFound)
		}
		return fmt.Errorf("delete note %s: %w", rel, err)
	}
	v.invalidate(rel)
	return nil
}

// DeleteFolder removes a folder and everything below it.
func (v *Vault) DeleteFolder(folder string) error {
	full, err := v.abs(folder)
	if err != nil {
		return err
	}
	if full == v.root {
		return fmt.Errorf("refusing to delete vault root")
	}
	if !v.Exists(folder) {
		return fmt.Errorf("folder %s: %w", folder, ErrNotFound)
	}
	if err := os.RemoveAll(full); err != nil {
		return fmt.Errorf("delete folder %s: %w", folder, err)
	}
	v.invalidateFolder(folder)
	return nil
}

// RenameNote moves a note. The target must not exist.
func (v *Vault) RenameNote(from, to string) error {
	if err := v.rename(from, to); err != nil {
		return err
	}
	v.invalidate(from)
	return nil
}

// RenameFolder moves a folder. The target must not exist.
func (v *Vault) RenameFolder(from, to string) error {
	if err := v.rename(from, to); err != nil {
		return err
	}
	v.invalidateFolder(from)
	return nil
}

func (v *Vault) rename(from, to string) error {
	src, err := v.abs(from)
	if err != nil {
		return err
	}
	dst, err := v.abs(to)
	if err != nil {
		return err
	}
	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("%s: %w", from, ErrNotFound)
	}
	if _, err := os.Stat(dst); err == nil {
		return fmt.Errorf("%s: %w", to, ErrExists)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("create folder for %s: %w", to, err)
	}
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("rename %s to %s: %w", from, to, err)
	}
	return nil
}

// ListFolder returns the children of folder sorted by name. Hidden entries
// are skipped.
func (v *Vault) ListFolder(folder string) ([]Entry, error) {
	full, err := v.abs(folder)
	if err != nil {
		return nil, err
	}
	dirEntries, err := os.ReadDir(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("folder %s: %w", folder, ErrNotFound)
		}
		return nil, fmt.Errorf("list folder %s: %w", folder, err)
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if strings.HasPrefix(de.Name(), ".") {
			continue
		}
		if !de.IsDir() && !strings.HasSuffix(de.Name(), NoteExt) {
			continue
		}
		entries = append(entries, Entry{
			Path:   path.Join(folder, de.Name()),
			Name:   de.Name(),
			Folder: de.IsDir(),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// NoteTitle returns the base name of a note path without extension.
func NoteTitle(rel string) string {
	return strings.TrimSuffix(path.Base(rel), NoteExt)
}

func (v *Vault) invalidate(rel string) {
	if err := v.cache.Delete(cleanRel(rel)); err != nil {
		v.logger.Warn("cache invalidation failed", "path", rel, "error", err)
	}
}

func (v *Vault) invalidateFolder(folder string) {
	if err := v.cache.DeletePrefix(cleanRel(folder)); err != nil {
		v.logger.Warn("cache invalidation failed", "folder", folder, "error", err)
	}
}

func cleanRel(rel string) string {
	return path.Clean(filepath.ToSlash(rel))
}
