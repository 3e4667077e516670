// ABOUTME: Tests for vault note and folder operations
// ABOUTME: Uses a temporary directory per test as the vault root

package vault

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harper/feednotes/internal/logging"
	"github.com/harper/feednotes/internal/metacache"
)

func newTestVault(t *testing.T) *Vault {
	t.Helper()
	v, err := Open(t.TempDir(), Options{Logger: logging.Discard().Logger})
	require.NoError(t, err)
	return v
}

func TestCreateNote_NeverOverwrites(t *testing.T) {
	v := newTestVault(t)
	data := map[string]string{"content": "hello"}

	first, err := v.CreateNote("Feeds/Go", "Post", TemplateNote, data, nil)
	require.NoError(t, err)
	second, err := v.CreateNote("Feeds/Go", "Post", TemplateNote, data, nil)
	require.NoError(t, err)
	third, err := v.CreateNote("Feeds/Go", "Post", TemplateNote, data, nil)
	require.NoError(t, err)

	assert.Equal(t, "Feeds/Go/Post.md", first)
	assert.Equal(t, "Feeds/Go/Post (1).md", second)
	assert.Equal(t, "Feeds/Go/Post (2).md", third)

	content, err := v.ReadNote(first)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", content)
}

func TestCreateNote_PostProcessFrontmatter(t *testing.T) {
	v := newTestVault(t)

	rel, err := v.CreateNote("", "Note", TemplateNote, map[string]string{"content": "body"}, func(fm map[string]any) error {
		fm["role"] = "custom"
		return nil
	})
	require.NoError(t, err)

	content, err := v.ReadNote(rel)
	require.NoError(t, err)
	assert.Equal(t, "---\nrole: custom\n---\nbody\n", content)
}

func TestCreateNote_KeepsBlankLinesInContent(t *testing.T) {
	v := newTestVault(t)
	code := "```\nline one\n\n\n\nline two\n```"

	rel, err := v.CreateNote("Feeds/Go", "Code", TemplateItem, map[string]string{
		"title":       "Code",
		"link":        "",
		"author":      "",
		"publishDate": "",
		"image":       "",
		"media":       "",
		"abstract":    "",
		"content":     code,
		"tags":        "",
	}, nil)
	require.NoError(t, err)

	content, err := v.ReadNote(rel)
	require.NoError(t, err)
	assert.Contains(t, content, code)
	assert.NotContains(t, content, "{{")
	assert.NotContains(t, strings.Replace(content, code, "", 1), "\n\n\n")
}

func TestCreateNote_PostProcessError(t *testing.T) {
	v := newTestVault(t)
	boom := errors.New("boom")

	_, err := v.CreateNote("", "Note", TemplateNote, nil, func(map[string]any) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, v.Exists("Note.md"), "failed create must not leave a note")
}

func TestCreateNote_UnknownTemplate(t *testing.T) {
	v := newTestVault(t)
	_, err := v.CreateNote("", "Note", "Nope", nil, nil)
	assert.ErrorIs(t, err, ErrUnknownTemplate)
}

func TestNoteLifecycle(t *testing.T) {
	v := newTestVault(t)

	require.NoError(t, v.WriteNote("a/one.md", "first"))
	require.NoError(t, v.ModifyNote("a/one.md", "second"))
	content, err := v.ReadNote("a/one.md")
	require.NoError(t, err)
	assert.Equal(t, "second", content)

	assert.ErrorIs(t, v.ModifyNote("a/missing.md", "x"), ErrNotFound)

	require.NoError(t, v.AppendNote("a/one.md", "\nthird"))
	content, _ = v.ReadNote("a/one.md")
	assert.Equal(t, "second\nthird", content)

	require.NoError(t, v.WriteNote("a/two.md", "x"))
	assert.ErrorIs(t, v.RenameNote("a/one.md", "a/two.md"), ErrExists)
	require.NoError(t, v.RenameNote("a/one.md", "b/one.md"))
	assert.False(t, v.Exists("a/one.md"))
	assert.True(t, v.Exists("b/one.md"))

	require.NoError(t, v.DeleteNote("b/one.md"))
	_, err = v.ReadNote("b/one.md")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, v.DeleteNote("b/one.md"), ErrNotFound)
}

func TestFolderOperations(t *testing.T) {
	v := newTestVault(t)

	require.NoError(t, v.WriteNote("Feeds/Go/b.md", "b"))
	require.NoError(t, v.WriteNote("Feeds/Go/a.md", "a"))
	require.NoError(t, v.EnsureFolder("Feeds/Go/sub"))
	require.NoError(t, os.WriteFile(filepath.Join(v.Root(), "Feeds", "Go", "image.png"), []byte{0}, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(v.Root(), "Feeds", "Go", ".hidden.md"), []byte{0}, 0644))

	entries, err := v.ListFolder("Feeds/Go")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, Entry{Path: "Feeds/Go/a.md", Name: "a.md"}, entries[0])
	assert.Equal(t, Entry{Path: "Feeds/Go/b.md", Name: "b.md"}, entries[1])
	assert.Equal(t, Entry{Path: "Feeds/Go/sub", Name: "sub", Folder: true}, entries[2])

	require.NoError(t, v.RenameFolder("Feeds/Go", "Feeds/Golang"))
	assert.True(t, v.Exists("Feeds/Golang/a.md"))

	require.NoError(t, v.DeleteFolder("Feeds/Golang"))
	_, err = v.ListFolder("Feeds/Golang")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPathsStayInsideVault(t *testing.T) {
	v := newTestVault(t)

	_, err := v.ReadNote("../outside.md")
	assert.ErrorIs(t, err, ErrOutsideVault)
	assert.ErrorIs(t, v.WriteNote("a/../../x.md", "x"), ErrOutsideVault)
	assert.Error(t, v.DeleteFolder(""))
}

func TestFrontmatterCacheInvalidation(t *testing.T) {
	dir := t.TempDir()
	cache, err := metacache.OpenSQLite(filepath.Join(dir, ".feednotes", "cache.db"))
	require.NoError(t, err)
	defer cache.Close()

	v, err := Open(dir, Options{Cache: cache, Logger: logging.Discard().Logger})
	require.NoError(t, err)

	require.NoError(t, v.WriteNote("n.md", "---\nread: false\n---\nbody\n"))
	fm, err := v.Frontmatter("n.md")
	require.NoError(t, err)
	assert.Equal(t, false, fm["read"])

	require.NoError(t, v.CommitFrontmatter("n.md", func(fm map[string]any) error {
		fm["read"] = true
		return nil
	}))
	fm, err = v.Frontmatter("n.md")
	require.NoError(t, err)
	assert.Equal(t, true, fm["read"])

	// external edit with a different size is picked up
	require.NoError(t, os.WriteFile(filepath.Join(dir, "n.md"), []byte("---\nread: false\nextra: 1\n---\n"), 0644))
	fm, err = v.Frontmatter("n.md")
	require.NoError(t, err)
	assert.Equal(t, false, fm["read"])
	assert.Equal(t, 1, fm["extra"])
}
