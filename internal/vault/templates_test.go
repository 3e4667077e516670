// ABOUTME: Tests for template loading and token expansion
// ABOUTME: Checks built-ins, directory overrides and literal unknown tokens

package vault

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandTemplate(t *testing.T) {
	text := "# {{title}}\nby {{ author }} {{unknown}} {{title}}"
	got := ExpandTemplate(text, map[string]string{"title": "Hello", "author": "Ann"})
	assert.Equal(t, "# Hello\nby Ann {{unknown}} Hello", got)
}

func TestExpandNote_CollapsesEmptyValues(t *testing.T) {
	text := "# {{title}}\n\n{{image}}\n\n{{abstract}}\n\n{{content}}\n"
	got := expandNote(text, map[string]string{"title": "Hello", "image": "", "abstract": " \n", "content": "body"})
	assert.Equal(t, "# Hello\n\nbody\n", got)
}

func TestExpandNote_KeepsValueBlankLines(t *testing.T) {
	code := "```go\nfunc a() {}\n\n\n\nfunc b() {}\n```"
	got := expandNote("# {{title}}\n\n{{image}}\n\n{{content}}\n", map[string]string{"title": "T", "image": "", "content": code})
	assert.Equal(t, "# T\n\n"+code+"\n", got)
}

func TestTemplates_Load(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, TemplateItem+".md"), []byte("custom {{title}}"), 0644))

	templates := NewTemplates(dir)

	item, err := templates.Load(TemplateItem)
	require.NoError(t, err)
	assert.Equal(t, "custom {{title}}", item)

	feed, err := templates.Load(TemplateFeed)
	require.NoError(t, err)
	assert.Contains(t, feed, "{{feedName}}")

	_, err = templates.Load("missing")
	assert.ErrorIs(t, err, ErrUnknownTemplate)

	builtin, err := NewTemplates("").Load(TemplateItem)
	require.NoError(t, err)
	assert.Contains(t, builtin, "{{content}}")
}
