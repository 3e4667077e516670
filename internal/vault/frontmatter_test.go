// ABOUTME: Tests for the frontmatter codec
// ABOUTME: Covers splitting edge cases, rendering and committing edits

package vault

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitFrontmatter(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantFM   string
		wantBody string
	}{
		{name: "none", content: "# Title\n", wantBody: "# Title\n"},
		{name: "simple", content: "---\na: 1\n---\nbody\n", wantFM: "a: 1\n", wantBody: "body\n"},
		{name: "empty block", content: "---\n---\nbody", wantBody: "body"},
		{name: "no body", content: "---\na: 1\n---", wantFM: "a: 1\n"},
		{name: "crlf", content: "---\r\na: 1\r\n---\r\nbody", wantFM: "a: 1\n", wantBody: "body"},
		{name: "unterminated", content: "---\na: 1\nbody", wantBody: "---\na: 1\nbody"},
		{name: "rule in body", content: "---\na: 1\n---\ntext\n---\nmore", wantFM: "a: 1\n", wantBody: "text\n---\nmore"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fm, body := SplitFrontmatter(tt.content)
			assert.Equal(t, tt.wantFM, fm)
			assert.Equal(t, tt.wantBody, body)
		})
	}
}

func TestRenderNoteRoundTrip(t *testing.T) {
	content, err := RenderNote(map[string]any{"role": "rssitem", "pinned": true}, "# Hi\n")
	require.NoError(t, err)
	assert.Equal(t, "---\npinned: true\nrole: rssitem\n---\n# Hi\n", content)

	fm, body := SplitFrontmatter(content)
	decoded, err := decodeFrontmatter(fm)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"role": "rssitem", "pinned": true}, decoded)
	assert.Equal(t, "# Hi\n", body)

	plain, err := RenderNote(nil, "body")
	require.NoError(t, err)
	assert.Equal(t, "body", plain)
}

func TestCommitFrontmatter_KeepsBody(t *testing.T) {
	v := newTestVault(t)
	require.NoError(t, v.WriteNote("n.md", "plain body\n"))

	require.NoError(t, v.CommitFrontmatter("n.md", func(fm map[string]any) error {
		fm["pinned"] = true
		return nil
	}))

	content, err := v.ReadNote("n.md")
	require.NoError(t, err)
	assert.Equal(t, "---\npinned: true\n---\nplain body\n", content)
}

func TestFrontmatter_Invalid(t *testing.T) {
	v := newTestVault(t)
	require.NoError(t, v.WriteNote("bad.md", "---\nkey: [unclosed\n---\nbody"))

	_, err := v.Frontmatter("bad.md")
	assert.ErrorIs(t, err, ErrNoFrontmatter)
}
