// ABOUTME: Tests for hashtag extraction and vault tag counts
// ABOUTME: Verifies per-note counting, frontmatter tags and ignored contexts

package vault

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harper/feednotes/internal/models"
)

func TestExtractTags(t *testing.T) {
	body := "# Heading\n\nText #go and #rss/go again #go.\n" +
		"Link https://example.com/#anchor and issue #123\n" +
		"```\n#notatag\n```\n" +
		"(#paren) end"
	fm := map[string]any{"tags": []any{"rss/go", "#fm-tag"}}

	tags := extractTags(fm, body)
	assert.Equal(t, []string{"#rss/go", "#fm-tag", "#go", "#paren"}, tags)
}

func TestExtractTags_StringFrontmatter(t *testing.T) {
	tags := extractTags(map[string]any{"tags": "one, two three"}, "")
	assert.Equal(t, []string{"#one", "#two", "#three"}, tags)
}

func TestExtractTags_Lookalikes(t *testing.T) {
	body := "Read #rss/node․js and #rss/what❓ with #rss/c＃ and #rss/r＆d or #rss/don’t."
	assert.Equal(t, []string{"#rss/node․js", "#rss/what❓", "#rss/c＃", "#rss/r＆d", "#rss/don’t"}, extractTags(nil, body))

	for _, category := range []string{"node.js", "what?", "c#", "r&d", "don't", "a:b", "x|y", "<z>", "2^n", `a\b`} {
		tag := "#" + models.SafeTag(category)
		assert.Equal(t, []string{tag}, extractTags(nil, "see "+tag+" here"), category)
	}
}

func TestTagCounts(t *testing.T) {
	v := newTestVault(t)

	require.NoError(t, v.WriteNote("Feeds/tagmap.md", "| rss/golang | #rss/golang |\n| rss/solo | #rss/solo |\n"))
	require.NoError(t, v.WriteNote("Feeds/Go/a.md", "---\ntags:\n  - rss/golang\n---\n#rss/golang #rss/golang #personal\n"))
	require.NoError(t, v.WriteNote("Journal/today.md", "met #personal friends"))
	require.NoError(t, v.WriteNote(".feednotes/ignored.md", "#hidden"))

	counts, err := v.TagCounts()
	require.NoError(t, err)

	assert.Equal(t, 2, counts["#rss/golang"])
	assert.Equal(t, 1, counts["#rss/solo"])
	assert.Equal(t, 2, counts["#personal"])
	assert.NotContains(t, counts, "#hidden")
}
