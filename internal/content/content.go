// ABOUTME: HTML to Markdown translator built on the sanitizer pipeline
// ABOUTME: Skips content that already looks like Markdown and renders articles with a title heading

package content

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
)

// EmptyArticlePlaceholder is emitted when an extracted article has no content.
const EmptyArticlePlaceholder = "(no content)"

const defaultArticleTitle = "Untitled article"

// ErrNoArticle is returned when no article body could be found in a document.
var ErrNoArticle = errors.New("no article content found")

var (
	fencePattern   = regexp.MustCompile("```")
	headingPattern = regexp.MustCompile(`(?m)^#{1,6}\s+\S`)
	linkPattern    = regexp.MustCompile(`\[[^\]\n]+\]\([^)\s]+\)`)
)

// Translator converts HTML fragments and documents to Markdown.
type Translator struct {
	extractor Extractor
}

// NewTranslator creates a Translator. A nil extractor uses the default
// ReadableExtractor.
func NewTranslator(extractor Extractor) *Translator {
	if extractor == nil {
		extractor = NewReadableExtractor()
	}
	return &Translator{extractor: extractor}
}

// LooksLikeMarkdown guesses whether content is already Markdown. It is a
// heuristic and may misclassify.
func LooksLikeMarkdown(content string) bool {
	if strings.HasPrefix(content, "<") {
		return false
	}
	return fencePattern.MatchString(content) ||
		headingPattern.MatchString(content) ||
		linkPattern.MatchString(content)
}

// FragmentAsMarkdown converts an HTML fragment to Markdown. Content that
// already looks like Markdown is returned unchanged.
func (t *Translator) FragmentAsMarkdown(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	if LooksLikeMarkdown(fragment) {
		return fragment
	}
	markdown, err := t.htmlToMarkdown(fragment)
	if err != nil {
		// If conversion fails, return original content
		return fragment
	}
	return markdown
}

// ArticleAsMarkdown extracts the main article of an HTML document and
// renders it as Markdown under a "# title" heading. It returns ErrNoArticle
// when the extractor finds no article body.
func (t *Translator) ArticleAsMarkdown(document, baseURL string) (string, error) {
	article, err := t.extractor.Extract(document, baseURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoArticle, err)
	}
	if article == nil {
		return "", ErrNoArticle
	}

	title := strings.Join(strings.Fields(article.Title), " ")
	if title == "" {
		title = defaultArticleTitle
	}

	body, err := t.htmlToMarkdown(article.Content)
	if err != nil {
		return "", fmt.Errorf("convert article: %w", err)
	}
	if body == "" {
		body = EmptyArticlePlaceholder
	}

	return "# " + title + "\n\n" + body, nil
}

// SanitizeHTML parses fragment, runs the sanitizer pipeline and returns the
// resulting body HTML.
func SanitizeHTML(fragment string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	body := doc.Find("body")
	if body.Length() == 0 {
		return "", nil
	}
	Sanitize(body.Nodes[0])
	return body.Html()
}

func (t *Translator) htmlToMarkdown(fragment string) (string, error) {
	sanitized, err := SanitizeHTML(fragment)
	if err != nil {
		return "", err
	}
	markdown, err := htmltomarkdown.ConvertString(sanitized)
	if err != nil {
		return "", fmt.Errorf("convert to markdown: %w", err)
	}
	return strings.TrimSpace(markdown), nil
}
