// ABOUTME: Main content extraction for full web pages
// ABOUTME: Strips boilerplate, picks the article body by selector or paragraph density

package content

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Article is the main content of a web page.
type Article struct {
	Title   string
	Content string // HTML
}

// Extractor finds the main article of an HTML document.
type Extractor interface {
	Extract(document, baseURL string) (*Article, error)
}

// DefaultMinTextLength is the least amount of text an article body must hold.
const DefaultMinTextLength = 100

const boilerplateSelector = "script, style, noscript, template, nav, header, footer, aside, form, iframe, svg, " +
	`[role="navigation"], [role="banner"], [role="contentinfo"], [aria-hidden="true"]`

var articleSelectors = []string{
	"article",
	`[itemprop="articleBody"]`,
	"main",
	`[role="main"]`,
	".post-content, .entry-content, .article-content, .article-body",
	"#content",
}

var boilerplatePattern = regexp.MustCompile(`(?i)(^|[-_ ])(ad|ads|advert|banner|cookie|comments?|menu|promo|related|share|sidebar|social|sponsor|subscribe)([-_ ]|$)`)

// ReadableExtractor is a heuristic Extractor in the spirit of readability.
type ReadableExtractor struct {
	MinTextLength int
}

// NewReadableExtractor creates a ReadableExtractor with default thresholds.
func NewReadableExtractor() *ReadableExtractor {
	return &ReadableExtractor{MinTextLength: DefaultMinTextLength}
}

// Extract implements Extractor.
func (e *ReadableExtractor) Extract(document, baseURL string) (*Article, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(document))
	if err != nil {
		return nil, err
	}

	article := &Article{Title: documentTitle(doc)}

	doc.Find(boilerplateSelector).Remove()
	doc.Find("[class], [id]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		if goquery.NodeName(s) == "body" || goquery.NodeName(s) == "html" {
			return false
		}
		class, _ := s.Attr("class")
		id, _ := s.Attr("id")
		return boilerplatePattern.MatchString(class) || boilerplatePattern.MatchString(id)
	}).Remove()

	body := e.pickBody(doc)
	if body == nil {
		return nil, ErrNoArticle
	}

	if base, err := url.Parse(baseURL); err == nil && base.Host != "" {
		resolveReferences(body, base)
	}

	content, err := body.Html()
	if err != nil {
		return nil, err
	}
	article.Content = strings.TrimSpace(content)
	return article, nil
}

func (e *ReadableExtractor) pickBody(doc *goquery.Document) *goquery.Selection {
	minLen := e.MinTextLength
	if minLen <= 0 {
		minLen = DefaultMinTextLength
	}

	for _, selector := range articleSelectors {
		candidate := doc.Find(selector).First()
		if candidate.Length() > 0 && textLength(candidate) >= minLen {
			return candidate
		}
	}

	// Score parents by the text of their paragraphs
	scores := make(map[*html.Node]int)
	var best *html.Node
	doc.Find("p").Each(func(_ int, p *goquery.Selection) {
		parent := p.Parent()
		if parent.Length() == 0 {
			return
		}
		n := parent.Nodes[0]
		scores[n] += textLength(p)
		if best == nil || scores[n] > scores[best] {
			best = n
		}
	})
	if best == nil || scores[best] < minLen {
		return nil
	}
	return goquery.NewDocumentFromNode(best).Selection
}

func documentTitle(doc *goquery.Document) string {
	if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && strings.TrimSpace(og) != "" {
		return strings.TrimSpace(og)
	}
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	return strings.TrimSpace(doc.Find("h1").First().Text())
}

func resolveReferences(sel *goquery.Selection, base *url.URL) {
	for _, attr := range []string{"href", "src"} {
		sel.Find("[" + attr + "]").Each(func(_ int, s *goquery.Selection) {
			v, _ := s.Attr(attr)
			ref, err := url.Parse(strings.TrimSpace(v))
			if err != nil || ref.IsAbs() || strings.HasPrefix(v, "#") {
				return
			}
			s.SetAttr(attr, base.ResolveReference(ref).String())
		})
	}
}

func textLength(s *goquery.Selection) int {
	return len(strings.Join(strings.Fields(s.Text()), " "))
}
