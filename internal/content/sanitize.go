// ABOUTME: HTML sanitizer stages that make article HTML safe for Markdown conversion
// ABOUTME: Each stage is an idempotent in-place transformation of an html.Node tree

package content

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Stage transforms a tree in place and returns its root.
type Stage func(root *html.Node) *html.Node

// Pipeline is the fixed stage order used by Sanitize.
var Pipeline = []Stage{
	FixImagesWithoutSrc,
	CleanupAttributes,
	CleanupCodeBlock,
	DetectCode,
	CleanupFakeCode,
	InjectCodeBlock,
	FlattenTables,
	TransformText,
}

// Sanitize runs every stage of Pipeline over root.
func Sanitize(root *html.Node) *html.Node {
	for _, stage := range Pipeline {
		root = stage(root)
	}
	return root
}

// FixImagesWithoutSrc gives <img> elements inside a <picture> that lack a src
// the first candidate URL of a sibling <source srcset>.
func FixImagesWithoutSrc(root *html.Node) *html.Node {
	goquery.NewDocumentFromNode(root).Find("picture img").Each(func(_ int, img *goquery.Selection) {
		if src, _ := img.Attr("src"); strings.TrimSpace(src) != "" {
			return
		}
		srcset, ok := img.Closest("picture").Find("source[srcset]").First().Attr("srcset")
		if !ok {
			return
		}
		if candidate := firstSrcsetURL(srcset); candidate != "" {
			img.SetAttr("src", candidate)
		}
	})
	return root
}

// firstSrcsetURL returns the URL token of the first srcset candidate,
// dropping width and density descriptors.
func firstSrcsetURL(srcset string) string {
	fields := strings.Fields(srcset)
	if len(fields) == 0 {
		return ""
	}
	return strings.TrimSuffix(fields[0], ",")
}

var attrNamePattern = regexp.MustCompile(`^[A-Za-z_-]*$`)

// CleanupAttributes drops attributes with unusual names and syntax
// highlighter classes.
func CleanupAttributes(root *html.Node) *html.Node {
	walkElements(root, func(n *html.Node) {
		kept := n.Attr[:0]
		for _, a := range n.Attr {
			if !attrNamePattern.MatchString(a.Key) {
				continue
			}
			if a.Key == "class" && strings.Contains(a.Val, "highlight") {
				continue
			}
			kept = append(kept, a)
		}
		n.Attr = kept
	})
	return root
}

// CleanupCodeBlock reduces every real <code> element to its plain text with
// line breaks preserved. A <pre> holding nothing but the code is collapsed
// to contain only that <code>.
func CleanupCodeBlock(root *html.Node) *html.Node {
	goquery.NewDocumentFromNode(root).Find("code").Each(func(_ int, code *goquery.Selection) {
		if isFakeCode(code) || !attached(code.Nodes[0], root) {
			return
		}
		expandLineBreaks(code)
		text := code.Text()
		setText(code.Nodes[0], text)

		parent := code.Parent()
		if parent.Length() == 0 || goquery.NodeName(parent) != "pre" {
			return
		}
		expandLineBreaks(parent)
		if len(parent.Text()) == len(text) {
			pre := parent.Nodes[0]
			node := code.Nodes[0]
			for c := pre.FirstChild; c != nil; {
				next := c.NextSibling
				if c != node {
					pre.RemoveChild(c)
				}
				c = next
			}
		}
	})
	return root
}

// DetectCode wraps elements flagged as code by data-syntax-language or a
// "code" class in a <pre><code> block unless they already are one.
func DetectCode(root *html.Node) *html.Node {
	doc := goquery.NewDocumentFromNode(root)
	doc.Find(`[data-syntax-language], [class*="code"]`).Each(func(_ int, sel *goquery.Selection) {
		if !attached(sel.Nodes[0], root) {
			return
		}
		lang, hasLang := sel.Attr("data-syntax-language")
		lang = strings.TrimSpace(lang)

		switch goquery.NodeName(sel) {
		case "pre":
			// injectCodeBlock picks the language up from the class
			if hasLang && lang != "" && sel.ChildrenFiltered("code").Length() == 0 {
				sel.AddClass("language-" + lang)
			}
			return
		case "code":
			if !hasLang || sel.ParentFiltered("pre").Length() > 0 {
				return
			}
		}

		if sel.Closest("pre").Length() > 0 || sel.Find("pre").Length() > 0 {
			return
		}

		expandLineBreaks(sel)
		code := newElement(atom.Code)
		if hasLang && lang != "" {
			code.Attr = []html.Attribute{{Key: "class", Val: "language-" + lang}}
		}
		code.AppendChild(&html.Node{Type: html.TextNode, Data: sel.Text()})
		pre := newElement(atom.Pre)
		pre.AppendChild(code)

		// Table cells keep their element so flattenTables still finds them.
		if name := goquery.NodeName(sel); name == "td" || name == "th" {
			removeChildren(sel.Nodes[0])
			sel.Nodes[0].AppendChild(pre)
			return
		}
		sel.ReplaceWithNodes(pre)
	})
	return root
}

// CleanupFakeCode turns <code> elements that contain <code> or <pre> into
// <div> elements, keeping their children.
func CleanupFakeCode(root *html.Node) *html.Node {
	goquery.NewDocumentFromNode(root).Find("code").Each(func(_ int, code *goquery.Selection) {
		if !isFakeCode(code) {
			return
		}
		n := code.Nodes[0]
		n.Data = "div"
		n.DataAtom = atom.Div
	})
	return root
}

// InjectCodeBlock gives every <pre> without a <code> child a synthesized
// <code> holding the pre's text. The pre's language class moves to the code.
func InjectCodeBlock(root *html.Node) *html.Node {
	goquery.NewDocumentFromNode(root).Find("pre").Each(func(_ int, pre *goquery.Selection) {
		if pre.ChildrenFiltered("code").Length() > 0 {
			return
		}

		lang := "language-undefined"
		class, _ := pre.Attr("class")
		for _, c := range strings.Fields(class) {
			if strings.HasPrefix(c, "language-") {
				lang = c
				break
			}
		}

		expandLineBreaks(pre)
		code := newElement(atom.Code)
		code.Attr = []html.Attribute{{Key: "class", Val: lang}}
		code.AppendChild(&html.Node{Type: html.TextNode, Data: pre.Text()})

		n := pre.Nodes[0]
		removeChildren(n)
		n.AppendChild(code)
		pre.RemoveAttr("class")
	})
	return root
}

// FlattenTables replaces single-row tables by one <section> per cell,
// inserted where the table was. Tables with zero or several rows are kept.
func FlattenTables(root *html.Node) *html.Node {
	goquery.NewDocumentFromNode(root).Find("table").Each(func(_ int, table *goquery.Selection) {
		if !attached(table.Nodes[0], root) {
			return
		}
		rows := table.Find("tr").FilterFunction(func(_ int, tr *goquery.Selection) bool {
			return tr.Closest("table").IsSelection(table)
		})
		if rows.Length() != 1 {
			return
		}

		var sections []*html.Node
		rows.ChildrenFiltered("td, th").Each(func(_ int, cell *goquery.Selection) {
			section := newElement(atom.Section)
			moveChildren(cell.Nodes[0], section)
			sections = append(sections, section)
		})
		table.BeforeNodes(sections...)
		table.Remove()
	})
	return root
}

func isFakeCode(code *goquery.Selection) bool {
	return code.Find("code, pre").Length() > 0
}

// expandLineBreaks replaces <br> descendants with newline text nodes.
func expandLineBreaks(sel *goquery.Selection) {
	sel.Find("br").Each(func(_ int, br *goquery.Selection) {
		br.ReplaceWithNodes(&html.Node{Type: html.TextNode, Data: "\n"})
	})
}

func newElement(a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: a.String(), DataAtom: a}
}

func setText(n *html.Node, text string) {
	removeChildren(n)
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

func removeChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
	}
}

func moveChildren(from, to *html.Node) {
	for c := from.FirstChild; c != nil; c = from.FirstChild {
		from.RemoveChild(c)
		to.AppendChild(c)
	}
}

func walkElements(n *html.Node, fn func(*html.Node)) {
	if n.Type == html.ElementNode {
		fn(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkElements(c, fn)
	}
}

// attached reports whether n is still part of the tree under root.
func attached(n, root *html.Node) bool {
	for ; n != nil; n = n.Parent {
		if n == root {
			return true
		}
	}
	return false
}
