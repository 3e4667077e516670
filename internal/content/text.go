// ABOUTME: Text node transforms bridging LaTeX math and escaping Markdown syntax
// ABOUTME: Code and math elements keep their literal characters

package content

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var (
	blockMathPattern  = regexp.MustCompile(`(?s)\\\[(.*?)\\\]`)
	inlineMathPattern = regexp.MustCompile(`(?s)\\\((.*?)\\\)`)
)

// entityReplacer swaps characters Markdown would interpret for full-width lookalikes.
var entityReplacer = strings.NewReplacer(
	">", "＞",
	"<", "＜",
	"[", "［",
	"]", "］",
)

// TransformText applies the math and entity transforms to every text node,
// depth first.
func TransformText(root *html.Node) *html.Node {
	walkText(root, func(n *html.Node) {
		transformMath(n)
		escapeEntities(n)
	})
	return root
}

// transformMath rewrites \[...\] to $$...$$ and \(...\) to $...$ and tags
// the parent element with the "math" class when anything changed.
func transformMath(n *html.Node) {
	if insideElement(n, "code") {
		return
	}
	text := blockMathPattern.ReplaceAllStringFunc(n.Data, func(m string) string {
		return "$$" + blockMathPattern.FindStringSubmatch(m)[1] + "$$"
	})
	text = inlineMathPattern.ReplaceAllStringFunc(text, func(m string) string {
		return "$" + inlineMathPattern.FindStringSubmatch(m)[1] + "$"
	})
	if text == n.Data {
		return
	}
	n.Data = text
	if n.Parent != nil && n.Parent.Type == html.ElementNode {
		addClass(n.Parent, "math")
	}
}

func escapeEntities(n *html.Node) {
	if insideElement(n, "code") || insideMath(n) {
		return
	}
	n.Data = entityReplacer.Replace(n.Data)
}

func walkText(n *html.Node, fn func(*html.Node)) {
	if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
		return
	}
	if n.Type == html.TextNode {
		fn(n)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkText(c, fn)
	}
}

func insideElement(n *html.Node, tag string) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && p.Data == tag {
			return true
		}
	}
	return false
}

func insideMath(n *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && hasClass(p, "math") {
			return true
		}
	}
	return false
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key == "class" {
			for _, c := range strings.Fields(a.Val) {
				if c == class {
					return true
				}
			}
		}
	}
	return false
}

func addClass(n *html.Node, class string) {
	if hasClass(n, class) {
		return
	}
	for i, a := range n.Attr {
		if a.Key == "class" {
			n.Attr[i].Val = strings.TrimSpace(a.Val + " " + class)
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: "class", Val: class})
}
