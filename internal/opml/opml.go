// ABOUTME: OPML reading and writing of feed subscriptions for import and export
// ABOUTME: Folder outlines map to subscription groups; nested folders use the innermost name

package opml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
)

// Version is the OPML version written by Write.
const Version = "2.0"

// Document is a parsed OPML file.
type Document struct {
	Title    string
	Outlines []Outline
}

// Outline is a folder (no XMLURL, with children) or a feed.
type Outline struct {
	Text     string
	Title    string
	Type     string
	XMLURL   string
	HTMLURL  string
	Children []Outline
}

// Subscription is one feed of a document with its folder.
type Subscription struct {
	URL     string
	Title   string
	SiteURL string
	Group   string
}

type opmlXML struct {
	XMLName xml.Name `xml:"opml"`
	Version string   `xml:"version,attr"`
	Head    headXML  `xml:"head"`
	Body    bodyXML  `xml:"body"`
}

type headXML struct {
	Title string `xml:"title"`
}

type bodyXML struct {
	Outlines []outlineXML `xml:"outline"`
}

type outlineXML struct {
	Text     string       `xml:"text,attr"`
	Title    string       `xml:"title,attr,omitempty"`
	Type     string       `xml:"type,attr,omitempty"`
	XMLURL   string       `xml:"xmlUrl,attr,omitempty"`
	HTMLURL  string       `xml:"htmlUrl,attr,omitempty"`
	Children []outlineXML `xml:"outline,omitempty"`
}

// NewDocument builds a document from subscriptions. Ungrouped feeds come
// first, then one folder per group in order of first appearance.
func NewDocument(title string, subs []Subscription) *Document {
	doc := &Document{Title: title}
	var groups []Outline
	index := make(map[string]int)
	for _, sub := range subs {
		name := sub.Title
		if name == "" {
			name = sub.URL
		}
		feed := Outline{Text: name, Title: name, Type: "rss", XMLURL: sub.URL, HTMLURL: sub.SiteURL}

		if sub.Group == "" {
			doc.Outlines = append(doc.Outlines, feed)
			continue
		}
		i, ok := index[sub.Group]
		if !ok {
			i = len(groups)
			index[sub.Group] = i
			groups = append(groups, Outline{Text: sub.Group})
		}
		groups[i].Children = append(groups[i].Children, feed)
	}
	doc.Outlines = append(doc.Outlines, groups...)
	return doc
}

// Parse reads an OPML document.
func Parse(r io.Reader) (*Document, error) {
	var opml opmlXML
	if err := xml.NewDecoder(r).Decode(&opml); err != nil {
		return nil, fmt.Errorf("failed to decode OPML: %w", err)
	}

	doc := &Document{Title: opml.Head.Title}
	for _, o := range opml.Body.Outlines {
		doc.Outlines = append(doc.Outlines, fromXML(o))
	}
	return doc, nil
}

// ParseFile reads an OPML file.
func ParseFile(path string) (*Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

// Subscriptions returns every feed of the document, de-duplicated by URL.
func (d *Document) Subscriptions() []Subscription {
	seen := make(map[string]bool)
	var subs []Subscription
	var walk func(outlines []Outline, group string)
	walk = func(outlines []Outline, group string) {
		for _, o := range outlines {
			url := strings.TrimSpace(o.XMLURL)
			if url != "" {
				if !seen[url] {
					seen[url] = true
					subs = append(subs, Subscription{URL: url, Title: outlineTitle(o), SiteURL: o.HTMLURL, Group: group})
				}
				continue
			}
			walk(o.Children, o.Text)
		}
	}
	walk(d.Outlines, "")
	return subs
}

// Write encodes the document as indented XML with a header.
func (d *Document) Write(w io.Writer) error {
	opml := opmlXML{
		Version: Version,
		Head:    headXML{Title: d.Title},
	}
	for _, o := range d.Outlines {
		opml.Body.Outlines = append(opml.Body.Outlines, toXML(o))
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("failed to write XML header: %w", err)
	}
	encoder := xml.NewEncoder(w)
	encoder.Indent("", "  ")
	if err := encoder.Encode(opml); err != nil {
		return fmt.Errorf("failed to encode OPML: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// WriteFile writes the document to path atomically.
func (d *Document) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	var buf bytes.Buffer
	if err := d.Write(&buf); err != nil {
		return err
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func fromXML(x outlineXML) Outline {
	o := Outline{Text: x.Text, Title: x.Title, Type: x.Type, XMLURL: x.XMLURL, HTMLURL: x.HTMLURL}
	for _, child := range x.Children {
		o.Children = append(o.Children, fromXML(child))
	}
	return o
}

func toXML(o Outline) outlineXML {
	x := outlineXML{Text: o.Text, Title: o.Title, Type: o.Type, XMLURL: o.XMLURL, HTMLURL: o.HTMLURL}
	for _, child := range o.Children {
		x.Children = append(x.Children, toXML(child))
	}
	return x
}

func outlineTitle(o Outline) string {
	if o.Title != "" {
		return o.Title
	}
	return o.Text
}
