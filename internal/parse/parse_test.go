// ABOUTME: Test suite for feed normalization
// ABOUTME: Validates RSS 2.0 and Atom parsing into TrackedFeed using inline XML test data

package parse

import (
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
)

const rss20XML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:dc="http://purl.org/dc/elements/1.1/"
     xmlns:content="http://purl.org/rss/1.0/modules/content/"
     xmlns:media="http://search.yahoo.com/mrss/">
  <channel>
    <title>Test RSS Feed</title>
    <link>/blog</link>
    <description>A test RSS feed</description>
    <item>
      <guid>https://example.com/post/1</guid>
      <title>First
        Post</title>
      <link>https://example.com/post/1</link>
      <dc:creator>John Doe</dc:creator>
      <pubDate>Mon, 02 Jan 2006 15:04:05 GMT</pubDate>
      <description>First post description</description>
      <content:encoded><![CDATA[<p>Full body</p>]]></content:encoded>
      <category>tech, golang</category>
      <category>golang</category>
      <enclosure url="https://example.com/cover.jpg" type="image/jpeg" length="100"/>
    </item>
    <item>
      <link>https://example.com/post/2</link>
      <media:group>
        <media:description>Described by media</media:description>
        <media:content url="https://example.com/clip.mp4" type="video/mp4"/>
        <media:content url="https://example.com/song.mp3" medium="audio"/>
      </media:group>
    </item>
  </channel>
</rss>`

const atomXML = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Test Atom Feed</title>
  <link rel="self" href="https://example.com/atom.xml"/>
  <link rel="alternate" href="https://example.com/"/>
  <updated>2006-01-02T15:04:05Z</updated>
  <entry>
    <id>urn:entry:1</id>
    <title>First Entry</title>
    <link href="https://example.com/entry/1"/>
    <author>
      <name>Jane Smith</name>
    </author>
    <published>2006-01-02T15:04:05Z</published>
    <content type="html">First entry content</content>
    <summary>First entry summary</summary>
    <category term="science"/>
  </entry>
  <entry>
    <id>urn:entry:2</id>
    <title>Second Entry</title>
    <link href="https://example.com/entry/2"/>
    <updated>2006-01-03T15:04:05Z</updated>
    <summary>Second entry summary</summary>
  </entry>
</feed>`

func TestParse_RSS(t *testing.T) {
	before := time.Now()
	feed, err := Parse([]byte(rss20XML), "https://example.com/feed.xml")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if feed.Title != "Test RSS Feed" {
		t.Errorf("feed.Title = %q, want %q", feed.Title, "Test RSS Feed")
	}
	if feed.SiteURL != "https://example.com/blog" {
		t.Errorf("feed.SiteURL = %q, want resolved path-absolute link", feed.SiteURL)
	}
	if feed.Source != "https://example.com/feed.xml" {
		t.Errorf("feed.Source = %q", feed.Source)
	}
	if len(feed.Items) != 2 {
		t.Fatalf("len(feed.Items) = %d, want 2", len(feed.Items))
	}

	first := feed.Items[0]
	if first.ID != "https://example.com/post/1" {
		t.Errorf("first.ID = %q", first.ID)
	}
	if first.Title != "First Post" {
		t.Errorf("first.Title = %q, want collapsed whitespace", first.Title)
	}
	if first.Author != "John Doe" {
		t.Errorf("first.Author = %q, want %q", first.Author, "John Doe")
	}
	if first.Content != "<p>Full body</p>" {
		t.Errorf("first.Content = %q", first.Content)
	}
	if len(first.Tags) != 2 || first.Tags[0] != "tech" || first.Tags[1] != "golang" {
		t.Errorf("first.Tags = %v, want [tech golang]", first.Tags)
	}
	if first.Image == nil || first.Image.Src != "https://example.com/cover.jpg" {
		t.Errorf("first.Image = %+v, want image enclosure", first.Image)
	}
	want := time.Date(2006, 1, 2, 15, 4, 5, 0, time.UTC)
	if !first.Published.Equal(want) {
		t.Errorf("first.Published = %v, want %v", first.Published, want)
	}

	second := feed.Items[1]
	if second.ID != "https://example.com/post/2" {
		t.Errorf("second.ID = %q, want link fallback", second.ID)
	}
	if second.Description != "Described by media" {
		t.Errorf("second.Description = %q, want media:description", second.Description)
	}
	if len(second.Media) != 2 {
		t.Fatalf("len(second.Media) = %d, want 2", len(second.Media))
	}
	if second.Media[0].Type != "video" || second.Media[1].Type != "audio" {
		t.Errorf("second.Media types = %q, %q", second.Media[0].Type, second.Media[1].Type)
	}
	if second.Published.Before(before.Add(-time.Second)) || second.Published.After(time.Now()) {
		t.Errorf("second.Published = %v, want processing time", second.Published)
	}
	if second.Title == "" {
		t.Error("second.Title is empty, want synthesized title")
	}
	if _, err := time.Parse(time.RFC3339, second.PublishedISO()); err != nil {
		t.Errorf("PublishedISO() = %q is not ISO-8601: %v", second.PublishedISO(), err)
	}
}

func TestParse_Atom(t *testing.T) {
	feed, err := Parse([]byte(atomXML), "https://example.com/atom.xml")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if feed.SiteURL != "https://example.com/" {
		t.Errorf("feed.SiteURL = %q, want first non-self link", feed.SiteURL)
	}
	if len(feed.Items) != 2 {
		t.Fatalf("len(feed.Items) = %d, want 2", len(feed.Items))
	}

	first := feed.Items[0]
	if first.ID != "urn:entry:1" {
		t.Errorf("first.ID = %q", first.ID)
	}
	if first.Author != "Jane Smith" {
		t.Errorf("first.Author = %q", first.Author)
	}
	if first.Content != "First entry content" {
		t.Errorf("first.Content = %q", first.Content)
	}
	if first.Description != "First entry summary" {
		t.Errorf("first.Description = %q", first.Description)
	}

	second := feed.Items[1]
	want := time.Date(2006, 1, 3, 15, 4, 5, 0, time.UTC)
	if !second.Published.Equal(want) {
		t.Errorf("second.Published = %v, want updated fallback %v", second.Published, want)
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte("not a feed"), "file.xml"); err == nil {
		t.Fatal("expected error for invalid feed data")
	}
}

func TestNormalize_MissingDateUsesNow(t *testing.T) {
	now := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	feed := &gofeed.Feed{Items: []*gofeed.Item{{Link: "https://example.com/a"}}}

	tracked := normalizeAt(feed, "", now)
	if !tracked.Items[0].Published.Equal(now) {
		t.Errorf("Published = %v, want %v", tracked.Items[0].Published, now)
	}
	if tracked.Items[0].Title != "Untitled "+now.Local().Format("2006-01-02 15:04") {
		t.Errorf("Title = %q", tracked.Items[0].Title)
	}
}

func TestResolveLink(t *testing.T) {
	base := baseURL("https://example.com/feeds/rss.xml")

	tests := []struct {
		link string
		want string
	}{
		{link: "/about", want: "https://example.com/about"},
		{link: "https://other.org/x", want: "https://other.org/x"},
		{link: "//cdn.example.com/x", want: "//cdn.example.com/x"},
		{link: "relative/path", want: "relative/path"},
	}

	for _, tt := range tests {
		if got := resolveLink(tt.link, base); got != tt.want {
			t.Errorf("resolveLink(%q) = %q, want %q", tt.link, got, tt.want)
		}
	}

	if got := resolveLink("/about", baseURL("/tmp/feed.xml")); got != "/about" {
		t.Errorf("resolveLink without base = %q, want unchanged", got)
	}
}
