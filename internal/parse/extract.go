// ABOUTME: Extractors pulling images, media, creators and descriptions out of feed items
// ABOUTME: Understands media:group nesting, dc:creator and image enclosures

package parse

import (
	"strconv"
	"strings"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"

	"github.com/harper/feednotes/internal/models"
)

// Creator returns the item's author from author fields, dc:creator or a
// nested author name.
func Creator(item *gofeed.Item) string {
	if item.Author != nil && strings.TrimSpace(item.Author.Name) != "" {
		return strings.TrimSpace(item.Author.Name)
	}
	for _, p := range item.Authors {
		if p != nil && strings.TrimSpace(p.Name) != "" {
			return strings.TrimSpace(p.Name)
		}
	}
	if item.DublinCoreExt != nil {
		for _, c := range item.DublinCoreExt.Creator {
			if c = strings.TrimSpace(c); c != "" {
				return c
			}
		}
	}
	if dc, ok := item.Extensions["dc"]; ok {
		if v := firstValue(dc["creator"]); v != "" {
			return v
		}
	}
	if item.ITunesExt != nil {
		return strings.TrimSpace(item.ITunesExt.Author)
	}
	return ""
}

// Description returns the explicit description, falling back to
// media:description which may be nested in a media:group.
func Description(item *gofeed.Item) string {
	if d := strings.TrimSpace(item.Description); d != "" {
		return d
	}
	return firstValue(mediaElements(item, "description"))
}

// ItemImage returns the signature image of an item. In priority order: the
// explicit image URL, media:thumbnail (possibly inside media:group), then the
// first image enclosure.
func ItemImage(item *gofeed.Item) *models.Image {
	if item.Image != nil && strings.TrimSpace(item.Image.URL) != "" {
		return &models.Image{Src: strings.TrimSpace(item.Image.URL)}
	}

	for _, thumb := range mediaElements(item, "thumbnail") {
		if src := thumb.Attrs["url"]; src != "" {
			return &models.Image{
				Src:    src,
				Width:  atoi(thumb.Attrs["width"]),
				Height: atoi(thumb.Attrs["height"]),
			}
		}
	}

	for _, enc := range item.Enclosures {
		if enc != nil && enc.URL != "" && strings.HasPrefix(strings.ToLower(enc.Type), "image") {
			return &models.Image{Src: enc.URL, Type: enc.Type}
		}
	}

	if item.ITunesExt != nil && item.ITunesExt.Image != "" {
		return &models.Image{Src: item.ITunesExt.Image}
	}
	return nil
}

// MediaList returns the item's media:content attachments (possibly nested in
// media:group), each typed by sniffing its type and medium attributes.
func MediaList(item *gofeed.Item) []models.Media {
	var media []models.Media
	for _, c := range mediaElements(item, "content") {
		src := c.Attrs["url"]
		if src == "" {
			continue
		}
		media = append(media, models.Media{
			Src:    src,
			Type:   models.SniffMediaType(c.Attrs["type"], c.Attrs["medium"]),
			Width:  atoi(c.Attrs["width"]),
			Height: atoi(c.Attrs["height"]),
		})
	}
	return media
}

// Categories flattens item categories into a de-duplicated tag list.
// Embedded comma separated categories are split apart.
func Categories(categories []string) []string {
	joined := strings.Join(categories, ",")
	seen := make(map[string]bool)
	var tags []string
	for _, part := range strings.Split(joined, ",") {
		tag := models.SafeTag(part)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	return tags
}

// mediaElements collects media:<name> elements directly on the item and
// inside any media:group.
func mediaElements(item *gofeed.Item, name string) []ext.Extension {
	media, ok := item.Extensions["media"]
	if !ok {
		return nil
	}

	found := append([]ext.Extension(nil), media[name]...)
	for _, group := range media["group"] {
		found = append(found, group.Children[name]...)
	}
	return found
}

func firstValue(elements []ext.Extension) string {
	for _, e := range elements {
		if v := strings.TrimSpace(e.Value); v != "" {
			return v
		}
	}
	return ""
}

func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
