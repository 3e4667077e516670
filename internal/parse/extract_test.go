// ABOUTME: Tests for the item extractors
// ABOUTME: Covers image priority, media typing, creators and category flattening

package parse

import (
	"reflect"
	"testing"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
)

func mediaItem(elements map[string][]ext.Extension) *gofeed.Item {
	return &gofeed.Item{Extensions: ext.Extensions{"media": elements}}
}

func TestItemImage_Priority(t *testing.T) {
	thumb := ext.Extension{Name: "thumbnail", Attrs: map[string]string{"url": "https://x/thumb.jpg", "width": "120", "height": "90"}}
	enclosure := &gofeed.Enclosure{URL: "https://x/enc.png", Type: "image/png"}

	t.Run("explicit image wins", func(t *testing.T) {
		item := mediaItem(map[string][]ext.Extension{"thumbnail": {thumb}})
		item.Image = &gofeed.Image{URL: "https://x/explicit.jpg"}
		item.Enclosures = []*gofeed.Enclosure{enclosure}
		if img := ItemImage(item); img == nil || img.Src != "https://x/explicit.jpg" {
			t.Errorf("ItemImage() = %+v, want explicit image", img)
		}
	})

	t.Run("thumbnail in group", func(t *testing.T) {
		group := ext.Extension{Name: "group", Children: map[string][]ext.Extension{"thumbnail": {thumb}}}
		item := mediaItem(map[string][]ext.Extension{"group": {group}})
		item.Enclosures = []*gofeed.Enclosure{enclosure}
		img := ItemImage(item)
		if img == nil || img.Src != "https://x/thumb.jpg" || img.Width != 120 || img.Height != 90 {
			t.Errorf("ItemImage() = %+v, want thumbnail with size", img)
		}
	})

	t.Run("image enclosure", func(t *testing.T) {
		item := &gofeed.Item{Enclosures: []*gofeed.Enclosure{
			{URL: "https://x/a.mp3", Type: "audio/mpeg"},
			enclosure,
		}}
		if img := ItemImage(item); img == nil || img.Src != "https://x/enc.png" {
			t.Errorf("ItemImage() = %+v, want image enclosure", img)
		}
	})

	t.Run("none", func(t *testing.T) {
		if img := ItemImage(&gofeed.Item{}); img != nil {
			t.Errorf("ItemImage() = %+v, want nil", img)
		}
	})
}

func TestMediaList(t *testing.T) {
	item := mediaItem(map[string][]ext.Extension{
		"content": {
			{Attrs: map[string]string{"url": "https://x/p.jpg", "medium": "image", "width": "640"}},
			{Attrs: map[string]string{"url": "https://x/doc.pdf", "type": "application/pdf"}},
			{Attrs: map[string]string{"type": "video/mp4"}},
		},
	})

	media := MediaList(item)
	if len(media) != 2 {
		t.Fatalf("len(MediaList()) = %d, want 2 (entries without url skipped)", len(media))
	}
	if media[0].Type != "image" || media[0].Width != 640 {
		t.Errorf("media[0] = %+v", media[0])
	}
	if media[1].Type != "unknown" {
		t.Errorf("media[1].Type = %q, want unknown", media[1].Type)
	}
}

func TestCreator(t *testing.T) {
	tests := []struct {
		name string
		item *gofeed.Item
		want string
	}{
		{name: "author", item: &gofeed.Item{Author: &gofeed.Person{Name: " Ann "}}, want: "Ann"},
		{name: "authors list", item: &gofeed.Item{Authors: []*gofeed.Person{{Name: "Bob"}}}, want: "Bob"},
		{name: "dublin core", item: &gofeed.Item{DublinCoreExt: &ext.DublinCoreExtension{Creator: []string{"Cy"}}}, want: "Cy"},
		{name: "dc extension", item: &gofeed.Item{Extensions: ext.Extensions{"dc": {"creator": {{Value: "Di"}}}}}, want: "Di"},
		{name: "none", item: &gofeed.Item{}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Creator(tt.item); got != tt.want {
				t.Errorf("Creator() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDescription(t *testing.T) {
	item := mediaItem(map[string][]ext.Extension{"description": {{Value: " from media "}}})
	if got := Description(item); got != "from media" {
		t.Errorf("Description() = %q", got)
	}

	item.Description = "explicit"
	if got := Description(item); got != "explicit" {
		t.Errorf("Description() = %q, want explicit description", got)
	}
}

func TestCategories(t *testing.T) {
	got := Categories([]string{"News, World", `"Politics"`, "news", " ", "[Deep Dive]"})
	want := []string{"News", "World", "Politics", "news", "Deep_Dive"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Categories() = %v, want %v", got, want)
	}

	if got := Categories(nil); len(got) != 0 {
		t.Errorf("Categories(nil) = %v, want empty", got)
	}
}
