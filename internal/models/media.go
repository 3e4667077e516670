// ABOUTME: Image and media attachment models shared by feeds and items
// ABOUTME: Classifies attachments as image, video, audio or unknown

package models

import "strings"

// MediaType classifies a media attachment.
type MediaType string

const (
	MediaImage   MediaType = "image"
	MediaVideo   MediaType = "video"
	MediaAudio   MediaType = "audio"
	MediaUnknown MediaType = "unknown"
)

// Image is a signature image of a feed or item.
type Image struct {
	Src    string
	Type   string
	Width  int
	Height int
}

// Media is an attachment of an item.
type Media struct {
	Src    string
	Type   MediaType
	Width  int
	Height int
}

// SniffMediaType maps a MIME type or medium attribute to a MediaType by substring.
func SniffMediaType(hints ...string) MediaType {
	for _, hint := range hints {
		hint = strings.ToLower(hint)
		switch {
		case strings.Contains(hint, "image"):
			return MediaImage
		case strings.Contains(hint, "video"):
			return MediaVideo
		case strings.Contains(hint, "audio"):
			return MediaAudio
		}
	}
	return MediaUnknown
}
