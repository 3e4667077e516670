// ABOUTME: Visual lookalike substitutions for characters hostile to notes and tags
// ABOUTME: Used for note file names and normalized category tags

package models

import "strings"

var fileNameReplacer = strings.NewReplacer(
	"?", "❓",
	".", "․",
	":", "꞉",
	`"`, "＂",
	"<", "‹",
	">", "›",
	"|", "∣",
	`\`, "⧵",
	"/", "⧸",
	"[", "〚",
	"]", "〛",
	"#", "＃",
	"^", "ˆ",
	"&", "＆",
)

// tags may nest with "/" so it is kept
var tagLookalikes = []string{
	"?", "❓",
	".", "․",
	":", "꞉",
	"<", "‹",
	">", "›",
	"|", "∣",
	`\`, "⧵",
	"#", "＃",
	"^", "ˆ",
	"&", "＆",
	"'", "’",
}

var tagReplacer = strings.NewReplacer(tagLookalikes...)

// TagLookalikes returns the substitute characters SafeTag may put into a
// tag body. Hashtag scanners must accept them as tag characters.
func TagLookalikes() string {
	var b strings.Builder
	for i := 1; i < len(tagLookalikes); i += 2 {
		b.WriteString(tagLookalikes[i])
	}
	return b.String()
}

var tagNoise = strings.NewReplacer(
	"[", "",
	"]", "",
	"{", "",
	"}", "",
	"(", "",
	")", "",
	`"`, "",
	"“", "",
	"”", "",
)

// SafeTag normalizes a category into a hashtag body: bracket and quote noise
// is stripped, whitespace becomes "_" and hostile characters become lookalikes.
// It returns "" when nothing usable remains.
func SafeTag(category string) string {
	category = tagNoise.Replace(category)
	category = strings.Join(strings.Fields(category), "_")
	category = strings.Trim(category, "_/")
	if category == "" {
		return ""
	}
	return tagReplacer.Replace(category)
}
