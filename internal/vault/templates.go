// ABOUTME: Note templates for feed dashboards and items with {{token}} expansion
// ABOUTME: Built-in templates can be overridden by files in a user template directory

package vault

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Built-in template names.
const (
	TemplateFeed = "RSS Feed"
	TemplateItem = "RSS Item"
	TemplateNote = "Plain Note"
)

var builtinTemplates = map[string]string{
	TemplateFeed: `# {{feedName}}

{{image}}

{{description}}

- **Site:** {{site}}
- **Feed:** {{feedUrl}}
`,
	TemplateItem: `# {{title}}

- **Link:** {{link}}
- **Author:** {{author}}
- **Published:** {{publishDate}}

{{image}}

{{media}}

{{abstract}}

{{content}}

{{tags}}
`,
	TemplateNote: `{{content}}
`,
}

// ErrUnknownTemplate is returned for a template name with no file and no built-in.
var ErrUnknownTemplate = errors.New("unknown template")

// Templates resolves template names to text.
type Templates struct {
	dir string
}

// NewTemplates creates a resolver. dir may be empty.
func NewTemplates(dir string) *Templates {
	return &Templates{dir: dir}
}

// Load returns the text of a template. "<dir>/<name>.md" wins over the
// built-in of the same name.
func (t *Templates) Load(name string) (string, error) {
	if t.dir != "" {
		data, err := os.ReadFile(filepath.Join(t.dir, name+NoteExt))
		if err == nil {
			return string(data), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("read template %q: %w", name, err)
		}
	}
	if text, ok := builtinTemplates[name]; ok {
		return text, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
}

var tokenPattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_]+)\s*\}\}`)

// ExpandTemplate replaces {{token}} placeholders with data values. Tokens
// missing from data are left as they are.
func ExpandTemplate(text string, data map[string]string) string {
	return tokenPattern.ReplaceAllStringFunc(text, func(m string) string {
		key := tokenPattern.FindStringSubmatch(m)[1]
		if v, ok := data[key]; ok {
			return v
		}
		return m
	})
}

var blankLines = regexp.MustCompile(`\n{3,}`)

// expandNote expands a note template. Runs of blank lines left behind by
// empty values are collapsed to one; non-empty values go in verbatim.
func expandNote(text string, data map[string]string) string {
	empty := make(map[string]string)
	for k, v := range data {
		if strings.TrimSpace(v) == "" {
			empty[k] = ""
		}
	}
	text = blankLines.ReplaceAllString(ExpandTemplate(text, empty), "\n\n")
	return ExpandTemplate(text, data)
}
