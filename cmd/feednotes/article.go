// ABOUTME: Article command that saves a web page as a Markdown note
// ABOUTME: Extracts the main content of the page and keeps its URL in the frontmatter

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harper/feednotes/internal/content"
	"github.com/harper/feednotes/internal/fetch"
	"github.com/harper/feednotes/internal/models"
	"github.com/harper/feednotes/internal/vault"
)

var articleCmd = &cobra.Command{
	Use:   "article <url>",
	Short: "Save a web page as a note",
	Long:  "Download a web page, extract its main article and store it as a Markdown note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		folder, _ := cmd.Flags().GetString("folder")

		result, err := fetcher.Fetch(cmd.Context(), args[0], fetch.Validators{})
		if err != nil {
			return fmt.Errorf("failed to fetch page: %w", err)
		}
		source := result.FinalURL
		if source == "" {
			source = args[0]
		}

		markdown, err := translator.ArticleAsMarkdown(string(result.Body), source)
		if errors.Is(err, content.ErrNoArticle) {
			return fmt.Errorf("no article found at %s", source)
		}
		if err != nil {
			return err
		}

		path, err := saveArticle(folder, source, markdown)
		if err != nil {
			return err
		}
		fmt.Printf("Saved article: %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(articleCmd)
	articleCmd.Flags().String("folder", "Articles", "vault folder for saved articles")
}

// saveArticle writes markdown as a new note named after its "# " heading.
func saveArticle(folder, source, markdown string) (string, error) {
	title, _, _ := strings.Cut(markdown, "\n")
	title = strings.TrimPrefix(title, "# ")

	path, err := lib.Vault().CreateNote(folder, models.SafeFileName(title), vault.TemplateNote, map[string]string{"content": markdown}, func(fm map[string]any) error {
		fm["link"] = source
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to save article: %w", err)
	}
	return path, nil
}
