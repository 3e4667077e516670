// ABOUTME: Read command for viewing item notes in the terminal
// ABOUTME: Renders the note body with glamour and marks the item as read

package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harper/feednotes/internal/config"
	"github.com/harper/feednotes/internal/vault"
)

var readCmd = &cobra.Command{
	Use:   "read <item>",
	Short: "Read an item",
	Long:  "Display an item note in the terminal and mark it as read",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		noMark, _ := cmd.Flags().GetBool("no-mark")

		item, err := resolveItem(args[0])
		if err != nil {
			return err
		}
		text, err := lib.Vault().ReadNote(item.Path)
		if err != nil {
			return fmt.Errorf("failed to read item: %w", err)
		}
		_, body := vault.SplitFrontmatter(text)

		bold := color.New(color.Bold).SprintFunc()
		faint := color.New(color.Faint).SprintFunc()
		cyan := color.New(color.FgCyan).SprintFunc()

		fmt.Println(strings.Repeat("─", config.SeparatorWidth))
		fmt.Printf("%s\n\n", bold(item.Title()))
		fmt.Printf("%s %s\n", faint("Feed:"), item.Record.Feed)
		if item.Record.Author != "" {
			fmt.Printf("%s %s\n", faint("Author:"), item.Record.Author)
		}
		fmt.Printf("%s %s\n", faint("Published:"), item.Record.PublishedAt().Format(config.DateFormatLong))
		if item.Record.Link != "" {
			fmt.Printf("%s %s\n", faint("Link:"), cyan(item.Record.Link))
		}
		fmt.Println(strings.Repeat("─", config.SeparatorWidth))

		rendered, err := glamour.Render(body, "dark")
		if err != nil {
			fmt.Printf("%s\n", faint("(markdown rendering unavailable, showing plain text)"))
			fmt.Printf("\n%s\n", body)
		} else {
			fmt.Print(rendered)
		}
		fmt.Println()

		if !noMark && !item.Record.Read {
			item.Record.Read = true
			if err := lib.SaveItem(item); err != nil {
				return fmt.Errorf("failed to mark item as read: %w", err)
			}
			fmt.Printf("%s\n", faint("Marked as read"))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(readCmd)

	readCmd.Flags().Bool("no-mark", false, "don't mark the item as read")
}
