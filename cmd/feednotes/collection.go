// ABOUTME: Collection commands for saved item filters by feed and tags
// ABOUTME: A collection is a note in the feeds folder whose frontmatter holds the filter

package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harper/feednotes/internal/config"
	"github.com/harper/feednotes/internal/vault"
)

var collectionCmd = &cobra.Command{
	Use:     "collection",
	Aliases: []string{"c"},
	Short:   "Manage item collections",
	Long:    "Create and show collections: saved filters over items by feed and tags",
}

var collectionCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		feeds, _ := cmd.Flags().GetStringSlice("feed")
		anyTags, _ := cmd.Flags().GetStringSlice("any")
		allTags, _ := cmd.Flags().GetStringSlice("all")
		noneTags, _ := cmd.Flags().GetStringSlice("none")

		rec := &vault.CollectionRecord{Feeds: feeds, AnyTags: anyTags, AllTags: allTags, NoneTags: noneTags}
		path, err := lib.CreateCollection(args[0], rec)
		if err != nil {
			if errors.Is(err, vault.ErrExists) {
				return fmt.Errorf("collection already exists: %s", args[0])
			}
			return fmt.Errorf("failed to create collection: %w", err)
		}
		fmt.Printf("Created collection: %s\n", path)
		return nil
	},
}

var collectionShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "List the items of a collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		items, err := lib.CollectionItems(args[0])
		if err != nil {
			if errors.Is(err, vault.ErrNotFound) {
				return fmt.Errorf("collection not found: %s", args[0])
			}
			return fmt.Errorf("failed to list collection: %w", err)
		}
		if len(items) == 0 {
			fmt.Println("No items match this collection.")
			return nil
		}
		if limit > 0 && len(items) > limit {
			items = items[:limit]
		}

		faint := color.New(color.Faint).SprintFunc()
		for _, item := range items {
			fmt.Printf("%s\n", item.Title())
			fmt.Printf("  %s %s\n", faint(item.Record.Feed), faint(item.Record.PublishedAt().Format(config.DateFormatShort)))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(collectionCmd)
	collectionCmd.AddCommand(collectionCreateCmd)
	collectionCmd.AddCommand(collectionShowCmd)

	collectionCreateCmd.Flags().StringSlice("feed", nil, "feeds to include (default: all feeds)")
	collectionCreateCmd.Flags().StringSlice("any", nil, "items with any of these tags")
	collectionCreateCmd.Flags().StringSlice("all", nil, "items with all of these tags")
	collectionCreateCmd.Flags().StringSlice("none", nil, "items with none of these tags")
	collectionShowCmd.Flags().IntP("limit", "n", config.DefaultListLimit, "maximum number of items to show")
}
