// ABOUTME: Item commands for listing, pinning and marking item notes read or unread
// ABOUTME: Items are addressed by vault path or by a case-insensitive title fragment

package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harper/feednotes/internal/config"
	"github.com/harper/feednotes/internal/timeutil"
	"github.com/harper/feednotes/internal/vault"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List items",
	Long:    "List unread items newest first, optionally filtered by feed or collection",
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		feedName, _ := cmd.Flags().GetString("feed")
		collection, _ := cmd.Flags().GetString("collection")
		limit, _ := cmd.Flags().GetInt("limit")

		var items []*vault.ItemNote
		var err error
		switch {
		case collection != "":
			items, err = lib.CollectionItems(collection)
		case feedName != "":
			items, err = lib.Items(feedName)
			sortNewestFirst(items)
		default:
			items, err = lib.AllItems()
		}
		if err != nil {
			return fmt.Errorf("failed to list items: %w", err)
		}

		if !all {
			items = filterItems(items, func(item *vault.ItemNote) bool { return !item.Record.Read })
		}
		if len(items) == 0 {
			fmt.Println("No items found.")
			return nil
		}
		if limit > 0 && len(items) > limit {
			items = items[:limit]
		}

		bold := color.New(color.Bold).SprintFunc()
		faint := color.New(color.Faint).SprintFunc()
		for _, item := range items {
			marker := " "
			if item.Record.Pinned {
				marker = "*"
			}
			title := item.Title()
			if !item.Record.Read {
				title = bold(title)
			}
			fmt.Printf("%s %s\n", marker, title)
			fmt.Printf("  %s %s\n", faint(item.Record.Feed), faint(item.Record.PublishedAt().Format(config.DateFormatShort)))
		}
		return nil
	},
}

var markReadCmd = &cobra.Command{
	Use:   "mark-read [item]",
	Short: "Mark items as read",
	Long:  "Mark a single item as read, or use --before to mark all items older than a date",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMark(cmd, args, true)
	},
}

var markUnreadCmd = &cobra.Command{
	Use:   "mark-unread [item]",
	Short: "Mark items as unread",
	Long:  "Mark a single item as unread, or use --before to mark all items older than a date",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMark(cmd, args, false)
	},
}

var pinCmd = &cobra.Command{
	Use:   "pin <item>",
	Short: "Pin an item so it is never deleted",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setPinned(args[0], true)
	},
}

var unpinCmd = &cobra.Command{
	Use:   "unpin <item>",
	Short: "Unpin an item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setPinned(args[0], false)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(markReadCmd)
	rootCmd.AddCommand(markUnreadCmd)
	rootCmd.AddCommand(pinCmd)
	rootCmd.AddCommand(unpinCmd)

	listCmd.Flags().BoolP("all", "a", false, "include read items")
	listCmd.Flags().StringP("feed", "f", "", "only items of this feed")
	listCmd.Flags().StringP("collection", "c", "", "only items matching this collection")
	listCmd.Flags().IntP("limit", "n", config.DefaultListLimit, "maximum number of items to show")

	for _, cmd := range []*cobra.Command{markReadCmd, markUnreadCmd} {
		cmd.Flags().StringP("before", "b", "", "items older than: today, yesterday, week, month, Nd, or YYYY-MM-DD")
		cmd.Flags().StringP("feed", "f", "", "only items of this feed (with --before)")
	}
}

func runMark(cmd *cobra.Command, args []string, read bool) error {
	before, _ := cmd.Flags().GetString("before")
	feedName, _ := cmd.Flags().GetString("feed")
	state := "read"
	if !read {
		state = "unread"
	}

	if len(args) == 1 {
		if before != "" {
			return fmt.Errorf("cannot use --before with an item")
		}
		item, err := resolveItem(args[0])
		if err != nil {
			return err
		}
		if item.Record.Read == read {
			fmt.Printf("Item is already marked as %s\n", state)
			return nil
		}
		item.Record.Read = read
		if err := lib.SaveItem(item); err != nil {
			return fmt.Errorf("failed to mark item as %s: %w", state, err)
		}
		fmt.Printf("Marked as %s: %s\n", state, item.Title())
		return nil
	}

	if before == "" {
		return fmt.Errorf("provide an item or use --before for bulk marking")
	}
	cutoff, ok := timeutil.ParsePeriod(before, time.Now())
	if !ok {
		return fmt.Errorf("invalid period %q: use today, yesterday, week, month, Nd, or YYYY-MM-DD", before)
	}

	var items []*vault.ItemNote
	var err error
	if feedName != "" {
		items, err = lib.Items(feedName)
	} else {
		items, err = lib.AllItems()
	}
	if err != nil {
		return fmt.Errorf("failed to list items: %w", err)
	}

	count, err := lib.MarkBefore(items, cutoff, read)
	if err != nil {
		return fmt.Errorf("failed to mark items as %s: %w", state, err)
	}
	if count == 0 {
		fmt.Printf("No items to mark as %s\n", state)
	} else {
		fmt.Printf("Marked %d items as %s\n", count, state)
	}
	return nil
}

func setPinned(query string, pinned bool) error {
	item, err := resolveItem(query)
	if err != nil {
		return err
	}
	item.Record.Pinned = pinned
	if err := lib.SaveItem(item); err != nil {
		return fmt.Errorf("failed to save item: %w", err)
	}
	if pinned {
		fmt.Printf("Pinned: %s\n", item.Title())
	} else {
		fmt.Printf("Unpinned: %s\n", item.Title())
	}
	return nil
}

// resolveItem finds exactly one item by path or title fragment.
func resolveItem(query string) (*vault.ItemNote, error) {
	matches, err := lib.FindItems(query)
	if err != nil {
		return nil, fmt.Errorf("failed to search items: %w", err)
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("item not found: %s", query)
	case 1:
		return matches[0], nil
	}

	const shown = 5
	var paths []string
	for i, item := range matches {
		if i == shown {
			paths = append(paths, "...")
			break
		}
		paths = append(paths, "  "+item.Path)
	}
	return nil, fmt.Errorf("%q matches %d items:\n%s", query, len(matches), strings.Join(paths, "\n"))
}

func filterItems(items []*vault.ItemNote, keep func(*vault.ItemNote) bool) []*vault.ItemNote {
	var out []*vault.ItemNote
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

func sortNewestFirst(items []*vault.ItemNote) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Record.Published > items[j].Record.Published
	})
}
