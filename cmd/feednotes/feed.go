// ABOUTME: Feed management commands for adding, listing, renaming and removing feeds
// ABOUTME: Each feed is a vault folder with a dashboard note; suspend and resume toggle polling

package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harper/feednotes/internal/config"
	"github.com/harper/feednotes/internal/discover"
	"github.com/harper/feednotes/internal/fetch"
	"github.com/harper/feednotes/internal/models"
	"github.com/harper/feednotes/internal/parse"
	"github.com/harper/feednotes/internal/vault"
)

var feedCmd = &cobra.Command{
	Use:     "feed",
	Aliases: []string{"f"},
	Short:   "Manage RSS/Atom feeds",
	Long:    "Add, list, rename, suspend, resume and remove feed subscriptions",
}

var feedAddCmd = &cobra.Command{
	Use:   "add <url>",
	Short: "Add a new RSS/Atom feed",
	Long: `Add a feed to the vault and download its items.

The URL may point at a site instead of a feed; feednotes looks for
<link rel="alternate"> headers and common feed paths. Use --no-discover to
require a direct feed URL.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		group, _ := cmd.Flags().GetString("group")
		limit, _ := cmd.Flags().GetInt("limit")
		noDiscover, _ := cmd.Flags().GetBool("no-discover")
		noUpdate, _ := cmd.Flags().GetBool("no-update")

		feedURL, remote, err := resolveFeed(cmd, args[0], noDiscover)
		if err != nil {
			return err
		}

		existing, err := findFeedByURL(feedURL)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("feed already exists as %q: %s", existing.Name, feedURL)
		}

		if name == "" {
			name = defaultFeedName(remote, feedURL)
		}
		if limit <= 0 {
			limit = cfg.GetDefaultItemLimit()
		}

		rec := &vault.FeedRecord{
			FeedURL:   feedURL,
			Site:      remote.SiteURL,
			ItemLimit: limit,
			Status:    vault.Resumed.String(),
			Group:     group,
		}
		feed, err := lib.CreateFeed(models.SafeFileName(name), rec, feedData(feedURL, remote))
		if err != nil {
			return fmt.Errorf("failed to create feed: %w", err)
		}

		fmt.Printf("Added feed: %s\n", feed.Name)
		fmt.Printf("  URL: %s\n", feedURL)
		if noUpdate {
			return nil
		}

		n, err := pollNewFeed(cmd.Context(), feed)
		if err != nil {
			return fmt.Errorf("failed to store items: %w", err)
		}
		fmt.Printf("  %s %d items\n", color.GreenString("✓"), n)
		return nil
	},
}

var feedListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all feeds",
	Long:    "List all feeds with their status, group and last update",
	RunE: func(cmd *cobra.Command, args []string) error {
		feeds, err := lib.Feeds()
		if err != nil {
			return fmt.Errorf("failed to list feeds: %w", err)
		}
		if len(feeds) == 0 {
			fmt.Println("No feeds found. Add a feed with 'feednotes feed add <url>'")
			return nil
		}

		faint := color.New(color.Faint).SprintFunc()
		bold := color.New(color.Bold).SprintFunc()

		fmt.Printf("Found %d feed(s):\n\n", len(feeds))
		for _, feed := range feeds {
			status := feed.Record.FeedStatus()
			label := bold(feed.Name)
			if feed.Record.Group != "" {
				label = fmt.Sprintf("[%s] %s", feed.Record.Group, label)
			}
			fmt.Printf("%s %s\n", statusIcon(status), label)
			fmt.Printf("  %s %s\n", faint("URL:"), feed.Record.FeedURL)
			if updated := feed.Record.UpdatedAt(); !updated.IsZero() {
				fmt.Printf("  %s %s\n", faint("Updated:"), updated.Format(config.DateFormatShort))
			}
			if status.State == vault.StateError {
				fmt.Printf("  %s %s\n", faint("Error:"), color.RedString(status.Message))
			}
			fmt.Println()
		}
		return nil
	},
}

var feedRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a feed",
	Long:  "Remove a feed folder together with all of its item notes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := lib.RemoveFeed(args[0]); err != nil {
			return feedError(args[0], err)
		}
		fmt.Printf("Removed feed: %s\n", args[0])
		return nil
	},
}

var feedRenameCmd = &cobra.Command{
	Use:   "rename <old> <new>",
	Short: "Rename a feed",
	Long:  "Rename a feed folder and dashboard and update the feed reference of its items",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		newName := models.SafeFileName(args[1])
		if _, err := lib.RenameFeed(args[0], newName); err != nil {
			return feedError(args[0], err)
		}
		fmt.Printf("Renamed feed: %s -> %s\n", args[0], newName)
		return nil
	},
}

var feedSuspendCmd = &cobra.Command{
	Use:   "suspend <name>",
	Short: "Stop polling a feed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setFeedStatus(args[0], vault.Suspended)
	},
}

var feedResumeCmd = &cobra.Command{
	Use:   "resume <name>",
	Short: "Resume polling a suspended feed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setFeedStatus(args[0], vault.Resumed)
	},
}

func init() {
	rootCmd.AddCommand(feedCmd)
	feedCmd.AddCommand(feedAddCmd)
	feedCmd.AddCommand(feedListCmd)
	feedCmd.AddCommand(feedRemoveCmd)
	feedCmd.AddCommand(feedRenameCmd)
	feedCmd.AddCommand(feedSuspendCmd)
	feedCmd.AddCommand(feedResumeCmd)

	feedAddCmd.Flags().StringP("name", "n", "", "feed name (defaults to the feed title)")
	feedAddCmd.Flags().StringP("group", "g", "", "group to organize the feed in")
	feedAddCmd.Flags().IntP("limit", "l", 0, "maximum number of items kept (default from config)")
	feedAddCmd.Flags().Bool("no-discover", false, "treat the URL as a feed URL without discovery")
	feedAddCmd.Flags().Bool("no-update", false, "create the feed without downloading items")
}

// resolveFeed returns the feed URL and a normalized snapshot for input.
func resolveFeed(cmd *cobra.Command, input string, noDiscover bool) (string, *models.TrackedFeed, error) {
	if !noDiscover {
		found, err := discover.Discover(cmd.Context(), input)
		if err != nil {
			return "", nil, fmt.Errorf("failed to discover feed: %w", err)
		}
		return found.URL, found.Feed, nil
	}

	result, err := fetcher.Fetch(cmd.Context(), input, fetch.Validators{})
	if err != nil {
		return "", nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	remote, err := parse.Parse(result.Body, input)
	if err != nil {
		return "", nil, err
	}
	return input, remote, nil
}

// pollNewFeed downloads the first items of a feed that was just added. It
// goes through the poller so the validators are kept and a failure shows
// up on the dashboard like any other poll.
func pollNewFeed(ctx context.Context, feed *vault.FeedNote) (int, error) {
	poller, _, mapper := newPoller()
	res := poller.Poll(ctx, feed)
	if res.Err != nil {
		return 0, res.Err
	}
	if _, err := mapper.UpdateTagMap(); err != nil {
		return res.New, fmt.Errorf("failed to update tag map: %w", err)
	}
	return res.New, nil
}

func findFeedByURL(feedURL string) (*vault.FeedNote, error) {
	feeds, err := lib.Feeds()
	if err != nil {
		return nil, fmt.Errorf("failed to list feeds: %w", err)
	}
	for _, feed := range feeds {
		if feed.Record.FeedURL == feedURL {
			return feed, nil
		}
	}
	return nil, nil
}

// defaultFeedName prefers the feed title, then the host of the feed URL.
func defaultFeedName(remote *models.TrackedFeed, feedURL string) string {
	if title := strings.TrimSpace(remote.Title); title != "" {
		return title
	}
	if u, err := url.Parse(feedURL); err == nil && u.Host != "" {
		return strings.TrimPrefix(u.Host, "www.")
	}
	return feedURL
}

// feedData fills the dashboard template.
func feedData(feedURL string, remote *models.TrackedFeed) map[string]string {
	data := map[string]string{
		"feedUrl":     feedURL,
		"site":        remote.SiteURL,
		"description": translator.FragmentAsMarkdown(remote.Description),
	}
	if remote.Image != nil && remote.Image.Src != "" {
		data["image"] = "![](" + remote.Image.Src + ")"
	}
	return data
}

func setFeedStatus(name string, status vault.Status) error {
	feed, err := lib.Feed(name)
	if err != nil {
		return feedError(name, err)
	}
	feed.Record.SetStatus(status)
	if err := lib.SaveFeed(feed); err != nil {
		return fmt.Errorf("failed to save feed: %w", err)
	}
	fmt.Printf("%s %s\n", statusIcon(status), name)
	return nil
}

func statusIcon(s vault.Status) string {
	switch s.State {
	case vault.StateOK:
		return color.GreenString(vault.IconOK)
	case vault.StateError:
		return color.RedString(vault.IconError)
	case vault.StateSuspended:
		return vault.IconSuspended
	default:
		return vault.IconResumed
	}
}

func feedError(name string, err error) error {
	if errors.Is(err, vault.ErrNotFound) {
		return fmt.Errorf("feed not found: %s", name)
	}
	if errors.Is(err, vault.ErrExists) {
		return fmt.Errorf("feed already exists: %s", name)
	}
	return err
}
