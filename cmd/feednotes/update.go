// ABOUTME: Update command to poll feeds and store new items as notes
// ABOUTME: Polls all feeds concurrently or a single feed by name, with colored progress output

package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harper/feednotes/internal/reconcile"
	"github.com/harper/feednotes/internal/vault"
)

var updateCmd = &cobra.Command{
	Use:   "update [name]",
	Short: "Poll feeds for new items",
	Long: `Poll all feeds, or a single feed by name, and store new items as notes.

Suspended feeds are skipped. Old unpinned items are deleted to keep each feed
within its item limit. Use --force to ignore cache headers.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		var feeds []*vault.FeedNote
		if len(args) == 1 {
			feed, err := lib.Feed(args[0])
			if err != nil {
				return feedError(args[0], err)
			}
			feeds = []*vault.FeedNote{feed}
		} else {
			var err error
			feeds, err = lib.Feeds()
			if err != nil {
				return fmt.Errorf("failed to list feeds: %w", err)
			}
		}

		if len(feeds) == 0 {
			fmt.Println("No feeds found. Add a feed with 'feednotes feed add <url>'")
			return nil
		}

		if force {
			for _, feed := range feeds {
				feed.Record.ETag = ""
				feed.Record.LastModified = ""
			}
		}

		poller, _, _ := newPoller()
		results, err := poller.PollAll(cmd.Context(), feeds)
		printPollResults(results)
		return err
	},
}

func printPollResults(results []reconcile.PollResult) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()

	var totalNew, totalCached, totalSkipped, totalErrors int
	for _, res := range results {
		fmt.Printf("%s: ", res.Feed)
		switch {
		case res.Skipped:
			fmt.Printf("%s suspended\n", faint("-"))
			totalSkipped++
		case res.Err != nil:
			fmt.Printf("%s %s\n", red("x"), res.Err.Error())
			totalErrors++
		case res.NotModified:
			fmt.Printf("%s (cached)\n", faint("-"))
			totalCached++
		case res.New > 0:
			fmt.Printf("%s %d new\n", green("v"), res.New)
			totalNew += res.New
		default:
			fmt.Printf("%s no new items\n", green("v"))
		}
	}

	fmt.Println()
	fmt.Printf("Summary: %d feed(s) polled\n", len(results)-totalSkipped)
	if totalNew > 0 {
		fmt.Printf("  %s %d new items\n", green("v"), totalNew)
	}
	if totalCached > 0 {
		fmt.Printf("  %s %d cached (not modified)\n", faint("-"), totalCached)
	}
	if totalSkipped > 0 {
		fmt.Printf("  %s %d suspended\n", faint("-"), totalSkipped)
	}
	if totalErrors > 0 {
		fmt.Printf("  %s %d errors\n", red("x"), totalErrors)
	}
}

func init() {
	rootCmd.AddCommand(updateCmd)
	updateCmd.Flags().BoolP("force", "f", false, "ignore cache headers and force fetch")
}
