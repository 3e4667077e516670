// ABOUTME: OPML commands for importing and exporting feed subscriptions
// ABOUTME: Import creates feed folders for unknown URLs; export writes all feeds grouped by group

package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harper/feednotes/internal/models"
	"github.com/harper/feednotes/internal/opml"
	"github.com/harper/feednotes/internal/vault"
)

var opmlCmd = &cobra.Command{
	Use:   "opml",
	Short: "Import or export OPML subscriptions",
}

var opmlImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import feeds from an OPML file",
	Long:  "Create a feed for every subscription in the OPML file that is not in the vault yet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		noUpdate, _ := cmd.Flags().GetBool("no-update")

		doc, err := opml.ParseFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read OPML: %w", err)
		}
		created, skipped, failed := importSubscriptions(doc.Subscriptions())

		fmt.Printf("Imported %d feed(s), %d already present", len(created), skipped)
		if failed > 0 {
			fmt.Printf(", %s", color.RedString("%d failed", failed))
		}
		fmt.Println()

		if noUpdate || len(created) == 0 {
			return nil
		}
		fmt.Println()
		poller, _, _ := newPoller()
		results, err := poller.PollAll(cmd.Context(), created)
		printPollResults(results)
		return err
	},
}

var opmlExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export feeds as OPML",
	Long:  "Write all feeds as OPML to a file, or to standard output when no file is given",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		feeds, err := lib.Feeds()
		if err != nil {
			return fmt.Errorf("failed to list feeds: %w", err)
		}
		doc := opml.NewDocument("feednotes feeds", subscriptionsOf(feeds))

		if len(args) == 0 {
			return doc.Write(os.Stdout)
		}
		if err := doc.WriteFile(args[0]); err != nil {
			return fmt.Errorf("failed to write OPML file: %w", err)
		}
		fmt.Printf("Exported %d feed(s) to %s\n", len(feeds), args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(opmlCmd)
	opmlCmd.AddCommand(opmlImportCmd)
	opmlCmd.AddCommand(opmlExportCmd)

	opmlImportCmd.Flags().Bool("no-update", false, "create feeds without downloading items")
}

// importSubscriptions creates feeds for subscriptions whose URL is unknown.
func importSubscriptions(subs []opml.Subscription) (created []*vault.FeedNote, skipped, failed int) {
	feeds, err := lib.Feeds()
	if err != nil {
		logger.LogError("failed to list feeds", err)
	}
	known := make(map[string]bool, len(feeds))
	for _, feed := range feeds {
		known[feed.Record.FeedURL] = true
	}

	for _, sub := range subs {
		if known[sub.URL] {
			skipped++
			continue
		}
		name := models.SafeFileName(defaultFeedName(&models.TrackedFeed{Title: sub.Title}, sub.URL))
		rec := &vault.FeedRecord{
			FeedURL:   sub.URL,
			Site:      sub.SiteURL,
			ItemLimit: cfg.GetDefaultItemLimit(),
			Status:    vault.Resumed.String(),
			Group:     sub.Group,
		}
		feed, err := lib.CreateFeed(name, rec, nil)
		if err != nil {
			fmt.Printf("%s %s: %v\n", color.RedString("x"), sub.URL, err)
			failed++
			continue
		}
		known[sub.URL] = true
		created = append(created, feed)
	}
	return created, skipped, failed
}

func subscriptionsOf(feeds []*vault.FeedNote) []opml.Subscription {
	subs := make([]opml.Subscription, 0, len(feeds))
	for _, feed := range feeds {
		subs = append(subs, opml.Subscription{
			URL:     feed.Record.FeedURL,
			Title:   feed.Name,
			SiteURL: feed.Record.Site,
			Group:   feed.Record.Group,
		})
	}
	return subs
}
