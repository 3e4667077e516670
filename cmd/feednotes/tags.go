// ABOUTME: Tags command for maintaining the tag map note
// ABOUTME: Sync appends pending mappings and prunes unused identity mappings

package main

import (
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "Manage feed hashtags",
	Long:  "Inspect hashtag usage and maintain the tag map that translates feed categories",
}

var tagsSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile the tag map with tag usage in the vault",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := newMapper().UpdateTagMap()
		if err != nil {
			return fmt.Errorf("failed to update tag map: %w", err)
		}
		fmt.Printf("Tag map %s: %d added, %d pruned\n", cfg.GetTagMapNote(), res.Added, res.Pruned)
		if res.Malformed > 0 {
			fmt.Printf("  %s %d malformed rows skipped\n", color.YellowString("!"), res.Malformed)
		}
		return nil
	},
}

var tagsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List hashtags used in the vault",
	RunE: func(cmd *cobra.Command, args []string) error {
		counts, err := lib.Vault().TagCounts()
		if err != nil {
			return fmt.Errorf("failed to count tags: %w", err)
		}
		if len(counts) == 0 {
			fmt.Println("No tags found.")
			return nil
		}

		names := make([]string, 0, len(counts))
		for tag := range counts {
			names = append(names, tag)
		}
		sort.Strings(names)

		faint := color.New(color.Faint).SprintFunc()
		for _, tag := range names {
			fmt.Printf("%s %s\n", tag, faint(counts[tag]))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tagsCmd)
	tagsCmd.AddCommand(tagsSyncCmd)
	tagsCmd.AddCommand(tagsListCmd)
}
