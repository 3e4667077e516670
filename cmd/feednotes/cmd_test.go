// ABOUTME: Tests for CLI commands
// ABOUTME: Tests command structure, flags, and subcommands

package main

import (
	"testing"

	"github.com/harper/feednotes/internal/config"
	"github.com/harper/feednotes/internal/tui"
)

func TestRootCommand(t *testing.T) {
	if rootCmd.Use != "feednotes" {
		t.Errorf("expected Use to be 'feednotes', got %q", rootCmd.Use)
	}
	if rootCmd.Short == "" {
		t.Error("expected root command to have a short description")
	}
	for _, name := range []string{"vault", "log-level"} {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("expected --%s persistent flag to exist", name)
		}
	}
}

func TestFeedCommand(t *testing.T) {
	if feedCmd.Use != "feed" {
		t.Errorf("expected Use to be 'feed', got %q", feedCmd.Use)
	}
	if len(feedCmd.Aliases) == 0 {
		t.Error("expected feed command to have aliases")
	}

	want := map[string]bool{"add": false, "list": false, "remove": false, "rename": false, "suspend": false, "resume": false}
	for _, sub := range feedCmd.Commands() {
		if _, ok := want[sub.Name()]; ok {
			want[sub.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("expected feed subcommand %q", name)
		}
	}
}

func TestFeedAddCommand(t *testing.T) {
	if feedAddCmd.Use != "add <url>" {
		t.Errorf("expected Use to be 'add <url>', got %q", feedAddCmd.Use)
	}
	for _, name := range []string{"name", "group", "limit", "no-discover", "no-update"} {
		if feedAddCmd.Flags().Lookup(name) == nil {
			t.Errorf("expected --%s flag to exist", name)
		}
	}
}

func TestFeedRenameCommand(t *testing.T) {
	if feedRenameCmd.Use != "rename <old> <new>" {
		t.Errorf("expected Use to be 'rename <old> <new>', got %q", feedRenameCmd.Use)
	}
	if err := feedRenameCmd.Args(feedRenameCmd, []string{"only-one"}); err == nil {
		t.Error("expected rename to require two arguments")
	}
}

func TestUpdateCommand(t *testing.T) {
	if updateCmd.Use != "update [name]" {
		t.Errorf("expected Use to be 'update [name]', got %q", updateCmd.Use)
	}
	if updateCmd.Flags().Lookup("force") == nil {
		t.Error("expected --force flag to exist")
	}
}

func TestListCommand(t *testing.T) {
	if listCmd.Use != "list" {
		t.Errorf("expected Use to be 'list', got %q", listCmd.Use)
	}
	for _, name := range []string{"all", "feed", "collection", "limit"} {
		if listCmd.Flags().Lookup(name) == nil {
			t.Errorf("expected --%s flag to exist", name)
		}
	}
}

func TestReadCommand(t *testing.T) {
	if readCmd.Use != "read <item>" {
		t.Errorf("expected Use to be 'read <item>', got %q", readCmd.Use)
	}
	if readCmd.Flags().Lookup("no-mark") == nil {
		t.Error("expected --no-mark flag to exist")
	}
}

func TestMarkCommands(t *testing.T) {
	if markReadCmd.Use != "mark-read [item]" {
		t.Errorf("expected Use to be 'mark-read [item]', got %q", markReadCmd.Use)
	}
	if markUnreadCmd.Use != "mark-unread [item]" {
		t.Errorf("expected Use to be 'mark-unread [item]', got %q", markUnreadCmd.Use)
	}
	for _, cmd := range []string{"before", "feed"} {
		if markReadCmd.Flags().Lookup(cmd) == nil || markUnreadCmd.Flags().Lookup(cmd) == nil {
			t.Errorf("expected --%s flag on mark-read and mark-unread", cmd)
		}
	}
}

func TestPinCommands(t *testing.T) {
	if pinCmd.Use != "pin <item>" {
		t.Errorf("expected Use to be 'pin <item>', got %q", pinCmd.Use)
	}
	if unpinCmd.Use != "unpin <item>" {
		t.Errorf("expected Use to be 'unpin <item>', got %q", unpinCmd.Use)
	}
}

func TestArticleCommand(t *testing.T) {
	if articleCmd.Use != "article <url>" {
		t.Errorf("expected Use to be 'article <url>', got %q", articleCmd.Use)
	}
	if f := articleCmd.Flags().Lookup("folder"); f == nil || f.DefValue != "Articles" {
		t.Error("expected --folder flag defaulting to Articles")
	}
}

func TestTagsCommands(t *testing.T) {
	if tagsSyncCmd.Use != "sync" {
		t.Errorf("expected Use to be 'sync', got %q", tagsSyncCmd.Use)
	}
	if tagsListCmd.Use != "list" {
		t.Errorf("expected Use to be 'list', got %q", tagsListCmd.Use)
	}
}

func TestOPMLCommands(t *testing.T) {
	if opmlImportCmd.Use != "import <file>" {
		t.Errorf("expected Use to be 'import <file>', got %q", opmlImportCmd.Use)
	}
	if opmlExportCmd.Use != "export [file]" {
		t.Errorf("expected Use to be 'export [file]', got %q", opmlExportCmd.Use)
	}
	if opmlImportCmd.Flags().Lookup("no-update") == nil {
		t.Error("expected --no-update flag to exist")
	}
}

func TestCollectionCommands(t *testing.T) {
	if collectionCreateCmd.Use != "create <name>" {
		t.Errorf("expected Use to be 'create <name>', got %q", collectionCreateCmd.Use)
	}
	for _, name := range []string{"feed", "any", "all", "none"} {
		if collectionCreateCmd.Flags().Lookup(name) == nil {
			t.Errorf("expected --%s flag to exist", name)
		}
	}
	if collectionShowCmd.Use != "show <name>" {
		t.Errorf("expected Use to be 'show <name>', got %q", collectionShowCmd.Use)
	}
}

func TestSetupCommand(t *testing.T) {
	if setupCmd.Use != "setup" {
		t.Errorf("expected Use to be 'setup', got %q", setupCmd.Use)
	}
	found := false
	for _, c := range rootCmd.Commands() {
		if c == setupCmd {
			found = true
		}
	}
	if !found {
		t.Error("expected setup to be registered on root")
	}
}

func TestApplyAnswers(t *testing.T) {
	c := &config.Config{TagPrefix: "news", Cache: "sqlite"}
	applyAnswers(c, tui.Answers{VaultDir: "/notes", FeedsFolder: "RSS", Cache: "none"})

	if c.VaultDir != "/notes" || c.FeedsFolder != "RSS" || c.Cache != "none" {
		t.Errorf("answers not applied: %+v", c)
	}
	if c.TagPrefix != "news" {
		t.Errorf("expected unrelated fields untouched, got tag prefix %q", c.TagPrefix)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func TestMCPCommand(t *testing.T) {
	if mcpCmd.Use != "mcp" {
		t.Errorf("expected Use to be 'mcp', got %q", mcpCmd.Use)
	}
	if mcpCmd.RunE == nil {
		t.Error("expected mcp command to have RunE")
	}
}
