// ABOUTME: Setup command launching the interactive configuration wizard
// ABOUTME: Saves vault directory, feeds folder and cache backend to the config file

package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/harper/feednotes/internal/config"
	"github.com/harper/feednotes/internal/tui"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Configure the vault interactively",
	Long: `Launch an interactive wizard to choose the vault directory, the folder
holding feeds inside it, and the metadata cache backend.

Existing values are pre-filled. Press Enter to accept, Esc to cancel.`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	current, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	model := tui.NewSetupModel(tui.Answers{
		VaultDir:    current.VaultDir,
		FeedsFolder: current.FeedsFolder,
		Cache:       current.Cache,
	})

	p := tea.NewProgram(model, tea.WithContext(cmd.Context()))
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("setup wizard failed: %w", err)
	}

	m, ok := final.(tui.SetupModel)
	if !ok || !m.ShouldSave() {
		fmt.Println("Setup canceled.")
		return nil
	}

	applyAnswers(current, m.Result())
	if err := current.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := current.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Printf("Config saved to %s\n", config.GetConfigPath())
	return nil
}

func applyAnswers(c *config.Config, a tui.Answers) {
	c.VaultDir = a.VaultDir
	c.FeedsFolder = a.FeedsFolder
	c.Cache = a.Cache
}
