// ABOUTME: Interactive TUI wizard for configuring the feednotes vault.
// ABOUTME: 3-step bubbletea model collecting vault directory, feeds folder and cache backend.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harper/feednotes/internal/config"
)

// Step represents the current wizard step.
type Step int

const (
	StepVaultDir Step = iota
	StepFeedsFolder
	StepCache
	StepDone
)

const stepCount = int(StepDone)

// Answers are the values collected by the wizard.
type Answers struct {
	VaultDir    string
	FeedsFolder string
	Cache       string
}

// Defaults are shown as placeholders and used for empty input.
var Defaults = Answers{
	VaultDir:    config.DefaultVaultDir,
	FeedsFolder: config.DefaultFeedsFolder,
	Cache:       "sqlite",
}

// SetupModel is the bubbletea model for the setup wizard.
type SetupModel struct {
	step     Step
	inputs   [stepCount]textinput.Model
	errMsg   string
	quitting bool
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	brandStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	stepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

var stepTitles = [stepCount]string{"Vault Directory", "Feeds Folder", "Metadata Cache"}

// NewSetupModel creates a new setup wizard model, pre-filling with existing config values.
func NewSetupModel(current Answers) SetupModel {
	values := [stepCount]string{current.VaultDir, current.FeedsFolder, current.Cache}
	placeholders := [stepCount]string{Defaults.VaultDir, Defaults.FeedsFolder, Defaults.Cache}

	var m SetupModel
	for i := range m.inputs {
		in := textinput.New()
		in.Placeholder = placeholders[i]
		in.Width = 50
		if values[i] != "" {
			in.SetValue(values[i])
		}
		m.inputs[i] = in
	}
	m.inputs[0].Focus()
	return m
}

// Init implements tea.Model.
func (m SetupModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m SetupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.step == StepDone {
		return m, nil
	}

	idx := int(m.step)
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlC, tea.KeyEscape:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			return m.handleEnter()
		}
	}

	// Forward keys and other messages (e.g. cursor blink) to the active input
	var cmd tea.Cmd
	m.inputs[idx], cmd = m.inputs[idx].Update(msg)
	return m, cmd
}

func (m SetupModel) handleEnter() (tea.Model, tea.Cmd) {
	idx := int(m.step)
	val := strings.TrimSpace(m.inputs[idx].Value())

	switch m.step {
	case StepVaultDir:
		if val == "" {
			val = Defaults.VaultDir
		}
	case StepFeedsFolder:
		val = strings.Trim(val, "/")
		if val == "" {
			val = Defaults.FeedsFolder
		}
		if strings.HasPrefix(val, "..") {
			m.errMsg = "the feeds folder must stay inside the vault"
			return m, nil
		}
	case StepCache:
		val = strings.ToLower(val)
		if val == "" {
			val = Defaults.Cache
		}
		if val != "sqlite" && val != "none" {
			m.errMsg = "cache must be sqlite or none"
			return m, nil
		}
	}

	m.errMsg = ""
	m.inputs[idx].SetValue(val)
	m.inputs[idx].Blur()
	m.step++
	if m.step == StepDone {
		return m, tea.Quit
	}
	m.inputs[m.step].Focus()
	return m, textinput.Blink
}

// View implements tea.Model.
func (m SetupModel) View() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(brandStyle.Render("   FEEDNOTES"))
	b.WriteString(titleStyle.Render(" - Setup"))
	b.WriteString("\n\n")
	b.WriteString("Configure where feednotes keeps your feeds.\n\n")

	if m.step == StepDone {
		b.WriteString(successStyle.Render("Setup complete! Config will be saved."))
		b.WriteString("\n\n")
		b.WriteString(fmt.Sprintf("  Vault directory: %s\n", m.inputs[StepVaultDir].Value()))
		b.WriteString(fmt.Sprintf("  Feeds folder:    %s\n", m.inputs[StepFeedsFolder].Value()))
		b.WriteString(fmt.Sprintf("  Cache:           %s\n", m.inputs[StepCache].Value()))
		b.WriteString("\n")
		return b.String()
	}

	for i := 0; i < int(m.step); i++ {
		b.WriteString(fmt.Sprintf("  %s: %s\n", stepTitles[i], m.inputs[i].Value()))
	}
	if m.step > 0 {
		b.WriteString("\n")
	}

	idx := int(m.step)
	b.WriteString(stepStyle.Render(fmt.Sprintf("Step %d of %d: %s", idx+1, stepCount, stepTitles[idx])))
	b.WriteString("\n")
	hint := fmt.Sprintf("(press Enter for default: %s)", m.inputs[idx].Placeholder)
	if m.step == StepCache {
		hint = "(sqlite or none, press Enter for default)"
	}
	b.WriteString(promptStyle.Render(hint))
	b.WriteString("\n")
	b.WriteString(m.inputs[idx].View())
	b.WriteString("\n")
	if m.errMsg != "" {
		b.WriteString(errorStyle.Render(m.errMsg))
		b.WriteString("\n")
	}

	return b.String()
}

// Result returns the entered values.
func (m SetupModel) Result() Answers {
	return Answers{
		VaultDir:    m.inputs[StepVaultDir].Value(),
		FeedsFolder: m.inputs[StepFeedsFolder].Value(),
		Cache:       m.inputs[StepCache].Value(),
	}
}

// ShouldSave returns true if the wizard completed and the user did not cancel.
func (m SetupModel) ShouldSave() bool {
	return m.step == StepDone && !m.quitting
}
