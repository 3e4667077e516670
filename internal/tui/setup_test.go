// ABOUTME: Unit tests for the feednotes setup TUI wizard bubbletea model.
// ABOUTME: Uses synthetic tea.Msg values to test state machine transitions.
package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func enter(m SetupModel) SetupModel {
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return updated.(SetupModel)
}

func TestNewSetupModel_DefaultValues(t *testing.T) {
	m := NewSetupModel(Answers{})
	if m.step != StepVaultDir {
		t.Errorf("expected initial step StepVaultDir, got %d", m.step)
	}
	for i, in := range m.inputs {
		if in.Value() != "" {
			t.Errorf("expected empty input %d for new config, got %q", i, in.Value())
		}
	}
}

func TestNewSetupModel_ExistingConfig(t *testing.T) {
	m := NewSetupModel(Answers{VaultDir: "/notes", FeedsFolder: "RSS", Cache: "none"})
	if m.inputs[StepVaultDir].Value() != "/notes" {
		t.Errorf("expected pre-filled vault dir, got %q", m.inputs[StepVaultDir].Value())
	}
	if m.inputs[StepFeedsFolder].Value() != "RSS" {
		t.Errorf("expected pre-filled feeds folder, got %q", m.inputs[StepFeedsFolder].Value())
	}
}

func TestSetupModel_DefaultsFlow(t *testing.T) {
	m := NewSetupModel(Answers{})

	m = enter(m)
	if m.step != StepFeedsFolder {
		t.Fatalf("expected StepFeedsFolder, got %d", m.step)
	}
	m = enter(m)
	if m.step != StepCache {
		t.Fatalf("expected StepCache, got %d", m.step)
	}
	m = enter(m)
	if m.step != StepDone {
		t.Fatalf("expected StepDone, got %d", m.step)
	}

	if got := m.Result(); got != Defaults {
		t.Errorf("Result() = %+v, want defaults %+v", got, Defaults)
	}
	if !m.ShouldSave() {
		t.Error("expected ShouldSave true after completing flow")
	}
}

func TestSetupModel_FeedsFolderValidation(t *testing.T) {
	m := enter(NewSetupModel(Answers{}))
	m.inputs[StepFeedsFolder].SetValue("../outside")

	m = enter(m)
	if m.step != StepFeedsFolder {
		t.Errorf("expected to stay on StepFeedsFolder, got %d", m.step)
	}
	if !strings.Contains(m.View(), "inside the vault") {
		t.Error("expected view to show the validation error")
	}

	m.inputs[StepFeedsFolder].SetValue("/Reading/Feeds/")
	m = enter(m)
	if m.step != StepCache {
		t.Errorf("expected StepCache after valid folder, got %d", m.step)
	}
	if got := m.inputs[StepFeedsFolder].Value(); got != "Reading/Feeds" {
		t.Errorf("expected trimmed folder, got %q", got)
	}
}

func TestSetupModel_CacheValidation(t *testing.T) {
	m := enter(enter(NewSetupModel(Answers{})))

	m.inputs[StepCache].SetValue("redis")
	m = enter(m)
	if m.step != StepCache {
		t.Errorf("expected to stay on StepCache with invalid cache, got %d", m.step)
	}

	m.inputs[StepCache].SetValue("NONE")
	m = enter(m)
	if m.Result().Cache != "none" {
		t.Errorf("expected lowercased cache, got %q", m.Result().Cache)
	}
}

func TestSetupModel_QuitKeys(t *testing.T) {
	for _, key := range []tea.KeyType{tea.KeyCtrlC, tea.KeyEscape} {
		m := NewSetupModel(Answers{})
		updated, cmd := m.Update(tea.KeyMsg{Type: key})
		m = updated.(SetupModel)
		if cmd == nil {
			t.Errorf("expected quit cmd on %v", key)
		}
		if !m.quitting || m.ShouldSave() {
			t.Errorf("expected canceled wizard on %v", key)
		}
	}
}

func TestSetupModel_View(t *testing.T) {
	m := NewSetupModel(Answers{})
	if !strings.Contains(m.View(), "FEEDNOTES") {
		t.Error("expected view to contain FEEDNOTES branding")
	}
	if !strings.Contains(m.View(), "Vault Directory") {
		t.Error("expected first step view to mention Vault Directory")
	}

	m = enter(enter(enter(m)))
	if !strings.Contains(m.View(), "saved") {
		t.Error("expected StepDone view to mention saved")
	}
}
