// ============================================================================
// VoiceDesk - Terminal Voice Assistant Client
// ============================================================================
//
// Package:     tui
// Description: Settings overlay
// Created:     2026-08-28
// License:     MIT
// ============================================================================

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"voicedesk/internal/api"
	"voicedesk/internal/config"
)

// settingsRow indices: three key inputs, then the three toggles
const (
	rowGemini = iota
	rowAssemblyAI
	rowMurf
	rowAutoPlay
	rowVAD
	rowDarkMode
	rowCount
)

// settingsModel is the configuration overlay. Key inputs start empty;
// the server status fills the placeholders with masked values, and
// only non-empty inputs are submitted.
type settingsModel struct {
	inputs  []textinput.Model
	cursor  int
	status  map[string]api.KeyState
	warning string
	saving  bool
}

func newSettingsModel() settingsModel {
	inputs := make([]textinput.Model, len(api.KeyNames))
	for i := range inputs {
		in := textinput.New()
		in.Placeholder = "not configured"
		in.EchoMode = textinput.EchoPassword
		in.CharLimit = 128
		in.Prompt = ""
		in.Width = 40
		inputs[i] = in
	}
	return settingsModel{inputs: inputs}
}

// open resets the overlay state for a fresh showing
func (s *settingsModel) open() {
	s.cursor = 0
	s.warning = ""
	s.saving = false
	for i := range s.inputs {
		s.inputs[i].SetValue("")
		s.inputs[i].Blur()
	}
	s.inputs[0].Focus()
}

// applyStatus fills placeholders from the server key state. A failed
// fetch degrades to a warning; editing still works.
func (s *settingsModel) applyStatus(msg keyStatusMsg) {
	if msg.err != nil {
		s.warning = "Could not fetch key status from the server."
		return
	}
	s.status = msg.status
	for i, name := range api.KeyNames {
		if state, ok := msg.status[name]; ok && state.Configured {
			s.inputs[i].Placeholder = state.MaskedKey
		} else {
			s.inputs[i].Placeholder = "not configured"
		}
	}
}

// enteredKeys collects the non-empty key inputs
func (s *settingsModel) enteredKeys() map[string]string {
	keys := make(map[string]string)
	for i, name := range api.KeyNames {
		if v := strings.TrimSpace(s.inputs[i].Value()); v != "" {
			keys[name] = v
		}
	}
	return keys
}

func (s *settingsModel) focusRow(row int) {
	s.cursor = row
	for i := range s.inputs {
		if i == row {
			s.inputs[i].Focus()
		} else {
			s.inputs[i].Blur()
		}
	}
}

// update handles keys while the overlay is open
func (s *settingsModel) update(msg tea.KeyMsg, toggle func(row int)) tea.Cmd {
	switch msg.String() {
	case "up", "shift+tab":
		s.focusRow((s.cursor + rowCount - 1) % rowCount)
		return nil
	case "down", "tab":
		s.focusRow((s.cursor + 1) % rowCount)
		return nil
	case "enter", " ":
		if s.cursor >= rowAutoPlay {
			toggle(s.cursor)
			return nil
		}
		if msg.String() == "enter" {
			s.focusRow((s.cursor + 1) % rowCount)
			return nil
		}
	}

	if s.cursor < len(s.inputs) {
		var cmd tea.Cmd
		s.inputs[s.cursor], cmd = s.inputs[s.cursor].Update(msg)
		return cmd
	}
	return nil
}

// view renders the overlay content
func (s *settingsModel) view(theme Theme, settings config.Settings) string {
	var b strings.Builder

	b.WriteString(theme.OverlayTitle.Render("Settings"))
	b.WriteString("\n\n")

	labels := []string{"Gemini API key", "AssemblyAI API key", "Murf API key"}
	for i, label := range labels {
		marker := "  "
		if s.cursor == i {
			marker = "> "
		}
		b.WriteString(fmt.Sprintf("%s%-20s %s\n", marker, label, s.inputs[i].View()))
	}
	b.WriteString("\n")

	toggles := []struct {
		label string
		on    bool
	}{
		{"Auto-play replies", settings.AutoPlay},
		{"Voice activity detection", settings.VoiceActivityDetection},
		{"Dark mode", settings.DarkMode},
	}
	for i, t := range toggles {
		marker := "  "
		if s.cursor == rowAutoPlay+i {
			marker = "> "
		}
		state := theme.ToggleOff.Render("[ off ]")
		if t.on {
			state = theme.ToggleOn.Render("[ on  ]")
		}
		b.WriteString(fmt.Sprintf("%s%-25s %s\n", marker, t.label, state))
	}

	if s.warning != "" {
		b.WriteString("\n" + theme.NoticeErr.Render(s.warning))
	}
	if s.saving {
		b.WriteString("\n" + theme.SubHeader.Render("Saving keys..."))
	}

	b.WriteString("\n\n" + theme.HelpBar.Render("tab/↑↓ move · space toggle · ctrl+s save keys · esc close"))
	return b.String()
}
