// ============================================================================
// VoiceDesk - Terminal Voice Assistant Client
// ============================================================================
//
// Package:     tui
// Description: Translate overlay
// Created:     2026-08-28
// License:     MIT
// ============================================================================

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"voicedesk/internal/persona"
)

// translateModel is the multilingual voice overlay: text to speak,
// target language and persona voice.
type translateModel struct {
	input       textinput.Model
	languages   []persona.Language
	personas    []persona.Persona
	langIndex   int
	personaIdx  int
	editingText bool
}

func newTranslateModel(reg *persona.Registry) translateModel {
	in := textinput.New()
	in.Placeholder = "text to translate and speak"
	in.CharLimit = 500
	in.Prompt = "> "
	in.Width = 50

	personas := reg.Personas()
	personaIdx := 0
	for i, p := range personas {
		if p.Key == persona.DefaultPersonaKey {
			personaIdx = i
			break
		}
	}

	return translateModel{
		input:       in,
		languages:   reg.Languages(),
		personas:    personas,
		personaIdx:  personaIdx,
		editingText: true,
	}
}

func (t *translateModel) open() {
	t.input.SetValue("")
	t.input.Focus()
	t.editingText = true
}

// selection returns the chosen text, language and persona key
func (t *translateModel) selection() (text, language, personaKey string) {
	return strings.TrimSpace(t.input.Value()),
		t.languages[t.langIndex].Name,
		t.personas[t.personaIdx].Key
}

// update handles keys; submit is handled by the caller on enter
func (t *translateModel) update(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "tab":
		t.editingText = !t.editingText
		if t.editingText {
			t.input.Focus()
		} else {
			t.input.Blur()
		}
		return nil
	case "left":
		if !t.editingText {
			t.langIndex = (t.langIndex + len(t.languages) - 1) % len(t.languages)
			return nil
		}
	case "right":
		if !t.editingText {
			t.langIndex = (t.langIndex + 1) % len(t.languages)
			return nil
		}
	case "up":
		if !t.editingText {
			t.personaIdx = (t.personaIdx + len(t.personas) - 1) % len(t.personas)
			return nil
		}
	case "down":
		if !t.editingText {
			t.personaIdx = (t.personaIdx + 1) % len(t.personas)
			return nil
		}
	}

	if t.editingText {
		var cmd tea.Cmd
		t.input, cmd = t.input.Update(msg)
		return cmd
	}
	return nil
}

func (t *translateModel) view(theme Theme) string {
	var b strings.Builder

	b.WriteString(theme.OverlayTitle.Render("Translate & Speak"))
	b.WriteString("\n\n")
	b.WriteString(t.input.View())
	b.WriteString("\n\n")

	lang := t.languages[t.langIndex]
	p := t.personas[t.personaIdx]

	langStyle := theme.SubHeader
	personaStyle := theme.SubHeader
	if !t.editingText {
		langStyle = theme.Header
		personaStyle = theme.Header
	}

	b.WriteString(fmt.Sprintf("Language: %s\n",
		langStyle.Render(fmt.Sprintf("◀ %s (%s) ▶", lang.Name, lang.Code))))
	b.WriteString(fmt.Sprintf("Voice:    %s %s\n",
		personaStyle.Render(fmt.Sprintf("▲ %s ▼", p.DisplayName)),
		theme.SubHeader.Render(p.Description)))

	b.WriteString("\n" + theme.HelpBar.Render("tab switch field · ←→ language · ↑↓ voice · enter speak · esc close"))
	return b.String()
}
