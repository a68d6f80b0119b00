// ============================================================================
// VoiceDesk - Terminal Voice Assistant Client
// ============================================================================
//
// Package:     tui
// Description: Tests for overlay models
// Created:     2026-08-28
// License:     MIT
// ============================================================================

package tui

import (
	"errors"
	"strings"
	"testing"

	"voicedesk/internal/api"
	"voicedesk/internal/config"
	"voicedesk/internal/persona"
)

func TestSettingsEnteredKeysSkipsEmpty(t *testing.T) {
	s := newSettingsModel()
	s.open()

	s.inputs[rowGemini].SetValue("  gem-123  ")
	s.inputs[rowAssemblyAI].SetValue("")
	s.inputs[rowMurf].SetValue("   ")

	keys := s.enteredKeys()
	if len(keys) != 1 {
		t.Fatalf("entered %d keys, want 1", len(keys))
	}
	if keys[api.KeyGemini] != "gem-123" {
		t.Errorf("gemini key = %q, want trimmed value", keys[api.KeyGemini])
	}
}

func TestSettingsApplyStatus(t *testing.T) {
	s := newSettingsModel()
	s.open()

	s.applyStatus(keyStatusMsg{status: map[string]api.KeyState{
		api.KeyGemini: {Configured: true, MaskedKey: "***ab12"},
		api.KeyMurf:   {Configured: false},
	}})

	if got := s.inputs[rowGemini].Placeholder; got != "***ab12" {
		t.Errorf("gemini placeholder = %q, want masked key", got)
	}
	if got := s.inputs[rowMurf].Placeholder; got != "not configured" {
		t.Errorf("murf placeholder = %q", got)
	}
	if s.warning != "" {
		t.Errorf("warning = %q, want none", s.warning)
	}
}

func TestSettingsApplyStatusDegradesToWarning(t *testing.T) {
	s := newSettingsModel()
	s.open()

	s.applyStatus(keyStatusMsg{err: errors.New("connection refused")})

	if s.warning == "" {
		t.Error("a failed status fetch should set a warning")
	}
	// Editing still possible: inputs keep their default placeholder.
	if got := s.inputs[rowGemini].Placeholder; got != "not configured" {
		t.Errorf("placeholder = %q after failed fetch", got)
	}
}

func TestSettingsViewShowsToggles(t *testing.T) {
	s := newSettingsModel()
	s.open()
	theme := buildTheme(true)

	settings := config.Settings{AutoPlay: true, VoiceActivityDetection: false, DarkMode: true}
	out := s.view(theme, settings)

	if !strings.Contains(out, "Auto-play replies") {
		t.Error("view missing auto-play toggle")
	}
	if !strings.Contains(out, "Voice activity detection") {
		t.Error("view missing VAD toggle")
	}
	if !strings.Contains(out, "Dark mode") {
		t.Error("view missing dark mode toggle")
	}
}

func TestTranslateSelection(t *testing.T) {
	tm := newTranslateModel(persona.NewRegistry())
	tm.open()
	tm.input.SetValue("  hello world  ")

	text, language, personaKey := tm.selection()
	if text != "hello world" {
		t.Errorf("text = %q, want trimmed", text)
	}
	if language != "english" {
		t.Errorf("default language = %q, want english", language)
	}
	if personaKey != persona.DefaultPersonaKey {
		t.Errorf("default persona = %q, want %q", personaKey, persona.DefaultPersonaKey)
	}
}

func TestTranslateLanguageWrapAround(t *testing.T) {
	reg := persona.NewRegistry()
	tm := newTranslateModel(reg)

	n := len(reg.Languages())
	tm.langIndex = 0
	tm.editingText = false

	tm.langIndex = (tm.langIndex + n - 1) % n
	if tm.langIndex != n-1 {
		t.Errorf("wrap backwards to %d, want %d", tm.langIndex, n-1)
	}
	tm.langIndex = (tm.langIndex + 1) % n
	if tm.langIndex != 0 {
		t.Errorf("wrap forwards to %d, want 0", tm.langIndex)
	}
}

func TestThemesDiffer(t *testing.T) {
	dark := buildTheme(true)
	light := buildTheme(false)

	if dark.Header.GetForeground() == light.Header.GetForeground() {
		t.Error("dark and light themes should use different text colors")
	}
}
