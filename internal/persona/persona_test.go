// ============================================================================
// VoiceDesk - Terminal Voice Assistant Client
// ============================================================================
//
// Package:     persona
// Description: Tests for the persona registry
// Created:     2026-08-28
// License:     MIT
// ============================================================================

package persona

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBuiltinPersonas(t *testing.T) {
	r := NewRegistry()

	personas := r.Personas()
	if len(personas) != 3 {
		t.Fatalf("registry has %d personas, want 3", len(personas))
	}

	wantKeys := []string{"nobita", "shinchan", "girl"}
	for i, key := range wantKeys {
		if personas[i].Key != key {
			t.Errorf("persona %d key = %q, want %q", i, personas[i].Key, key)
		}
		if personas[i].Greeting == "" {
			t.Errorf("persona %q has no greeting", key)
		}
	}
}

func TestGetFallsBackToDefault(t *testing.T) {
	r := NewRegistry()

	got := r.Get("does-not-exist")
	if got.Key != DefaultPersonaKey {
		t.Errorf("Get(unknown) = %q, want default %q", got.Key, DefaultPersonaKey)
	}

	got = r.Get("nobita")
	if got.Key != "nobita" {
		t.Errorf("Get(nobita) = %q", got.Key)
	}
}

func TestSupportedLanguages(t *testing.T) {
	r := NewRegistry()

	if len(r.Languages()) != 12 {
		t.Errorf("registry has %d languages, want 12", len(r.Languages()))
	}

	tests := []struct {
		name string
		want bool
	}{
		{"english", true},
		{"japanese", true},
		{"arabic", true},
		{"klingon", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := r.IsSupported(tt.name); got != tt.want {
			t.Errorf("IsSupported(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestLoadFileOverridesAndAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "personas.yaml")
	content := `
personas:
  - key: nobita
    name: Nobita
    display_name: Nobita (quiet)
    description: Less dramatic variant
    greeting: Hello.
  - key: pirate
    name: Pirate
    display_name: Pirate
    description: Talks like a pirate
    greeting: Ahoy!
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	r := NewRegistry()
	if err := r.LoadFile(path); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if len(r.Personas()) != 4 {
		t.Fatalf("registry has %d personas, want 4 after override", len(r.Personas()))
	}
	if got := r.Get("nobita").DisplayName; got != "Nobita (quiet)" {
		t.Errorf("overridden display name = %q", got)
	}
	if got := r.Get("pirate").Greeting; got != "Ahoy!" {
		t.Errorf("appended persona greeting = %q", got)
	}
	// Languages untouched when the file has none.
	if len(r.Languages()) != 12 {
		t.Errorf("languages changed by a personas-only file")
	}
}

func TestLoadFileRejectsMissingKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "personas.yaml")
	if err := os.WriteFile(path, []byte("personas:\n  - name: NoKey\n"), 0644); err != nil {
		t.Fatal(err)
	}

	r := NewRegistry()
	if err := r.LoadFile(path); err == nil {
		t.Error("LoadFile() should reject a persona without a key")
	}
}

func TestLoadFileMissing(t *testing.T) {
	r := NewRegistry()
	if err := r.LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("LoadFile() should fail on a missing file")
	}
}
