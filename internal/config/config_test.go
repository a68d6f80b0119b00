// ============================================================================
// VoiceDesk - Terminal Voice Assistant Client
// ============================================================================
//
// Package:     config
// Description: Tests for configuration loading and validation
// Created:     2026-08-28
// License:     MIT
// ============================================================================

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.BaseURL != "http://localhost:8000" {
		t.Errorf("default base_url = %q, want %q", cfg.Server.BaseURL, "http://localhost:8000")
	}
	if cfg.Server.StreamPath != "/ws" {
		t.Errorf("default stream_path = %q, want %q", cfg.Server.StreamPath, "/ws")
	}
	if cfg.Audio.SampleRate != 16000 {
		t.Errorf("default sample_rate = %d, want 16000", cfg.Audio.SampleRate)
	}
	if cfg.Audio.FrameSize != 4096 {
		t.Errorf("default frame_size = %d, want 4096", cfg.Audio.FrameSize)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v, want nil for missing file", err)
	}
	if cfg.Audio.SampleRate != 16000 {
		t.Errorf("sample_rate = %d, want default 16000", cfg.Audio.SampleRate)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[server]
base_url = "https://assistant.example.com"

[vad]
mode = 3
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.BaseURL != "https://assistant.example.com" {
		t.Errorf("base_url = %q, want overridden value", cfg.Server.BaseURL)
	}
	if cfg.VAD.Mode != 3 {
		t.Errorf("vad mode = %d, want 3", cfg.VAD.Mode)
	}
	if cfg.Audio.SampleRate != 16000 {
		t.Errorf("sample_rate = %d, want default 16000", cfg.Audio.SampleRate)
	}
	if cfg.Server.StreamPath != "/ws" {
		t.Errorf("stream_path = %q, want default /ws", cfg.Server.StreamPath)
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("not [valid toml"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Load() should fail on invalid TOML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"sample rate 8000", func(c *Config) { c.Audio.SampleRate = 8000 }, false},
		{"sample rate 48000", func(c *Config) { c.Audio.SampleRate = 48000 }, false},
		{"sample rate 44100", func(c *Config) { c.Audio.SampleRate = 44100 }, true},
		{"empty base url", func(c *Config) { c.Server.BaseURL = "" }, true},
		{"stereo", func(c *Config) { c.Audio.Channels = 2 }, true},
		{"zero frame size", func(c *Config) { c.Audio.FrameSize = 0 }, true},
		{"vad mode negative", func(c *Config) { c.VAD.Mode = -1 }, true},
		{"vad mode too high", func(c *Config) { c.VAD.Mode = 4 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSettingsDefaults(t *testing.T) {
	store := NewSettingsStore(t.TempDir())

	settings, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !settings.AutoPlay {
		t.Error("auto_play should default to true")
	}
	if !settings.VoiceActivityDetection {
		t.Error("voice_activity_detection should default to true")
	}
	if !settings.DarkMode {
		t.Error("dark_mode should default to true")
	}
	if settings.APIKeys == nil {
		t.Error("api_keys should be initialized")
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	store := NewSettingsStore(t.TempDir())

	settings := DefaultSettings()
	settings.AutoPlay = false
	settings.DarkMode = false
	settings.APIKeys["GEMINI_API_KEY"] = "secret-123"

	if err := store.Save(settings); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if loaded.AutoPlay {
		t.Error("auto_play should survive round trip as false")
	}
	if loaded.DarkMode {
		t.Error("dark_mode should survive round trip as false")
	}
	if !loaded.VoiceActivityDetection {
		t.Error("voice_activity_detection should stay true")
	}
	if loaded.APIKeys["GEMINI_API_KEY"] != "secret-123" {
		t.Errorf("api key = %q, want %q", loaded.APIKeys["GEMINI_API_KEY"], "secret-123")
	}
}

func TestSettingsPartialFileMergesDefaults(t *testing.T) {
	dir := t.TempDir()
	store := NewSettingsStore(dir)

	// A file written by an older version that only knows dark_mode.
	if err := os.WriteFile(store.Path(), []byte(`{"dark_mode": false}`), 0600); err != nil {
		t.Fatal(err)
	}

	settings, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if settings.DarkMode {
		t.Error("dark_mode = true, want false from file")
	}
	if !settings.AutoPlay {
		t.Error("auto_play should keep its default when absent from file")
	}
	if settings.APIKeys == nil {
		t.Error("api_keys should never be nil after Load")
	}
}

func TestSettingsCorruptFile(t *testing.T) {
	dir := t.TempDir()
	store := NewSettingsStore(dir)

	if err := os.WriteFile(store.Path(), []byte("{broken"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := store.Load(); err == nil {
		t.Error("Load() should fail on corrupt settings file")
	}
}
