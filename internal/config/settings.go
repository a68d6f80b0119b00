// ============================================================================
// VoiceDesk - Terminal Voice Assistant Client
// ============================================================================
//
// Package:     config
// Description: User settings persisted as JSON
// Created:     2026-08-28
// License:     MIT
// ============================================================================

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Settings holds user preferences toggled at runtime. They are stored
// separately from the TOML config because the UI writes them back.
type Settings struct {
	AutoPlay               bool              `json:"auto_play"`
	VoiceActivityDetection bool              `json:"voice_activity_detection"`
	DarkMode               bool              `json:"dark_mode"`
	APIKeys                map[string]string `json:"api_keys"`
}

// DefaultSettings returns the settings for a fresh installation
func DefaultSettings() *Settings {
	return &Settings{
		AutoPlay:               true,
		VoiceActivityDetection: true,
		DarkMode:               true,
		APIKeys:                map[string]string{},
	}
}

// SettingsStore loads and saves settings under a fixed directory
type SettingsStore struct {
	path string
}

// NewSettingsStore creates a store writing settings.json into dir
func NewSettingsStore(dir string) *SettingsStore {
	return &SettingsStore{path: filepath.Join(dir, "settings.json")}
}

// Path returns the settings file path
func (s *SettingsStore) Path() string {
	return s.path
}

// Load reads the persisted settings. A missing file yields the
// defaults. Fields absent from the file keep their default value, so
// settings written by older versions stay usable.
func (s *SettingsStore) Load() (*Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	if err := json.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	if settings.APIKeys == nil {
		settings.APIKeys = map[string]string{}
	}
	return settings, nil
}

// Save writes the settings atomically via a temporary file
func (s *SettingsStore) Save(settings *Settings) error {
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace settings file: %w", err)
	}
	return nil
}
