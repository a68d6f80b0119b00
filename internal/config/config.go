// ============================================================================
// VoiceDesk - Terminal Voice Assistant Client
// ============================================================================
//
// Package:     config
// Description: Application configuration loaded from TOML
// Created:     2026-08-28
// License:     MIT
// ============================================================================

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds the application configuration
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Audio   AudioConfig   `toml:"audio"`
	VAD     VADConfig     `toml:"vad"`
	Logging LoggingConfig `toml:"logging"`
	Storage StorageConfig `toml:"storage"`
}

// ServerConfig holds backend endpoint configuration
type ServerConfig struct {
	// BaseURL is the HTTP base of the assistant backend. The websocket
	// URL is derived from it by swapping the scheme.
	BaseURL        string `toml:"base_url"`
	StreamPath     string `toml:"stream_path"`
	RequestTimeout int    `toml:"request_timeout_seconds"`
	UploadTimeout  int    `toml:"upload_timeout_seconds"`
}

// AudioConfig holds capture and playback parameters
type AudioConfig struct {
	SampleRate  int    `toml:"sample_rate"`
	Channels    int    `toml:"channels"`
	FrameSize   int    `toml:"frame_size"`
	InputDevice string `toml:"input_device"`
}

// VADConfig holds voice activity detection parameters
type VADConfig struct {
	Mode              int     `toml:"mode"`
	SilenceDuration   float64 `toml:"silence_duration_seconds"`
	MinSpeechDuration float64 `toml:"min_speech_duration_seconds"`
}

// LoggingConfig holds logging parameters
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	File   string `toml:"file"`
}

// StorageConfig holds local persistence paths
type StorageConfig struct {
	Dir          string `toml:"dir"`
	PersonasFile string `toml:"personas_file"`
}

// DefaultConfig returns the configuration used when no config file exists
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			BaseURL:        "http://localhost:8000",
			StreamPath:     "/ws",
			RequestTimeout: 60,
			UploadTimeout:  120,
		},
		Audio: AudioConfig{
			SampleRate: 16000,
			Channels:   1,
			FrameSize:  4096,
		},
		VAD: VADConfig{
			Mode:              2,
			SilenceDuration:   1.5,
			MinSpeechDuration: 0.5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Storage: StorageConfig{},
	}
}

// Dir returns the configuration directory (~/.config/voicedesk)
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "voicedesk"), nil
}

// DefaultPath returns the default config file path
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the configuration from the given path. A missing file is
// not an error and yields the defaults. Values absent from the file
// keep their default.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the audio and VAD
// layers cannot work with.
func (c *Config) Validate() error {
	if c.Server.BaseURL == "" {
		return fmt.Errorf("server.base_url must not be empty")
	}
	switch c.Audio.SampleRate {
	case 8000, 16000, 32000, 48000:
	default:
		return fmt.Errorf("audio.sample_rate must be one of 8000, 16000, 32000, 48000, got %d", c.Audio.SampleRate)
	}
	if c.Audio.Channels != 1 {
		return fmt.Errorf("audio.channels must be 1, got %d", c.Audio.Channels)
	}
	if c.Audio.FrameSize <= 0 {
		return fmt.Errorf("audio.frame_size must be positive, got %d", c.Audio.FrameSize)
	}
	if c.VAD.Mode < 0 || c.VAD.Mode > 3 {
		return fmt.Errorf("vad.mode must be between 0 and 3, got %d", c.VAD.Mode)
	}
	return nil
}

// StorageDir returns the directory for chat sessions and settings,
// falling back to the config directory when unset.
func (c *Config) StorageDir() (string, error) {
	if c.Storage.Dir != "" {
		return c.Storage.Dir, nil
	}
	return Dir()
}

// LogFile returns the log file path, falling back to voicedesk.log in
// the config directory when unset.
func (c *Config) LogFile() (string, error) {
	if c.Logging.File != "" {
		return c.Logging.File, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "voicedesk.log"), nil
}

// PersonasFile returns the persona override file path, falling back to
// personas.yaml in the config directory when unset. The file is
// optional either way.
func (c *Config) PersonasFile() (string, error) {
	if c.Storage.PersonasFile != "" {
		return c.Storage.PersonasFile, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "personas.yaml"), nil
}
