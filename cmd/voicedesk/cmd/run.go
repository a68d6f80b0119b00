// ============================================================================
// VoiceDesk - Terminal Voice Assistant Client
// ============================================================================
//
// Package:     cmd
// Description: Run the interactive client
// Created:     2026-08-28
// License:     MIT
// ============================================================================

package cmd

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"voicedesk/internal/api"
	"voicedesk/internal/app"
	"voicedesk/internal/audio"
	"voicedesk/internal/config"
	"voicedesk/internal/persona"
	"voicedesk/internal/session"
	"voicedesk/internal/tui"
	"voicedesk/pkg/logging"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the interactive client",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runClient()
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runClient() error {
	cfgPath := cfgFile
	if cfgPath == "" {
		var err error
		cfgPath, err = config.DefaultPath()
		if err != nil {
			return err
		}
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		printError("loading config", err)
		return err
	}
	if serverURL != "" {
		cfg.Server.BaseURL = serverURL
	}

	logFile, err := cfg.LogFile()
	if err != nil {
		return err
	}
	out, err := logging.OpenFile(logFile)
	if err != nil {
		printError("opening log file", err)
		return err
	}
	defer out.Close()

	log := logging.NewWithConfig(logging.Config{
		Level:  logging.ParseLevel(cfg.Logging.Level),
		Format: logging.Format(cfg.Logging.Format),
		Output: out,
		Name:   "voicedesk",
	})
	log.Info("starting", "server", cfg.Server.BaseURL)

	storageDir, err := cfg.StorageDir()
	if err != nil {
		return err
	}

	setStore := config.NewSettingsStore(storageDir)
	settings, err := setStore.Load()
	if err != nil {
		printError("loading settings", err)
		return err
	}

	store, err := session.NewStore(storageDir)
	if err != nil {
		printError("loading sessions", err)
		return err
	}

	player, err := audio.NewPlayback()
	if err != nil {
		printError("initializing audio output", err)
		return err
	}
	defer player.Close()

	registry := persona.NewRegistry()
	if path, err := cfg.PersonasFile(); err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if err := registry.LoadFile(path); err != nil {
				log.Warn("ignoring persona override file", "path", path, "error", err.Error())
			}
		}
	}

	client := api.NewClient(api.Config{
		BaseURL:        cfg.Server.BaseURL,
		RequestTimeout: time.Duration(cfg.Server.RequestTimeout) * time.Second,
		UploadTimeout:  time.Duration(cfg.Server.UploadTimeout) * time.Second,
	}, log.WithName("api"))

	controller, err := app.New(app.Options{
		Config:        cfg,
		Settings:      settings,
		SettingsStore: setStore,
		Store:         store,
		Client:        client,
		Player:        player,
		Personas:      registry,
		Log:           log,
	})
	if err != nil {
		printError("starting controller", err)
		return err
	}
	defer controller.Close()

	program := tea.NewProgram(tui.NewModel(controller), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("client exited with error: %w", err)
	}

	log.Info("shutting down")
	return nil
}
