// ============================================================================
// VoiceDesk - Terminal Voice Assistant Client
// ============================================================================
//
// Package:     cmd
// Description: Root command
// Created:     2026-08-28
// License:     MIT
// ============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	serverURL string
)

var rootCmd = &cobra.Command{
	Use:   "voicedesk",
	Short: "VoiceDesk - terminal client for a voice assistant backend",
	Long: `VoiceDesk is a terminal client for a voice/text assistant backend.

Talk to the assistant with your microphone, type messages, upload
files for analysis and have replies translated and spoken in different
voices. Conversations are stored locally as chat sessions.

Commands:
  run      - Start the interactive client (default)
  devices  - List audio devices
  version  - Print the version`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runClient()
	},
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/voicedesk/config.toml)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "backend base URL (overrides config)")
}

func printError(msg string, err error) {
	fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
}
