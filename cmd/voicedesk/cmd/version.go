// ============================================================================
// VoiceDesk - Terminal Voice Assistant Client
// ============================================================================
//
// Package:     cmd
// Description: Version command
// Created:     2026-08-28
// License:     MIT
// ============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags
var Version = "0.1.0-dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("voicedesk %s\n", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
