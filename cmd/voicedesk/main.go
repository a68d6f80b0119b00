// ============================================================================
// VoiceDesk - Terminal Voice Assistant Client
// ============================================================================
//
// Package:     main
// Description: Entry point
// Created:     2026-08-28
// License:     MIT
// ============================================================================

package main

import (
	"os"

	"voicedesk/cmd/voicedesk/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
