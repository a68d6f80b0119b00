// ============================================================================
// VoiceDesk - Terminal Voice Assistant Client
// ============================================================================
//
// Package:     logging
// Description: File-backed log output
// Created:     2026-08-28
// License:     MIT
// ============================================================================

package logging

import (
	"fmt"
	"os"
	"path/filepath"
)

// OpenFile opens (or creates) a log file for appending. The parent
// directory is created if it does not exist. A TUI owns the terminal,
// so interactive runs log to a file instead of stderr.
func OpenFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}
