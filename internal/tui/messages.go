// ============================================================================
// VoiceDesk - Terminal Voice Assistant Client
// ============================================================================
//
// Package:     tui
// Description: Bubbletea messages and commands
// Created:     2026-08-28
// License:     MIT
// ============================================================================

package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"voicedesk/internal/api"
	"voicedesk/internal/app"
)

// appEventMsg wraps a controller event for the update loop
type appEventMsg app.Event

// noticeExpiredMsg clears a transient notification
type noticeExpiredMsg struct {
	seq int
}

// keyStatusMsg carries the server-side API key state
type keyStatusMsg struct {
	status map[string]api.KeyState
	err    error
}

// keysSavedMsg reports the outcome of an API key save
type keysSavedMsg struct {
	err error
}

// waitForEvent pumps the next controller event into the program.
// The returned command is re-armed from Update, one event at a time.
func waitForEvent(events <-chan app.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return appEventMsg(ev)
	}
}

// expireNotice schedules clearing of the notification line
func expireNotice(seq int) tea.Cmd {
	return tea.Tick(4*time.Second, func(time.Time) tea.Msg {
		return noticeExpiredMsg{seq: seq}
	})
}

// fetchKeyStatus loads the API key state for the settings panel
func fetchKeyStatus(a *app.App) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		status, err := a.KeyStatus(ctx)
		return keyStatusMsg{status: status, err: err}
	}
}

// saveAPIKeys submits the entered keys to the server
func saveAPIKeys(a *app.App, keys map[string]string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		return keysSavedMsg{err: a.SaveAPIKeys(ctx, keys)}
	}
}
