// ============================================================================
// VoiceDesk - Terminal Voice Assistant Client
// ============================================================================
//
// Package:     tui
// Description: Theme and styles for the chat view
// Created:     2026-08-28
// License:     MIT
// ============================================================================

package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme is a resolved style set. Two variants exist, dark and light,
// and the dark mode toggle swaps between them at runtime.
type Theme struct {
	Logo      lipgloss.Style
	Header    lipgloss.Style
	SubHeader lipgloss.Style
	StatusBar lipgloss.Style
	HelpBar   lipgloss.Style
	Notice    lipgloss.Style
	NoticeErr lipgloss.Style
	Recording lipgloss.Style
	Playing   lipgloss.Style
	Partial   lipgloss.Style

	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	UserMessage    lipgloss.Style
	AssistantMsg   lipgloss.Style

	Panel        lipgloss.Style
	FocusedPanel lipgloss.Style
	Overlay      lipgloss.Style
	OverlayTitle lipgloss.Style

	SidebarItem     lipgloss.Style
	SidebarSelected lipgloss.Style
	SidebarTime     lipgloss.Style

	ToggleOn  lipgloss.Style
	ToggleOff lipgloss.Style
}

func buildTheme(dark bool) Theme {
	var (
		primary   = lipgloss.Color("#8B5CF6")
		secondary = lipgloss.Color("#06B6D4")
		success   = lipgloss.Color("#10B981")
		errColor  = lipgloss.Color("#EF4444")
		accent    = lipgloss.Color("#F59E0B")
	)

	var text, textMuted, dimmed, bgPanel, bgUser lipgloss.Color
	if dark {
		text = lipgloss.Color("#F8FAFC")
		textMuted = lipgloss.Color("#94A3B8")
		dimmed = lipgloss.Color("#374151")
		bgPanel = lipgloss.Color("#1E293B")
		bgUser = lipgloss.Color("#1E3A5F")
	} else {
		text = lipgloss.Color("#1E293B")
		textMuted = lipgloss.Color("#64748B")
		dimmed = lipgloss.Color("#CBD5E1")
		bgPanel = lipgloss.Color("#F1F5F9")
		bgUser = lipgloss.Color("#DBEAFE")
	}

	return Theme{
		Logo:      lipgloss.NewStyle().Foreground(primary).Bold(true),
		Header:    lipgloss.NewStyle().Foreground(text).Bold(true),
		SubHeader: lipgloss.NewStyle().Foreground(textMuted).Italic(true),
		StatusBar: lipgloss.NewStyle().Foreground(textMuted).Background(bgPanel).Padding(0, 1),
		HelpBar:   lipgloss.NewStyle().Foreground(textMuted),
		Notice:    lipgloss.NewStyle().Foreground(success).Italic(true),
		NoticeErr: lipgloss.NewStyle().Foreground(errColor).Bold(true),
		Recording: lipgloss.NewStyle().Foreground(errColor).Bold(true),
		Playing:   lipgloss.NewStyle().Foreground(secondary),
		Partial:   lipgloss.NewStyle().Foreground(textMuted).Italic(true),

		UserLabel:      lipgloss.NewStyle().Foreground(secondary).Bold(true),
		AssistantLabel: lipgloss.NewStyle().Foreground(primary).Bold(true),
		UserMessage: lipgloss.NewStyle().
			Foreground(text).
			Background(bgUser).
			Padding(0, 1),
		AssistantMsg: lipgloss.NewStyle().
			Foreground(text).
			Padding(0, 1),

		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(dimmed).
			Padding(0, 1),
		FocusedPanel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primary).
			Padding(0, 1),
		Overlay: lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(accent).
			Background(bgPanel).
			Padding(1, 2),
		OverlayTitle: lipgloss.NewStyle().Foreground(accent).Bold(true),

		SidebarItem:     lipgloss.NewStyle().Foreground(text),
		SidebarSelected: lipgloss.NewStyle().Foreground(primary).Bold(true),
		SidebarTime:     lipgloss.NewStyle().Foreground(textMuted),

		ToggleOn:  lipgloss.NewStyle().Foreground(success).Bold(true),
		ToggleOff: lipgloss.NewStyle().Foreground(textMuted),
	}
}
