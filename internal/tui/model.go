// ============================================================================
// VoiceDesk - Terminal Voice Assistant Client
// ============================================================================
//
// Package:     tui
// Description: Main chat view
// Created:     2026-08-28
// License:     MIT
// ============================================================================

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"voicedesk/internal/app"
	"voicedesk/internal/session"
)

const sidebarWidth = 28

// focusArea is where keyboard input goes in the main view
type focusArea int

const (
	focusInput focusArea = iota
	focusSidebar
)

// overlayKind is which overlay covers the chat, if any
type overlayKind int

const (
	overlayNone overlayKind = iota
	overlaySettings
	overlayTranslate
	overlayUpload
)

// Model is the root bubbletea model
type Model struct {
	app   *app.App
	theme Theme

	width  int
	height int
	ready  bool

	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	focus        focusArea
	overlay      overlayKind
	settings     settingsModel
	translate    translateModel
	uploadInput  textinput.Model
	sidebarIndex int

	state   app.State
	playing bool
	busy    bool
	partial string

	notice    string
	noticeErr bool
	noticeSeq int
}

// NewModel creates the root model for the given controller
func NewModel(a *app.App) Model {
	ta := textarea.New()
	ta.Placeholder = "Type a message..."
	ta.CharLimit = 2000
	ta.SetHeight(3)
	ta.ShowLineNumbers = false
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	upload := textinput.New()
	upload.Placeholder = "path to a .csv, .pdf, .xls or .xlsx file"
	upload.Prompt = "> "
	upload.Width = 50

	return Model{
		app:         a,
		theme:       buildTheme(a.Settings().DarkMode),
		textarea:    ta,
		spinner:     sp,
		settings:    newSettingsModel(),
		translate:   newTranslateModel(a.Personas()),
		uploadInput: upload,
		state:       a.State(),
	}
}

// Init starts the event pump and the spinner
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		waitForEvent(m.app.Events()),
		m.spinner.Tick,
		textarea.Blink,
	)
}

// Update is the bubbletea update loop
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.refreshTranscript()
		m.ready = true
		return m, nil

	case appEventMsg:
		return m.handleAppEvent(app.Event(msg))

	case noticeExpiredMsg:
		if msg.seq == m.noticeSeq {
			m.notice = ""
		}
		return m, nil

	case keyStatusMsg:
		m.settings.applyStatus(msg)
		return m, nil

	case keysSavedMsg:
		m.settings.saving = false
		if msg.err != nil {
			m.settings.warning = fmt.Sprintf("Save failed: %v", msg.err)
			return m, nil
		}
		m.overlay = overlayNone
		return m, m.setNotice("API keys saved.", false)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) handleAppEvent(ev app.Event) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{waitForEvent(m.app.Events())}

	switch ev.Kind {
	case app.EventState:
		m.state = ev.State
		if ev.State != app.StateListening {
			m.partial = ""
		}
	case app.EventTranscript:
		m.refreshTranscript()
	case app.EventPartial:
		m.partial = ev.Text
	case app.EventSessions:
		if n := len(m.app.Sessions()); m.sidebarIndex >= n && n > 0 {
			m.sidebarIndex = n - 1
		}
	case app.EventPlayback:
		m.playing = ev.On
	case app.EventBusy:
		m.busy = ev.On
	case app.EventNotify:
		cmds = append(cmds, m.setNotice(ev.Text, ev.IsError))
	case app.EventTheme:
		m.theme = buildTheme(ev.On)
		m.refreshTranscript()
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.app.Close()
		return m, tea.Quit
	}

	switch m.overlay {
	case overlaySettings:
		return m.handleSettingsKey(msg)
	case overlayTranslate:
		return m.handleTranslateKey(msg)
	case overlayUpload:
		return m.handleUploadKey(msg)
	}

	switch msg.String() {
	case "ctrl+r":
		m.app.ToggleRecording()
		return m, nil
	case "ctrl+n":
		if err := m.app.NewSession(); err != nil {
			return m, m.setNotice(fmt.Sprintf("Could not create session: %v", err), true)
		}
		m.sidebarIndex = 0
		return m, nil
	case "ctrl+s":
		m.overlay = overlaySettings
		m.settings.open()
		return m, fetchKeyStatus(m.app)
	case "ctrl+t":
		m.overlay = overlayTranslate
		m.translate.open()
		return m, textinput.Blink
	case "ctrl+u":
		m.overlay = overlayUpload
		m.uploadInput.SetValue("")
		m.uploadInput.Focus()
		return m, textinput.Blink
	case "tab":
		if m.focus == focusInput {
			m.focus = focusSidebar
			m.textarea.Blur()
		} else {
			m.focus = focusInput
			m.textarea.Focus()
		}
		return m, nil
	case "pgup":
		m.viewport.LineUp(5)
		return m, nil
	case "pgdown":
		m.viewport.LineDown(5)
		return m, nil
	}

	if m.focus == focusSidebar {
		return m.handleSidebarKey(msg)
	}

	switch msg.String() {
	case "enter":
		text := strings.TrimSpace(m.textarea.Value())
		if text != "" {
			m.app.SendText(text)
			m.textarea.Reset()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

func (m *Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sessions := m.app.Sessions()
	if len(sessions) == 0 {
		return m, nil
	}

	switch msg.String() {
	case "up", "k":
		if m.sidebarIndex > 0 {
			m.sidebarIndex--
		}
	case "down", "j":
		if m.sidebarIndex < len(sessions)-1 {
			m.sidebarIndex++
		}
	case "enter":
		if err := m.app.SwitchSession(sessions[m.sidebarIndex].ID); err != nil {
			return m, m.setNotice(fmt.Sprintf("Could not open session: %v", err), true)
		}
		m.focus = focusInput
		m.textarea.Focus()
	case "ctrl+d", "delete":
		if err := m.app.DeleteSession(sessions[m.sidebarIndex].ID); err != nil {
			return m, m.setNotice(fmt.Sprintf("Could not delete session: %v", err), true)
		}
		if m.sidebarIndex > 0 {
			m.sidebarIndex--
		}
	}
	return m, nil
}

func (m *Model) handleSettingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.overlay = overlayNone
		return m, nil
	case "ctrl+s":
		keys := m.settings.enteredKeys()
		if len(keys) == 0 {
			m.settings.warning = "Enter at least one key before saving."
			return m, nil
		}
		m.settings.saving = true
		m.settings.warning = ""
		return m, saveAPIKeys(m.app, keys)
	}

	cmd := m.settings.update(msg, func(row int) {
		s := m.app.Settings()
		switch row {
		case rowAutoPlay:
			m.app.SetAutoPlay(!s.AutoPlay)
		case rowVAD:
			m.app.SetVoiceActivityDetection(!s.VoiceActivityDetection)
		case rowDarkMode:
			m.app.SetDarkMode(!s.DarkMode)
		}
	})
	return m, cmd
}

func (m *Model) handleTranslateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.overlay = overlayNone
		return m, nil
	case "enter":
		text, language, personaKey := m.translate.selection()
		if text == "" {
			return m, nil
		}
		m.app.Translate(text, language, personaKey)
		m.overlay = overlayNone
		return m, nil
	}

	return m, m.translate.update(msg)
}

func (m *Model) handleUploadKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.overlay = overlayNone
		return m, nil
	case "enter":
		path := strings.TrimSpace(m.uploadInput.Value())
		if path == "" {
			return m, nil
		}
		if err := m.app.UploadFile(path); err != nil {
			// Validation feedback stays in the prompt.
			return m, m.setNotice(err.Error(), true)
		}
		m.overlay = overlayNone
		return m, nil
	}

	var cmd tea.Cmd
	m.uploadInput, cmd = m.uploadInput.Update(msg)
	return m, cmd
}

func (m *Model) setNotice(text string, isErr bool) tea.Cmd {
	m.notice = text
	m.noticeErr = isErr
	m.noticeSeq++
	return expireNotice(m.noticeSeq)
}

func (m *Model) layout() {
	chatWidth := m.width - sidebarWidth - 6
	if chatWidth < 20 {
		chatWidth = m.width - 4
	}
	chatHeight := m.height - 10
	if chatHeight < 5 {
		chatHeight = 5
	}

	m.viewport = viewport.New(chatWidth, chatHeight)
	m.textarea.SetWidth(chatWidth)
}

// refreshTranscript re-renders the viewport from the transcript, the
// single source of conversation truth.
func (m *Model) refreshTranscript() {
	var b strings.Builder

	for _, msg := range m.app.Messages() {
		if msg.Role == session.RoleUser {
			b.WriteString(m.theme.UserLabel.Render("You"))
			b.WriteString("\n")
			b.WriteString(m.theme.UserMessage.Width(m.viewport.Width - 2).Render(msg.Text))
		} else {
			b.WriteString(m.theme.AssistantLabel.Render("Assistant"))
			b.WriteString("\n")
			b.WriteString(m.theme.AssistantMsg.Width(m.viewport.Width - 2).Render(msg.Text))
		}
		b.WriteString("\n\n")
	}

	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

// View renders the whole screen
func (m Model) View() string {
	if !m.ready {
		return "Starting VoiceDesk..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	main := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderSidebar(),
		m.renderChat(),
	)
	b.WriteString(main)
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())
	b.WriteString("\n")
	b.WriteString(m.renderHelpBar())

	if m.overlay != overlayNone {
		return m.renderOverlay()
	}
	return b.String()
}

func (m Model) renderHeader() string {
	_, title := m.app.ActiveSession()
	return m.theme.Logo.Render(" VoiceDesk ") + " " + m.theme.SubHeader.Render(title)
}

func (m Model) renderSidebar() string {
	var b strings.Builder
	b.WriteString(m.theme.Header.Render("Chats"))
	b.WriteString("\n\n")

	activeID, _ := m.app.ActiveSession()
	for i, sess := range m.app.Sessions() {
		title := sess.Title
		if len([]rune(title)) > sidebarWidth-6 {
			title = string([]rune(title)[:sidebarWidth-6]) + "…"
		}

		line := title
		style := m.theme.SidebarItem
		if m.focus == focusSidebar && i == m.sidebarIndex {
			style = m.theme.SidebarSelected
			line = "› " + line
		} else if sess.ID == activeID {
			line = "• " + line
		} else {
			line = "  " + line
		}

		b.WriteString(style.Render(line))
		b.WriteString("\n")
		b.WriteString(m.theme.SidebarTime.Render("  " + sess.Timestamp.Format("Jan 2 15:04")))
		b.WriteString("\n")
	}

	panel := m.theme.Panel
	if m.focus == focusSidebar {
		panel = m.theme.FocusedPanel
	}
	return panel.Width(sidebarWidth).Height(m.viewport.Height + 5).Render(b.String())
}

func (m Model) renderChat() string {
	var b strings.Builder
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if m.partial != "" {
		b.WriteString(m.theme.Partial.Render("… " + m.partial))
		b.WriteString("\n")
	}

	// The input badge mirrors the status bar indicator, both render
	// from the same state.
	if m.state == app.StateListening {
		b.WriteString(m.theme.Recording.Render("● listening"))
		b.WriteString("\n")
	}
	b.WriteString(m.textarea.View())

	panel := m.theme.Panel
	if m.focus == focusInput {
		panel = m.theme.FocusedPanel
	}
	return panel.Render(b.String())
}

func (m Model) renderStatusBar() string {
	parts := []string{}

	switch m.state {
	case app.StateListening:
		parts = append(parts, m.theme.Recording.Render("● REC"))
	case app.StateError:
		parts = append(parts, m.theme.NoticeErr.Render("✗ error (ctrl+r to clear)"))
	default:
		parts = append(parts, "idle")
	}

	if m.playing {
		parts = append(parts, m.theme.Playing.Render("♪ playing"))
	}
	if m.busy {
		parts = append(parts, m.spinner.View()+" thinking")
	}

	if m.notice != "" {
		style := m.theme.Notice
		if m.noticeErr {
			style = m.theme.NoticeErr
		}
		parts = append(parts, style.Render(m.notice))
	}

	return m.theme.StatusBar.Width(m.width).Render(strings.Join(parts, "  │  "))
}

func (m Model) renderHelpBar() string {
	return m.theme.HelpBar.Render(
		" ctrl+r record · enter send · tab chats · ctrl+n new · ctrl+u upload · ctrl+t translate · ctrl+s settings · ctrl+c quit")
}

func (m Model) renderOverlay() string {
	var content string
	switch m.overlay {
	case overlaySettings:
		content = m.settings.view(m.theme, m.app.Settings())
	case overlayTranslate:
		content = m.translate.view(m.theme)
	case overlayUpload:
		content = m.theme.OverlayTitle.Render("Upload a file") + "\n\n" +
			m.uploadInput.View() + "\n\n" +
			m.theme.HelpBar.Render("enter upload · esc close")
	}

	box := m.theme.Overlay.Render(content)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
