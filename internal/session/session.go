// ============================================================================
// VoiceDesk - Terminal Voice Assistant Client
// ============================================================================
//
// Package:     session
// Description: Chat sessions and the transcript
// Created:     2026-08-28
// License:     MIT
// ============================================================================

package session

import (
	"fmt"
	"time"
)

// Message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Greeting is the assistant message seeding every new session
const Greeting = "Hi! I'm ready to help. Press ctrl+r to start talking or ctrl+u to upload a file."

// maxTitleLen is where session titles get truncated
const maxTitleLen = 30

// Message is one entry in a conversation
type Message struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Session is a stored conversation
type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	Timestamp time.Time `json:"timestamp"`
}

// NewSession creates a session seeded with the assistant greeting
func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		Title:     fmt.Sprintf("Chat %s", now.Format("Jan 2 15:04")),
		Messages:  []Message{{Role: RoleAssistant, Text: Greeting}},
		Timestamp: now,
	}
}

// deriveTitle truncates the first user message to the title length
func deriveTitle(text string) string {
	runes := []rune(text)
	if len(runes) > maxTitleLen {
		return string(runes[:maxTitleLen]) + "..."
	}
	return text
}

// Transcript is the authoritative in-memory message list of the
// active session. The view renders it and Save serializes it; nothing
// else holds conversation state.
type Transcript struct {
	session *Session
	titled  bool
}

// NewTranscript wraps a session. A session whose title was already
// derived from a user message keeps it.
func NewTranscript(s *Session) *Transcript {
	titled := false
	for _, m := range s.Messages {
		if m.Role == RoleUser {
			titled = true
			break
		}
	}
	return &Transcript{session: s, titled: titled}
}

// Append adds a message. The first user message fixes the title.
func (t *Transcript) Append(role, text string) {
	t.session.Messages = append(t.session.Messages, Message{Role: role, Text: text})
	t.session.Timestamp = time.Now()

	if role == RoleUser && !t.titled {
		t.session.Title = deriveTitle(text)
		t.titled = true
	}
}

// Session returns the underlying session
func (t *Transcript) Session() *Session {
	return t.session
}

// Messages returns the ordered message list
func (t *Transcript) Messages() []Message {
	return t.session.Messages
}

// Len returns the number of messages
func (t *Transcript) Len() int {
	return len(t.session.Messages)
}
