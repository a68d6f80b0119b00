// ============================================================================
// VoiceDesk - Terminal Voice Assistant Client
// ============================================================================
//
// Package:     vad
// Description: Voice activity detection and speech tracking
// Created:     2026-08-28
// License:     MIT
// ============================================================================

package vad

import (
	"time"
)

// Detector classifies audio frames as speech or silence
type Detector interface {
	// Process classifies float32 samples in [-1, 1]
	Process(samples []float32) (bool, error)

	// ProcessInt16 classifies 16-bit PCM samples
	ProcessInt16(samples []int16) (bool, error)

	// Close releases resources
	Close() error
}

// Config holds detection parameters
type Config struct {
	// SampleRate must be 8000, 16000, 32000 or 48000
	SampleRate int

	// Mode is the aggressiveness (0 to 3, higher filters more)
	Mode int

	// SilenceDuration is how long silence must last before a
	// recording is considered finished
	SilenceDuration time.Duration

	// MinSpeechDuration is the minimum amount of speech for a
	// recording to count as an utterance
	MinSpeechDuration time.Duration
}

// DefaultConfig returns the default detection parameters
func DefaultConfig() Config {
	return Config{
		SampleRate:        16000,
		Mode:              2,
		SilenceDuration:   1500 * time.Millisecond,
		MinSpeechDuration: 500 * time.Millisecond,
	}
}

// State describes the tracked speech activity
type State struct {
	Speaking        bool
	SpeechStart     time.Time
	LastSpeech      time.Time
	SilenceDuration time.Duration
	SpeechDuration  time.Duration
}

// Tracker accumulates per-frame detector results into an utterance
// level view: has the user started speaking, for how long, and how
// long have they been silent since. The now function is injectable
// for tests and defaults to time.Now.
type Tracker struct {
	config        Config
	state         State
	speechStarted bool
	silenceStart  time.Time
	now           func() time.Time
}

// NewTracker creates a speech tracker
func NewTracker(cfg Config) *Tracker {
	return &Tracker{
		config: cfg,
		now:    time.Now,
	}
}

// Update folds one detector result into the tracked state
func (t *Tracker) Update(isSpeech bool) State {
	now := t.now()

	if isSpeech {
		if !t.speechStarted {
			t.speechStarted = true
			t.state.SpeechStart = now
			t.state.Speaking = true
		}
		t.state.LastSpeech = now
		t.state.SilenceDuration = 0
		t.silenceStart = time.Time{}
		t.state.SpeechDuration = now.Sub(t.state.SpeechStart)
	} else if t.speechStarted {
		if t.silenceStart.IsZero() {
			t.silenceStart = now
		}
		t.state.SilenceDuration = now.Sub(t.silenceStart)
		if t.state.SilenceDuration >= t.config.SilenceDuration {
			t.state.Speaking = false
		}
	}

	return t.state
}

// ShouldEndRecording reports whether the silence threshold has been
// reached after a valid utterance.
func (t *Tracker) ShouldEndRecording() bool {
	return t.speechStarted &&
		t.state.SilenceDuration >= t.config.SilenceDuration &&
		t.state.SpeechDuration >= t.config.MinSpeechDuration
}

// IsValidSpeech reports whether enough speech was captured to be
// worth sending.
func (t *Tracker) IsValidSpeech() bool {
	return t.state.SpeechDuration >= t.config.MinSpeechDuration
}

// Reset clears the tracked state for the next recording
func (t *Tracker) Reset() {
	t.state = State{}
	t.speechStarted = false
	t.silenceStart = time.Time{}
}

// State returns the current tracked state
func (t *Tracker) State() State {
	return t.state
}
