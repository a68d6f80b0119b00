// ============================================================================
// VoiceDesk - Terminal Voice Assistant Client
// ============================================================================
//
// Package:     app
// Description: Recording state machine
// Created:     2026-08-28
// License:     MIT
// ============================================================================

package app

import (
	"fmt"
	"sync"
)

// State is the recording state of the client
type State int

const (
	// StateIdle means no recording session is active
	StateIdle State = iota

	// StateListening means the microphone is streaming to the server
	StateListening

	// StateError means the last recording attempt failed and the
	// error is showing; any transition out requires going through
	// Idle.
	StateError
)

// String returns the state name
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListening:
		return "listening"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// validTransitions lists the allowed state changes
var validTransitions = map[State][]State{
	StateIdle:      {StateListening, StateError},
	StateListening: {StateIdle, StateError},
	StateError:     {StateIdle},
}

// StateMachine guards the recording state. Listeners are notified of
// every successful transition.
type StateMachine struct {
	mu        sync.RWMutex
	current   State
	listeners []func(from, to State)
}

// NewStateMachine creates a machine starting in Idle
func NewStateMachine() *StateMachine {
	return &StateMachine{current: StateIdle}
}

// Current returns the current state
func (m *StateMachine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// TransitionTo moves to the given state if the transition is allowed
func (m *StateMachine) TransitionTo(to State) error {
	m.mu.Lock()
	from := m.current

	allowed := false
	for _, s := range validTransitions[from] {
		if s == to {
			allowed = true
			break
		}
	}
	if !allowed {
		m.mu.Unlock()
		return fmt.Errorf("invalid transition from %s to %s", from, to)
	}

	m.current = to
	listeners := append([]func(from, to State)(nil), m.listeners...)
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(from, to)
	}
	return nil
}

// OnTransition registers a listener for state changes
func (m *StateMachine) OnTransition(fn func(from, to State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}
