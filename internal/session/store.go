// ============================================================================
// VoiceDesk - Terminal Voice Assistant Client
// ============================================================================
//
// Package:     session
// Description: JSON-backed session store
// Created:     2026-08-28
// License:     MIT
// ============================================================================

package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// Store keeps all sessions in one JSON file, rewritten whole on every
// save. Last write wins; there is no merging.
type Store struct {
	mu       sync.Mutex
	path     string
	sessions map[string]*Session
	counter  int
	now      func() time.Time
}

// NewStore creates a store backed by sessions.json in dir and loads
// whatever is already there. A missing file yields an empty store.
func NewStore(dir string) (*Store, error) {
	s := &Store{
		path:     filepath.Join(dir, "sessions.json"),
		sessions: make(map[string]*Session),
		now:      time.Now,
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read sessions: %w", err)
	}

	var list []*Session
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to parse sessions: %w", err)
	}
	for _, sess := range list {
		s.sessions[sess.ID] = sess
	}
	return s, nil
}

// CreateNew creates, registers and persists a fresh session
func (s *Store) CreateNew() (*Session, error) {
	s.mu.Lock()
	now := s.now()
	s.counter++
	id := fmt.Sprintf("chat_%d_%d", now.UnixMilli(), s.counter)
	sess := NewSession(id, now)
	s.sessions[id] = sess
	s.mu.Unlock()

	if err := s.flush(); err != nil {
		return nil, err
	}
	return sess, nil
}

// Load returns the session with the given id
func (s *Store) Load(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session not found: %s", id)
	}
	return sess, nil
}

// Delete removes a session and persists the collection. Deleting an
// unknown id is a no-op.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return nil
	}
	return s.flush()
}

// Save persists the given session (and the whole collection with it)
func (s *Store) Save(sess *Session) error {
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	return s.flush()
}

// List returns all sessions ordered newest first
func (s *Store) List() []*Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		list = append(list, sess)
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].Timestamp.Equal(list[j].Timestamp) {
			return list[i].Timestamp.After(list[j].Timestamp)
		}
		return list[i].ID > list[j].ID
	})
	return list
}

// MostRecent returns the newest session, or nil when the store is empty
func (s *Store) MostRecent() *Session {
	list := s.List()
	if len(list) == 0 {
		return nil
	}
	return list[0]
}

// Len returns the number of stored sessions
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// flush rewrites the whole collection atomically
func (s *Store) flush() error {
	s.mu.Lock()
	list := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		list = append(list, sess)
	}
	s.mu.Unlock()

	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })

	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal sessions: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write sessions: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}
