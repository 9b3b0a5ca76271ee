// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides session persistence for gemchat.
package storage

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/jeranaias/gemchat-tui/internal/model"
)

// =============================================================================
// SESSION STORE
// =============================================================================

// SessionStore owns the ordered session collection. Ordering is
// most-recent-first: new sessions are inserted at the front.
//
// The store is a pure collection manager; selection policy (which session
// becomes active after a delete) belongs to the caller. Mutations never
// persist implicitly — call Persist after each change.
//
// Callers receive and submit clones, so the owned collection is only ever
// mutated through store methods. A mutex keeps the single-writer discipline
// honest when streaming goroutines fold fragments.
type SessionStore struct {
	mu       sync.Mutex
	slot     Slot
	logger   *slog.Logger
	sessions []*model.Session
}

// NewSessionStore creates a store backed by the given slot.
// A nil logger falls back to slog.Default().
func NewSessionStore(slot Slot, logger *slog.Logger) *SessionStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionStore{
		slot:     slot,
		logger:   logger,
		sessions: make([]*model.Session, 0),
	}
}

// =============================================================================
// LOAD / PERSIST
// =============================================================================

// LoadAll deserializes the persisted collection into memory and returns a
// snapshot. Failures are non-fatal: an absent slot or a corrupt blob leaves
// the store empty so the application can bootstrap a fresh session.
func (s *SessionStore) LoadAll() []*model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.slot.Load()
	if err != nil {
		if err != ErrSlotEmpty {
			s.logger.Warn("failed to load sessions, starting empty", "error", err)
		}
		s.sessions = make([]*model.Session, 0)
		return s.snapshotLocked()
	}

	var sessions []*model.Session
	if err := json.Unmarshal(data, &sessions); err != nil {
		s.logger.Warn("failed to parse persisted sessions, starting empty", "error", err)
		s.sessions = make([]*model.Session, 0)
		return s.snapshotLocked()
	}

	s.sessions = sessions
	return s.snapshotLocked()
}

// Persist serializes the full collection into the slot. An empty collection
// clears the slot entirely. Failures are logged and swallowed: durability is
// best-effort, not a hard guarantee.
func (s *SessionStore) Persist() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.sessions) == 0 {
		if err := s.slot.Clear(); err != nil {
			s.logger.Warn("failed to clear session slot", "error", err)
		}
		return
	}

	data, err := json.Marshal(s.sessions)
	if err != nil {
		s.logger.Warn("failed to serialize sessions", "error", err)
		return
	}
	if err := s.slot.Store(data); err != nil {
		s.logger.Warn("failed to persist sessions", "error", err)
	}
}

// =============================================================================
// COLLECTION OPERATIONS
// =============================================================================

// CreateSession produces a new empty session at the front of the collection
// and returns a clone of it.
func (s *SessionStore) CreateSession() *model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := model.NewSession()
	s.sessions = append([]*model.Session{session}, s.sessions...)
	return session.Clone()
}

// DeleteSession removes the session with the given ID.
// Returns true if a session was removed.
func (s *SessionStore) DeleteSession(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, session := range s.sessions {
		if session.ID == id {
			s.sessions = append(s.sessions[:i], s.sessions[i+1:]...)
			return true
		}
	}
	return false
}

// ClearAll drops every session, clears the slot, and returns a fresh empty
// session so the collection is never left without one.
func (s *SessionStore) ClearAll() *model.Session {
	s.mu.Lock()
	s.sessions = make([]*model.Session, 0)
	if err := s.slot.Clear(); err != nil {
		s.logger.Warn("failed to clear session slot", "error", err)
	}
	session := model.NewSession()
	s.sessions = []*model.Session{session}
	clone := session.Clone()
	s.mu.Unlock()

	s.Persist()
	return clone
}

// UpdateMessages replaces the message list of the session with the given ID
// and bumps UpdatedAt. On the first transition from zero to non-zero
// messages, while the title is still the default, the title is derived from
// the first user message. Returns a clone of the updated session, or nil if
// no session matches. Does not persist.
func (s *SessionStore) UpdateMessages(id string, messages []*model.Message) *model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, session := range s.sessions {
		if session.ID != id {
			continue
		}

		if len(session.Messages) == 0 && len(messages) > 0 && session.Title == model.DefaultTitle {
			session.Title = model.DeriveTitle(messages)
		}

		session.Messages = model.CloneMessages(messages)

		// UpdatedAt is monotonically non-decreasing even if the clock steps.
		if now := time.Now(); now.After(session.UpdatedAt) {
			session.UpdatedAt = now
		}
		return session.Clone()
	}
	return nil
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Sessions returns a snapshot of the collection in order.
func (s *SessionStore) Sessions() []*model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Get returns a clone of the session with the given ID, or nil.
func (s *SessionStore) Get(id string) *model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, session := range s.sessions {
		if session.ID == id {
			return session.Clone()
		}
	}
	return nil
}

// Count returns the number of sessions.
func (s *SessionStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// snapshotLocked clones the collection. Caller must hold the mutex.
func (s *SessionStore) snapshotLocked() []*model.Session {
	out := make([]*model.Session, len(s.sessions))
	for i, session := range s.sessions {
		out[i] = session.Clone()
	}
	return out
}
