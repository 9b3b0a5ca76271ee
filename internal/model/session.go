// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and messages.
package model

import (
	"time"

	"github.com/google/uuid"
)

// DefaultTitle is the title of a session before it is derived from the
// first user message. The derivation only fires while the title still
// holds this exact value.
const DefaultTitle = "New Chat"

// TitleMaxRunes is the rune budget for derived session titles. Longer
// first messages are truncated and marked with an ellipsis.
const TitleMaxRunes = 30

// =============================================================================
// SESSION TYPE
// =============================================================================

// Session holds one conversation: an append-only ordered message list plus
// identity and timestamps. UpdatedAt is monotonically non-decreasing.
type Session struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Messages  []*Message `json:"messages"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// NewSession creates an empty session with the default title.
func NewSession() *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.NewString(),
		Title:     DefaultTitle,
		Messages:  make([]*Message, 0),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// =============================================================================
// TITLE DERIVATION
// =============================================================================

// DeriveTitle computes the session title from the first user message:
// the text truncated to TitleMaxRunes runes, with "..." appended iff the
// original exceeded the budget. Returns DefaultTitle when no user message
// exists.
func DeriveTitle(messages []*Message) string {
	for _, msg := range messages {
		if msg.Role != RoleUser {
			continue
		}
		runes := []rune(msg.Text)
		if len(runes) > TitleMaxRunes {
			return string(runes[:TitleMaxRunes]) + "..."
		}
		return msg.Text
	}
	return DefaultTitle
}

// =============================================================================
// SESSION METHODS
// =============================================================================

// MessageCount returns the number of messages in the session.
func (s *Session) MessageCount() int {
	return len(s.Messages)
}

// LastMessage returns the most recent message, or nil if the session is empty.
func (s *Session) LastMessage() *Message {
	if len(s.Messages) == 0 {
		return nil
	}
	return s.Messages[len(s.Messages)-1]
}

// FindMessage returns the message with the given ID, or nil.
func (s *Session) FindMessage(id string) *Message {
	for _, msg := range s.Messages {
		if msg.ID == id {
			return msg
		}
	}
	return nil
}

// Clone returns a deep copy of the session. The store hands out clones so
// callers can build a replacement message list without mutating owned state.
func (s *Session) Clone() *Session {
	dup := *s
	dup.Messages = CloneMessages(s.Messages)
	return &dup
}

// CloneMessages deep-copies a message list.
func CloneMessages(messages []*Message) []*Message {
	out := make([]*Message, len(messages))
	for i, msg := range messages {
		m := *msg
		if msg.GroundingSources != nil {
			m.GroundingSources = append([]GroundingChunk(nil), msg.GroundingSources...)
		}
		if msg.Attachments != nil {
			m.Attachments = append([]Attachment(nil), msg.Attachments...)
		}
		out[i] = &m
	}
	return out
}
