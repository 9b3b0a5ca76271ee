// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and messages.
package model

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleModel:
		return "Gemini"
	default:
		return string(r)
	}
}

// =============================================================================
// ATTACHMENT TYPE
// =============================================================================

// Attachment is an inline binary payload carried by a message.
// Data is serialized as base64 in JSON. Attachments are immutable once
// added to a message.
type Attachment struct {
	MIMEType string `json:"mimeType"`
	Data     []byte `json:"data"`
	Name     string `json:"name,omitempty"`
}

// =============================================================================
// GROUNDING TYPES
// =============================================================================

// GroundingWeb identifies a web source backing part of a model response.
type GroundingWeb struct {
	URI   string `json:"uri"`
	Title string `json:"title,omitempty"`
}

// GroundingChunk is one citation record returned by the generation service.
// Chunks are accumulated over a stream's lifetime and never deduplicated,
// so the stored order matches emission order.
type GroundingChunk struct {
	Web *GroundingWeb `json:"web,omitempty"`
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a session.
//
// A model-role message created as a streaming placeholder starts with empty
// Text; its Text and GroundingSources grow append-only while the stream is
// active and are frozen once the stream reaches a terminal state. Error
// messages (IsError) are never sent back to the generation service.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`

	IsError bool `json:"isError,omitempty"`

	// Citations accumulated during streaming (model messages only).
	GroundingSources []GroundingChunk `json:"groundingSources,omitempty"`

	// Inline payloads submitted with the message (user messages only).
	Attachments []Attachment `json:"attachments,omitempty"`
}

// NewUserMessage creates a user message with a generated ID.
func NewUserMessage(text string, attachments []Attachment) *Message {
	return &Message{
		ID:          uuid.NewString(),
		Role:        RoleUser,
		Text:        text,
		Timestamp:   time.Now(),
		Attachments: attachments,
	}
}

// NewModelPlaceholder creates the empty model message that a stream folds
// fragments into.
func NewModelPlaceholder() *Message {
	return &Message{
		ID:        uuid.NewString(),
		Role:      RoleModel,
		Timestamp: time.Now(),
	}
}

// NewErrorMessage creates a model-role message flagged as an error.
func NewErrorMessage(text string) *Message {
	return &Message{
		ID:        uuid.NewString(),
		Role:      RoleModel,
		Text:      text,
		Timestamp: time.Now(),
		IsError:   true,
	}
}

// Preview returns a truncated preview of the message text.
// Uses rune-based truncation to handle Unicode correctly.
func (m *Message) Preview(maxLen int) string {
	runes := []rune(m.Text)
	if len(runes) <= maxLen {
		return m.Text
	}
	return string(runes[:maxLen]) + "..."
}

// IsEmpty returns true if the message has no text and no attachments.
func (m *Message) IsEmpty() bool {
	return len(m.Text) == 0 && len(m.Attachments) == 0
}
