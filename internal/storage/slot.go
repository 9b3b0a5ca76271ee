// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides session persistence for gemchat.
package storage

import (
	"errors"
	"fmt"
	"os"

	"github.com/jeranaias/gemchat-tui/internal/util"
)

// DefaultSlotKey is the fixed name the session collection is stored under.
const DefaultSlotKey = "gemini_chat_sessions"

// ErrSlotEmpty is returned by Slot.Load when the slot holds no data.
// Absence is the canonical empty-state representation.
var ErrSlotEmpty = errors.New("slot is empty")

// =============================================================================
// SLOT CONTRACT
// =============================================================================

// Slot is the durable single-blob storage contract. Implementations hold at
// most one value; Store replaces it, Clear removes it entirely.
type Slot interface {
	// Load returns the stored blob, or ErrSlotEmpty when nothing is stored.
	Load() ([]byte, error)

	// Store replaces the slot's contents.
	Store(data []byte) error

	// Clear removes the slot's contents. Clearing an empty slot is a no-op.
	Clear() error
}

// =============================================================================
// FILE SLOT
// =============================================================================

// FileSlot stores the blob as a single file on disk.
// Writes are atomic (temp file + fsync + rename), so a crash mid-write
// leaves either the previous blob or the new one, never a torn file.
type FileSlot struct {
	Path string
}

// NewFileSlot creates a file-backed slot at the given path.
func NewFileSlot(path string) *FileSlot {
	return &FileSlot{Path: path}
}

// Load reads the stored blob.
func (s *FileSlot) Load() ([]byte, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSlotEmpty
		}
		return nil, fmt.Errorf("failed to read slot file: %w", err)
	}
	return data, nil
}

// Store atomically replaces the stored blob.
func (s *FileSlot) Store(data []byte) error {
	if err := util.AtomicWriteFile(s.Path, data, 0644); err != nil {
		return fmt.Errorf("failed to write slot file: %w", err)
	}
	return nil
}

// Clear removes the slot file.
func (s *FileSlot) Clear() error {
	if err := os.Remove(s.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove slot file: %w", err)
	}
	return nil
}
