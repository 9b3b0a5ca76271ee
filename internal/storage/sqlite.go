// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides session persistence for gemchat.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// =============================================================================
// SQLITE SLOT
// =============================================================================

// SQLiteSlot stores the blob in a one-row key/value table. It satisfies the
// same contract as FileSlot; SQLite's journaling supplies the atomicity.
type SQLiteSlot struct {
	db  *sql.DB
	key string
}

// NewSQLiteSlot opens (creating if necessary) a SQLite database at dbPath
// and prepares the slot table. The blob is stored under key, typically
// DefaultSlotKey.
func NewSQLiteSlot(dbPath, key string) (*SQLiteSlot, error) {
	if key == "" {
		key = DefaultSlotKey
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL keeps readers unblocked during the write-through persists.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set journal mode: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS slots (
		key   TEXT PRIMARY KEY,
		value BLOB NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create slot table: %w", err)
	}

	return &SQLiteSlot{db: db, key: key}, nil
}

// Load returns the stored blob.
func (s *SQLiteSlot) Load() ([]byte, error) {
	var data []byte
	err := s.db.QueryRow("SELECT value FROM slots WHERE key = ?", s.key).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSlotEmpty
		}
		return nil, fmt.Errorf("failed to load slot: %w", err)
	}
	return data, nil
}

// Store replaces the stored blob.
func (s *SQLiteSlot) Store(data []byte) error {
	_, err := s.db.Exec(
		"INSERT INTO slots (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		s.key, data)
	if err != nil {
		return fmt.Errorf("failed to store slot: %w", err)
	}
	return nil
}

// Clear removes the stored blob.
func (s *SQLiteSlot) Clear() error {
	if _, err := s.db.Exec("DELETE FROM slots WHERE key = ?", s.key); err != nil {
		return fmt.Errorf("failed to clear slot: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLiteSlot) Close() error {
	return s.db.Close()
}
