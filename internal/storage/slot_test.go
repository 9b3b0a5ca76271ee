// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides session persistence for gemchat.
package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// runSlotContract exercises the Slot contract against any implementation.
func runSlotContract(t *testing.T, slot Slot) {
	t.Helper()

	// Empty slot reports ErrSlotEmpty.
	_, err := slot.Load()
	require.ErrorIs(t, err, ErrSlotEmpty)

	// Clearing an empty slot is a no-op.
	require.NoError(t, slot.Clear())

	// Store then load round-trips.
	require.NoError(t, slot.Store([]byte("first")))
	data, err := slot.Load()
	require.NoError(t, err)
	require.Equal(t, []byte("first"), data)

	// Store replaces.
	require.NoError(t, slot.Store([]byte("second")))
	data, err = slot.Load()
	require.NoError(t, err)
	require.Equal(t, []byte("second"), data)

	// Clear removes entirely.
	require.NoError(t, slot.Clear())
	_, err = slot.Load()
	require.ErrorIs(t, err, ErrSlotEmpty)
}

func TestFileSlot_Contract(t *testing.T) {
	slot := NewFileSlot(filepath.Join(t.TempDir(), "slot.json"))
	runSlotContract(t, slot)
}

func TestSQLiteSlot_Contract(t *testing.T) {
	slot, err := NewSQLiteSlot(filepath.Join(t.TempDir(), "gemchat.db"), DefaultSlotKey)
	require.NoError(t, err)
	defer slot.Close()

	runSlotContract(t, slot)
}

func TestSQLiteSlot_DefaultKey(t *testing.T) {
	slot, err := NewSQLiteSlot(filepath.Join(t.TempDir(), "gemchat.db"), "")
	require.NoError(t, err)
	defer slot.Close()

	require.Equal(t, DefaultSlotKey, slot.key)
}

func TestSQLiteSlot_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gemchat.db")

	slot, err := NewSQLiteSlot(path, DefaultSlotKey)
	require.NoError(t, err)
	require.NoError(t, slot.Store([]byte("persisted")))
	require.NoError(t, slot.Close())

	reopened, err := NewSQLiteSlot(path, DefaultSlotKey)
	require.NoError(t, err)
	defer reopened.Close()

	data, err := reopened.Load()
	require.NoError(t, err)
	require.Equal(t, []byte("persisted"), data)
}
