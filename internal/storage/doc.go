// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides session persistence for gemchat.
//
// The full session collection is serialized as one JSON blob into a durable
// Slot keyed by a fixed name. Absence of the slot means "no sessions";
// persisting an empty collection clears the slot rather than storing an
// empty marker.
//
// # Key Types
//
//   - SessionStore: owner of the ordered session collection
//   - Slot: durable single-blob storage contract
//   - FileSlot: atomic-write JSON file implementation
//   - SQLiteSlot: single-row key/value table implementation
//
// # Usage
//
// Open a slot and load sessions:
//
//	slot := storage.NewFileSlot(filepath.Join(dir, "sessions.json"))
//	store := storage.NewSessionStore(slot, logger)
//	store.LoadAll()
//
// Mutations never persist implicitly; callers persist explicitly after each
// change (write-through):
//
//	store.UpdateMessages(id, messages)
//	store.Persist()
//
// # Failure Semantics
//
// Load and persist failures are non-fatal: the store logs the anomaly and
// falls back to an empty in-memory collection so the application can
// bootstrap a fresh session instead of crashing.
package storage
