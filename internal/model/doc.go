// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and messages.
//
// This package defines the core types shared by the storage, streaming, and
// controller layers:
//
//   - Session: an ordered conversation with a derived title
//   - Message: a single user or model turn, optionally carrying attachments
//     and grounding sources
//   - Attachment: an inline binary payload (images)
//   - GroundingChunk: a web citation attached to a model response
//
// Sessions are owned by storage.SessionStore; other packages treat them as
// values and submit mutations through the store.
package model
