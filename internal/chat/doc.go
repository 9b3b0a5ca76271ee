// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat orchestrates conversation turns.
//
// The Controller sits between the UI, the session store, and the streaming
// client. A turn moves through a fixed sequence: append the user message,
// append an empty model placeholder, stream fragments into the placeholder,
// then freeze it on completion or append an error message on failure. Each
// step persists before the next begins, so a crash mid-turn loses at most
// the in-flight response text.
//
// At most one stream may be active per session. Fragments that arrive after
// their target session or placeholder has been removed are discarded.
package chat
