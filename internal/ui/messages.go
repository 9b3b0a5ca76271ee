// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui is the Bubble Tea presentation layer.
//
// This file defines the Bubble Tea message types used by the UI:
//   - Session: change notifications from the controller
//   - Streaming: turn completion
//   - Config: settings reloaded from disk
package ui

import (
	"github.com/jeranaias/gemchat-tui/internal/config"
)

// SessionsChangedMsg signals that the session collection was mutated.
// Sent via program.Send from the controller's OnChange callback, which may
// run on a streaming goroutine.
type SessionsChangedMsg struct{}

// TurnFinishedMsg signals that a submitted turn has reached a terminal
// state. Err carries the classified stream error, if any; the error is
// already recorded in the transcript, so the UI only clears its busy state.
type TurnFinishedMsg struct {
	SessionID string
	Err       error
}

// ConfigReloadedMsg delivers settings reloaded from a config file change.
type ConfigReloadedMsg struct {
	Settings config.Settings
}

// statusMsg sets a transient status line.
type statusMsg string
