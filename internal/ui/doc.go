// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui is the Bubble Tea presentation layer.
//
// The layout is a session sidebar next to a message viewport with a text
// input below. All session mutation goes through the chat controller; the
// UI holds snapshots and re-reads them whenever the controller reports a
// change via program.Send. The package carries no state invariants of its
// own.
package ui
