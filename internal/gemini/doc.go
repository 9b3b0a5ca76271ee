// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gemini streams chat completions from the Gemini API.
//
// The package translates between the application's message model and the
// genai SDK: conversation history becomes genai content, per-turn settings
// become generation config, and the SDK's response iterator becomes a
// channel of Fragments. Errors are classified into stable kinds with
// human-readable messages so the UI layer never inspects HTTP codes.
//
// A Fragment carrying a non-nil Err is always the final fragment on the
// channel; the channel is closed immediately after.
package gemini
