// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for gemchat.
//
// Configuration lives in a TOML file with sensible defaults and an
// environment variable override for the API key:
//
//   - ~/.gemchat/config.toml
//   - GEMINI_API_KEY (overrides api_key from the file)
//
// The Settings struct is passed per call into the streaming layer; nothing
// in the core reads configuration ambiently.
package config
