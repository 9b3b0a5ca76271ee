// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for gemchat.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/gemchat-tui/internal/util"
)

// DefaultModel is the model used when none is configured.
const DefaultModel = "gemini-3-flash-preview"

// DefaultThinkingBudget is the reasoning-token budget applied when thinking
// is enabled and no budget is configured.
const DefaultThinkingBudget = 1024

// EnvAPIKey is the environment variable that overrides the configured key.
const EnvAPIKey = "GEMINI_API_KEY"

// =============================================================================
// SETTINGS
// =============================================================================

// Settings holds the per-request generation options. It is consumed, not
// produced, by the streaming layer: callers pass it explicitly on every turn.
type Settings struct {
	// Model is the generation model identifier. "pro"-tier features are
	// gated on the identifier containing "pro".
	Model string `toml:"model"`

	// EnableSearch adds the Google Search tool to requests.
	EnableSearch bool `toml:"enable_search"`

	// EnableThinking requests a reasoning budget on pro-tier models.
	// Silently ignored for non-pro models.
	EnableThinking bool `toml:"enable_thinking"`

	// ThinkingBudget is the reasoning-token budget, forwarded verbatim.
	ThinkingBudget int `toml:"thinking_budget"`
}

// IsProModel reports whether the configured model supports thinking.
func (s Settings) IsProModel() bool {
	return strings.Contains(s.Model, "pro")
}

// =============================================================================
// CONFIG
// =============================================================================

// Config is the complete persisted configuration.
type Config struct {
	// APIKey authenticates against the Gemini API. The GEMINI_API_KEY
	// environment variable takes precedence over this value.
	APIKey string `toml:"api_key"`

	Settings Settings `toml:"settings"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Settings: Settings{
			Model:          DefaultModel,
			EnableSearch:   false,
			EnableThinking: false,
			ThinkingBudget: DefaultThinkingBudget,
		},
	}
}

// DefaultPath returns the standard config file location,
// ~/.gemchat/config.toml.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(homeDir, ".gemchat", "config.toml"), nil
}

// DataDir returns the directory holding the session database, next to the
// config file.
func DataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(homeDir, ".gemchat"), nil
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// Load reads configuration from path, applying defaults for anything unset
// and the environment override for the API key. A missing file yields the
// defaults without error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if key := os.Getenv(EnvAPIKey); key != "" {
		cfg.APIKey = key
	}

	cfg.normalize()
	return cfg, nil
}

// Save writes the configuration to path atomically.
func (c *Config) Save(path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// normalize fills zero values and clamps out-of-range settings.
func (c *Config) normalize() {
	if c.Settings.Model == "" {
		c.Settings.Model = DefaultModel
	}
	// Unmarshal only overwrites fields present in the file, so an absent
	// budget keeps the default while an explicit 0 survives.
	if c.Settings.ThinkingBudget < 0 {
		c.Settings.ThinkingBudget = 0
	}
}
