// gemchat TUI - a terminal chat client for the Gemini API.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/gemchat-tui/internal/chat"
	"github.com/jeranaias/gemchat-tui/internal/config"
	"github.com/jeranaias/gemchat-tui/internal/gemini"
	"github.com/jeranaias/gemchat-tui/internal/storage"
	"github.com/jeranaias/gemchat-tui/internal/ui"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to config file (default ~/.gemchat/config.toml)")
		jsonStore  = flag.Bool("json-store", false, "persist sessions to a JSON file instead of SQLite")
		version    = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *version {
		fmt.Printf("gemchat %s (%s)\n", Version, GitCommit)
		return
	}

	if err := run(*configPath, *jsonStore); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, jsonStore bool) error {
	dataDir, err := config.DataDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	if configPath == "" {
		configPath, err = config.DefaultPath()
		if err != nil {
			return err
		}
	}

	// The terminal belongs to the TUI, so logs go to a file.
	logger := newLogger(filepath.Join(dataDir, "gemchat.log"))

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	slot, closeSlot, err := openSlot(dataDir, jsonStore, logger)
	if err != nil {
		return err
	}
	defer closeSlot()

	store := storage.NewSessionStore(slot, logger)
	sessions := store.LoadAll()

	client := gemini.NewClient(cfg.APIKey, logger)
	controller := chat.NewController(store, client, logger)

	program := tea.NewProgram(
		ui.New(controller, cfg.Settings, configPath, sessions),
		tea.WithAltScreen(),
	)

	controller.SetOnChange(func() {
		program.Send(ui.SessionsChangedMsg{})
	})

	watcher, err := config.Watch(configPath, logger, func(reloaded *config.Config) {
		program.Send(ui.ConfigReloadedMsg{Settings: reloaded.Settings})
	})
	if err != nil {
		logger.Warn("config watching disabled", "error", err)
	} else {
		defer watcher.Close()
	}

	_, err = program.Run()
	return err
}

// openSlot opens the session persistence slot. SQLite is the default; a
// failure to open it falls back to the JSON file slot rather than aborting.
func openSlot(dataDir string, jsonStore bool, logger *slog.Logger) (storage.Slot, func(), error) {
	if !jsonStore {
		slot, err := storage.NewSQLiteSlot(filepath.Join(dataDir, "sessions.db"), storage.DefaultSlotKey)
		if err == nil {
			return slot, func() { slot.Close() }, nil
		}
		logger.Warn("failed to open sqlite store, falling back to json", "error", err)
	}
	return storage.NewFileSlot(filepath.Join(dataDir, "sessions.json")), func() {}, nil
}

// newLogger opens the log file, discarding logs if it cannot be opened.
func newLogger(path string) *slog.Logger {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelInfo}))
}
