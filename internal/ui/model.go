// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui is the Bubble Tea presentation layer.
package ui

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/gemchat-tui/internal/chat"
	"github.com/jeranaias/gemchat-tui/internal/config"
	"github.com/jeranaias/gemchat-tui/internal/model"
)

// focus identifies which pane receives key input.
type focus int

const (
	focusInput focus = iota
	focusSidebar
)

// cancelManager holds the active stream's cancel func behind a mutex.
// A pointer field on Model so Bubble Tea's value copies share it.
type cancelManager struct {
	mu     sync.Mutex
	cancel context.CancelFunc
}

func (c *cancelManager) set(fn context.CancelFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancel = fn
}

func (c *cancelManager) fire() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// modelChoices are the models Ctrl+G cycles through.
var modelChoices = []string{
	"gemini-3-flash-preview",
	"gemini-3-pro-preview",
}

// =============================================================================
// UI MODEL
// =============================================================================

// Model is the root Bubble Tea model.
type Model struct {
	controller *chat.Controller
	settings   config.Settings
	configPath string

	// Snapshot of the session collection, refreshed on SessionsChangedMsg.
	sessions []*model.Session
	activeID string

	// Sidebar cursor (index into sessions).
	cursor int

	focus     focus
	streaming bool

	// Attachments staged for the next turn via /attach.
	pending []model.Attachment

	width  int
	height int

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	keyMap   KeyMap

	renderer  *glamour.TermRenderer
	cancelMgr *cancelManager

	status string
}

// New creates the root model. The controller must already have its sessions
// loaded; the front session becomes active, or a fresh one is created for an
// empty collection.
func New(controller *chat.Controller, settings config.Settings, configPath string, sessions []*model.Session) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Message Gemini... (/attach <path> to add an image)"
	ti.CharLimit = 8192
	ti.Focus()

	vp := viewport.New(80, 20)

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}

	if len(sessions) == 0 {
		sessions = []*model.Session{controller.NewSession()}
	}

	m := Model{
		controller: controller,
		settings:   settings,
		configPath: configPath,
		sessions:   sessions,
		activeID:   sessions[0].ID,
		viewport:   vp,
		input:      ti,
		spinner:    sp,
		keyMap:     DefaultKeyMap(),
		cancelMgr:  &cancelManager{},
	}
	m.rebuildRenderer(80)
	m.refreshViewport()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// activeSession returns the snapshot of the active session, or nil.
func (m *Model) activeSession() *model.Session {
	for _, s := range m.sessions {
		if s.ID == m.activeID {
			return s
		}
	}
	return nil
}

// rebuildRenderer recreates the glamour renderer for the given wrap width.
func (m *Model) rebuildRenderer(width int) {
	if width < 20 {
		width = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err == nil {
		m.renderer = r
	}
}

// refreshSessions re-reads the collection snapshot and keeps the active and
// cursor references valid.
func (m *Model) refreshSessions() {
	m.sessions = m.controller.Sessions()

	if m.activeSession() == nil && len(m.sessions) > 0 {
		m.activeID = m.sessions[0].ID
	}
	if m.cursor >= len(m.sessions) {
		m.cursor = len(m.sessions) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}
