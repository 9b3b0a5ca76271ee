// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui is the Bubble Tea presentation layer.
package ui

import (
	"context"
	"net/http"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/gemchat-tui/internal/attachment"
	"github.com/jeranaias/gemchat-tui/internal/config"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case SessionsChangedMsg:
		m.refreshSessions()
		m.refreshViewport()
		m.viewport.GotoBottom()
		return m, nil

	case TurnFinishedMsg:
		if msg.SessionID == m.activeID {
			m.streaming = false
			m.cancelMgr.set(nil)
			m.input.Focus()
		}
		m.refreshSessions()
		m.refreshViewport()
		return m, textinput.Blink

	case ConfigReloadedMsg:
		m.settings = msg.Settings
		m.status = "Config reloaded: " + m.settings.Model
		return m, nil

	case statusMsg:
		m.status = string(msg)
		return m, nil

	case spinner.TickMsg:
		if !m.streaming {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	default:
		var cmds []tea.Cmd
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)
	}
}

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	// Layout: sidebar column | viewport above input line and status bar.
	const inputHeight = 1
	const statusHeight = 1

	contentWidth := m.width - sidebarWidth - 1
	if contentWidth < 20 {
		contentWidth = 20
	}
	contentHeight := m.height - inputHeight - statusHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	m.viewport.Width = contentWidth
	m.viewport.Height = contentHeight
	m.input.Width = contentWidth - len(m.input.Prompt) - 2

	m.rebuildRenderer(contentWidth - 2)
	m.refreshViewport()
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Quit):
		m.cancelMgr.fire()
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.Cancel):
		if m.streaming {
			m.cancelMgr.fire()
			m.status = "Cancelled"
			return m, nil
		}
		if m.focus == focusSidebar {
			m.focus = focusInput
			m.input.Focus()
			return m, textinput.Blink
		}
		return m, nil

	case key.Matches(msg, m.keyMap.FocusSidebar):
		if m.focus == focusInput {
			m.focus = focusSidebar
			m.input.Blur()
		} else {
			m.focus = focusInput
			m.input.Focus()
			return m, textinput.Blink
		}
		return m, nil

	case key.Matches(msg, m.keyMap.NewSession):
		session := m.controller.NewSession()
		m.activeID = session.ID
		m.cursor = 0
		m.refreshSessions()
		m.refreshViewport()
		return m, nil

	case key.Matches(msg, m.keyMap.DeleteSession):
		return m.handleDeleteSession()

	case key.Matches(msg, m.keyMap.ToggleSearch):
		m.settings.EnableSearch = !m.settings.EnableSearch
		return m, m.saveSettings()

	case key.Matches(msg, m.keyMap.ToggleThinking):
		m.settings.EnableThinking = !m.settings.EnableThinking
		return m, m.saveSettings()

	case key.Matches(msg, m.keyMap.CycleModel):
		m.settings.Model = nextModel(m.settings.Model)
		return m, m.saveSettings()
	}

	if m.focus == focusSidebar {
		return m.handleSidebarKey(msg)
	}
	return m.handleInputKey(msg)
}

func (m Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Down):
		if m.cursor < len(m.sessions)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Submit):
		if m.cursor < len(m.sessions) {
			m.activeID = m.sessions[m.cursor].ID
			m.streaming = m.controller.InFlight(m.activeID)
			m.refreshViewport()
			m.viewport.GotoBottom()
			m.focus = focusInput
			m.input.Focus()
			return m, textinput.Blink
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Up):
		m.viewport.LineUp(1)
		return m, nil

	case key.Matches(msg, m.keyMap.Down):
		m.viewport.LineDown(1)
		return m, nil

	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.HalfViewDown()
		return m, nil

	case key.Matches(msg, m.keyMap.Submit):
		return m.handleSubmit()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleDeleteSession() (tea.Model, tea.Cmd) {
	targetIdx := m.cursor
	if m.focus == focusInput {
		// Deleting from the input pane targets the active session.
		targetIdx = -1
	}

	targetID := m.activeID
	if targetIdx >= 0 && targetIdx < len(m.sessions) {
		targetID = m.sessions[targetIdx].ID
	}

	active := m.controller.DeleteSession(targetID)
	if targetID == m.activeID {
		m.activeID = active.ID
		m.streaming = m.controller.InFlight(m.activeID)
	}
	m.refreshSessions()
	m.refreshViewport()
	return m, nil
}

// =============================================================================
// SUBMISSION
// =============================================================================

func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}

	if path, ok := strings.CutPrefix(text, "/attach "); ok {
		return m.handleAttach(strings.TrimSpace(path))
	}

	if m.streaming {
		m.status = "A response is already streaming for this session"
		return m, nil
	}

	sessionID := m.activeID
	attachments := m.pending
	settings := m.settings

	m.pending = nil
	m.input.Reset()
	m.streaming = true
	m.status = ""

	ctx, cancel := context.WithCancel(context.Background())
	m.cancelMgr.set(cancel)

	controller := m.controller
	submit := func() tea.Msg {
		defer cancel()
		err := controller.SubmitTurn(ctx, sessionID, text, attachments, settings)
		return TurnFinishedMsg{SessionID: sessionID, Err: err}
	}

	return m, tea.Batch(m.spinner.Tick, submit)
}

// handleAttach validates and stages an image file for the next turn.
func (m Model) handleAttach(path string) (tea.Model, tea.Cmd) {
	m.input.Reset()

	data, err := os.ReadFile(path)
	if err != nil {
		m.status = "Attach failed: " + err.Error()
		return m, nil
	}

	att, err := attachment.FromBytes(path, detectMIMEType(path, data), data)
	if err != nil {
		m.status = "Attach failed: " + err.Error()
		return m, nil
	}

	m.pending = append(m.pending, att)
	m.status = "Attached " + att.Name
	return m, nil
}

// detectMIMEType maps the file extension to a MIME type, falling back to
// content sniffing via the attachment package's allow-list contract.
func detectMIMEType(path string, data []byte) string {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".jpg"), strings.HasSuffix(lower, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(lower, ".png"):
		return "image/png"
	case strings.HasSuffix(lower, ".gif"):
		return "image/gif"
	case strings.HasSuffix(lower, ".webp"):
		return "image/webp"
	}
	return http.DetectContentType(data)
}

// saveSettings persists the current settings to the config file,
// best-effort.
func (m Model) saveSettings() tea.Cmd {
	settings := m.settings
	path := m.configPath
	return func() tea.Msg {
		cfg, err := config.Load(path)
		if err != nil {
			cfg = config.DefaultConfig()
		}
		cfg.Settings = settings
		if err := cfg.Save(path); err != nil {
			return statusMsg("Failed to save settings: " + err.Error())
		}
		return statusMsg(settingsSummary(settings))
	}
}

func settingsSummary(s config.Settings) string {
	parts := []string{s.Model}
	if s.EnableSearch {
		parts = append(parts, "search on")
	}
	if s.EnableThinking {
		parts = append(parts, "thinking on")
	}
	return strings.Join(parts, " | ")
}

func nextModel(current string) string {
	for i, name := range modelChoices {
		if name == current {
			return modelChoices[(i+1)%len(modelChoices)]
		}
	}
	return modelChoices[0]
}
