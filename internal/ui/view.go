// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui is the Bubble Tea presentation layer.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/gemchat-tui/internal/model"
)

// View implements tea.Model.
func (m Model) View() string {
	main := lipgloss.JoinVertical(lipgloss.Left,
		m.viewport.View(),
		m.renderInput(),
		m.renderStatusBar(),
	)
	return lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), main)
}

// =============================================================================
// SIDEBAR
// =============================================================================

func (m Model) renderSidebar() string {
	var b strings.Builder
	b.WriteString(sidebarTitleStyle.Render("gemchat"))
	b.WriteString("\n\n")

	for i, session := range m.sessions {
		title := runewidth.Truncate(session.Title, sidebarWidth-4, "…")

		style := sessionItemStyle
		if m.focus == focusSidebar && i == m.cursor {
			style = sessionCursorStyle
		} else if session.ID == m.activeID {
			style = sessionActiveStyle
		}
		b.WriteString(style.Render(title))
		b.WriteString("\n")
	}

	height := m.height
	if height < 1 {
		height = 24
	}
	return sidebarStyle.Height(height).Render(b.String())
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// refreshViewport re-renders the active session's transcript.
func (m *Model) refreshViewport() {
	session := m.activeSession()
	if session == nil {
		m.viewport.SetContent("")
		return
	}
	m.viewport.SetContent(m.renderMessages(session))
}

func (m *Model) renderMessages(session *model.Session) string {
	if len(session.Messages) == 0 {
		return "\n  Start the conversation below."
	}

	var b strings.Builder
	for _, msg := range session.Messages {
		b.WriteString(m.renderMessage(msg))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderMessage(msg *model.Message) string {
	var b strings.Builder

	switch {
	case msg.Role == model.RoleUser:
		b.WriteString(userLabelStyle.Render(msg.Role.DisplayName()))
		b.WriteString("\n")
		for _, att := range msg.Attachments {
			b.WriteString(attachmentTagStyle.Render("[" + att.Name + "]"))
			b.WriteString("\n")
		}
		b.WriteString(msg.Text)
		b.WriteString("\n")

	case msg.IsError:
		b.WriteString(modelLabelStyle.Render(msg.Role.DisplayName()))
		b.WriteString("\n")
		b.WriteString(errorTextStyle.Render(msg.Text))
		b.WriteString("\n")

	default:
		b.WriteString(modelLabelStyle.Render(msg.Role.DisplayName()))
		b.WriteString("\n")
		b.WriteString(m.renderMarkdown(msg.Text))
		if len(msg.GroundingSources) > 0 {
			b.WriteString(m.renderGrounding(msg.GroundingSources))
		}
	}
	return b.String()
}

// renderMarkdown renders model output through glamour, falling back to raw
// text when rendering fails.
func (m *Model) renderMarkdown(text string) string {
	if m.renderer == nil || text == "" {
		return text + "\n"
	}
	out, err := m.renderer.Render(text)
	if err != nil {
		return text + "\n"
	}
	return out
}

func (m *Model) renderGrounding(chunks []model.GroundingChunk) string {
	var b strings.Builder
	b.WriteString(groundingStyle.Render("Sources:"))
	b.WriteString("\n")
	for i, chunk := range chunks {
		if chunk.Web == nil {
			continue
		}
		label := chunk.Web.Title
		if label == "" {
			label = chunk.Web.URI
		}
		line := fmt.Sprintf("  [%d] %s (%s)", i+1, label, chunk.Web.URI)
		b.WriteString(groundingStyle.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

// =============================================================================
// INPUT AND STATUS
// =============================================================================

func (m Model) renderInput() string {
	if m.streaming {
		return m.spinner.View() + " Gemini is responding..."
	}
	return m.input.View()
}

func (m Model) renderStatusBar() string {
	if m.status != "" {
		return statusBarStyle.Render(m.status)
	}

	parts := []string{m.settings.Model}
	if m.settings.EnableSearch {
		parts = append(parts, statusToggleOn.Render("search"))
	}
	if m.settings.EnableThinking {
		parts = append(parts, statusToggleOn.Render("thinking"))
	}
	if n := len(m.pending); n > 0 {
		parts = append(parts, fmt.Sprintf("%d attachment(s)", n))
	}
	parts = append(parts, "Tab sessions | C-n new | C-x delete | C-s search | C-t think | C-g model")

	return statusBarStyle.Render(strings.Join(parts, "  "))
}
