// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat orchestrates conversation turns.
package chat

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/jeranaias/gemchat-tui/internal/config"
	"github.com/jeranaias/gemchat-tui/internal/gemini"
	"github.com/jeranaias/gemchat-tui/internal/model"
	"github.com/jeranaias/gemchat-tui/internal/storage"
)

// ErrTurnInFlight indicates a stream is already active for the session.
var ErrTurnInFlight = errors.New("chat: a turn is already in flight for this session")

// ErrSessionNotFound indicates the target session does not exist.
var ErrSessionNotFound = errors.New("chat: session not found")

// errorPrefix marks error messages in the transcript.
const errorPrefix = "**Error**: "

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller coordinates turns between the session store and the streamer.
//
// All mutations flow through the store; the controller holds no session
// state of its own beyond the per-session in-flight guard.
type Controller struct {
	store    *storage.SessionStore
	streamer gemini.Streamer
	logger   *slog.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}
	onChange func()
}

// NewController creates a Controller. A nil logger falls back to
// slog.Default().
func NewController(store *storage.SessionStore, streamer gemini.Streamer, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		store:    store,
		streamer: streamer,
		logger:   logger,
		inFlight: make(map[string]struct{}),
	}
}

// SetOnChange registers a callback invoked after every session mutation.
// Must be set before the first turn; the callback may run on a streaming
// goroutine.
func (c *Controller) SetOnChange(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

func (c *Controller) notify() {
	c.mu.Lock()
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// InFlight reports whether a stream is active for the session.
func (c *Controller) InFlight(sessionID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.inFlight[sessionID]
	return ok
}

func (c *Controller) acquire(sessionID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.inFlight[sessionID]; ok {
		return false
	}
	c.inFlight[sessionID] = struct{}{}
	return true
}

func (c *Controller) release(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inFlight, sessionID)
}

// =============================================================================
// TURN ORCHESTRATION
// =============================================================================

// SubmitTurn runs one full conversation turn synchronously: it returns once
// the stream has completed or failed. Callers wanting a responsive UI run it
// on a goroutine and rely on the OnChange callback for re-renders.
//
// On failure the partial response text is kept and a separate error message
// is appended, so a failed turn adds three messages where a successful one
// adds two.
func (c *Controller) SubmitTurn(ctx context.Context, sessionID, text string, attachments []model.Attachment, settings config.Settings) error {
	session := c.store.Get(sessionID)
	if session == nil {
		return ErrSessionNotFound
	}

	if !c.acquire(sessionID) {
		return ErrTurnInFlight
	}
	defer c.release(sessionID)

	// History snapshot from before this turn; the request must not include
	// the user message or placeholder appended below. Get returned a clone,
	// so this slice is ours.
	history := session.Messages

	userMsg := model.NewUserMessage(text, attachments)
	messages := make([]*model.Message, 0, len(history)+2)
	messages = append(messages, history...)
	messages = append(messages, userMsg)
	if c.store.UpdateMessages(sessionID, messages) == nil {
		return ErrSessionNotFound
	}
	c.store.Persist()
	c.notify()

	placeholder := model.NewModelPlaceholder()
	messages = append(messages, placeholder)
	c.store.UpdateMessages(sessionID, messages)
	c.store.Persist()
	c.notify()

	return c.consume(ctx, sessionID, placeholder.ID, history, text, attachments, settings)
}

// consume folds the fragment stream into the placeholder message.
func (c *Controller) consume(ctx context.Context, sessionID, placeholderID string, history []*model.Message, text string, attachments []model.Attachment, settings config.Settings) error {
	fragments := c.streamer.Stream(ctx, history, text, attachments, settings)

	// orphaned flips once the placeholder disappears (session deleted or
	// cleared mid-stream); remaining fragments are drained and discarded so
	// the producer goroutine can finish.
	orphaned := false
	var streamErr error

	for frag := range fragments {
		if frag.Err != nil {
			streamErr = frag.Err
			break
		}
		if orphaned {
			continue
		}
		if !c.applyFragment(sessionID, placeholderID, frag) {
			c.logger.Debug("discarding fragment, placeholder gone",
				"session_id", sessionID)
			orphaned = true
		}
	}

	if streamErr != nil {
		if !orphaned {
			c.appendError(sessionID, streamErr)
		}
		return streamErr
	}
	return nil
}

// applyFragment appends the fragment's text and citations to the placeholder
// and persists. Returns false when the placeholder no longer exists.
func (c *Controller) applyFragment(sessionID, placeholderID string, frag gemini.Fragment) bool {
	session := c.store.Get(sessionID)
	if session == nil {
		return false
	}
	msg := session.FindMessage(placeholderID)
	if msg == nil {
		return false
	}

	msg.Text += frag.TextDelta
	msg.GroundingSources = append(msg.GroundingSources, frag.GroundingChunks...)

	c.store.UpdateMessages(sessionID, session.Messages)
	c.store.Persist()
	c.notify()
	return true
}

// appendError records a classified stream failure as an error message after
// any partial response text.
func (c *Controller) appendError(sessionID string, streamErr error) {
	session := c.store.Get(sessionID)
	if session == nil {
		return
	}

	errMsg := model.NewErrorMessage(errorPrefix + streamErr.Error())
	messages := append(session.Messages, errMsg)

	c.store.UpdateMessages(sessionID, messages)
	c.store.Persist()
	c.notify()
}

// =============================================================================
// SESSION LIFECYCLE
// =============================================================================

// Sessions returns a snapshot of the collection in order.
func (c *Controller) Sessions() []*model.Session {
	return c.store.Sessions()
}

// Get returns a clone of the session with the given ID, or nil.
func (c *Controller) Get(id string) *model.Session {
	return c.store.Get(id)
}

// NewSession creates a session at the front of the collection and persists.
func (c *Controller) NewSession() *model.Session {
	session := c.store.CreateSession()
	c.store.Persist()
	c.notify()
	return session
}

// DeleteSession removes a session and returns the replacement active
// session: the front of the remaining collection, or a freshly created one
// when the last session was deleted.
func (c *Controller) DeleteSession(id string) *model.Session {
	c.store.DeleteSession(id)

	var active *model.Session
	if sessions := c.store.Sessions(); len(sessions) > 0 {
		active = sessions[0]
	} else {
		active = c.store.CreateSession()
	}

	c.store.Persist()
	c.notify()
	return active
}

// ClearAll drops every session and returns the fresh replacement.
func (c *Controller) ClearAll() *model.Session {
	session := c.store.ClearAll()
	c.notify()
	return session
}
