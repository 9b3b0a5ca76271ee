// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat orchestrates conversation turns.
package chat

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/jeranaias/gemchat-tui/internal/config"
	"github.com/jeranaias/gemchat-tui/internal/gemini"
	"github.com/jeranaias/gemchat-tui/internal/model"
	"github.com/jeranaias/gemchat-tui/internal/storage"
)

// fakeStreamer replays canned fragments and records the request it was
// given.
type fakeStreamer struct {
	fragments []gemini.Fragment

	history     []*model.Message
	text        string
	attachments []model.Attachment
	settings    config.Settings

	// blocks the stream open until closed, when non-nil
	gate chan struct{}
	// signals that the stream has been opened, when non-nil
	started chan struct{}
}

func (f *fakeStreamer) Stream(ctx context.Context, history []*model.Message, text string, attachments []model.Attachment, settings config.Settings) <-chan gemini.Fragment {
	f.history = history
	f.text = text
	f.attachments = attachments
	f.settings = settings

	out := make(chan gemini.Fragment, len(f.fragments))
	go func() {
		defer close(out)
		if f.started != nil {
			close(f.started)
		}
		if f.gate != nil {
			<-f.gate
		}
		for _, frag := range f.fragments {
			select {
			case out <- frag:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func newTestController(t *testing.T, streamer gemini.Streamer) (*Controller, *storage.SessionStore) {
	t.Helper()
	slot := storage.NewFileSlot(filepath.Join(t.TempDir(), "slot.json"))
	store := storage.NewSessionStore(slot, slog.New(slog.DiscardHandler))
	return NewController(store, streamer, slog.New(slog.DiscardHandler)), store
}

func TestSubmitTurn_Success(t *testing.T) {
	streamer := &fakeStreamer{fragments: []gemini.Fragment{
		{TextDelta: "Hi"},
		{TextDelta: " there"},
	}}
	ctrl, store := newTestController(t, streamer)

	session := ctrl.NewSession()
	err := ctrl.SubmitTurn(context.Background(), session.ID, "Hello", nil, config.Settings{Model: "gemini-3-flash-preview"})
	require.NoError(t, err)

	got := store.Get(session.ID)
	require.Len(t, got.Messages, 2)
	require.Equal(t, model.RoleUser, got.Messages[0].Role)
	require.Equal(t, "Hello", got.Messages[0].Text)
	require.Equal(t, model.RoleModel, got.Messages[1].Role)
	require.Equal(t, "Hi there", got.Messages[1].Text)
	require.False(t, got.Messages[1].IsError)
	require.Equal(t, "Hello", got.Title)
}

func TestSubmitTurn_GroundingAccumulatesWithoutDedup(t *testing.T) {
	chunk := model.GroundingChunk{Web: &model.GroundingWeb{URI: "https://example.com"}}
	streamer := &fakeStreamer{fragments: []gemini.Fragment{
		{TextDelta: "a", GroundingChunks: []model.GroundingChunk{chunk}},
		{TextDelta: "b", GroundingChunks: []model.GroundingChunk{chunk, chunk}},
	}}
	ctrl, store := newTestController(t, streamer)

	session := ctrl.NewSession()
	require.NoError(t, ctrl.SubmitTurn(context.Background(), session.ID, "cite", nil, config.Settings{}))

	got := store.Get(session.ID)
	require.Equal(t, "ab", got.Messages[1].Text)
	// Duplicates are preserved in emission order.
	require.Len(t, got.Messages[1].GroundingSources, 3)
}

func TestSubmitTurn_FailureKeepsPartialAndAppendsError(t *testing.T) {
	streamer := &fakeStreamer{fragments: []gemini.Fragment{
		{TextDelta: "Partial"},
		{Err: gemini.Classify(genai.APIError{Code: 429})},
	}}
	ctrl, store := newTestController(t, streamer)

	session := ctrl.NewSession()
	err := ctrl.SubmitTurn(context.Background(), session.ID, "question", nil, config.Settings{})
	require.Error(t, err)

	var se *gemini.StreamError
	require.ErrorAs(t, err, &se)
	require.Equal(t, gemini.KindRateLimited, se.Kind)

	// Failed turn: user message + partial placeholder + error message.
	got := store.Get(session.ID)
	require.Len(t, got.Messages, 3)
	require.Equal(t, "Partial", got.Messages[1].Text)
	require.False(t, got.Messages[1].IsError)
	require.True(t, got.Messages[2].IsError)
	require.Equal(t, "**Error**: Too Many Requests (429). You have hit the rate limit.", got.Messages[2].Text)
}

func TestSubmitTurn_ImmediateFailureStillAddsThreeMessages(t *testing.T) {
	streamer := &fakeStreamer{fragments: []gemini.Fragment{
		{Err: gemini.Classify(gemini.ErrUnconfigured)},
	}}
	ctrl, store := newTestController(t, streamer)

	session := ctrl.NewSession()
	err := ctrl.SubmitTurn(context.Background(), session.ID, "hi", nil, config.Settings{})
	require.ErrorIs(t, err, gemini.ErrUnconfigured)

	got := store.Get(session.ID)
	require.Len(t, got.Messages, 3)
	require.Equal(t, "", got.Messages[1].Text)
	require.True(t, got.Messages[2].IsError)
}

func TestSubmitTurn_HistoryExcludesNewTurn(t *testing.T) {
	streamer := &fakeStreamer{fragments: []gemini.Fragment{{TextDelta: "ok"}}}
	ctrl, store := newTestController(t, streamer)

	session := ctrl.NewSession()
	require.NoError(t, ctrl.SubmitTurn(context.Background(), session.ID, "first", nil, config.Settings{}))
	require.NoError(t, ctrl.SubmitTurn(context.Background(), session.ID, "second", nil, config.Settings{}))

	// The second turn's request history is exactly the first turn's outcome.
	require.Len(t, streamer.history, 2)
	require.Equal(t, "first", streamer.history[0].Text)
	require.Equal(t, "ok", streamer.history[1].Text)
	require.Equal(t, "second", streamer.text)

	require.Len(t, store.Get(session.ID).Messages, 4)
}

func TestSubmitTurn_SessionNotFound(t *testing.T) {
	ctrl, _ := newTestController(t, &fakeStreamer{})

	err := ctrl.SubmitTurn(context.Background(), "no-such-id", "hi", nil, config.Settings{})
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSubmitTurn_OneStreamPerSession(t *testing.T) {
	streamer := &fakeStreamer{
		fragments: []gemini.Fragment{{TextDelta: "slow"}},
		gate:      make(chan struct{}),
		started:   make(chan struct{}),
	}
	ctrl, _ := newTestController(t, streamer)
	session := ctrl.NewSession()

	done := make(chan error, 1)
	go func() {
		done <- ctrl.SubmitTurn(context.Background(), session.ID, "first", nil, config.Settings{})
	}()
	<-streamer.started

	err := ctrl.SubmitTurn(context.Background(), session.ID, "second", nil, config.Settings{})
	require.ErrorIs(t, err, ErrTurnInFlight)
	require.True(t, ctrl.InFlight(session.ID))

	close(streamer.gate)
	require.NoError(t, <-done)
	require.False(t, ctrl.InFlight(session.ID))
}

func TestSubmitTurn_DiscardsFragmentsAfterSessionDeleted(t *testing.T) {
	streamer := &fakeStreamer{fragments: []gemini.Fragment{
		{TextDelta: "one"},
		{TextDelta: "two"},
	}}
	ctrl, store := newTestController(t, streamer)
	session := ctrl.NewSession()

	// Delete the session right after the first fragment lands. The callback
	// runs synchronously inside the fold, so this is deterministic: change 1
	// is the user message, 2 the placeholder, 3 the first fragment.
	changes := 0
	ctrl.SetOnChange(func() {
		changes++
		if changes == 3 {
			store.DeleteSession(session.ID)
		}
	})

	err := ctrl.SubmitTurn(context.Background(), session.ID, "hi", nil, config.Settings{})
	require.NoError(t, err)
	require.Equal(t, 0, store.Count())
}

func TestDeleteSession_SelectsFrontOfRemaining(t *testing.T) {
	ctrl, store := newTestController(t, &fakeStreamer{})

	older := ctrl.NewSession()
	newer := ctrl.NewSession()

	active := ctrl.DeleteSession(newer.ID)
	require.Equal(t, older.ID, active.ID)
	require.Equal(t, 1, store.Count())
}

func TestDeleteSession_LastSessionRecreates(t *testing.T) {
	ctrl, store := newTestController(t, &fakeStreamer{})

	only := ctrl.NewSession()
	active := ctrl.DeleteSession(only.ID)

	require.NotEqual(t, only.ID, active.ID)
	require.Equal(t, model.DefaultTitle, active.Title)
	require.Equal(t, 1, store.Count())
}

func TestClearAll_LeavesOneFreshSession(t *testing.T) {
	ctrl, store := newTestController(t, &fakeStreamer{})

	ctrl.NewSession()
	ctrl.NewSession()

	fresh := ctrl.ClearAll()
	require.Equal(t, 1, store.Count())
	require.Equal(t, model.DefaultTitle, fresh.Title)
	require.Empty(t, fresh.Messages)
}

func TestSubmitTurn_SettingsForwarded(t *testing.T) {
	streamer := &fakeStreamer{fragments: []gemini.Fragment{{TextDelta: "ok"}}}
	ctrl, _ := newTestController(t, streamer)
	session := ctrl.NewSession()

	settings := config.Settings{
		Model:          "gemini-3-pro-preview",
		EnableSearch:   true,
		EnableThinking: true,
		ThinkingBudget: 2048,
	}
	require.NoError(t, ctrl.SubmitTurn(context.Background(), session.ID, "hi", nil, settings))
	require.Equal(t, settings, streamer.settings)
}

func TestSubmitTurn_AttachmentsForwarded(t *testing.T) {
	streamer := &fakeStreamer{fragments: []gemini.Fragment{{TextDelta: "ok"}}}
	ctrl, store := newTestController(t, streamer)
	session := ctrl.NewSession()

	atts := []model.Attachment{{MIMEType: "image/png", Data: []byte{1, 2, 3}, Name: "pic.png"}}
	require.NoError(t, ctrl.SubmitTurn(context.Background(), session.ID, "what is this", atts, config.Settings{}))

	require.Equal(t, atts, streamer.attachments)
	require.Equal(t, atts, store.Get(session.ID).Messages[0].Attachments)
}

func TestSubmitTurn_ErrorsAreClassified(t *testing.T) {
	cause := errors.New("boom")
	streamer := &fakeStreamer{fragments: []gemini.Fragment{
		{Err: gemini.Classify(cause)},
	}}
	ctrl, _ := newTestController(t, streamer)
	session := ctrl.NewSession()

	err := ctrl.SubmitTurn(context.Background(), session.ID, "hi", nil, config.Settings{})
	require.ErrorIs(t, err, cause)
}
