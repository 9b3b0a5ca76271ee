// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gemini streams chat completions from the Gemini API.
package gemini

import (
	"context"
	"log/slog"

	"google.golang.org/genai"

	"github.com/jeranaias/gemchat-tui/internal/config"
	"github.com/jeranaias/gemchat-tui/internal/model"
)

// Fragment is one increment of a streaming response. TextDelta holds new
// text to append; GroundingChunks holds new citations to append. A fragment
// with a non-nil Err is terminal.
type Fragment struct {
	TextDelta       string
	GroundingChunks []model.GroundingChunk
	Err             error
}

// Streamer produces response fragments for a conversation turn.
//
// Implementations send fragments until the response completes or fails,
// then close the channel. On failure the last fragment before close carries
// the error; normal completion closes the channel with no error fragment.
type Streamer interface {
	Stream(ctx context.Context, history []*model.Message, text string, attachments []model.Attachment, settings config.Settings) <-chan Fragment
}

// =============================================================================
// CLIENT
// =============================================================================

// Client streams chat completions from the Gemini API.
type Client struct {
	apiKey string
	logger *slog.Logger
}

// NewClient creates a Client. An empty apiKey is allowed; streams then fail
// immediately with a classified unconfigured error.
func NewClient(apiKey string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{apiKey: apiKey, logger: logger}
}

// IsConfigured reports whether the client has an API key.
func (c *Client) IsConfigured() bool {
	return c.apiKey != ""
}

// Stream implements Streamer against the Gemini API.
//
// RELIABILITY: the SDK client is created per stream rather than held on the
// Client so that an API key change (config reload) takes effect on the next
// turn without any reconnection logic.
func (c *Client) Stream(ctx context.Context, history []*model.Message, text string, attachments []model.Attachment, settings config.Settings) <-chan Fragment {
	out := make(chan Fragment, 16)

	if !c.IsConfigured() {
		out <- Fragment{Err: Classify(ErrUnconfigured)}
		close(out)
		return out
	}

	go func() {
		defer close(out)

		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  c.apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			c.sendFragment(ctx, out, Fragment{Err: Classify(err)})
			return
		}

		contents := buildContents(history, text, attachments)
		cfg := buildConfig(settings)

		c.logger.Debug("starting stream",
			"model", settings.Model,
			"history_len", len(history),
			"attachments", len(attachments),
			"search", settings.EnableSearch,
			"thinking", settings.EnableThinking && settings.IsProModel())

		for resp, err := range client.Models.GenerateContentStream(ctx, settings.Model, contents, cfg) {
			if err != nil {
				c.logger.Warn("stream failed", "error", err)
				c.sendFragment(ctx, out, Fragment{Err: Classify(err)})
				return
			}

			frag := Fragment{
				TextDelta:       resp.Text(),
				GroundingChunks: extractGrounding(resp),
			}
			if frag.TextDelta == "" && frag.GroundingChunks == nil {
				continue
			}
			if !c.sendFragment(ctx, out, frag) {
				return
			}
		}
	}()

	return out
}

// sendFragment delivers a fragment unless the context is done. Returns
// false when the send was abandoned.
func (c *Client) sendFragment(ctx context.Context, out chan<- Fragment, frag Fragment) bool {
	select {
	case out <- frag:
		return true
	case <-ctx.Done():
		return false
	}
}
