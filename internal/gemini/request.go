// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gemini streams chat completions from the Gemini API.
package gemini

import (
	"google.golang.org/genai"

	"github.com/jeranaias/gemchat-tui/internal/config"
	"github.com/jeranaias/gemchat-tui/internal/model"
)

// =============================================================================
// REQUEST CONSTRUCTION
// =============================================================================

// buildContents converts prior history plus the new user turn into genai
// content. Error messages are excluded from history, as are messages that
// end up with no parts. Within each message, attachments precede text; the
// new turn's text part is always present even when empty so the request has
// a user turn to answer.
func buildContents(history []*model.Message, text string, attachments []model.Attachment) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history)+1)

	for _, msg := range history {
		if msg.IsError {
			continue
		}
		parts := messageParts(msg)
		if len(parts) == 0 {
			continue
		}
		contents = append(contents, &genai.Content{
			Role:  msg.Role.String(),
			Parts: parts,
		})
	}

	parts := make([]*genai.Part, 0, len(attachments)+1)
	for _, att := range attachments {
		parts = append(parts, inlinePart(att))
	}
	parts = append(parts, &genai.Part{Text: text})

	contents = append(contents, &genai.Content{
		Role:  model.RoleUser.String(),
		Parts: parts,
	})

	return contents
}

// messageParts converts a stored message into genai parts, attachments first.
// Empty text is dropped for historical messages.
func messageParts(msg *model.Message) []*genai.Part {
	parts := make([]*genai.Part, 0, len(msg.Attachments)+1)
	for _, att := range msg.Attachments {
		parts = append(parts, inlinePart(att))
	}
	if msg.Text != "" {
		parts = append(parts, &genai.Part{Text: msg.Text})
	}
	return parts
}

func inlinePart(att model.Attachment) *genai.Part {
	return &genai.Part{
		InlineData: &genai.Blob{
			MIMEType: att.MIMEType,
			Data:     att.Data,
		},
	}
}

// buildConfig derives generation config from settings. Thinking is only
// requested on pro-tier models; other models reject the field.
func buildConfig(settings config.Settings) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}

	if settings.EnableSearch {
		cfg.Tools = []*genai.Tool{
			{GoogleSearch: &genai.GoogleSearch{}},
		}
	}

	if settings.EnableThinking && settings.IsProModel() {
		cfg.ThinkingConfig = &genai.ThinkingConfig{
			ThinkingBudget: genai.Ptr(int32(settings.ThinkingBudget)),
		}
	}

	return cfg
}

// extractGrounding pulls web citations out of a streaming response chunk.
// Returns nil when the chunk carries no grounding metadata.
func extractGrounding(resp *genai.GenerateContentResponse) []model.GroundingChunk {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil
	}
	meta := resp.Candidates[0].GroundingMetadata
	if meta == nil || len(meta.GroundingChunks) == 0 {
		return nil
	}

	chunks := make([]model.GroundingChunk, 0, len(meta.GroundingChunks))
	for _, gc := range meta.GroundingChunks {
		if gc == nil || gc.Web == nil {
			continue
		}
		chunks = append(chunks, model.GroundingChunk{
			Web: &model.GroundingWeb{
				URI:   gc.Web.URI,
				Title: gc.Web.Title,
			},
		})
	}
	if len(chunks) == 0 {
		return nil
	}
	return chunks
}
