// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gemini streams chat completions from the Gemini API.
package gemini

import (
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/jeranaias/gemchat-tui/internal/config"
	"github.com/jeranaias/gemchat-tui/internal/model"
)

func TestBuildContents_NewTurnOnly(t *testing.T) {
	contents := buildContents(nil, "hello", nil)

	require.Len(t, contents, 1)
	require.Equal(t, "user", contents[0].Role)
	require.Len(t, contents[0].Parts, 1)
	require.Equal(t, "hello", contents[0].Parts[0].Text)
}

func TestBuildContents_EmptyTextStillHasPart(t *testing.T) {
	atts := []model.Attachment{
		{MIMEType: "image/png", Data: []byte{0x89, 0x50}},
	}
	contents := buildContents(nil, "", atts)

	require.Len(t, contents, 1)
	// Attachment first, then the (empty) text part.
	require.Len(t, contents[0].Parts, 2)
	require.NotNil(t, contents[0].Parts[0].InlineData)
	require.Equal(t, "image/png", contents[0].Parts[0].InlineData.MIMEType)
	require.Equal(t, "", contents[0].Parts[1].Text)
}

func TestBuildContents_FiltersErrorMessages(t *testing.T) {
	history := []*model.Message{
		{Role: model.RoleUser, Text: "first"},
		{Role: model.RoleModel, Text: "Too Many Requests (429).", IsError: true},
		{Role: model.RoleModel, Text: "reply"},
	}
	contents := buildContents(history, "next", nil)

	require.Len(t, contents, 3)
	require.Equal(t, "first", contents[0].Parts[0].Text)
	require.Equal(t, "model", contents[1].Role)
	require.Equal(t, "reply", contents[1].Parts[0].Text)
	require.Equal(t, "next", contents[2].Parts[0].Text)
}

func TestBuildContents_SkipsEmptyHistoryMessages(t *testing.T) {
	history := []*model.Message{
		{Role: model.RoleModel, Text: ""}, // abandoned placeholder
		{Role: model.RoleUser, Text: "kept"},
	}
	contents := buildContents(history, "next", nil)

	require.Len(t, contents, 2)
	require.Equal(t, "kept", contents[0].Parts[0].Text)
}

func TestBuildContents_HistoryAttachmentsPrecedeText(t *testing.T) {
	history := []*model.Message{
		{
			Role: model.RoleUser,
			Text: "what is this?",
			Attachments: []model.Attachment{
				{MIMEType: "image/jpeg", Data: []byte{0xFF, 0xD8}},
			},
		},
	}
	contents := buildContents(history, "next", nil)

	require.Len(t, contents, 2)
	require.Len(t, contents[0].Parts, 2)
	require.NotNil(t, contents[0].Parts[0].InlineData)
	require.Equal(t, "what is this?", contents[0].Parts[1].Text)
}

func TestBuildConfig_Defaults(t *testing.T) {
	cfg := buildConfig(config.Settings{Model: "gemini-3-flash-preview"})

	require.Nil(t, cfg.Tools)
	require.Nil(t, cfg.ThinkingConfig)
}

func TestBuildConfig_Search(t *testing.T) {
	cfg := buildConfig(config.Settings{
		Model:        "gemini-3-flash-preview",
		EnableSearch: true,
	})

	require.Len(t, cfg.Tools, 1)
	require.NotNil(t, cfg.Tools[0].GoogleSearch)
}

func TestBuildConfig_ThinkingRequiresProModel(t *testing.T) {
	// Non-pro model: thinking flag is ignored.
	cfg := buildConfig(config.Settings{
		Model:          "gemini-3-flash-preview",
		EnableThinking: true,
		ThinkingBudget: 1024,
	})
	require.Nil(t, cfg.ThinkingConfig)

	// Pro model: budget forwarded.
	cfg = buildConfig(config.Settings{
		Model:          "gemini-3-pro-preview",
		EnableThinking: true,
		ThinkingBudget: 1024,
	})
	require.NotNil(t, cfg.ThinkingConfig)
	require.NotNil(t, cfg.ThinkingConfig.ThinkingBudget)
	require.Equal(t, int32(1024), *cfg.ThinkingConfig.ThinkingBudget)
}

func TestBuildConfig_ZeroBudgetForwarded(t *testing.T) {
	cfg := buildConfig(config.Settings{
		Model:          "gemini-3-pro-preview",
		EnableThinking: true,
		ThinkingBudget: 0,
	})

	require.NotNil(t, cfg.ThinkingConfig)
	require.Equal(t, int32(0), *cfg.ThinkingConfig.ThinkingBudget)
}

func TestExtractGrounding(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				GroundingMetadata: &genai.GroundingMetadata{
					GroundingChunks: []*genai.GroundingChunk{
						{Web: &genai.GroundingChunkWeb{URI: "https://example.com", Title: "Example"}},
						{Web: nil}, // non-web chunk, skipped
					},
				},
			},
		},
	}

	chunks := extractGrounding(resp)
	require.Len(t, chunks, 1)
	require.Equal(t, "https://example.com", chunks[0].Web.URI)
	require.Equal(t, "Example", chunks[0].Web.Title)
}

func TestExtractGrounding_NoMetadata(t *testing.T) {
	require.Nil(t, extractGrounding(nil))
	require.Nil(t, extractGrounding(&genai.GenerateContentResponse{}))
	require.Nil(t, extractGrounding(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{}},
	}))
}
