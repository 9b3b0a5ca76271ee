// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gemini streams chat completions from the Gemini API.
package gemini

import (
	"errors"

	"google.golang.org/genai"
)

// ErrUnconfigured indicates no API key is available.
var ErrUnconfigured = errors.New("gemini: no API key configured")

// =============================================================================
// ERROR CLASSIFICATION
// =============================================================================

// Kind categorizes stream failures into the buckets the UI reports.
type Kind int

const (
	// KindUnknown covers anything that doesn't map to a known API failure.
	KindUnknown Kind = iota

	// KindUnconfigured means the client has no API key.
	KindUnconfigured

	// KindBadRequest maps HTTP 400.
	KindBadRequest

	// KindUnauthorized maps HTTP 401 and 403.
	KindUnauthorized

	// KindRateLimited maps HTTP 429.
	KindRateLimited

	// KindServerError maps HTTP 500 and 503.
	KindServerError
)

// String returns the kind name for logging.
func (k Kind) String() string {
	switch k {
	case KindUnconfigured:
		return "unconfigured"
	case KindBadRequest:
		return "bad_request"
	case KindUnauthorized:
		return "unauthorized"
	case KindRateLimited:
		return "rate_limited"
	case KindServerError:
		return "server_error"
	default:
		return "unknown"
	}
}

// StreamError is a classified stream failure. Message is ready for direct
// display to the user.
type StreamError struct {
	Kind    Kind
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *StreamError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *StreamError) Unwrap() error {
	return e.Cause
}

// Classify wraps err in a StreamError keyed on the API status code. Already
// classified errors pass through unchanged.
func Classify(err error) *StreamError {
	var se *StreamError
	if errors.As(err, &se) {
		return se
	}

	if errors.Is(err, ErrUnconfigured) {
		return &StreamError{
			Kind:    KindUnconfigured,
			Message: "No API key configured. Set GEMINI_API_KEY or add api_key to your config file.",
			Cause:   err,
		}
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 400:
			return &StreamError{
				Kind:    KindBadRequest,
				Message: "Bad Request (400). Please check your request, the model might not support this input or the image is too large.",
				Cause:   err,
			}
		case 401, 403:
			return &StreamError{
				Kind:    KindUnauthorized,
				Message: "Unauthorized (401/403). Invalid API Key or permissions.",
				Cause:   err,
			}
		case 429:
			return &StreamError{
				Kind:    KindRateLimited,
				Message: "Too Many Requests (429). You have hit the rate limit.",
				Cause:   err,
			}
		case 500, 503:
			return &StreamError{
				Kind:    KindServerError,
				Message: "Server Error (500/503). Google's services are currently experiencing issues.",
				Cause:   err,
			}
		}
	}

	return &StreamError{
		Kind:    KindUnknown,
		Message: "An unexpected error occurred: " + err.Error(),
		Cause:   err,
	}
}
