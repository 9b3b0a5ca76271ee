// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package attachment validates candidate file payloads before they may be
// added to a message.
package attachment

import (
	"errors"
	"fmt"

	"github.com/jeranaias/gemchat-tui/internal/model"
)

// MaxSize is the attachment size ceiling.
const MaxSize = 10 * 1024 * 1024 // 10 MiB

// Sentinel errors for easy checking with errors.Is.
var (
	ErrTooLarge        = errors.New("attachment exceeds the 10 MiB limit")
	ErrUnsupportedType = errors.New("unsupported attachment type")
)

// allowedTypes is the image MIME allow-list.
var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Validate checks a candidate payload against the size/type policy.
// It has no side effects; encoding is the caller's job.
func Validate(name, mimeType string, size int64) error {
	if size > MaxSize {
		return fmt.Errorf("%w: %s (%d bytes)", ErrTooLarge, name, size)
	}
	if !allowedTypes[mimeType] {
		return fmt.Errorf("%w: %s (%s)", ErrUnsupportedType, name, mimeType)
	}
	return nil
}

// FromBytes validates raw file data and wraps it as a model.Attachment.
func FromBytes(name, mimeType string, data []byte) (model.Attachment, error) {
	if err := Validate(name, mimeType, int64(len(data))); err != nil {
		return model.Attachment{}, err
	}
	return model.Attachment{
		MIMEType: mimeType,
		Data:     data,
		Name:     name,
	}, nil
}
