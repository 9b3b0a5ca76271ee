// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package attachment validates candidate file payloads before they may be
// added to a message.
//
// Validation is a pure size/type policy check: payloads over 10 MiB are
// rejected, as is any MIME type outside the image allow-list. Rejected
// payloads never reach a message or the network.
package attachment
