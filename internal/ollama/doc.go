// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides a completion backend for a local Ollama server.
//
// Replies are streamed from /api/chat as newline-delimited JSON. Ollama needs
// no credential, so sessions can always be created; an unreachable server
// fails the first send with ErrNotRunning.
package ollama
