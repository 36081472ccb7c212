// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the transcript and message types.
//
// # Key Types
//
//   - Transcript: ordered, concurrency-safe list of messages
//   - Message: a USER or MODEL record with content and streaming flag
//   - Event: FragmentEvent, ReplaceEvent and FinalizeEvent, the reducer inputs
//     used while a reply streams in
//   - Statistics: timing for one streamed exchange
//   - ModelInfo: display metadata for known models
//
// # Usage
//
//	t := model.NewTranscript(model.NewModelMessage("Xin chào!"))
//	t.Append(model.NewUserMessage("Phân tích bài thơ"))
//	id := t.Append(model.NewPlaceholder())
//	t.Apply(model.FragmentEvent{ID: id, Text: "Bài"})
//	t.Apply(model.FinalizeEvent{ID: id})
package model
