// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package conversation implements the send-message flow.
//
// A Controller owns the transcript, the busy flag and the lazily created
// completion session. Send moves it through
//
//	IDLE -> SENDING -> STREAMING -> IDLE
//	IDLE -> SENDING -> STREAMING -> ERROR -> IDLE
//
// Each submission appends the user message and an empty model placeholder,
// then streams the reply into that placeholder from a background goroutine.
// Fragments are applied to the transcript as events addressed by the
// placeholder's ID, never by position. Any failure replaces the placeholder
// with the persona's apology. At most one exchange is in flight.
//
// # Usage
//
//	ctrl := conversation.New(provider, "gemini-2.5-flash",
//	    conversation.WithLogger(logger))
//	ex, err := ctrl.Send(ctx, "Phân tích bài thơ Tây Tiến")
//	if err != nil { ... }          // ErrEmptyMessage or ErrBusy
//	for u := range ex.Updates() { ... }
//	err = ex.Wait()                // nil, or the diagnostic failure
package conversation
