// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the chat screen of the TUI.

The screen is a passive projection of a conversation.Controller: it renders
the controller's transcript and busy flag and forwards submissions to it.

# Key Components

## Model (model.go)

The Bubble Tea model. It owns the viewport, the single-line input, the typing
spinner and the help line. Exchange updates reach the update loop through a
tea.Cmd that waits on the exchange's update channel, so no program reference
is shared with the streaming goroutine.

## View Rendering (view.go)

Header, message bubbles, input box and status bar. Replies are rendered as
Markdown when enabled.

## Markdown (markdown.go)

Glamour rendering with a per-message cache. While a reply streams,
re-rendering is throttled by a rate.Limiter and the text received since the
last render is shown plain.

## Key Bindings (keys.go)

	Enter        send
	Ctrl+Y       copy the last reply
	↑/↓ PgUp/PgDn scroll
	F1           toggle help
	Ctrl+C / Esc quit
*/
package chat
