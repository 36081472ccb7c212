// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/nguvan-tui/internal/conversation"
)

// exchangeUpdateMsg delivers one controller update to the update loop.
type exchangeUpdateMsg struct {
	exchange *conversation.Exchange
	update   conversation.Update
}

// exchangeClosedMsg signals that an exchange's update channel was closed.
type exchangeClosedMsg struct {
	exchange *conversation.Exchange
}

// clipboardMsg reports the result of a copy.
type clipboardMsg struct {
	chars int
	err   error
}

// waitForUpdate blocks on the exchange's update channel for one message.
func waitForUpdate(ex *conversation.Exchange) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-ex.Updates()
		if !ok {
			return exchangeClosedMsg{exchange: ex}
		}
		return exchangeUpdateMsg{exchange: ex, update: u}
	}
}
