// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/nguvan-tui/internal/conversation"
	"github.com/jeranaias/nguvan-tui/internal/model"
	"github.com/jeranaias/nguvan-tui/internal/util"
)

const typingText = "đang soạn câu trả lời"

// renderHeader renders the title bar with the backend and model on the right.
func (m Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render(m.ctrl.Persona().Title)
	right := m.theme.HeaderModel.Render(m.ctrl.ProviderName() + " · " + m.ctrl.Model())

	// Header has Padding(0, 1)
	inner := max(m.width-2, 0)
	gap := inner - lipgloss.Width(title) - lipgloss.Width(right)
	if gap < 1 {
		right = ""
		gap = max(inner-lipgloss.Width(title), 0)
	}
	line := title + strings.Repeat(" ", gap) + right
	return m.theme.Header.Width(m.width).Render(line)
}

// renderMessages renders the whole transcript in display order.
func (m *Model) renderMessages() string {
	msgs := m.ctrl.Transcript().Messages()
	blocks := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		blocks = append(blocks, m.renderMessage(msg))
	}
	return strings.Join(blocks, "\n\n")
}

func (m *Model) renderMessage(msg model.Message) string {
	labelStyle := m.theme.AssistantLabel
	if msg.Role == model.RoleUser {
		labelStyle = m.theme.UserLabel
	}
	header := labelStyle.Render(msg.Role.DisplayName()) + " " +
		m.theme.Timestamp.Render(msg.Timestamp.Format("15:04"))

	var body string
	switch {
	case msg.Role == model.RoleUser:
		body = m.theme.UserBubble.Width(m.bodyWidth()).Render(msg.Content)

	case msg.Streaming && msg.Content == "":
		// Typing indicator until the first fragment arrives
		body = m.theme.AssistantBubble.Render(m.spinner.View() + " " + m.theme.Hint.Render(typingText))

	case msg.Failed:
		body = m.theme.ErrorBubble.Width(m.bodyWidth()).Render(msg.Content)

	default:
		body = m.theme.AssistantBubble.Render(m.renderReply(msg))
	}
	return header + "\n" + body
}

// renderReply renders MODEL content as Markdown when enabled.
func (m *Model) renderReply(msg model.Message) string {
	if !m.markdown {
		return lipgloss.NewStyle().Width(m.bodyWidth()).Render(msg.Content)
	}
	if msg.Streaming {
		return m.md.RenderStreaming(msg.ID, msg.Content)
	}
	return m.md.Render(msg.ID, msg.Content)
}

// renderInput renders the input box.
func (m Model) renderInput() string {
	return m.theme.InputContainer.Width(max(m.width-2, 1)).Render(m.input.View())
}

// renderStatusBar renders backend state on the left and the transient status
// or the last exchange statistics on the right.
func (m Model) renderStatusBar() string {
	left := m.stateLabel()

	var right string
	switch m.statusKind {
	case statusHint:
		right = m.theme.Hint.Render(m.status)
	case statusOK:
		right = m.theme.StatusOK.Render(m.status)
	case statusError:
		right = m.theme.StatusError.Render(m.status)
	default:
		if stats := m.ctrl.LastStats(); stats != nil && !m.ctrl.Busy() {
			right = stats.Format()
		} else {
			right = m.theme.ShortcutKey.Render("F1") + " " + m.theme.ShortcutDesc.Render("trợ giúp")
		}
	}

	// StatusBar has Padding(0, 1)
	inner := max(m.width-2, 0)
	rightWidth := lipgloss.Width(right)
	if rightWidth >= inner {
		right = ""
		rightWidth = 0
	}
	left = util.TruncateWidth(left, max(inner-rightWidth-1, 0))
	gap := max(inner-util.StringWidth(left)-rightWidth, 0)

	return m.theme.StatusBar.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

// stateLabel describes the send-flow state in plain text.
func (m Model) stateLabel() string {
	switch m.ctrl.State() {
	case conversation.StateSending:
		return "⋯ đang gửi"
	case conversation.StateStreaming:
		return "⋯ đang trả lời"
	case conversation.StateError:
		return "✗ lỗi"
	}
	if m.lastErr != nil {
		return "✗ lỗi kết nối, hãy thử lại"
	}
	return "● sẵn sàng"
}
