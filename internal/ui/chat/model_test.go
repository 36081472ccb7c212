// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/nguvan-tui/internal/conversation"
	"github.com/jeranaias/nguvan-tui/internal/llm/mock"
	"github.com/jeranaias/nguvan-tui/internal/model"
	"github.com/jeranaias/nguvan-tui/internal/persona"
	"github.com/jeranaias/nguvan-tui/internal/ui/styles"
)

type fakeClipboard struct {
	got string
	err error
}

func (f *fakeClipboard) write(s string) error {
	f.got = s
	return f.err
}

func newTestModel(t *testing.T, replies ...mock.Reply) (Model, *conversation.Controller, *fakeClipboard) {
	t.Helper()
	ctrl := conversation.New(mock.New(replies...), "")
	cb := &fakeClipboard{}
	m := New(ctrl,
		WithTheme(styles.NewTheme("dark")),
		WithMarkdown(false),
		WithClipboard(cb.write),
	)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return next.(Model), ctrl, cb
}

func update(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func typeAndSubmit(m Model, text string) (Model, tea.Cmd) {
	m.input.SetValue(text)
	return update(m, tea.KeyMsg{Type: tea.KeyEnter})
}

// drain feeds exchange updates into the model until the exchange ends.
func drain(m Model, ex *conversation.Exchange) Model {
	for {
		msg := waitForUpdate(ex)()
		m, _ = update(m, msg)
		switch msg := msg.(type) {
		case exchangeClosedMsg:
			return m
		case exchangeUpdateMsg:
			if msg.update.Terminal() {
				return m
			}
		}
	}
}

func TestModel_ShowsGreetingAndTitle(t *testing.T) {
	m, _, _ := newTestModel(t)

	view := m.View()
	require.Contains(t, view, persona.Title)
	require.Contains(t, view, "Trợ lý")
	require.Contains(t, view, "Xin chào")
}

func TestModel_SubmitStreamsReply(t *testing.T) {
	m, ctrl, _ := newTestModel(t, mock.Reply{Fragments: []string{"Bài", "thơ", " X..."}})

	m, cmd := typeAndSubmit(m, "  Phân tích bài thơ X  ")
	require.NotNil(t, cmd)
	require.NotNil(t, m.current)
	require.Empty(t, m.input.Value())

	m = drain(m, m.current)

	require.Nil(t, m.current)
	require.False(t, ctrl.Busy())
	msgs := ctrl.Transcript().Messages()
	require.Len(t, msgs, 3)
	require.Equal(t, "Phân tích bài thơ X", msgs[1].Content)
	require.Equal(t, "Bàithơ X...", msgs[2].Content)
	require.Contains(t, m.View(), "Bàithơ X...")
	require.Contains(t, m.renderStatusBar(), "sẵn sàng")
}

func TestModel_BlankSubmitIgnored(t *testing.T) {
	m, ctrl, _ := newTestModel(t)

	m, cmd := typeAndSubmit(m, "   ")
	require.Nil(t, cmd)
	require.Nil(t, m.current)
	require.Equal(t, 1, ctrl.Transcript().Len())
}

func TestModel_SubmitWhileBusyShowsHint(t *testing.T) {
	hold := make(chan struct{})
	m, ctrl, _ := newTestModel(t, mock.Reply{Fragments: []string{"ok"}, Hold: hold})

	m, _ = typeAndSubmit(m, "first")
	ex := m.current
	require.True(t, ctrl.Busy())
	require.Contains(t, m.renderMessages(), typingText)

	m, cmd := typeAndSubmit(m, "second")
	require.Nil(t, cmd)
	require.Equal(t, 3, ctrl.Transcript().Len())
	require.Equal(t, "second", m.input.Value(), "input is kept while busy")
	require.Contains(t, m.renderStatusBar(), hintBusy)

	close(hold)
	m = drain(m, ex)
	require.Equal(t, "ok", ctrl.Transcript().Last().Content)

	// Typing clears the hint.
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	require.NotContains(t, m.renderStatusBar(), hintBusy)
}

func TestModel_FailureShowsApology(t *testing.T) {
	m, ctrl, _ := newTestModel(t, mock.Reply{
		Fragments: []string{"fragment1"},
		Err:       errors.New("boom"),
	})

	m, _ = typeAndSubmit(m, "q")
	m = drain(m, m.current)

	require.Equal(t, persona.Apology, ctrl.Transcript().Last().Content)
	require.Error(t, m.lastErr)
	require.Contains(t, m.View(), persona.Apology)
	require.NotContains(t, m.View(), "fragment1")
	require.Contains(t, m.renderStatusBar(), "lỗi")
}

func TestModel_ErrorBubbleFollowsFailedFlag(t *testing.T) {
	prev := lipgloss.ColorProfile()
	lipgloss.SetColorProfile(termenv.TrueColor)
	t.Cleanup(func() { lipgloss.SetColorProfile(prev) })

	m, _, _ := newTestModel(t)
	errorBody := func(s string) string {
		return m.theme.ErrorBubble.Width(m.bodyWidth()).Render(s)
	}

	kept := model.Message{ID: "kept", Role: model.RoleModel, Content: "fragment1\n\n" + persona.Apology, Failed: true}
	require.True(t, strings.HasSuffix(m.renderMessage(kept), errorBody(kept.Content)))

	// A normal reply with the apology's wording is still a normal reply.
	reply := model.Message{ID: "reply", Role: model.RoleModel, Content: persona.Apology}
	require.False(t, strings.HasSuffix(m.renderMessage(reply), errorBody(reply.Content)))
}

func TestModel_CopyLastReply(t *testing.T) {
	m, _, cb := newTestModel(t, mock.Reply{Fragments: []string{"Ngữ ", "văn"}})
	m, _ = typeAndSubmit(m, "q")
	m = drain(m, m.current)

	m, cmd := update(m, tea.KeyMsg{Type: tea.KeyCtrlY})
	require.NotNil(t, cmd)
	m, _ = update(m, cmd())

	require.Equal(t, "Ngữ văn", cb.got)
	require.Contains(t, m.renderStatusBar(), "Đã sao chép 7 ký tự")
}

func TestModel_CopyFailure(t *testing.T) {
	m, _, cb := newTestModel(t)
	cb.err = errors.New("no clipboard")

	m, cmd := update(m, tea.KeyMsg{Type: tea.KeyCtrlY})
	m, _ = update(m, cmd())
	require.Contains(t, m.renderStatusBar(), hintCopyError)
}

func TestModel_QuitKeys(t *testing.T) {
	m, _, _ := newTestModel(t)
	for _, k := range []tea.KeyMsg{{Type: tea.KeyEsc}, {Type: tea.KeyCtrlC}} {
		_, cmd := update(m, k)
		require.NotNil(t, cmd)
		require.IsType(t, tea.QuitMsg{}, cmd())
	}
}

func TestModel_HelpToggleShrinksViewport(t *testing.T) {
	m, _, _ := newTestModel(t)
	before := m.viewport.Height

	m, _ = update(m, tea.KeyMsg{Type: tea.KeyF1})
	require.True(t, m.showHelp)
	require.Less(t, m.viewport.Height, before)
	require.Contains(t, m.View(), "sao chép trả lời")

	m, _ = update(m, tea.KeyMsg{Type: tea.KeyF1})
	require.Equal(t, before, m.viewport.Height)
}

func TestModel_ResizeLayout(t *testing.T) {
	m, _, _ := newTestModel(t)
	m, _ = update(m, tea.WindowSizeMsg{Width: 60, Height: 20})

	require.Equal(t, 60, m.viewport.Width)
	require.Equal(t, 20-headerHeight-inputHeight-statusHeight, m.viewport.Height)
	for _, line := range strings.Split(m.View(), "\n") {
		require.LessOrEqual(t, len([]rune(line)), 200)
	}
}

func TestModel_MarkdownReply(t *testing.T) {
	ctrl := conversation.New(mock.New(mock.Reply{Fragments: []string{"**đậm**"}}), "")
	m := New(ctrl, WithTheme(styles.NewTheme("dark")), WithMarkdown(true))
	m, _ = update(m, tea.WindowSizeMsg{Width: 80, Height: 30})

	m, _ = typeAndSubmit(m, "q")
	m = drain(m, m.current)

	last := ctrl.Transcript().Last()
	require.Contains(t, m.renderMessages(), "đậm")
	entry, ok := m.md.cache[last.ID]
	require.True(t, ok, "finished reply should be rendered through glamour")
	require.Equal(t, "**đậm**", entry.content)
}
