// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/nguvan-tui/internal/conversation"
	"github.com/jeranaias/nguvan-tui/internal/ui/styles"
)

// Status texts shown in the status bar.
const (
	hintBusy      = "Đang trả lời, vui lòng chờ..."
	hintNoReply   = "Chưa có câu trả lời để sao chép"
	hintCopied    = "Đã sao chép %d ký tự"
	hintCopyError = "Không thể sao chép"
	inputHint     = "Nhập câu hỏi về tác phẩm, tác giả..."
)

// Layout heights of the fixed parts of the screen.
const (
	headerHeight = 2 // title + bottom border
	inputHeight  = 3 // rounded border around one line
	statusHeight = 1
)

type statusKind int

const (
	statusNone statusKind = iota
	statusHint
	statusOK
	statusError
)

// =============================================================================
// OPTIONS
// =============================================================================

// Option configures a Model.
type Option func(*Model)

// WithTheme sets the theme. The default is NewTheme("auto").
func WithTheme(t *styles.Theme) Option {
	return func(m *Model) {
		if t != nil {
			m.theme = t
		}
	}
}

// WithMarkdown toggles glamour rendering of replies.
func WithMarkdown(enabled bool) Option {
	return func(m *Model) {
		m.markdown = enabled
	}
}

// WithRenderFPS bounds how often a streaming reply is re-rendered.
func WithRenderFPS(fps int) Option {
	return func(m *Model) {
		m.renderFPS = fps
	}
}

// WithWordWrap caps the Markdown wrap width. Zero follows the window.
func WithWordWrap(width int) Option {
	return func(m *Model) {
		m.wordWrap = width
	}
}

// WithContext sets the context passed to every send.
func WithContext(ctx context.Context) Option {
	return func(m *Model) {
		if ctx != nil {
			m.ctx = ctx
		}
	}
}

// WithClipboard replaces the system clipboard writer.
func WithClipboard(write func(string) error) Option {
	return func(m *Model) {
		if write != nil {
			m.copyFn = write
		}
	}
}

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat screen.
type Model struct {
	ctrl  *conversation.Controller
	theme *styles.Theme
	ctx   context.Context

	// Dimensions
	width  int
	height int
	ready  bool

	// UI Components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	help     help.Model
	keys     KeyMap

	// Rendering
	markdown  bool
	renderFPS int
	wordWrap  int
	md        *markdownRenderer

	// Exchange tracking
	current  *conversation.Exchange
	spinning bool
	lastErr  error

	// Transient status
	status     string
	statusKind statusKind
	showHelp   bool

	copyFn func(string) error
}

// New creates a chat model projecting ctrl.
func New(ctrl *conversation.Controller, opts ...Option) Model {
	m := Model{
		ctrl:      ctrl,
		ctx:       context.Background(),
		keys:      DefaultKeyMap(),
		help:      help.New(),
		markdown:  true,
		renderFPS: 10,
		copyFn:    clipboard.WriteAll,
	}
	for _, opt := range opts {
		opt(&m)
	}
	if m.theme == nil {
		m.theme = styles.NewTheme("auto")
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = inputHint
	ti.CharLimit = 4096
	ti.PromptStyle = m.theme.InputPrompt
	ti.PlaceholderStyle = m.theme.InputPlaceholder
	ti.Focus()
	m.input = ti

	m.spinner = spinner.New(
		spinner.WithSpinner(styles.DotsSpinner.Spinner()),
		spinner.WithStyle(m.theme.Spinner),
	)

	m.viewport = viewport.New(80, 20)
	m.md = newMarkdownRenderer(m.theme.GlamourStyle(), m.renderFPS)
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case exchangeUpdateMsg:
		return m.handleUpdate(msg)

	case exchangeClosedMsg:
		if msg.exchange == m.current {
			m.current = nil
		}
		m.refresh()
		return m, nil

	case clipboardMsg:
		switch {
		case msg.err != nil:
			m.setStatus(statusError, hintCopyError)
		case msg.chars == 0:
			m.setStatus(statusHint, hintNoReply)
		default:
			m.setStatus(statusOK, fmt.Sprintf(hintCopied, msg.chars))
		}
		return m, nil

	case spinner.TickMsg:
		if !m.ctrl.Busy() {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refresh()
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Submit):
		return m.submit()

	case key.Matches(msg, m.keys.Copy):
		return m, m.copyLastReply()

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.layout()
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.viewport.LineUp(1)
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.viewport.LineDown(1)
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.ViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.ViewDown()
		return m, nil

	case key.Matches(msg, m.keys.Top):
		m.viewport.GotoTop()
		return m, nil

	case key.Matches(msg, m.keys.Bottom):
		m.viewport.GotoBottom()
		return m, nil
	}

	// Any other key edits the input and clears a stale hint.
	if m.statusKind == statusHint {
		m.setStatus(statusNone, "")
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit sends the input. While busy the input is kept and a hint is shown.
func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.ctrl.Busy() {
		m.setStatus(statusHint, hintBusy)
		return m, nil
	}

	ex, err := m.ctrl.Send(m.ctx, m.input.Value())
	switch {
	case errors.Is(err, conversation.ErrEmptyMessage):
		return m, nil
	case errors.Is(err, conversation.ErrBusy):
		m.setStatus(statusHint, hintBusy)
		return m, nil
	case err != nil:
		m.setStatus(statusError, err.Error())
		return m, nil
	}

	m.input.Reset()
	m.current = ex
	m.lastErr = nil
	m.setStatus(statusNone, "")
	m.refresh()

	cmds := []tea.Cmd{waitForUpdate(ex)}
	if !m.spinning {
		m.spinning = true
		cmds = append(cmds, m.spinner.Tick)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleUpdate(msg exchangeUpdateMsg) (tea.Model, tea.Cmd) {
	u := msg.update
	if u.Kind == conversation.UpdateFailed {
		m.lastErr = u.Err
	}
	if u.Terminal() && msg.exchange == m.current {
		m.current = nil
	}
	m.refresh()

	if u.Terminal() {
		return m, nil
	}
	return m, waitForUpdate(msg.exchange)
}

// copyLastReply copies the last MODEL message to the clipboard.
func (m Model) copyLastReply() tea.Cmd {
	last, ok := m.ctrl.Transcript().LastModel()
	if !ok || last.Streaming || last.Content == "" {
		return func() tea.Msg { return clipboardMsg{} }
	}
	write := m.copyFn
	content := last.Content
	return func() tea.Msg {
		if err := write(content); err != nil {
			return clipboardMsg{err: err}
		}
		return clipboardMsg{chars: len([]rune(content))}
	}
}

func (m *Model) setStatus(kind statusKind, text string) {
	m.statusKind = kind
	m.status = text
}

// layout sizes the viewport and input to the window.
func (m *Model) layout() {
	if !m.ready {
		return
	}
	m.theme.SetSize(m.width, m.height)

	reserved := headerHeight + inputHeight + statusHeight
	if m.showHelp {
		m.help.ShowAll = true
		m.help.Width = m.width
		reserved += lipgloss.Height(m.help.View(m.keys))
	}

	m.viewport.Width = max(m.width, 1)
	m.viewport.Height = max(m.height-reserved, 1)

	// border (2) + padding (2) + prompt (2)
	m.input.Width = max(m.width-6, 10)

	wrap := m.bodyWidth()
	if m.wordWrap > 0 && m.wordWrap < wrap {
		wrap = m.wordWrap
	}
	m.md.SetWidth(wrap)
	m.refresh()
}

// refresh re-renders the transcript into the viewport and scrolls to the end.
func (m *Model) refresh() {
	m.viewport.SetContent(m.renderMessages())
	m.viewport.GotoBottom()
}

// bodyWidth is the wrap width of message bodies.
func (m *Model) bodyWidth() int {
	return max(m.width-8, 20)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return ""
	}
	parts := []string{
		m.renderHeader(),
		m.viewport.View(),
		m.renderInput(),
		m.renderStatusBar(),
	}
	if m.showHelp {
		parts = append(parts, m.help.View(m.keys))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
