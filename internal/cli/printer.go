// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/nguvan-tui/internal/conversation"
	"github.com/jeranaias/nguvan-tui/internal/ui/styles"
)

// printStyles are line-mode styles bound to one writer, so color is decided
// by that writer rather than by os.Stdout.
type printStyles struct {
	title     lipgloss.Style
	assistant lipgloss.Style
	info      lipgloss.Style
}

func newPrintStyles(w io.Writer) printStyles {
	r := lipgloss.NewRenderer(w)
	return printStyles{
		title:     r.NewStyle().Foreground(styles.Teal).Bold(true),
		assistant: r.NewStyle().Foreground(styles.Violet).Bold(true),
		info:      r.NewStyle().Foreground(styles.TextSecondary),
	}
}

// streamReply sends text and writes the reply to w while it streams, ending
// with a newline. It returns the final content of the reply record and the
// exchange error. Updates only signal progress: what is written always comes
// from the transcript, so a dropped update never loses text.
func streamReply(ctx context.Context, ctrl *conversation.Controller, w io.Writer, text string) (string, error) {
	ex, err := ctrl.Send(ctx, text)
	if err != nil {
		return "", err
	}

	tr := ctrl.Transcript()
	printed := ""
	flush := func() {
		msg, ok := tr.Get(ex.ID())
		if !ok || !strings.HasPrefix(msg.Content, printed) {
			return
		}
		io.WriteString(w, msg.Content[len(printed):])
		printed = msg.Content
	}

	for range ex.Updates() {
		flush()
	}
	exErr := ex.Wait()
	flush()

	final, _ := tr.Get(ex.ID())
	if final.Content != printed {
		// The streamed text was replaced by the apology.
		if printed != "" {
			io.WriteString(w, "\n")
		}
		io.WriteString(w, final.Content)
	}
	io.WriteString(w, "\n")
	return final.Content, exErr
}

// renderMarkdown renders a finished reply for a terminal of the given width.
func renderMarkdown(content, style string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	out, err := r.Render(content)
	if err != nil {
		return "", err
	}
	return strings.Trim(out, "\n"), nil
}
