// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/jeranaias/nguvan-tui/internal/config"
	"github.com/jeranaias/nguvan-tui/internal/ui/styles"
	"github.com/jeranaias/nguvan-tui/internal/util"
)

// errNoQuestion is returned by ask when neither arguments nor stdin carry text.
var errNoQuestion = errors.New("no question given")

func newAskCommand(a *app) *cobra.Command {
	var showStats bool

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask one question and print the answer",
		Long: `Ask sends one question and streams the answer to stdout.

Without arguments the question is read from stdin. When stdout is a terminal
and Markdown is enabled, the finished answer is re-rendered with formatting.`,
		Example: `  $ nguvan ask "Nêu giá trị nhân đạo của Truyện Kiều"
  $ echo "Tóm tắt Chí Phèo" | nguvan ask`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runAsk(cmd, args, showStats)
		},
	}
	cmd.Flags().BoolVar(&showStats, "stats", false, "print timing statistics to stderr")
	return cmd
}

func (a *app) runAsk(cmd *cobra.Command, args []string, showStats bool) error {
	question, err := readQuestion(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	ctrl, err := a.newController(cfg, newLogger(cfg, cmd.ErrOrStderr()))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	reply, err := streamReply(cmd.Context(), ctrl, out, question)
	if showStats {
		if s := ctrl.LastStats().Format(); s != "" {
			fmt.Fprintln(cmd.ErrOrStderr(), s)
		}
	}
	if err != nil {
		return fmt.Errorf("no answer: %w", err)
	}

	if cfg.UI.Markdown && isTerminalWriter(out) {
		rerender(out, cfg, reply)
	}
	return nil
}

// readQuestion joins args, or reads stdin when there are none and it is not
// a terminal.
func readQuestion(in io.Reader, args []string) (string, error) {
	question := strings.Join(args, " ")
	if util.IsBlank(question) && !isTerminalReader(in) {
		data, err := io.ReadAll(in)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		question = string(data)
	}
	if util.IsBlank(question) {
		return "", errNoQuestion
	}
	return question, nil
}

// rerender replaces the raw streamed reply on screen with its Markdown
// rendering. The raw text stays when rendering fails.
func rerender(out io.Writer, cfg *config.Config, reply string) {
	width := GetTerminalWidth()
	wrap := width
	if cfg.UI.WordWrap > 0 && cfg.UI.WordWrap < wrap {
		wrap = cfg.UI.WordWrap
	}

	style := styles.NewTheme(cfg.UI.Theme).GlamourStyle()
	if GetColorProfile() == termenv.Ascii {
		style = "notty"
	}
	rendered, err := renderMarkdown(reply, style, wrap)
	if err != nil {
		return
	}
	clearRows(out, printedRows(reply, width)+1)
	fmt.Fprintln(out, rendered)
}
