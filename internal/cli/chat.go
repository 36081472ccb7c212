// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/jeranaias/nguvan-tui/internal/config"
	"github.com/jeranaias/nguvan-tui/internal/conversation"
	"github.com/jeranaias/nguvan-tui/internal/util"
)

const (
	userPrompt      = "Bạn> "
	assistantLabel  = "Trợ lý>"
	historyFileName = "history"
)

// =============================================================================
// LINE READERS
// =============================================================================

// lineReader reads one line of user input per call. io.EOF ends the session.
type lineReader interface {
	Prompt(prompt string) (string, error)
	Close() error
}

// linerReader provides line editing and history on a terminal.
type linerReader struct {
	line        *liner.State
	historyFile string
}

func newLinerReader() *linerReader {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	r := &linerReader{line: line}
	if dir, err := config.ConfigDir(); err == nil {
		r.historyFile = filepath.Join(dir, historyFileName)
		if f, err := os.Open(r.historyFile); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
	}
	return r
}

func (r *linerReader) Prompt(prompt string) (string, error) {
	input, err := r.line.Prompt(prompt)
	if errors.Is(err, liner.ErrPromptAborted) {
		return "", io.EOF
	}
	if err != nil {
		return "", err
	}
	if !util.IsBlank(input) {
		r.line.AppendHistory(input)
	}
	return input, nil
}

// Close saves history with owner-only permissions and restores the terminal.
func (r *linerReader) Close() error {
	defer r.line.Close()
	if r.historyFile == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(r.historyFile), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = r.line.WriteHistory(f)
	return err
}

// scanReader reads plain lines from a pipe or file.
type scanReader struct {
	sc *bufio.Scanner
}

func newScanReader(in io.Reader) *scanReader {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &scanReader{sc: sc}
}

func (r *scanReader) Prompt(string) (string, error) {
	if !r.sc.Scan() {
		if err := r.sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return r.sc.Text(), nil
}

func (r *scanReader) Close() error { return nil }

// =============================================================================
// CHAT COMMAND
// =============================================================================

func newChatCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Line-mode chat with history",
		Long: `Chat starts a line-mode conversation. Replies are printed as they stream.

Commands:
  /help     show commands
  /stats    timing of the last reply
  /exit     leave (also /quit, Ctrl+C, Ctrl+D)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runChat(cmd)
		},
	}
}

func (a *app) runChat(cmd *cobra.Command) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	ctrl, err := a.newController(cfg, newLogger(cfg, cmd.ErrOrStderr()))
	if err != nil {
		return err
	}

	var reader lineReader
	if isTerminalReader(cmd.InOrStdin()) {
		reader = newLinerReader()
	} else {
		reader = newScanReader(cmd.InOrStdin())
	}
	defer reader.Close()

	out := cmd.OutOrStdout()
	st := newPrintStyles(out)
	label := st.assistant.Render(assistantLabel) + " "

	fmt.Fprintln(out, st.title.Render(ctrl.Persona().Title))
	fmt.Fprintln(out, st.info.Render(fmt.Sprintf("%s · %s · /help", ctrl.ProviderName(), ctrl.Model())))
	fmt.Fprintln(out)
	fmt.Fprintln(out, label+ctrl.Transcript().Last().Content)

	for {
		input, err := reader.Prompt(userPrompt)
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(out)
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}

		input = strings.TrimSpace(input)
		switch input {
		case "":
			continue
		case "/exit", "/quit", "/q":
			return nil
		case "/help", "/h":
			fmt.Fprintln(out, st.info.Render("/help  /stats  /exit"))
			continue
		case "/stats":
			if s := ctrl.LastStats().Format(); s != "" {
				fmt.Fprintln(out, st.info.Render(s))
			}
			continue
		}

		fmt.Fprint(out, label)
		if _, err := streamReply(cmd.Context(), ctrl, out, input); err != nil && !conversation.IsServiceFailure(err) {
			return err
		}
	}
}
