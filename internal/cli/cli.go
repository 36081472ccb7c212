// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jeranaias/nguvan-tui/internal/ui/chat"
	"github.com/jeranaias/nguvan-tui/internal/ui/styles"
)

// Build information, set by main from -ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Execute runs the nguvan command line with the process arguments.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

// NewRootCommand builds the command tree. Running the root command without a
// subcommand opens the full-screen chat.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&app{})
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:     "nguvan",
		Short:   "Literature assistant chat for the terminal",
		Version: Version,
		Long: `nguvan is a terminal chat assistant for literature questions on
Học Liệu Số (hoclieuso.id.vn). Replies stream from the configured model
provider and are rendered as Markdown.`,
		Example: `  # Open the chat window (needs GEMINI_API_KEY)
  $ nguvan

  # Ask one question and print the answer
  $ nguvan ask "Phân tích bài thơ Tây Tiến"

  # Line-mode chat against a local Ollama
  $ nguvan chat --provider ollama --model qwen2.5:7b

  # Try the interface without network access
  $ nguvan --provider mock`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runTUI(cmd)
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetVersionTemplate(fmt.Sprintf("nguvan version %s (commit %s, built %s)\n", Version, GitCommit, BuildDate))

	pf := root.PersistentFlags()
	pf.StringVarP(&a.flags.configPath, "config", "c", "", "config file (default ~/.nguvan/config.toml)")
	pf.StringVarP(&a.flags.provider, "provider", "p", "", "model provider: gemini, openrouter, ollama, mock")
	pf.StringVarP(&a.flags.model, "model", "m", "", "model name or id, e.g. flash or gemini-2.5-flash")
	pf.BoolVar(&a.flags.debug, "debug", false, "log at debug level")

	root.AddCommand(newAskCommand(a))
	root.AddCommand(newChatCommand(a))
	root.AddCommand(newConfigCommand(a))
	return root
}

// runTUI opens the full-screen chat until the user quits.
func (a *app) runTUI(cmd *cobra.Command) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	logger, closer, err := tuiLogger(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctrl, err := a.newController(cfg, logger)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	m := chat.New(ctrl,
		chat.WithTheme(styles.NewTheme(cfg.UI.Theme)),
		chat.WithMarkdown(cfg.UI.Markdown),
		chat.WithRenderFPS(cfg.UI.RenderFPS),
		chat.WithWordWrap(cfg.UI.WordWrap),
		chat.WithContext(ctx),
	)

	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("chat window: %w", err)
	}
	logger.Info("tui closed", "messages", ctrl.Transcript().Len())
	return nil
}
