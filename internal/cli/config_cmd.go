// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/jeranaias/nguvan-tui/internal/config"
)

func newConfigCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or edit the configuration",
		Example: `  $ nguvan config show
  $ nguvan config init
  $ nguvan config set provider.name ollama
  $ nguvan config get ui.render_fps`,
	}
	cmd.AddCommand(
		newConfigShowCommand(a),
		newConfigInitCommand(a),
		newConfigGetCommand(a),
		newConfigSetCommand(a),
		newConfigKeysCommand(),
		newConfigPathCommand(a),
	)
	return cmd
}

func newConfigShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			data, err := cfg.EncodeTOML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func newConfigInitCommand(a *app) *cobra.Command {
	var force, interactive bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Long: `Init writes a config file with default values. With --interactive on a
terminal it asks for the provider, model and theme first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := a.configTarget()
			if err != nil {
				return err
			}
			interactive = interactive && isTerminalReader(cmd.InOrStdin())

			if _, err := os.Stat(path); err == nil && !force {
				if !interactive {
					return fmt.Errorf("%s already exists (use --force to overwrite)", path)
				}
				overwrite := false
				if err := survey.AskOne(&survey.Confirm{
					Message: fmt.Sprintf("%s already exists. Overwrite?", path),
				}, &overwrite); err != nil {
					return err
				}
				if !overwrite {
					return nil
				}
			}

			cfg := config.Default()
			if interactive {
				if err := askSetup(cfg); err != nil {
					return err
				}
			}
			if err := config.SaveTOML(cfg, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "ask for the main settings")
	return cmd
}

// askSetup prompts for the provider, its model and the theme.
func askSetup(cfg *config.Config) error {
	provider := cfg.Provider.Name
	if err := survey.AskOne(&survey.Select{
		Message: "Model provider:",
		Options: []string{config.ProviderGemini, config.ProviderOpenRouter, config.ProviderOllama, config.ProviderMock},
		Default: provider,
	}, &provider); err != nil {
		return err
	}
	cfg.Provider.Name = provider

	var target *string
	switch provider {
	case config.ProviderGemini:
		target = &cfg.Gemini.Model
	case config.ProviderOpenRouter:
		target = &cfg.OpenRouter.Model
	case config.ProviderOllama:
		target = &cfg.Ollama.Model
	}
	if target != nil {
		if err := survey.AskOne(&survey.Input{
			Message: "Model:",
			Default: *target,
		}, target, survey.WithValidator(survey.Required)); err != nil {
			return err
		}
	}

	return survey.AskOne(&survey.Select{
		Message: "Theme:",
		Options: []string{"auto", "dark", "light"},
		Default: cfg.UI.Theme,
	}, &cfg.UI.Theme)
}

func newConfigGetCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get KEY",
		Short: "Print one value, e.g. ui.render_fps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			v, err := cfg.Get(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	}
}

func newConfigSetCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Change one value in the config file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.configTarget()
			if err != nil {
				return err
			}

			// Edit the file itself, not the effective config, so flag and
			// environment overrides are not written back.
			cfg := config.Default()
			if _, statErr := os.Stat(path); statErr == nil {
				if err := config.LoadTOML(cfg, path); err != nil {
					return err
				}
			}
			if err := cfg.Set(args[0], args[1]); err != nil {
				return err
			}
			cfg.SetDefaults()
			if err := cfg.Validate(); err != nil {
				var verrs config.ValidateErrors
				if errors.As(err, &verrs) {
					return fmt.Errorf("rejected: %w", verrs)
				}
				return err
			}
			if err := config.SaveTOML(cfg, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[0], args[1])
			return nil
		},
	}
}

func newConfigKeysCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List every settable key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(config.Keys(), "\n"))
			return nil
		},
	}
}

func newConfigPathCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := a.configTarget()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}
