// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jeranaias/nguvan-tui/internal/cloud"
	"github.com/jeranaias/nguvan-tui/internal/config"
	"github.com/jeranaias/nguvan-tui/internal/conversation"
	"github.com/jeranaias/nguvan-tui/internal/gemini"
	"github.com/jeranaias/nguvan-tui/internal/llm"
	"github.com/jeranaias/nguvan-tui/internal/llm/mock"
	"github.com/jeranaias/nguvan-tui/internal/model"
	"github.com/jeranaias/nguvan-tui/internal/ollama"
)

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configPath string
	provider   string
	model      string
	debug      bool
}

// app carries what commands share. It is built per root command, so tests
// can run several commands side by side.
type app struct {
	flags globalFlags

	// providers overrides the registry built from config, for tests.
	providers *llm.Registry
}

// loadConfig loads the config file, applies flag overrides and validates.
func (a *app) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if a.flags.configPath != "" {
		cfg, err = config.LoadFromPath(a.flags.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if a.flags.provider != "" {
		cfg.Provider.Name = a.flags.provider
	}
	if a.flags.model != "" {
		cfg.Provider.Model = a.flags.model
	}
	if a.flags.debug {
		cfg.Log.Level = "debug"
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// configTarget returns the file `config init|set` writes to.
func (a *app) configTarget() (string, error) {
	if a.flags.configPath != "" {
		return a.flags.configPath, nil
	}
	return config.ConfigPath()
}

// registry returns every backend the binary knows, configured from cfg.
func (a *app) registry(cfg *config.Config) *llm.Registry {
	if a.providers != nil {
		return a.providers
	}

	r := llm.NewRegistry()
	r.Register(config.ProviderGemini, func() (llm.Provider, error) {
		return gemini.New(gemini.WithKeyEnv(cfg.Gemini.APIKeyEnv, cfg.Gemini.FallbackKeyEnv)), nil
	})
	r.Register(config.ProviderOpenRouter, func() (llm.Provider, error) {
		return cloud.New(
			cloud.WithBaseURL(cfg.OpenRouter.BaseURL),
			cloud.WithModel(cfg.OpenRouter.Model),
			cloud.WithKeyEnv(cfg.OpenRouter.APIKeyEnv),
			cloud.WithSite(cfg.OpenRouter.SiteURL, cfg.OpenRouter.SiteName),
		), nil
	})
	r.Register(config.ProviderOllama, func() (llm.Provider, error) {
		return ollama.New(ollama.WithURL(cfg.Ollama.URL), ollama.WithModel(cfg.Ollama.Model)), nil
	})
	r.Register(config.ProviderMock, func() (llm.Provider, error) {
		return mock.New(), nil
	})
	return r
}

// newController builds the conversation controller for cfg. The session
// handle is created lazily by the controller on the first send.
func (a *app) newController(cfg *config.Config, logger *slog.Logger) (*conversation.Controller, error) {
	provider, err := a.registry(cfg).Open(cfg.Provider.Name)
	if err != nil {
		return nil, err
	}
	return conversation.New(provider, model.ResolveModelID(cfg.ActiveModel()),
		conversation.WithLogger(logger),
		conversation.WithPersona(cfg.ToPersona()),
		conversation.WithKeepPartialOnError(cfg.UI.KeepPartialOnError),
	), nil
}

// =============================================================================
// LOGGING
// =============================================================================

// newLogger returns a text logger writing to w at the configured level.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
}

// tuiLogger returns the logger for the full-screen UI. The UI owns the
// terminal, so logs go to log.file or nowhere. The returned closer is never nil.
func tuiLogger(cfg *config.Config) (*slog.Logger, io.Closer, error) {
	if cfg.Log.File == "" {
		return newLogger(cfg, io.Discard), io.NopCloser(nil), nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Log.File), 0700); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return newLogger(cfg, f), f, nil
}
