// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gemini implements the default completion backend on the Gemini API.
//
// The API key is read from the environment when a session is created, not at
// startup, so a missing key surfaces as llm.ErrNotConfigured on the first
// message rather than preventing the UI from opening.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"os"
	"strings"

	"google.golang.org/genai"

	"github.com/jeranaias/nguvan-tui/internal/llm"
)

// Name is the registry name of this backend.
const Name = "gemini"

// chatStream is the part of *genai.Chat the session uses.
type chatStream interface {
	SendMessageStream(ctx context.Context, parts ...genai.Part) iter.Seq2[*genai.GenerateContentResponse, error]
}

// chatFactory opens a chat for a key and config. Replaced in tests.
type chatFactory func(ctx context.Context, apiKey string, cfg llm.SessionConfig) (chatStream, error)

// Provider creates Gemini chat sessions.
type Provider struct {
	keyEnv      string
	fallbackEnv string
	httpClient  *http.Client
	getenv      func(string) string
	open        chatFactory
}

// Option configures a Provider.
type Option func(*Provider)

// WithKeyEnv sets the environment variables consulted for the API key.
func WithKeyEnv(primary, fallback string) Option {
	return func(p *Provider) {
		p.keyEnv = primary
		p.fallbackEnv = fallback
	}
}

// WithHTTPClient sets the HTTP client handed to the SDK.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) {
		p.httpClient = c
	}
}

// New creates a Gemini provider reading GEMINI_API_KEY, then API_KEY.
func New(opts ...Option) *Provider {
	p := &Provider{
		keyEnv:      "GEMINI_API_KEY",
		fallbackEnv: "API_KEY",
		getenv:      os.Getenv,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.open = p.openChat
	return p
}

// Name implements llm.Provider.
func (p *Provider) Name() string { return Name }

// apiKey returns the first non-empty configured key.
func (p *Provider) apiKey() string {
	for _, env := range []string{p.keyEnv, p.fallbackEnv} {
		if env == "" {
			continue
		}
		if v := strings.TrimSpace(p.getenv(env)); v != "" {
			return v
		}
	}
	return ""
}

// NewSession implements llm.Provider.
func (p *Provider) NewSession(ctx context.Context, cfg llm.SessionConfig) (llm.Session, error) {
	key := p.apiKey()
	if key == "" {
		return nil, fmt.Errorf("%w: set %s", llm.ErrNotConfigured, p.keyEnv)
	}
	chat, err := p.open(ctx, key, cfg)
	if err != nil {
		return nil, mapError(err)
	}
	return &Session{chat: chat}, nil
}

func (p *Provider) openChat(ctx context.Context, apiKey string, cfg llm.SessionConfig) (chatStream, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: p.httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	var gcfg *genai.GenerateContentConfig
	if cfg.SystemInstruction != "" {
		gcfg = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(cfg.SystemInstruction, genai.RoleUser),
		}
	}

	chat, err := client.Chats.Create(ctx, cfg.Model, gcfg, nil)
	if err != nil {
		return nil, fmt.Errorf("create chat: %w", err)
	}
	return chat, nil
}

// Session is a Gemini chat. The SDK keeps the conversation history and only
// records a turn once its stream has been fully consumed.
type Session struct {
	chat chatStream
}

// SendStream implements llm.Session.
func (s *Session) SendStream(ctx context.Context, text string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for resp, err := range s.chat.SendMessageStream(ctx, genai.Part{Text: text}) {
			if err != nil {
				yield("", mapError(err))
				return
			}
			if resp == nil {
				continue
			}
			if frag := resp.Text(); frag != "" {
				if !yield(frag, nil) {
					return
				}
			}
		}
	}
}

// mapError attaches the shared sentinels to SDK API errors.
func mapError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return wrapAPIError(apiErr, err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return wrapAPIError(*apiErrPtr, err)
	}
	return err
}

func wrapAPIError(apiErr genai.APIError, cause error) error {
	se := llm.StatusError(Name, apiErr.Code, apiErr.Status, apiErr.Message)
	if se.Err == nil {
		se.Err = cause
	}
	return se
}
