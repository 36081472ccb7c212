// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/jeranaias/nguvan-tui/internal/llm"
)

// Name is the registry name of this backend.
const Name = "ollama"

// Defaults for a local server.
const (
	DefaultURL   = "http://127.0.0.1:11434"
	DefaultModel = "qwen2.5:7b"
)

// ErrNotRunning indicates the Ollama server could not be reached.
var ErrNotRunning = errors.New("ollama is not running")

// Option configures a Provider.
type Option func(*Provider)

// WithURL sets the server base URL.
func WithURL(url string) Option {
	return func(p *Provider) {
		p.baseURL = strings.TrimRight(url, "/")
	}
}

// WithModel sets the model used when the session config names none.
func WithModel(model string) Option {
	return func(p *Provider) {
		p.model = model
	}
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) {
		p.httpClient = c
	}
}

// Provider creates Ollama chat sessions.
//
// The server runs locally over plain HTTP, so no TLS configuration applies.
type Provider struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// New creates an Ollama provider.
func New(opts ...Option) *Provider {
	p := &Provider{
		baseURL: DefaultURL,
		model:   DefaultModel,
		// No client timeout; streaming requests are bounded by their context.
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name implements llm.Provider.
func (p *Provider) Name() string { return Name }

// NewSession implements llm.Provider.
func (p *Provider) NewSession(_ context.Context, cfg llm.SessionConfig) (llm.Session, error) {
	model := cfg.Model
	if model == "" {
		model = p.model
	}
	s := &Session{provider: p, model: model}
	if cfg.SystemInstruction != "" {
		s.history = append(s.history, NewSystemMessage(cfg.SystemInstruction))
	}
	return s, nil
}

// CheckRunning verifies that the server is reachable.
func (p *Provider) CheckRunning(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotRunning, err)
	}
	drainAndClose(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s", ErrNotRunning, resp.Status)
	}
	return nil
}

// Session is one Ollama conversation. History is held client-side.
type Session struct {
	provider *Provider
	model    string

	mu      sync.Mutex
	history []Message
}

// Model returns the model identifier the session sends.
func (s *Session) Model() string { return s.model }

// History returns a copy of the recorded messages.
func (s *Session) History() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.history))
	copy(out, s.history)
	return out
}

func (s *Session) messagesFor(text string) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := make([]Message, 0, len(s.history)+1)
	msgs = append(msgs, s.history...)
	return append(msgs, NewUserMessage(text))
}

func (s *Session) record(user, reply string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, NewUserMessage(user), NewAssistantMessage(reply))
}

// open posts the chat request and returns the NDJSON body.
func (s *Session) open(ctx context.Context, text string) (io.ReadCloser, error) {
	body, err := json.Marshal(ChatRequest{
		Model:    s.model,
		Messages: s.messagesFor(text),
		Stream:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.provider.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.provider.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrNotRunning, err)
	}

	if resp.StatusCode != http.StatusOK {
		defer drainAndClose(resp.Body)
		msg := resp.Status
		var ollamaErr OllamaError
		if err := json.NewDecoder(io.LimitReader(resp.Body, 64*1024)).Decode(&ollamaErr); err == nil && ollamaErr.Error != "" {
			msg = ollamaErr.Error
		}
		return nil, llm.StatusError(Name, resp.StatusCode, "", msg)
	}
	return resp.Body, nil
}

func drainAndClose(r io.ReadCloser) {
	io.Copy(io.Discard, r)
	r.Close()
}
