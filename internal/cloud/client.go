// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/nguvan-tui/internal/llm"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// Name is the registry name of this backend.
	Name = "openrouter"

	// DefaultBaseURL is the OpenRouter API endpoint.
	DefaultBaseURL = "https://openrouter.ai/api/v1"

	// DefaultModel is used when the session config names no model.
	DefaultModel = "google/gemini-2.5-flash"

	// DefaultKeyEnv is the environment variable holding the API key.
	DefaultKeyEnv = "OPENROUTER_API_KEY"

	// MaxErrorBodySize bounds how much of an error response is read.
	MaxErrorBodySize = 64 * 1024
)

// sharedStreamingClient has no overall timeout; requests are bounded by
// their context instead.
var sharedStreamingClient = &http.Client{
	Transport: &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 60 * time.Second,
	},
}

// =============================================================================
// WIRE TYPES
// =============================================================================

// ChatMessage is a single message in a chat completions request.
type ChatMessage struct {
	Role    string `json:"role"` // "system", "user" or "assistant"
	Content string `json:"content"`
}

// NewUserMessage creates a user message.
func NewUserMessage(content string) ChatMessage {
	return ChatMessage{Role: "user", Content: content}
}

// NewAssistantMessage creates an assistant message.
func NewAssistantMessage(content string) ChatMessage {
	return ChatMessage{Role: "assistant", Content: content}
}

// NewSystemMessage creates a system message.
func NewSystemMessage(content string) ChatMessage {
	return ChatMessage{Role: "system", Content: content}
}

// ChatRequest is the body of a chat completions request.
type ChatRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

// apiErrorResponse is the JSON error envelope returned by the API.
type apiErrorResponse struct {
	Error struct {
		Code    json.RawMessage `json:"code"`
		Message string          `json:"message"`
	} `json:"error"`
}

// =============================================================================
// PROVIDER
// =============================================================================

// Option configures a Provider.
type Option func(*Provider)

// WithBaseURL sets the API base URL.
func WithBaseURL(url string) Option {
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

// WithKeyEnv sets the environment variable holding the API key.
func WithKeyEnv(env string) Option {
	return func(p *Provider) {
		p.keyEnv = env
	}
}

// WithSite sets the attribution headers OpenRouter shows on its dashboard.
func WithSite(url, name string) Option {
	return func(p *Provider) {
		p.siteURL = url
		p.siteName = name
	}
}

// WithHTTPClient replaces the shared streaming client.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) {
		p.httpClient = c
	}
}

// Provider creates OpenRouter chat sessions.
type Provider struct {
	baseURL    string
	model      string
	keyEnv     string
	siteURL    string
	siteName   string
	httpClient *http.Client
	getenv     func(string) string
}

// New creates an OpenRouter provider.
func New(opts ...Option) *Provider {
	p := &Provider{
		baseURL:    DefaultBaseURL,
		model:      DefaultModel,
		keyEnv:     DefaultKeyEnv,
		httpClient: sharedStreamingClient,
		getenv:     os.Getenv,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name implements llm.Provider.
func (p *Provider) Name() string { return Name }

// NewSession implements llm.Provider. No request is made until the first send.
func (p *Provider) NewSession(_ context.Context, cfg llm.SessionConfig) (llm.Session, error) {
	key := strings.TrimSpace(p.getenv(p.keyEnv))
	if key == "" {
		return nil, fmt.Errorf("%w: set %s", llm.ErrNotConfigured, p.keyEnv)
	}

	model := cfg.Model
	if model == "" {
		model = p.model
	}

	s := &Session{provider: p, apiKey: key, model: model}
	if cfg.SystemInstruction != "" {
		s.history = append(s.history, NewSystemMessage(cfg.SystemInstruction))
	}
	return s, nil
}

// setHeaders sets the headers for OpenRouter API requests.
func (p *Provider) setHeaders(req *http.Request, apiKey string) {
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	if p.siteURL != "" {
		req.Header.Set("HTTP-Referer", p.siteURL)
	}
	if p.siteName != "" {
		req.Header.Set("X-Title", p.siteName)
	}
}

// handleErrorResponse converts an HTTP error response to a ServiceError.
func handleErrorResponse(statusCode int, body []byte) error {
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		return llm.StatusError(Name, statusCode, errorCode(apiErr.Error.Code), apiErr.Error.Message)
	}

	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(statusCode)
	}
	return llm.StatusError(Name, statusCode, "", msg)
}

// errorCode renders the error code, which the API sends as either a string
// or a number.
func errorCode(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// =============================================================================
// SESSION
// =============================================================================

// Session is one OpenRouter conversation. History is held client-side.
type Session struct {
	provider *Provider
	apiKey   string
	model    string

	mu      sync.Mutex
	history []ChatMessage
}

// Model returns the model identifier the session sends.
func (s *Session) Model() string { return s.model }

// History returns a copy of the recorded messages, system prompt included.
func (s *Session) History() []ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ChatMessage, len(s.history))
	copy(out, s.history)
	return out
}

// messagesFor returns the history with text appended as the next user turn.
func (s *Session) messagesFor(text string) []ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := make([]ChatMessage, 0, len(s.history)+1)
	msgs = append(msgs, s.history...)
	return append(msgs, NewUserMessage(text))
}

// record appends a completed turn.
func (s *Session) record(user, reply string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, NewUserMessage(user), NewAssistantMessage(reply))
}
