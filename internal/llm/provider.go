// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package llm

import (
	"context"
	"fmt"
	"iter"
	"sort"
	"strings"
	"sync"
)

// SessionConfig is fixed for the lifetime of a Session.
type SessionConfig struct {
	// Model is the backend model identifier, e.g. "gemini-2.5-flash".
	Model string

	// SystemInstruction is the persona sent with every request.
	SystemInstruction string
}

// Provider creates conversation sessions against one completion backend.
type Provider interface {
	// Name returns the backend name used in config and logs.
	Name() string

	// NewSession creates a conversation context. Credentials are read here,
	// once, so a missing key surfaces as ErrNotConfigured.
	NewSession(ctx context.Context, cfg SessionConfig) (Session, error)
}

// Session is a stateful conversation with a completion backend.
type Session interface {
	// SendStream sends text as the next user turn and yields reply fragments
	// in arrival order. A non-nil error ends the sequence. The turn is added
	// to the session history only when the stream completes without error.
	SendStream(ctx context.Context, text string) iter.Seq2[string, error]
}

// Collect drains a stream into a single string. It returns what was received
// before the first error together with that error.
func Collect(seq iter.Seq2[string, error]) (string, error) {
	var b strings.Builder
	for frag, err := range seq {
		if err != nil {
			return b.String(), err
		}
		b.WriteString(frag)
	}
	return b.String(), nil
}

// =============================================================================
// REGISTRY
// =============================================================================

// Factory builds a Provider. It must not perform network I/O.
type Factory func() (Provider, error)

// Registry maps backend names to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds or replaces the factory for name.
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[strings.ToLower(name)] = f
}

// Open builds the provider registered under name.
func (r *Registry) Open(name string) (Provider, error) {
	r.mu.RLock()
	f, ok := r.factories[strings.ToLower(name)]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnknownProvider, name, strings.Join(r.Names(), ", "))
	}
	return f()
}

// Names returns the registered backend names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
