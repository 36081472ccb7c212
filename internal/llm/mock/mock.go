// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package mock provides a scripted completion backend.
//
// It is used by tests and by `nguvan --provider mock` to exercise the UI
// without network access.
package mock

import (
	"context"
	"iter"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jeranaias/nguvan-tui/internal/llm"
)

// Name is the registry name of this backend.
const Name = "mock"

// Reply scripts one streamed answer.
type Reply struct {
	// Fragments are yielded in order.
	Fragments []string

	// Err, if set, is yielded after FailAfter fragments.
	Err       error
	FailAfter int

	// Hold, if non-nil, is waited on before the first fragment.
	Hold <-chan struct{}

	// Delay is slept between fragments.
	Delay time.Duration
}

// Provider is a scripted llm.Provider. Replies are consumed in order across
// all sessions; once exhausted, every send streams Fallback.
type Provider struct {
	mu       sync.Mutex
	replies  []Reply
	sessions []*Session

	// Fallback is streamed once the script is exhausted.
	Fallback Reply

	// SessionErr, if set, is returned by NewSession.
	SessionErr error

	created atomic.Int32
}

// New creates a provider that streams replies in order.
func New(replies ...Reply) *Provider {
	return &Provider{
		replies:  replies,
		Fallback: Demo("Đây là câu trả lời mẫu từ trợ lý Ngữ văn."),
	}
}

// Demo splits text into word-sized fragments with a short delay, to look like
// a live stream.
func Demo(text string) Reply {
	var frags []string
	for _, w := range strings.SplitAfter(text, " ") {
		if w != "" {
			frags = append(frags, w)
		}
	}
	return Reply{Fragments: frags, Delay: 40 * time.Millisecond}
}

// Name implements llm.Provider.
func (p *Provider) Name() string { return Name }

// NewSession implements llm.Provider.
func (p *Provider) NewSession(_ context.Context, cfg llm.SessionConfig) (llm.Session, error) {
	p.created.Add(1)
	if p.SessionErr != nil {
		return nil, p.SessionErr
	}
	s := &Session{provider: p, cfg: cfg}

	p.mu.Lock()
	p.sessions = append(p.sessions, s)
	p.mu.Unlock()
	return s, nil
}

// SessionsCreated returns how many times NewSession was called.
func (p *Provider) SessionsCreated() int {
	return int(p.created.Load())
}

// Sessions returns the sessions created so far.
func (p *Provider) Sessions() []*Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*Session(nil), p.sessions...)
}

// Push appends replies to the script.
func (p *Provider) Push(replies ...Reply) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.replies = append(p.replies, replies...)
}

func (p *Provider) next() Reply {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.replies) == 0 {
		return p.Fallback
	}
	r := p.replies[0]
	p.replies = p.replies[1:]
	return r
}

// Session is a scripted llm.Session that records what it was sent.
type Session struct {
	provider *Provider
	cfg      llm.SessionConfig

	mu      sync.Mutex
	sent    []string
	history []string
}

// Config returns the configuration the session was created with.
func (s *Session) Config() llm.SessionConfig { return s.cfg }

// Sent returns every text passed to SendStream.
func (s *Session) Sent() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.sent...)
}

// History returns completed turns as alternating user/model texts.
func (s *Session) History() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.history...)
}

// SendStream implements llm.Session.
func (s *Session) SendStream(ctx context.Context, text string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		s.mu.Lock()
		s.sent = append(s.sent, text)
		s.mu.Unlock()

		r := s.provider.next()
		if r.Hold != nil {
			select {
			case <-r.Hold:
			case <-ctx.Done():
				yield("", ctx.Err())
				return
			}
		}

		var reply strings.Builder
		for i, frag := range r.Fragments {
			if r.Err != nil && i == r.FailAfter {
				yield("", r.Err)
				return
			}
			if r.Delay > 0 && i > 0 {
				select {
				case <-time.After(r.Delay):
				case <-ctx.Done():
					yield("", ctx.Err())
					return
				}
			}
			reply.WriteString(frag)
			if !yield(frag, nil) {
				return
			}
		}
		if r.Err != nil {
			yield("", r.Err)
			return
		}

		s.mu.Lock()
		s.history = append(s.history, text, reply.String())
		s.mu.Unlock()
	}
}
