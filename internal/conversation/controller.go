// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/jeranaias/nguvan-tui/internal/llm"
	"github.com/jeranaias/nguvan-tui/internal/model"
	"github.com/jeranaias/nguvan-tui/internal/persona"
	"github.com/jeranaias/nguvan-tui/internal/util"
)

// updateBuffer is the capacity of each exchange's update channel. Updates that
// do not fit are dropped; readers re-read the transcript anyway.
const updateBuffer = 256

// =============================================================================
// OPTIONS
// =============================================================================

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithPersona replaces the default literature persona.
func WithPersona(p persona.Persona) Option {
	return func(c *Controller) {
		c.persona = p
	}
}

// WithKeepPartialOnError keeps already received text on failure and appends
// the apology after it instead of replacing it.
func WithKeepPartialOnError(keep bool) Option {
	return func(c *Controller) {
		c.keepPartial = keep
	}
}

// WithClock sets the time source used for statistics.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithTranscript uses t instead of a fresh transcript seeded with the greeting.
func WithTranscript(t *model.Transcript) Option {
	return func(c *Controller) {
		c.transcript = t
	}
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller runs the send-message flow for one conversation.
// It is safe for concurrent use.
type Controller struct {
	provider    llm.Provider
	modelID     string
	persona     persona.Persona
	transcript  *model.Transcript
	logger      *slog.Logger
	keepPartial bool
	now         func() time.Time

	// sessMu guards the lazy check-then-set of session.
	sessMu  sync.Mutex
	session llm.Session

	mu        sync.Mutex
	state     State
	busy      bool
	current   *Exchange
	lastStats *model.Statistics
}

// New creates a controller that talks to provider using modelID.
func New(provider llm.Provider, modelID string, opts ...Option) *Controller {
	c := &Controller{
		provider: provider,
		modelID:  modelID,
		persona:  persona.Default(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:      time.Now,
		state:    StateIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.modelID == "" {
		c.modelID = persona.DefaultModel
	}
	if c.transcript == nil {
		c.transcript = model.NewTranscript(model.NewModelMessage(c.persona.Greeting))
	}
	return c
}

// Transcript returns the transcript the controller writes to.
func (c *Controller) Transcript() *model.Transcript { return c.transcript }

// Persona returns the persona in use.
func (c *Controller) Persona() persona.Persona { return c.persona }

// Model returns the model identifier sessions are created with.
func (c *Controller) Model() string { return c.modelID }

// ProviderName returns the backend name.
func (c *Controller) ProviderName() string { return c.provider.Name() }

// Busy reports whether an exchange is in flight.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// State returns the current send-flow state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Current returns the in-flight exchange, or nil.
func (c *Controller) Current() *Exchange {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// LastStats returns statistics of the last finished exchange, or nil.
func (c *Controller) LastStats() *model.Statistics {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastStats
}

// HasSession reports whether the completion session has been created.
func (c *Controller) HasSession() bool {
	c.sessMu.Lock()
	defer c.sessMu.Unlock()
	return c.session != nil
}

// Send submits text as the next user turn.
//
// Empty or whitespace-only text returns ErrEmptyMessage and a submission
// while another exchange is in flight returns ErrBusy; neither touches the
// transcript. Otherwise the user message and an empty model placeholder are
// appended before Send returns, and the reply streams in the background.
// ctx bounds the exchange; cancelling it fails the exchange like any other
// transport error.
func (c *Controller) Send(ctx context.Context, text string) (*Exchange, error) {
	text = util.NormalizeInput(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	c.busy = true
	c.state = StateSending
	c.transcript.Append(model.NewUserMessage(text))
	placeholderID := c.transcript.Append(model.NewPlaceholder())
	ex := newExchange(placeholderID, text)
	c.current = ex
	c.mu.Unlock()

	c.logger.Debug("exchange started", "exchange", ex.id, "chars", len(text))
	ex.publish(Update{Kind: UpdateState, ExchangeID: ex.id, State: StateSending})

	go c.run(ctx, ex)
	return ex, nil
}

// run drives one exchange from SENDING to IDLE.
func (c *Controller) run(ctx context.Context, ex *Exchange) {
	stats := model.NewStatisticsWithClock(c.now)

	sess, err := c.ensureSession(ctx)
	if err != nil {
		c.fail(ex, stats, err)
		return
	}

	c.setState(StateStreaming)
	ex.publish(Update{Kind: UpdateState, ExchangeID: ex.id, State: StateStreaming})

	for frag, err := range sess.SendStream(ctx, ex.prompt) {
		if err != nil {
			c.fail(ex, stats, fmt.Errorf("stream reply: %w", err))
			return
		}
		if frag == "" {
			continue
		}
		c.transcript.Apply(model.FragmentEvent{ID: ex.id, Text: frag})
		stats.RecordFragment(len(frag))
		ex.publish(Update{Kind: UpdateFragment, ExchangeID: ex.id, State: StateStreaming, Fragment: frag})
	}

	c.transcript.Apply(model.FinalizeEvent{ID: ex.id})
	stats.Finalize()
	c.logger.Info("exchange completed",
		"exchange", ex.id,
		"fragments", stats.Fragments,
		"bytes", stats.Bytes,
		"ttff", stats.TTFF,
		"duration", stats.TotalDuration)
	c.finish(ex, stats, nil)
}

// ensureSession returns the session, creating it on first use. A failed
// creation is not cached, so the next send tries again.
func (c *Controller) ensureSession(ctx context.Context) (llm.Session, error) {
	c.sessMu.Lock()
	defer c.sessMu.Unlock()

	if c.session != nil {
		return c.session, nil
	}

	sess, err := c.provider.NewSession(ctx, llm.SessionConfig{
		Model:             c.modelID,
		SystemInstruction: c.persona.SystemInstruction,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s session: %w", c.provider.Name(), err)
	}
	c.session = sess
	c.logger.Info("session created", "provider", c.provider.Name(), "model", c.modelID)
	return sess, nil
}

// fail moves the exchange through ERROR and replaces the placeholder.
func (c *Controller) fail(ex *Exchange, stats *model.Statistics, err error) {
	content := c.persona.Apology
	if c.keepPartial {
		if m, ok := c.transcript.Get(ex.id); ok && m.Content != "" {
			content = m.Content + "\n\n" + c.persona.Apology
		}
	}
	c.transcript.Apply(model.ReplaceEvent{ID: ex.id, Content: content, Failed: true})

	c.setState(StateError)
	ex.publish(Update{Kind: UpdateState, ExchangeID: ex.id, State: StateError, Err: err})

	stats.Finalize()
	c.logger.Error("exchange failed", "exchange", ex.id, "error", err, "fragments", stats.Fragments)
	c.finish(ex, stats, err)
}

// finish clears the busy flag before publishing the terminal update.
func (c *Controller) finish(ex *Exchange, stats *model.Statistics, err error) {
	c.mu.Lock()
	c.busy = false
	c.state = StateIdle
	c.current = nil
	c.lastStats = stats
	c.mu.Unlock()

	kind := UpdateDone
	if err != nil {
		kind = UpdateFailed
	}
	ex.complete(Update{Kind: kind, ExchangeID: ex.id, State: StateIdle, Err: err, Stats: stats})
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}
