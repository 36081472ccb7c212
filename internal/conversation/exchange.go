// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"context"

	"github.com/jeranaias/nguvan-tui/internal/model"
)

// Exchange is one in-flight request/reply pair. Its ID is the ID of the
// model placeholder it fills.
type Exchange struct {
	id      string
	prompt  string
	updates chan Update
	done    chan struct{}

	// written once before done is closed
	err   error
	stats *model.Statistics
}

func newExchange(placeholderID, prompt string) *Exchange {
	return &Exchange{
		id:      placeholderID,
		prompt:  prompt,
		updates: make(chan Update, updateBuffer),
		done:    make(chan struct{}),
	}
}

// ID returns the placeholder record's ID.
func (e *Exchange) ID() string { return e.id }

// Prompt returns the normalized user text that was sent.
func (e *Exchange) Prompt() string { return e.prompt }

// Updates returns the notification channel. It is closed after the terminal
// update. Slow readers may miss intermediate fragment updates but never the
// channel close.
func (e *Exchange) Updates() <-chan Update { return e.updates }

// Done is closed when the exchange has finished.
func (e *Exchange) Done() <-chan struct{} { return e.done }

// Wait blocks until the exchange finishes and returns its failure, if any.
func (e *Exchange) Wait() error {
	<-e.done
	return e.err
}

// WaitContext is Wait bounded by ctx.
func (e *Exchange) WaitContext(ctx context.Context) error {
	select {
	case <-e.done:
		return e.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats returns the exchange statistics once it has finished, nil before.
func (e *Exchange) Stats() *model.Statistics {
	select {
	case <-e.done:
		return e.stats
	default:
		return nil
	}
}

// publish never blocks.
func (e *Exchange) publish(u Update) {
	select {
	case e.updates <- u:
	default:
	}
}

func (e *Exchange) complete(final Update) {
	e.err = final.Err
	e.stats = final.Stats
	close(e.done)
	e.publish(final)
	close(e.updates)
}
