// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"errors"

	"github.com/jeranaias/nguvan-tui/internal/model"
)

// State is the send-flow state.
type State int

const (
	// StateIdle accepts a new submission.
	StateIdle State = iota

	// StateSending has recorded the submission and is opening the session.
	StateSending

	// StateStreaming is folding reply fragments into the placeholder.
	StateStreaming

	// StateError has replaced the placeholder with the apology.
	StateError
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateSending:
		return "SENDING"
	case StateStreaming:
		return "STREAMING"
	case StateError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Errors returned by Send. Neither mutates the transcript.
var (
	// ErrEmptyMessage is returned for empty or whitespace-only input.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrBusy is returned while another exchange is in flight.
	ErrBusy = errors.New("an exchange is already in progress")
)

// IsServiceFailure reports whether err is an exchange failure, as opposed to
// a rejected submission.
func IsServiceFailure(err error) bool {
	return err != nil && !errors.Is(err, ErrEmptyMessage) && !errors.Is(err, ErrBusy)
}

// UpdateKind classifies an Update.
type UpdateKind int

const (
	// UpdateState reports a state transition.
	UpdateState UpdateKind = iota

	// UpdateFragment reports one fragment folded into the placeholder.
	UpdateFragment

	// UpdateDone is the last update of a successful exchange.
	UpdateDone

	// UpdateFailed is the last update of a failed exchange.
	UpdateFailed
)

// Update is a notification published while an exchange runs. The transcript
// is always the source of truth; updates only say that it changed.
type Update struct {
	Kind       UpdateKind
	ExchangeID string
	State      State
	Fragment   string
	Err        error
	Stats      *model.Statistics
}

// Terminal reports whether u is the last update of its exchange.
func (u Update) Terminal() bool {
	return u.Kind == UpdateDone || u.Kind == UpdateFailed
}
