// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"sync"
)

// =============================================================================
// EVENTS
// =============================================================================

// Event is a state change applied to a single transcript record.
// Events are the only way the streaming path writes to the transcript.
type Event interface {
	// Target returns the ID of the record the event applies to.
	Target() string
	apply(m *Message)
}

// FragmentEvent appends one streamed fragment to a MODEL record.
type FragmentEvent struct {
	ID   string
	Text string
}

func (e FragmentEvent) Target() string { return e.ID }

func (e FragmentEvent) apply(m *Message) {
	m.Content += e.Text
}

// ReplaceEvent overwrites a MODEL record's content and ends its stream.
// Failed marks the record as the outcome of a failed exchange.
type ReplaceEvent struct {
	ID      string
	Content string
	Failed  bool
}

func (e ReplaceEvent) Target() string { return e.ID }

func (e ReplaceEvent) apply(m *Message) {
	m.Content = e.Content
	m.Streaming = false
	m.Failed = e.Failed
}

// FinalizeEvent marks a MODEL record as no longer streaming.
type FinalizeEvent struct {
	ID string
}

func (e FinalizeEvent) Target() string { return e.ID }

func (e FinalizeEvent) apply(m *Message) {
	m.Streaming = false
}

// =============================================================================
// TRANSCRIPT TYPE
// =============================================================================

// Transcript is the ordered list of messages shown to the user.
// The zero value is an empty transcript ready to use.
// Insertion order is display order. It is safe for concurrent use; every
// mutation runs under the write lock against the latest state, so fragments
// applied from a streaming goroutine are never lost to a stale snapshot.
type Transcript struct {
	mu       sync.RWMutex
	messages []Message
	index    map[string]int
	version  uint64
}

// NewTranscript creates a transcript seeded with one message.
func NewTranscript(seed Message) *Transcript {
	t := &Transcript{
		messages: make([]Message, 0, 16),
		index:    make(map[string]int),
	}
	t.Append(seed)
	return t
}

// Append adds msg to the end of the transcript and returns its ID.
// An ID is generated when msg has none.
func (t *Transcript) Append(msg Message) string {
	if msg.ID == "" {
		msg.ID = newID()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.index == nil {
		t.index = make(map[string]int)
	}
	t.index[msg.ID] = len(t.messages)
	t.messages = append(t.messages, msg)
	t.version++
	return msg.ID
}

// MutateLast applies fn to the content of the last record if its role is
// MODEL. It is a no-op returning false otherwise.
func (t *Transcript) MutateLast(fn func(string) string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.messages) == 0 {
		return false
	}
	last := &t.messages[len(t.messages)-1]
	if last.Role != RoleModel {
		return false
	}
	last.Content = fn(last.Content)
	t.version++
	return true
}

// Mutate applies fn to the content of the MODEL record with the given ID.
func (t *Transcript) Mutate(id string, fn func(string) string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	m := t.lookup(id)
	if m == nil || m.Role != RoleModel {
		return false
	}
	m.Content = fn(m.Content)
	t.version++
	return true
}

// Apply applies ev to its target record. Only MODEL records accept events.
// It returns false if the target does not exist or is not a MODEL record.
func (t *Transcript) Apply(ev Event) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	m := t.lookup(ev.Target())
	if m == nil || m.Role != RoleModel {
		return false
	}
	ev.apply(m)
	t.version++
	return true
}

// lookup must be called with mu held.
func (t *Transcript) lookup(id string) *Message {
	i, ok := t.index[id]
	if !ok {
		return nil
	}
	return &t.messages[i]
}

// Messages returns a copy of all records in display order.
func (t *Transcript) Messages() []Message {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Get returns a copy of the record with the given ID.
func (t *Transcript) Get(id string) (Message, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	m := t.lookup(id)
	if m == nil {
		return Message{}, false
	}
	return *m, true
}

// Last returns a copy of the most recent record, or the zero Message when
// the transcript is empty.
func (t *Transcript) Last() Message {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if len(t.messages) == 0 {
		return Message{}
	}
	return t.messages[len(t.messages)-1]
}

// LastModel returns the most recent MODEL record, if any.
func (t *Transcript) LastModel() (Message, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for i := len(t.messages) - 1; i >= 0; i-- {
		if t.messages[i].Role == RoleModel {
			return t.messages[i], true
		}
	}
	return Message{}, false
}

// Len returns the number of records.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.messages)
}

// Version increases on every mutation. Renderers compare it to skip redundant work.
func (t *Transcript) Version() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.version
}
