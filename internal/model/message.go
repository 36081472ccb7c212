// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the author of a message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns the label shown next to a message in the transcript.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "Bạn"
	case RoleModel:
		return "Trợ lý"
	default:
		return string(r)
	}
}

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleModel
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single transcript record.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`

	// Streaming is true only for the in-flight MODEL placeholder.
	Streaming bool `json:"-"`

	// Failed is set when the record holds the apology of a failed exchange.
	Failed bool `json:"failed,omitempty"`
}

// NewMessage creates a message with a generated ID.
func NewMessage(role Role, content string) Message {
	return Message{
		ID:        newID(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewUserMessage creates a USER message.
func NewUserMessage(content string) Message {
	return NewMessage(RoleUser, content)
}

// NewModelMessage creates a finished MODEL message, used for the greeting seed.
func NewModelMessage(content string) Message {
	return NewMessage(RoleModel, content)
}

// NewPlaceholder creates the empty MODEL record that a streamed reply fills.
func NewPlaceholder() Message {
	msg := NewMessage(RoleModel, "")
	msg.Streaming = true
	return msg
}

// IsEmpty returns true if the message has no content.
func (m Message) IsEmpty() bool {
	return m.Content == ""
}

// Preview returns a truncated preview of the message content.
// Truncation is rune-based so Vietnamese diacritics are never split.
func (m Message) Preview(maxLen int) string {
	runes := []rune(m.Content)
	if maxLen <= 3 || len(runes) <= maxLen {
		return m.Content
	}
	return string(runes[:maxLen-3]) + "..."
}

// =============================================================================
// STATISTICS TYPE
// =============================================================================

// Statistics holds timing information for one streamed exchange.
type Statistics struct {
	StartTime     time.Time
	FirstFragment time.Time
	EndTime       time.Time
	Fragments     int
	Bytes         int
	TTFF          time.Duration // time to first fragment
	TotalDuration time.Duration
	now           func() time.Time
}

// NewStatistics creates Statistics with the start time set.
func NewStatistics() *Statistics {
	return NewStatisticsWithClock(time.Now)
}

// NewStatisticsWithClock is NewStatistics with an injectable clock.
func NewStatisticsWithClock(now func() time.Time) *Statistics {
	if now == nil {
		now = time.Now
	}
	return &Statistics{StartTime: now(), now: now}
}

// RecordFragment records the arrival of one fragment of n bytes.
func (s *Statistics) RecordFragment(n int) {
	if s.FirstFragment.IsZero() {
		s.FirstFragment = s.now()
		s.TTFF = s.FirstFragment.Sub(s.StartTime)
	}
	s.Fragments++
	s.Bytes += n
}

// Finalize stamps the end time and computes the total duration.
func (s *Statistics) Finalize() {
	s.EndTime = s.now()
	s.TotalDuration = s.EndTime.Sub(s.StartTime)
}

// Format returns a compact one-line summary, e.g. "2.5s | 42 đoạn | TTFF 234ms".
func (s *Statistics) Format() string {
	if s == nil || s.EndTime.IsZero() {
		return ""
	}
	return fmt.Sprintf("%s | %d đoạn | TTFF %dms",
		formatDuration(s.TotalDuration), s.Fragments, s.TTFF.Milliseconds())
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// newID returns a time-ordered message ID.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
