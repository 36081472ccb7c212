// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/time/rate"
)

type renderEntry struct {
	content string
	out     string
}

// markdownRenderer renders reply content with glamour and caches the result
// per message ID.
type markdownRenderer struct {
	style   string
	width   int
	tr      *glamour.TermRenderer
	cache   map[string]renderEntry
	limiter *rate.Limiter
}

// newMarkdownRenderer creates a renderer for a glamour standard style. fps
// bounds how often a streaming reply is re-rendered.
func newMarkdownRenderer(style string, fps int) *markdownRenderer {
	if fps <= 0 {
		fps = 10
	}
	return &markdownRenderer{
		style:   style,
		cache:   make(map[string]renderEntry),
		limiter: rate.NewLimiter(rate.Limit(fps), 1),
	}
}

// SetWidth rebuilds the renderer for a new wrap width and drops the cache.
func (r *markdownRenderer) SetWidth(width int) {
	if width == r.width && r.tr != nil {
		return
	}
	r.width = width
	r.cache = make(map[string]renderEntry)

	tr, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(r.style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		// Fallback to plain text
		r.tr = nil
		return
	}
	r.tr = tr
}

// Render returns the rendered form of a finished message.
func (r *markdownRenderer) Render(id, content string) string {
	if e, ok := r.cache[id]; ok && e.content == content {
		return e.out
	}
	out := r.render(content)
	r.cache[id] = renderEntry{content: content, out: out}
	return out
}

// RenderStreaming renders an in-flight reply. When the limiter denies a new
// render, the last rendered prefix is reused and the rest is appended plain.
func (r *markdownRenderer) RenderStreaming(id, content string) string {
	e, ok := r.cache[id]
	if ok && e.content == content {
		return e.out
	}
	if !r.limiter.Allow() && ok && strings.HasPrefix(content, e.content) {
		return e.out + "\n" + content[len(e.content):]
	}
	out := r.render(content)
	r.cache[id] = renderEntry{content: content, out: out}
	return out
}

func (r *markdownRenderer) render(content string) string {
	if r.tr == nil || content == "" {
		return content
	}
	out, err := r.tr.Render(content)
	if err != nil {
		return content
	}
	return strings.Trim(out, "\n")
}
