// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"testing"
)

func TestMarkdownRenderer_CachesByID(t *testing.T) {
	r := newMarkdownRenderer("notty", 10)
	r.SetWidth(40)

	out := r.Render("a", "# Tây Tiến")
	if !strings.Contains(out, "Tây Tiến") {
		t.Fatalf("Render() = %q", out)
	}
	if got := r.Render("a", "# Tây Tiến"); got != out {
		t.Errorf("cached render differs: %q vs %q", got, out)
	}
	if len(r.cache) != 1 {
		t.Errorf("cache size = %d, want 1", len(r.cache))
	}
}

func TestMarkdownRenderer_StreamingThrottled(t *testing.T) {
	r := newMarkdownRenderer("notty", 1)
	r.SetWidth(40)

	first := r.RenderStreaming("a", "Bài")
	// The limiter allows one render per second, so the next call shows the
	// new text plain after the previous render.
	got := r.RenderStreaming("a", "Bài thơ")
	if !strings.HasPrefix(got, first) || !strings.HasSuffix(got, " thơ") {
		t.Errorf("RenderStreaming() = %q, want %q + plain tail", got, first)
	}
}

func TestMarkdownRenderer_WidthChangeDropsCache(t *testing.T) {
	r := newMarkdownRenderer("notty", 10)
	r.SetWidth(40)
	r.Render("a", "x")
	r.SetWidth(60)
	if len(r.cache) != 0 {
		t.Errorf("cache should be dropped on width change")
	}
}

func TestMarkdownRenderer_EmptyContent(t *testing.T) {
	r := newMarkdownRenderer("notty", 10)
	r.SetWidth(40)
	if got := r.Render("a", ""); got != "" {
		t.Errorf("Render(empty) = %q", got)
	}
}
