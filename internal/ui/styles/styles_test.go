// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"testing"
	"time"

	"github.com/muesli/termenv"
)

func TestNewTheme_ForcedModes(t *testing.T) {
	if th := NewTheme("dark"); !th.IsDark {
		t.Error("NewTheme(dark).IsDark = false")
	}
	if th := NewTheme("LIGHT"); th.IsDark {
		t.Error("NewTheme(LIGHT).IsDark = true")
	}
}

func TestGetLayoutMode(t *testing.T) {
	tests := []struct {
		width int
		want  LayoutMode
	}{
		{40, LayoutNarrow},
		{59, LayoutNarrow},
		{60, LayoutMedium},
		{99, LayoutMedium},
		{100, LayoutWide},
	}
	th := NewTheme("dark")
	for _, tc := range tests {
		th.SetSize(tc.width, 24)
		if got := th.GetLayoutMode(); got != tc.want {
			t.Errorf("width %d: GetLayoutMode() = %v, want %v", tc.width, got, tc.want)
		}
	}
}

func TestGlamourStyle(t *testing.T) {
	th := &Theme{IsDark: true, ColorProfile: termenv.TrueColor}
	if got := th.GlamourStyle(); got != "dark" {
		t.Errorf("dark = %q", got)
	}
	th.IsDark = false
	if got := th.GlamourStyle(); got != "light" {
		t.Errorf("light = %q", got)
	}
	th.ColorProfile = termenv.Ascii
	if got := th.GlamourStyle(); got != "notty" {
		t.Errorf("ascii = %q", got)
	}
}

func TestSpinnerConfig(t *testing.T) {
	if d := LineSpinner.Duration(); d != 100*time.Millisecond {
		t.Errorf("LineSpinner.Duration() = %v", d)
	}
	if d := (SpinnerConfig{}).Duration(); d != 100*time.Millisecond {
		t.Errorf("zero FPS Duration() = %v", d)
	}
	s := DotsSpinner.Spinner()
	if len(s.Frames) != len(DotsSpinner.Frames) || s.FPS != DotsSpinner.Duration() {
		t.Errorf("Spinner() = %+v", s)
	}
}
