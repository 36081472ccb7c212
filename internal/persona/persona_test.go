// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package persona

import (
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	p := Default()
	if p.Greeting != Greeting || p.Apology != Apology || p.Title != Title {
		t.Errorf("Default() = %+v", p)
	}
	if !strings.Contains(p.SystemInstruction, "hoclieuso.id.vn") {
		t.Error("system instruction should name the site")
	}
}

func TestMerge(t *testing.T) {
	p := Default().Merge(Persona{Title: "Khác"})
	if p.Title != "Khác" {
		t.Errorf("Title = %q", p.Title)
	}
	if p.Apology != Apology {
		t.Error("empty override fields must not clear defaults")
	}
}
