// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jeranaias/nguvan-tui/internal/config"
	"github.com/jeranaias/nguvan-tui/internal/llm"
	"github.com/jeranaias/nguvan-tui/internal/llm/mock"
	"github.com/jeranaias/nguvan-tui/internal/persona"
)

// =============================================================================
// HELPERS
// =============================================================================

type result struct {
	out    string
	errOut string
	err    error
}

// isolate points HOME at a temp dir, clears NGUVAN_* overrides and writes a
// default config file, returning its path.
func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, k := range []string{
		"NGUVAN_PROVIDER", "NGUVAN_MODEL", "NGUVAN_OLLAMA_URL", "NGUVAN_OPENROUTER_URL",
		"NGUVAN_LOG_LEVEL", "NGUVAN_LOG_FILE", "NGUVAN_MARKDOWN",
	} {
		t.Setenv(k, "")
	}
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, config.SaveTOML(config.Default(), path))
	return path
}

// execute runs the command tree with the mock backend answering as p.
func execute(t *testing.T, p *mock.Provider, stdin string, args ...string) result {
	t.Helper()
	reg := llm.NewRegistry()
	reg.Register(mock.Name, func() (llm.Provider, error) { return p, nil })

	cmd := newRootCommand(&app{providers: reg})
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return result{out: out.String(), errOut: errOut.String(), err: err}
}

func frags(s ...string) mock.Reply {
	return mock.Reply{Fragments: s}
}

// =============================================================================
// ASK
// =============================================================================

func TestAsk_StreamsReply(t *testing.T) {
	path := isolate(t)
	p := mock.New(frags("Bài", "thơ", " X..."))

	res := execute(t, p, "", "--config", path, "--provider", "mock", "ask", "Phân tích bài thơ X")
	require.NoError(t, res.err)
	require.Equal(t, "Bàithơ X...\n", res.out)

	sessions := p.Sessions()
	require.Len(t, sessions, 1)
	require.Equal(t, []string{"Phân tích bài thơ X"}, sessions[0].Sent())
	require.Equal(t, persona.SystemInstruction, sessions[0].Config().SystemInstruction)
	require.Equal(t, persona.DefaultModel, sessions[0].Config().Model)
}

func TestAsk_ModelFlagResolvesShortName(t *testing.T) {
	path := isolate(t)
	p := mock.New(frags("ok"))

	res := execute(t, p, "", "--config", path, "-p", "mock", "-m", "flash", "ask", "hỏi")
	require.NoError(t, res.err)
	require.Equal(t, "gemini-2.5-flash", p.Sessions()[0].Config().Model)
}

func TestAsk_ReadsStdin(t *testing.T) {
	path := isolate(t)
	p := mock.New(frags("ok"))

	res := execute(t, p, "  Tóm tắt Chí Phèo\n", "--config", path, "--provider", "mock", "ask")
	require.NoError(t, res.err)
	require.Equal(t, []string{"Tóm tắt Chí Phèo"}, p.Sessions()[0].Sent())
}

func TestAsk_NoQuestion(t *testing.T) {
	path := isolate(t)
	p := mock.New()

	res := execute(t, p, "   \n", "--config", path, "--provider", "mock", "ask")
	require.ErrorIs(t, res.err, errNoQuestion)
	require.Zero(t, p.SessionsCreated())
}

func TestAsk_FailurePrintsApology(t *testing.T) {
	path := isolate(t)
	p := mock.New(mock.Reply{
		Fragments: []string{"fragment1", "fragment2"},
		Err:       errors.New("connection reset"),
		FailAfter: 1,
	})

	res := execute(t, p, "", "--config", path, "--provider", "mock", "ask", "Phân tích bài thơ X")
	require.ErrorContains(t, res.err, "connection reset")
	require.True(t, strings.HasSuffix(res.out, persona.Apology+"\n"), "out = %q", res.out)
	require.Contains(t, res.errOut, "exchange failed")
}

func TestAsk_SessionErrorPrintsApology(t *testing.T) {
	path := isolate(t)
	p := mock.New()
	p.SessionErr = llm.ErrNotConfigured

	res := execute(t, p, "", "--config", path, "--provider", "mock", "ask", "hỏi")
	require.ErrorIs(t, res.err, llm.ErrNotConfigured)
	require.Equal(t, persona.Apology+"\n", res.out)
}

func TestAsk_Stats(t *testing.T) {
	path := isolate(t)
	p := mock.New(frags("a", "b"))

	res := execute(t, p, "", "--config", path, "--provider", "mock", "ask", "--stats", "hỏi")
	require.NoError(t, res.err)
	require.Contains(t, res.errOut, "2 đoạn")
}

func TestReadQuestion(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		stdin string
		want  string
		err   error
	}{
		{"args joined", []string{"Truyện", "Kiều"}, "", "Truyện Kiều", nil},
		{"args win over stdin", []string{"a"}, "b", "a", nil},
		{"stdin", nil, "câu hỏi\n", "câu hỏi\n", nil},
		{"blank", []string{" "}, " \t", "", errNoQuestion},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := readQuestion(strings.NewReader(tc.stdin), tc.args)
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

// =============================================================================
// CHAT
// =============================================================================

func TestChat_Conversation(t *testing.T) {
	path := isolate(t)
	p := mock.New(frags("Chào ", "bạn"), frags("Tây Tiến"))

	stdin := "Xin chào\n\n/help\nTây Tiến?\n/exit\nnot sent\n"
	res := execute(t, p, stdin, "--config", path, "--provider", "mock", "chat")
	require.NoError(t, res.err)

	require.Contains(t, res.out, persona.Title)
	require.Contains(t, res.out, persona.Greeting)
	require.Contains(t, res.out, assistantLabel+" Chào bạn\n")
	require.Contains(t, res.out, assistantLabel+" Tây Tiến\n")
	require.Contains(t, res.out, "/stats")

	// One session carries both turns.
	require.Equal(t, 1, p.SessionsCreated())
	require.Equal(t, []string{"Xin chào", "Tây Tiến?"}, p.Sessions()[0].Sent())
}

func TestChat_ContinuesAfterFailure(t *testing.T) {
	path := isolate(t)
	p := mock.New(
		mock.Reply{Err: errors.New("503")},
		frags("lần hai"),
	)

	res := execute(t, p, "một\nhai\n", "--config", path, "--provider", "mock", "chat")
	require.NoError(t, res.err)
	require.Contains(t, res.out, persona.Apology)
	require.Contains(t, res.out, assistantLabel+" lần hai\n")
}

func TestChat_EOFEndsSession(t *testing.T) {
	path := isolate(t)
	p := mock.New()

	res := execute(t, p, "", "--config", path, "--provider", "mock", "chat")
	require.NoError(t, res.err)
	require.Zero(t, p.SessionsCreated())
}

// =============================================================================
// CONFIG
// =============================================================================

func TestConfig_Show(t *testing.T) {
	path := isolate(t)

	res := execute(t, mock.New(), "", "--config", path, "config", "show")
	require.NoError(t, res.err)
	require.Contains(t, res.out, "[provider]")
	require.Contains(t, res.out, `name = "gemini"`)
	require.Contains(t, res.out, "GEMINI_API_KEY")
}

func TestConfig_SetGet(t *testing.T) {
	path := isolate(t)

	res := execute(t, mock.New(), "", "--config", path, "config", "set", "provider.name", "ollama")
	require.NoError(t, res.err)
	require.Equal(t, "provider.name = ollama\n", res.out)

	res = execute(t, mock.New(), "", "--config", path, "config", "get", "provider.name")
	require.NoError(t, res.err)
	require.Equal(t, "ollama\n", res.out)

	res = execute(t, mock.New(), "", "--config", path, "config", "set", "ui.render_fps", "30")
	require.NoError(t, res.err)
	cfg, err := config.LoadFromPath(path)
	require.NoError(t, err)
	require.Equal(t, 30, cfg.UI.RenderFPS)
	require.Equal(t, config.ProviderOllama, cfg.Provider.Name)
}

func TestConfig_SetRejects(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"unknown key", "ui.colour", "x", "unknown field"},
		{"section", "ui", "x", "is a section"},
		{"bad int", "ui.render_fps", "fast", "invalid integer"},
		{"out of range", "ui.render_fps", "99", "ui.render_fps"},
		{"bad provider", "provider.name", "bard", "invalid provider"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := isolate(t)
			before, err := os.ReadFile(path)
			require.NoError(t, err)

			res := execute(t, mock.New(), "", "--config", path, "config", "set", tc.key, tc.value)
			require.ErrorContains(t, res.err, tc.wantErr)

			after, err := os.ReadFile(path)
			require.NoError(t, err)
			require.Equal(t, string(before), string(after), "rejected set must not touch the file")
		})
	}
}

func TestConfig_SetDoesNotPersistFlagOverrides(t *testing.T) {
	path := isolate(t)

	res := execute(t, mock.New(), "", "--config", path, "--provider", "mock", "config", "set", "ui.theme", "dark")
	require.NoError(t, res.err)

	cfg, err := config.LoadFromPath(path)
	require.NoError(t, err)
	require.Equal(t, config.ProviderGemini, cfg.Provider.Name)
	require.Equal(t, "dark", cfg.UI.Theme)
}

func TestConfig_Init(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	res := execute(t, mock.New(), "", "--config", path, "config", "init")
	require.NoError(t, res.err)
	require.FileExists(t, path)

	res = execute(t, mock.New(), "", "--config", path, "config", "init")
	require.ErrorContains(t, res.err, "already exists")

	res = execute(t, mock.New(), "", "--config", path, "config", "init", "--force")
	require.NoError(t, res.err)
}

func TestConfig_InitInteractiveWithoutTerminal(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.toml")

	// Piped stdin cannot answer prompts, so defaults are written.
	res := execute(t, mock.New(), "ignored\n", "--config", path, "config", "init", "-i")
	require.NoError(t, res.err)

	cfg, err := config.LoadFromPath(path)
	require.NoError(t, err)
	require.Equal(t, config.Default().Provider.Name, cfg.Provider.Name)

	res = execute(t, mock.New(), "", "--config", path, "config", "init", "-i")
	require.ErrorContains(t, res.err, "already exists")
}

func TestConfig_KeysAndPath(t *testing.T) {
	path := isolate(t)

	res := execute(t, mock.New(), "", "config", "keys")
	require.NoError(t, res.err)
	require.Contains(t, res.out, "ui.render_fps\n")
	require.Contains(t, res.out, "gemini.api_key_env")

	res = execute(t, mock.New(), "", "--config", path, "config", "path")
	require.NoError(t, res.err)
	require.Equal(t, path+"\n", res.out)
}

// =============================================================================
// ROOT
// =============================================================================

func TestRoot_InvalidProvider(t *testing.T) {
	path := isolate(t)

	res := execute(t, mock.New(), "", "--config", path, "--provider", "bard", "ask", "hỏi")
	require.ErrorContains(t, res.err, "invalid provider")
}

func TestRoot_MissingConfigFile(t *testing.T) {
	isolate(t)

	res := execute(t, mock.New(), "", "--config", filepath.Join(t.TempDir(), "none.toml"), "config", "show")
	require.Error(t, res.err)
}

func TestRoot_Version(t *testing.T) {
	res := execute(t, mock.New(), "", "--version")
	require.NoError(t, res.err)
	require.Contains(t, res.out, "nguvan version "+Version)
}

func TestRoot_RejectsArgs(t *testing.T) {
	res := execute(t, mock.New(), "", "stray")
	require.Error(t, res.err)
}

// =============================================================================
// TERMINAL HELPERS
// =============================================================================

func TestPrintedRows(t *testing.T) {
	tests := []struct {
		text  string
		width int
		want  int
	}{
		{"", 80, 1},
		{"abc", 80, 1},
		{strings.Repeat("a", 80), 80, 1},
		{strings.Repeat("a", 81), 80, 2},
		{"a\nb", 80, 2},
		{"a\n\nb", 80, 3},
		{"Ngữ văn", 3, 3},
		{"abc", 0, 1},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, printedRows(tc.text, tc.width), "printedRows(%q, %d)", tc.text, tc.width)
	}
}

func TestColorsEnabled_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	t.Setenv("FORCE_COLOR", "1")
	require.False(t, ColorsEnabled())
}
