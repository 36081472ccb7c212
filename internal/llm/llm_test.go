// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package llm

import (
	"context"
	"errors"
	"iter"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubProvider struct{ name string }

func (p stubProvider) Name() string { return p.name }

func (p stubProvider) NewSession(context.Context, SessionConfig) (Session, error) {
	return nil, ErrNotConfigured
}

func seq(frags []string, err error) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, f := range frags {
			if !yield(f, nil) {
				return
			}
		}
		if err != nil {
			yield("", err)
		}
	}
}

// =============================================================================
// COLLECT TESTS
// =============================================================================

func TestCollect(t *testing.T) {
	got, err := Collect(seq([]string{"Bài", "thơ", " X..."}, nil))
	require.NoError(t, err)
	require.Equal(t, "Bàithơ X...", got)

	boom := errors.New("boom")
	got, err = Collect(seq([]string{"partial"}, boom))
	require.ErrorIs(t, err, boom)
	require.Equal(t, "partial", got)
}

// =============================================================================
// REGISTRY TESTS
// =============================================================================

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register("Gemini", func() (Provider, error) { return stubProvider{"gemini"}, nil })
	r.Register("mock", func() (Provider, error) { return stubProvider{"mock"}, nil })

	require.Equal(t, []string{"gemini", "mock"}, r.Names())

	p, err := r.Open("GEMINI")
	require.NoError(t, err)
	require.Equal(t, "gemini", p.Name())

	_, err = r.Open("nope")
	require.ErrorIs(t, err, ErrUnknownProvider)
	require.Contains(t, err.Error(), "gemini, mock")
}

// =============================================================================
// ERROR TESTS
// =============================================================================

func TestStatusError(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{401, ErrAuthFailed},
		{403, ErrAuthFailed},
		{404, ErrModelNotFound},
		{429, ErrRateLimited},
	}
	for _, tc := range tests {
		err := StatusError("openrouter", tc.status, "", "nope")
		require.ErrorIs(t, err, tc.want, "status %d", tc.status)
	}

	err := StatusError("openrouter", 500, "internal", "down")
	require.Nil(t, err.Unwrap())
	require.Equal(t, "openrouter error [internal] (HTTP 500): down", err.Error())

	require.True(t, IsAuthFailed(StatusError("x", 401, "", "")))
	require.True(t, IsRateLimited(StatusError("x", 429, "", "")))
	require.True(t, IsNotConfigured(errors.Join(errors.New("ctx"), ErrNotConfigured)))
}
