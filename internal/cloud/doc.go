// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cloud provides an OpenRouter completion backend.
//
// OpenRouter exposes an OpenAI-compatible chat completions endpoint that
// streams replies as Server-Sent Events. The session keeps the message
// history client-side and sends it with every request.
//
// # Usage
//
//	p := cloud.New(cloud.WithModel("google/gemini-2.5-flash"))
//	sess, err := p.NewSession(ctx, llm.SessionConfig{SystemInstruction: sys})
//	for frag, err := range sess.SendStream(ctx, "Xin chào") { ... }
//
// The API key is read from OPENROUTER_API_KEY when a session is created.
package cloud
