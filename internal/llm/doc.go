// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package llm defines the contract between the send-flow and a hosted
// completion service.
//
// A Provider creates Sessions. A Session is a stateful conversation bound to
// one model and one system instruction; it keeps prior turns itself and
// streams the reply to each new user message as a sequence of text
// fragments.
//
// Backends live in their own packages (gemini, cloud, ollama, llm/mock) and
// are selected by name through a Registry.
package llm
