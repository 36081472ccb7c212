// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"fmt"
	"sort"
	"strings"
)

// =============================================================================
// MODEL INFO TYPE
// =============================================================================

// ModelInfo describes a completion model the assistant can talk to.
// It is used for the status bar and for `nguvan config show`.
type ModelInfo struct {
	// ID is the model identifier used in API calls
	ID string `json:"id"`

	// Name is the human-readable display name
	Name string `json:"name"`

	// Provider is the backend name: gemini, openrouter, ollama or mock
	Provider string `json:"provider"`

	// MaxTokens is the context window size
	MaxTokens int `json:"max_tokens"`

	// Description is a short Vietnamese note shown in listings
	Description string `json:"description"`
}

// =============================================================================
// MODEL REGISTRY
// =============================================================================

// Models is the registry of well-known models keyed by short name.
// Unknown model IDs are still accepted everywhere; the registry only adds
// display metadata.
var Models = map[string]ModelInfo{
	"flash": {
		ID:          "gemini-2.5-flash",
		Name:        "Gemini 2.5 Flash",
		Provider:    "gemini",
		MaxTokens:   1048576,
		Description: "Mặc định, nhanh và rẻ",
	},
	"pro": {
		ID:          "gemini-2.5-pro",
		Name:        "Gemini 2.5 Pro",
		Provider:    "gemini",
		MaxTokens:   1048576,
		Description: "Suy luận sâu hơn, chậm hơn",
	},
	"flash-lite": {
		ID:          "gemini-2.5-flash-lite",
		Name:        "Gemini 2.5 Flash-Lite",
		Provider:    "gemini",
		MaxTokens:   1048576,
		Description: "Độ trễ thấp nhất",
	},
	"or-flash": {
		ID:          "google/gemini-2.5-flash",
		Name:        "Gemini 2.5 Flash (OpenRouter)",
		Provider:    "openrouter",
		MaxTokens:   1048576,
		Description: "Gemini qua OpenRouter",
	},
	"qwen2.5": {
		ID:          "qwen2.5:7b",
		Name:        "Qwen 2.5 7B",
		Provider:    "ollama",
		MaxTokens:   32768,
		Description: "Chạy cục bộ, hỗ trợ tiếng Việt khá",
	},
	"llama3.1": {
		ID:          "llama3.1",
		Name:        "Llama 3.1",
		Provider:    "ollama",
		MaxTokens:   128000,
		Description: "Chạy cục bộ",
	},
}

// ContextString returns a formatted context window string.
func (m ModelInfo) ContextString() string {
	if m.MaxTokens >= 1000000 {
		return fmt.Sprintf("%.1fM tokens", float64(m.MaxTokens)/1000000)
	}
	if m.MaxTokens >= 1000 {
		return fmt.Sprintf("%dK tokens", m.MaxTokens/1000)
	}
	return fmt.Sprintf("%d tokens", m.MaxTokens)
}

// =============================================================================
// MODEL LOOKUP FUNCTIONS
// =============================================================================

// GetModelInfo looks up a model by short name or ID.
func GetModelInfo(nameOrID string) (ModelInfo, bool) {
	if info, ok := Models[nameOrID]; ok {
		return info, true
	}
	for _, info := range Models {
		if strings.EqualFold(info.ID, nameOrID) {
			return info, true
		}
	}
	return ModelInfo{}, false
}

// ResolveModelID maps a short name to its API ID. Unknown names pass through.
func ResolveModelID(nameOrID string) string {
	if info, ok := Models[nameOrID]; ok {
		return info.ID
	}
	return nameOrID
}

// GetModelsByProvider returns all registered models for a provider, sorted by ID.
func GetModelsByProvider(provider string) []ModelInfo {
	result := []ModelInfo{}
	for _, info := range Models {
		if strings.EqualFold(info.Provider, provider) {
			result = append(result, info)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}
