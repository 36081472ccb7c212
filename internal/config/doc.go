// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for nguvan.
//
// Configuration is TOML, with defaults for every key, environment variable
// overrides and validation. There is no process-wide instance: callers load a
// *Config once and pass it down.
//
// # Configuration Precedence
//
//   - Environment variables (NGUVAN_*)
//   - --config PATH, or ~/.nguvan/config.toml
//   - Built-in defaults
//
// API keys never live in the file. [gemini].api_key_env and
// [openrouter].api_key_env name the environment variables to read.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	model := cfg.ActiveModel()
package config
