// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the nguvan command line.
//
// The root command opens the full-screen chat. Subcommands:
//
//	ask     one question, answer streamed to stdout
//	chat    line-mode conversation with history
//	config  show, init, get, set, keys, path
//
// Persistent flags --config, --provider, --model and --debug apply to all of
// them. Every command loads its own config and builds its own controller; no
// state is shared through package variables.
package cli
