// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides text and file helpers shared by the CLI and the TUI.
//
// # Key Functions
//
//   - NormalizeInput: NFC-normalize and trim user text before it is sent
//   - TruncateWidth: cell-width aware truncation for status lines
//   - AtomicWriteFile: crash-safe file writing with fsync
package util
