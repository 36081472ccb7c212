// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the chat TUI.

# Color System (colors.go)

All colors are Lip Gloss AdaptiveColor values, so one palette serves light
and dark terminals:

	Teal    - Brand color, header title, user label
	Violet  - Assistant label and bubble border
	Rose    - Errors and the apology bubble
	Amber   - Hints such as "đang trả lời..."

# Theme System (theme.go)

	theme := styles.NewTheme("auto")
	theme.SetSize(width, height)
	header := theme.Header.Render(persona.Title)

NewTheme("dark") and NewTheme("light") force the background instead of
asking the terminal. GlamourStyle returns the matching markdown style name.

# Spinners (spinner.go)

Spinner returns a bubbles spinner built from ASCII-safe frames.
*/
package styles
