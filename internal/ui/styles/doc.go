// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the l8vibe TUI.

All colors are Lip Gloss AdaptiveColor values so one palette serves light and
dark terminals. The Theme bundles the styles each screen uses and records the
capabilities termenv detected.

# Color System (colors.go)

  - Purple - brand and assistant messages
  - Cyan - user messages and focused inputs
  - Emerald, Rose, Amber - success, error and pending states

# Theme (theme.go)

	theme := styles.NewTheme(cfg.UI.Theme) // "auto", "dark" or "light"
	fmt.Println(theme.Brand.Render("L8Vibe"))

"auto" asks the terminal for its background; "dark" and "light" force the
adaptive colors one way.
*/
package styles
