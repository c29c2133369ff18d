// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the rendering pieces the l8vibe TUI composes
// into screens.
//
//   - Toasts: auto-dismissing notices stacked in the bottom-right corner
//   - Header: brand, signed-in user and current project
//   - MessageRenderer: transcript entries, assistant replies through glamour
//   - Preview: the preview pane, HTML highlighted with chroma
//   - StatusBar: project stats and key hints
//
// Components render strings; state lives in the controllers and the ui
// package.
package components
