// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui is the l8vibe terminal user interface.
//
// Model is a Bubble Tea model over an *app.App. ProgramView implements
// app.View by queueing tea messages for the running program, so controllers
// may call it from any goroutine, including from inside Update.
//
// # Screens
//
//   - marketing: product pitch, sign-in form, and a projects menu once
//     signed in
//   - project-creation: name, description and API key form
//   - workspace: transcript, chat input, preview pane and project stats
//
// # Usage
//
//	err := ui.Run(ctx, application, ui.Options{Theme: styles.NewTheme("auto")})
package ui
