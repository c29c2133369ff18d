// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli parses the l8vibe command line and runs its commands.
//
// With no arguments l8vibe starts the terminal UI. The other commands work
// on the same persisted state without it:
//
//   - chat: line-mode chat on the cached project
//   - login, logout: manage the saved session
//   - status: session and project summary (--json for scripts)
//   - projects: list the signed-in user's projects
//   - export, import: move a project in and out of JSON, Markdown or HTML
//
// Usage:
//
//	cmd, args := cli.Parse(os.Args[1:])
//	switch cmd {
//	case cli.CmdTUI:
//	    err = cli.HandleTUI(args)
//	case cli.CmdChat:
//	    err = cli.HandleChat(args)
//	// ...
//	}
//
// Handlers return errors; main prints them and exits with GetExitCode.
package cli
