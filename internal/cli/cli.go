// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Command parsing, usage and version for l8vibe.

package cli

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdChat
	CmdLogin
	CmdLogout
	CmdStatus
	CmdProjects
	CmdExport
	CmdImport
	CmdVersion
	CmdHelp
)

var commandNames = map[string]Command{
	"tui":      CmdTUI,
	"chat":     CmdChat,
	"login":    CmdLogin,
	"logout":   CmdLogout,
	"status":   CmdStatus,
	"s":        CmdStatus,
	"projects": CmdProjects,
	"ls":       CmdProjects,
	"export":   CmdExport,
	"import":   CmdImport,
	"version":  CmdVersion,
	"help":     CmdHelp,
}

// switches never take a value.
var switches = []string{"verbose", "v", "json", "help", "h", "version"}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	ConfigPath string // --config PATH
	Server     string // --server URL
	Verbose    bool   // --verbose, -v
	JSON       bool   // --json

	// Command-specific
	Email  string // login --email
	Dir    string // export --dir
	Format string // export --format
	File   string // import FILE

	// Unknown is the unrecognized command name, if any.
	Unknown string

	// Raw holds the positionals after the command name.
	Raw []string
}

const usageText = `l8vibe - build web apps by chatting with an AI assistant

Usage:
  l8vibe [tui]                 Start the terminal UI (default)
  l8vibe chat                  Line-mode chat on the current project
  l8vibe login [--email E]     Sign in (password is prompted)
  l8vibe logout                Clear the saved session
  l8vibe status [--json]       Show session and project summary
  l8vibe projects              List your projects on the server
  l8vibe export [--dir D] [--format json|md|html]
                               Export the current project
  l8vibe import FILE           Import a project export and make it current
  l8vibe version               Show version information
  l8vibe help                  Show this help

Global flags:
  --config PATH                Config file (default ~/.l8vibe/config.toml)
  --server URL                 Backend URL (overrides server.url)
  -v, --verbose                Mirror log output to stderr

TUI keys:
  Enter submit   Tab next field   Ctrl+N new project   Ctrl+P cycle preview
  Ctrl+R refresh projects   Ctrl+X sign out   Esc dismiss   Ctrl+C quit

Version: %s
`

// PrintUsage writes the help text to w.
func PrintUsage(w io.Writer) {
	fmt.Fprintf(w, usageText, Version)
}

// PrintVersion writes version information to w.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "l8vibe version %s\n", Version)
	fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  Build date: %s\n", BuildDate)
	fmt.Fprintf(w, "  Go:         %s\n", runtime.Version())
}

// =============================================================================
// PARSING
// =============================================================================

// Parse parses argv (without the program name) into a command and args.
// Flags may appear before or after the command.
func Parse(argv []string) (Command, Args) {
	p := NewArgParser(argv, switches...)

	args := Args{
		ConfigPath: p.Flag("config"),
		Server:     p.Flag("server"),
		Verbose:    p.BoolFlag("verbose") || p.BoolFlag("v"),
		JSON:       p.BoolFlag("json"),
		Email:      p.FirstFlag("email", "e"),
		Dir:        p.FirstFlag("dir", "d", "output", "o"),
		Format:     p.FirstFlag("format", "f"),
	}

	if p.BoolFlag("help") || p.BoolFlag("h") {
		return CmdHelp, args
	}
	if p.BoolFlag("version") {
		return CmdVersion, args
	}
	if p.PositionalCount() == 0 {
		return CmdTUI, args
	}

	name := strings.ToLower(p.Positional(0))
	args.Raw = p.PositionalFrom(1)

	cmd, ok := commandNames[name]
	if !ok {
		args.Unknown = name
		return CmdHelp, args
	}

	switch cmd {
	case CmdLogin:
		if args.Email == "" {
			args.Email = p.Positional(1)
		}
	case CmdExport:
		if args.Format == "" {
			args.Format = p.Positional(1)
		}
	case CmdImport:
		args.File = p.Positional(1)
	}
	return cmd, args
}

// =============================================================================
// COMMAND HANDLERS
// =============================================================================

// HandleVersion handles the "version" command.
func HandleVersion(args Args) error {
	if args.JSON {
		return NewJSONResponse("version", VersionData{
			Version:   Version,
			GitCommit: GitCommit,
			BuildDate: BuildDate,
			GoVersion: runtime.Version(),
		}).Write(os.Stdout)
	}
	PrintVersion(os.Stdout)
	return nil
}

// HandleHelp handles "help" and unknown commands.
func HandleHelp(args Args) error {
	if args.Unknown != "" {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", args.Unknown)
		PrintUsage(os.Stderr)
		return NewValidationError("command", args.Unknown, "unknown command")
	}
	PrintUsage(os.Stdout)
	return nil
}
