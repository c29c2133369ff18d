// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Error types and exit codes for l8vibe commands.
//
// Handlers always return errors and let main decide how to display them.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"

	"github.com/jeranaias/l8vibe-tui/internal/api"
	"github.com/jeranaias/l8vibe-tui/internal/auth"
	"github.com/jeranaias/l8vibe-tui/internal/config"
	"github.com/jeranaias/l8vibe-tui/internal/export"
	"github.com/jeranaias/l8vibe-tui/internal/project"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	ExitSuccess       = 0
	ExitGeneralError  = 1
	ExitUsageError    = 2
	ExitConfigError   = 3
	ExitAuthError     = 4
	ExitNetworkError  = 5
	ExitNotFoundError = 7
	ExitTimeoutError  = 8
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// CommandError represents a CLI command failure with context.
type CommandError struct {
	Command string // Command that failed (e.g., "export")
	Reason  string // Human-readable reason
	Err     error  // Underlying error (if any)
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Command, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Command, e.Reason)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ValidationError represents bad user input.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewCommandError creates a CommandError.
func NewCommandError(command, reason string, err error) error {
	return &CommandError{Command: command, Reason: reason, Err: err}
}

// NewValidationError creates a ValidationError.
func NewValidationError(field, value, reason string) error {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}

// ErrMissingArgument reports a required argument that was not given.
func ErrMissingArgument(name, usage string) error {
	return &ValidationError{Field: name, Reason: "required (usage: " + usage + ")"}
}

// ErrNotSignedIn is returned by commands that need a session.
var ErrNotSignedIn = errors.New("not signed in; run 'l8vibe login' first")

// ErrNoProject is returned by commands that need a current project.
var ErrNoProject = errors.New("no current project; create one in the TUI or run 'l8vibe import'")

// =============================================================================
// DISPLAY
// =============================================================================

// DisplayError writes err to w in the "Error: ..." form.
func DisplayError(w io.Writer, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(w, "%s %v\n", ErrorStyle.Render("Error:"), err)
}

// HandleErrorAndExit displays err on stderr and exits with its code.
func HandleErrorAndExit(err error) {
	if err == nil {
		return
	}
	DisplayError(os.Stderr, err)
	os.Exit(GetExitCode(err))
}

// GetExitCode maps an error to a process exit code.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) ||
		errors.Is(err, auth.ErrMissingCredentials) ||
		errors.Is(err, auth.ErrInvalidEmail) {
		return ExitUsageError
	}

	var configErr config.ValidateErrors
	if errors.As(err, &configErr) || errors.Is(err, api.ErrNoBaseURL) {
		return ExitConfigError
	}

	if errors.Is(err, auth.ErrInvalidCredentials) || errors.Is(err, ErrNotSignedIn) {
		return ExitAuthError
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ExitTimeoutError
	}

	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return ExitNetworkError
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return ExitNetworkError
	}

	if errors.Is(err, os.ErrNotExist) || errors.Is(err, ErrNoProject) || errors.Is(err, project.ErrNoProject) {
		return ExitNotFoundError
	}
	if errors.Is(err, export.ErrInvalidFormat) {
		return ExitUsageError
	}

	return ExitGeneralError
}
