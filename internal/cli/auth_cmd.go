// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// auth_cmd.go - Sign in and sign out from the command line.
//
// Command: login [--email E]
// Command: logout
//
// The password is read without echo when stdin is a terminal, otherwise
// as the first line of stdin so scripts can pipe it in.

package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/jeranaias/l8vibe-tui/internal/app"
)

// HandleLogin handles the "login" command.
func HandleLogin(args Args) error {
	view := newLineView(os.Stdout)
	return withApp(context.Background(), args, view, func(ctx context.Context, a *app.App) error {
		if user, ok := a.Auth.CurrentUser(); ok {
			fmt.Printf("Already signed in as %s (%s). Run 'l8vibe logout' first to switch accounts.\n",
				user.DisplayName, user.Email)
			return nil
		}

		in := bufio.NewReader(os.Stdin)
		email := strings.TrimSpace(args.Email)
		if email == "" {
			var err error
			if email, err = promptLine(in, os.Stdout, "Email: "); err != nil {
				return err
			}
		}
		password, err := readPassword(in, os.Stdout, "Password: ")
		if err != nil {
			return err
		}
		return login(ctx, a, email, password)
	})
}

// login signs in with a timeout. Notices reach the user through the view.
func login(ctx context.Context, a *app.App, email, password string) error {
	ctx, cancel := context.WithTimeout(ctx, a.Config().HTTPTimeout())
	defer cancel()
	if err := a.Auth.Login(ctx, email, password); err != nil {
		return NewCommandError("login", "sign-in failed", err)
	}
	return nil
}

// HandleLogout handles the "logout" command.
func HandleLogout(args Args) error {
	view := newLineView(os.Stdout)
	return withApp(context.Background(), args, view, func(_ context.Context, a *app.App) error {
		return logout(os.Stdout, a)
	})
}

func logout(w io.Writer, a *app.App) error {
	if !a.Auth.IsAuthenticated() {
		fmt.Fprintln(w, DimStyle.Render("Not signed in."))
		return nil
	}
	return a.Auth.Logout()
}

// =============================================================================
// PROMPTS
// =============================================================================

// promptLine prints prompt and reads one trimmed line from in.
func promptLine(in *bufio.Reader, out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	line, err := in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// readPassword reads a password without echo from a terminal, or a plain
// line from in otherwise.
func readPassword(in *bufio.Reader, out io.Writer, prompt string) (string, error) {
	if !IsTTY() {
		return promptLine(in, io.Discard, prompt)
	}
	fmt.Fprint(out, prompt)
	data, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(data), nil
}
