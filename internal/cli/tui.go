// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/jeranaias/l8vibe-tui/internal/ui"
)

// HandleTUI starts the terminal UI. Ctrl+C is handled by the UI itself;
// SIGTERM ends it.
func HandleTUI(args Args) error {
	if !IsTTY() || !IsStdoutTTY() {
		return &TTYRequiredError{Operation: "run the terminal UI"}
	}

	a, closeApp, err := openApp(args, appOptions{watch: true})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	exportDir, err := os.Getwd()
	if err != nil {
		exportDir = "."
	}

	runErr := ui.Run(ctx, a, ui.Options{ExportDir: exportDir})
	return errors.Join(runErr, closeApp())
}
