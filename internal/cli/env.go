// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// env.go - Config, logging and application bootstrap shared by commands.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jeranaias/l8vibe-tui/internal/app"
	"github.com/jeranaias/l8vibe-tui/internal/config"
	"github.com/jeranaias/l8vibe-tui/internal/logging"
)

// LoadConfig reads the config named by --config (or the default path) and
// applies --server.
func LoadConfig(args Args) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if args.ConfigPath != "" {
		cfg, err = config.LoadFromPath(args.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if args.Server != "" {
		cfg.Server.URL = args.Server
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
	}

	config.SetGlobal(cfg)
	return cfg, nil
}

// appOptions selects what a command needs from the application.
type appOptions struct {
	// watch follows storage changes made by other l8vibe processes.
	watch bool
	// view receives controller output; nil means none.
	view app.View
}

// openApp loads config, opens the log file, and builds the application.
// The returned close function persists state and releases everything.
func openApp(args Args, opts appOptions) (*app.App, func() error, error) {
	cfg, err := LoadConfig(args)
	if err != nil {
		return nil, nil, err
	}
	if !opts.watch {
		cfg.Storage.Watch = false
	}

	logger, logFile, err := logging.Setup(cfg.LogPath(), cfg.Log.Level, args.Verbose)
	if err != nil {
		// Logging is best effort; the client still works without a log file.
		fmt.Fprintf(os.Stderr, "%s %v\n", WarningStyle.Render("Warning:"), err)
		logger, logFile = logging.Discard(), io.NopCloser(nil)
	}

	a, err := app.New(cfg, app.Deps{Logger: logger, View: opts.view})
	if err != nil {
		logFile.Close()
		return nil, nil, err
	}

	closeApp := func() error {
		err := a.Close()
		if err != nil {
			logger.Error("shutdown", "error", err)
		}
		logFile.Close()
		return err
	}
	return a, closeApp, nil
}

// withApp runs fn against an initialized application and closes it after.
// Background work started by Init is cancelled when fn returns.
func withApp(ctx context.Context, args Args, view app.View, fn func(ctx context.Context, a *app.App) error) error {
	a, closeApp, err := openApp(args, appOptions{view: view})
	if err != nil {
		return err
	}

	initCtx, cancelInit := context.WithCancel(ctx)
	a.Init(initCtx)
	runErr := fn(ctx, a)
	cancelInit()

	return errors.Join(runErr, closeApp())
}

// requireSession fails with ErrNotSignedIn unless a session was restored.
func requireSession(a *app.App) error {
	if !a.Auth.IsAuthenticated() {
		return ErrNotSignedIn
	}
	return nil
}
