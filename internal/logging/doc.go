// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging configures the process-wide slog logger.
//
// The terminal owns stdout while the TUI runs, so diagnostics go to a log
// file (default ~/.l8vibe/l8vibe.log). Secrets are never logged; use
// Fingerprint to correlate API keys across lines.
package logging
