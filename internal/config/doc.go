// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for l8vibe.
//
// # Configuration Precedence
//
// Configuration is loaded from (highest precedence first):
//   - Environment variables (L8VIBE_*), optionally seeded from a .env file
//   - ~/.l8vibe/config.toml (or $L8VIBE_HOME/config.toml)
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    fmt.Fprintf(os.Stderr, "Error: %v\n", err)
//	    os.Exit(1)
//	}
//	ttl := cfg.Session.TTL()
package config
