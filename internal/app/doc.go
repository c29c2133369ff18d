// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app wires the controllers together.
//
// New constructs the storage backend, API client, authenticator, and each
// controller exactly once. Controllers never reference each other: the
// reactions between them are bus subscriptions registered here.
//
//	a, err := app.New(cfg, app.Deps{})
//	defer a.Close()
//	a.SetView(tui)
//	a.Init(ctx)
package app
