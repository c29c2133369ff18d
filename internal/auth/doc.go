// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth owns the signed-in state of the client.
//
// Controller validates input, delegates the credential check to an
// Authenticator, persists the session through session.Store, and announces
// changes on the event bus. Three authenticators are provided:
//
//   - AcceptAll: any well-formed email with a non-empty password (demo mode)
//   - Credentials: bcrypt hashes from a TOML user file
//   - Remote: the backend login endpoint, which issues a JWT
package auth
