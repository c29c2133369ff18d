// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session persists the signed-in user and enforces the session TTL.
//
// The record lives under storage.KeyAuth as
//
//	{"user":{"email":"...","name":"..."},"authenticated":true,"timestamp":<unix ms>}
//
// A record is valid while now - timestamp < TTL (default 24 hours). Missing,
// malformed, or expired records all read as "no session"; callers never see
// a decode error.
//
// # Key Types
//
//   - Store: Save/Load/Clear/Valid over a storage.Store
//   - TickMsg, ExpiryWarningMsg, ExpiredMsg: Bubble Tea messages for
//     sessions that run out while the program is open
//
// # Usage
//
//	st := session.NewStore(kv, 24*time.Hour)
//	if sess, ok := st.Valid(time.Now()); ok {
//	    // restore sess.User
//	}
package session
