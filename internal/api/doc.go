// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api is the HTTP client for the l8vibe project backend.
//
// All calls go to a single collection endpoint (default /l8vibe/0/proj):
//
//	POST  {name, description, user, apiKey}           create a project
//	GET   ?body=<declarative query JSON>              list a user's projects
//	PATCH {..., messages:[{role:"user",content}]}     send one chat turn
//
// Non-2xx responses surface as *Error. Response bodies are capped at
// MaxResponseSize.
package api
