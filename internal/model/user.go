// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// User is the signed-in identity.
type User struct {
	Email       string `json:"email"`
	DisplayName string `json:"name"`
}

// NewUser builds a User whose display name is derived from the email.
func NewUser(email string) User {
	return User{Email: email, DisplayName: DisplayNameFromEmail(email)}
}

// DisplayNameFromEmail returns the local part of email with its first letter
// upper-cased: "jane.doe@example.com" -> "Jane.doe".
func DisplayNameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	if local == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(local)
	return string(unicode.ToUpper(r)) + local[size:]
}

// Session is persisted proof of authentication.
type Session struct {
	User            User
	AuthenticatedAt time.Time
	// Token is set when a remote authenticator issued one.
	Token string
}

// Age returns how long ago the session was created.
func (s Session) Age(now time.Time) time.Duration {
	return now.Sub(s.AuthenticatedAt)
}
