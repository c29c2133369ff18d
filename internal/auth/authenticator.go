// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/jeranaias/l8vibe-tui/internal/api"
	"github.com/jeranaias/l8vibe-tui/internal/model"
)

// ErrInvalidCredentials is returned when an authenticator rejects the pair.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Identity is the result of a successful credential check.
type Identity struct {
	User  model.User
	Token string
}

// Authenticator checks an email/password pair.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (Identity, error)
}

// =============================================================================
// ACCEPT ALL
// =============================================================================

// AcceptAll accepts every non-empty pair.
type AcceptAll struct{}

// Authenticate implements Authenticator.
func (AcceptAll) Authenticate(ctx context.Context, email, password string) (Identity, error) {
	if err := ctx.Err(); err != nil {
		return Identity{}, err
	}
	if email == "" || password == "" {
		return Identity{}, ErrInvalidCredentials
	}
	return Identity{User: model.NewUser(email)}, nil
}

// =============================================================================
// CREDENTIALS FILE
// =============================================================================

// CredentialEntry is one [[user]] table of a credentials file.
type CredentialEntry struct {
	Email        string `toml:"email"`
	Name         string `toml:"name"`
	PasswordHash string `toml:"password_hash"`
}

type credentialsFile struct {
	Users []CredentialEntry `toml:"user"`
}

// Credentials checks passwords against bcrypt hashes.
type Credentials struct {
	users map[string]CredentialEntry
}

// NewCredentials builds an authenticator from entries. Emails match
// case-insensitively.
func NewCredentials(entries []CredentialEntry) *Credentials {
	c := &Credentials{users: make(map[string]CredentialEntry, len(entries))}
	for _, e := range entries {
		c.users[strings.ToLower(e.Email)] = e
	}
	return c
}

// LoadCredentials reads a TOML credentials file:
//
//	[[user]]
//	email = "ada@example.com"
//	name = "Ada"
//	password_hash = "$2a$10$..."
func LoadCredentials(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}
	var f credentialsFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode credentials file %s: %w", path, err)
	}
	for i, u := range f.Users {
		if u.Email == "" || u.PasswordHash == "" {
			return nil, fmt.Errorf("credentials file %s: user %d needs email and password_hash", path, i+1)
		}
	}
	return NewCredentials(f.Users), nil
}

// Authenticate implements Authenticator.
func (c *Credentials) Authenticate(ctx context.Context, email, password string) (Identity, error) {
	if err := ctx.Err(); err != nil {
		return Identity{}, err
	}
	entry, ok := c.users[strings.ToLower(email)]
	if !ok {
		// Spend the same time as a real comparison.
		bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return Identity{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(entry.PasswordHash), []byte(password)); err != nil {
		return Identity{}, ErrInvalidCredentials
	}

	user := model.NewUser(email)
	if entry.Name != "" {
		user.DisplayName = entry.Name
	}
	return Identity{User: user}, nil
}

// HashPassword returns a bcrypt hash suitable for a credentials file.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// dummyHash is compared against for unknown emails.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("l8vibe-dummy"), bcrypt.MinCost)

// =============================================================================
// REMOTE
// =============================================================================

// Remote authenticates against the backend login endpoint.
type Remote struct {
	client   *api.Client
	authPath string
}

// NewRemote creates a remote authenticator posting to authPath on client's
// server.
func NewRemote(client *api.Client, authPath string) *Remote {
	return &Remote{client: client, authPath: authPath}
}

// Authenticate implements Authenticator.
func (r *Remote) Authenticate(ctx context.Context, email, password string) (Identity, error) {
	token, err := r.client.Login(ctx, r.authPath, email, password)
	if err != nil {
		switch api.StatusCode(err) {
		case http.StatusUnauthorized, http.StatusForbidden:
			return Identity{}, ErrInvalidCredentials
		}
		return Identity{}, fmt.Errorf("remote login: %w", err)
	}

	user := model.NewUser(email)
	if name := displayNameFromToken(token); name != "" {
		user.DisplayName = name
	}
	return Identity{User: user, Token: token}, nil
}

// displayNameFromToken reads the "name" claim. The signature is the
// server's concern; the client only uses the claim for display.
func displayNameFromToken(token string) string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	name, _ := claims["name"].(string)
	return strings.TrimSpace(name)
}
