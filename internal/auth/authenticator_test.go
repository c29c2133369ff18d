// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jeranaias/l8vibe-tui/internal/api"
	"github.com/jeranaias/l8vibe-tui/internal/api/apitest"
	"github.com/jeranaias/l8vibe-tui/internal/logging"
)

func TestAcceptAll(t *testing.T) {
	id, err := AcceptAll{}.Authenticate(context.Background(), "bob@example.com", "x")
	require.NoError(t, err)
	require.Equal(t, "Bob", id.User.DisplayName)

	_, err = AcceptAll{}.Authenticate(context.Background(), "bob@example.com", "")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func writeCredentials(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "users.toml")
	content := "[[user]]\nemail = \"Ada@Example.com\"\nname = \"Ada Lovelace\"\npassword_hash = \"" + string(hash) + "\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestCredentials(t *testing.T) {
	creds, err := LoadCredentials(writeCredentials(t, "engine"))
	require.NoError(t, err)

	id, err := creds.Authenticate(context.Background(), "ada@example.com", "engine")
	require.NoError(t, err)
	require.Equal(t, "Ada Lovelace", id.User.DisplayName)
	require.Equal(t, "ada@example.com", id.User.Email)

	_, err = creds.Authenticate(context.Background(), "ada@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = creds.Authenticate(context.Background(), "nobody@example.com", "engine")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoadCredentials_Errors(t *testing.T) {
	_, err := LoadCredentials(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[[user]]\nemail = \"a@b.co\"\n"), 0600))
	_, err = LoadCredentials(path)
	require.Error(t, err)
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("engine")
	require.NoError(t, err)
	creds := NewCredentials([]CredentialEntry{{Email: "a@b.co", PasswordHash: hash}})
	_, err = creds.Authenticate(context.Background(), "a@b.co", "engine")
	require.NoError(t, err)
}

func TestRemote(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()
	srv.AddUser("ada@example.com", "engine", "Countess Ada")

	client := api.NewClient(srv.URL).WithHTTPClient(srv.Client()).WithLogger(logging.Discard())
	remote := NewRemote(client, apitest.AuthPath)

	id, err := remote.Authenticate(context.Background(), "ada@example.com", "engine")
	require.NoError(t, err)
	require.Equal(t, "Countess Ada", id.User.DisplayName)
	require.NotEmpty(t, id.Token)

	_, err = remote.Authenticate(context.Background(), "ada@example.com", "nope")
	require.True(t, errors.Is(err, ErrInvalidCredentials), "err = %v", err)
}

func TestDisplayNameFromToken(t *testing.T) {
	require.Equal(t, "", displayNameFromToken("not-a-jwt"))
}
