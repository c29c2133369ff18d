// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
)

// =============================================================================
// KEYS
// =============================================================================

const (
	// KeyAuth holds the serialized session record.
	KeyAuth = "l8vibe_auth"

	// KeyCurrentProject holds the cached current-project snapshot.
	KeyCurrentProject = "l8vibe_current_project"

	// ChatKeyPrefix prefixes per-project transcript keys.
	ChatKeyPrefix = "l8vibe_chat_"
)

// ChatKey returns the transcript key for a project id.
func ChatKey(projectID string) string {
	return ChatKeyPrefix + projectID
}

// =============================================================================
// STORE INTERFACE
// =============================================================================

// Store is a persisted string-keyed byte store.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(key string, value []byte) error

	// Delete removes key. Removing a missing key is not an error.
	Delete(key string) error

	// Keys lists the stored keys that start with prefix, sorted.
	Keys(prefix string) ([]string, error)

	// Close releases backend resources.
	Close() error
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrNotFound is returned by Get when a key has no value.
// Use errors.Is(err, ErrNotFound) to check for this error.
var ErrNotFound = &StoreError{Message: "key not found"}

// ErrEmptyKey is returned when an operation is given an empty key.
var ErrEmptyKey = &StoreError{Message: "empty key"}

// StoreError represents a storage-level error.
type StoreError struct {
	Message string
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return e.Message
}

// Is implements errors.Is support for comparing store errors.
func (e *StoreError) Is(target error) bool {
	t, ok := target.(*StoreError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

// =============================================================================
// JSON HELPERS
// =============================================================================

// GetJSON decodes the value at key into v. It reports false with a nil error
// when the key is absent.
func GetJSON(s Store, key string, v any) (bool, error) {
	data, err := s.Get(key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return true, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(key, data)
}

// =============================================================================
// FACTORY
// =============================================================================

// Options selects and configures a backend.
type Options struct {
	// Backend is "file", "sqlite", "redis", or "memory".
	Backend string
	// Dir is the file backend's directory and the sqlite database's parent.
	Dir string

	RedisAddr   string
	RedisDB     int
	RedisPrefix string
}

// Open constructs the backend named by opts.Backend.
func Open(opts Options) (Store, error) {
	switch opts.Backend {
	case "", "file":
		return NewFileStore(opts.Dir)
	case "sqlite":
		return NewSQLiteStore(filepath.Join(opts.Dir, "l8vibe.db"))
	case "redis":
		return NewRedisStore(opts.RedisAddr, opts.RedisDB, opts.RedisPrefix)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}
