// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jeranaias/l8vibe-tui/internal/util"
)

// =============================================================================
// FILE STORE
// =============================================================================

// fileExt is appended to every record file.
const fileExt = ".json"

// maxEscapedLen bounds an escaped key so the file name stays under the
// 255-byte limit of common filesystems.
const maxEscapedLen = 200

// hashedPrefix starts the name of a key too long to escape. escapeKey never
// emits '~', so hashed names cannot collide with escaped ones.
const hashedPrefix = "~"

// FileStore persists each key as <BaseDir>/<escaped key>.json.
type FileStore struct {
	// BaseDir is the directory holding the records.
	// Default: ~/.l8vibe/state/
	BaseDir string
}

// NewFileStore creates a store rooted at baseDir, creating it if needed.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("file store: empty directory")
	}
	// SECURITY: 0700 - the session record lives here.
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("file store: %w", err)
	}
	return &FileStore{BaseDir: baseDir}, nil
}

// Get reads the record for key.
func (s *FileStore) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	data, err := os.ReadFile(s.filePath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// Set writes the record for key.
func (s *FileStore) Set(key string, value []byte) error {
	if key == "" {
		return ErrEmptyKey
	}
	// RELIABILITY: Atomic write with fsync prevents a torn record on crash
	return util.AtomicWriteFile(s.filePath(key), value, 0600)
}

// Delete removes the record for key.
func (s *FileStore) Delete(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if err := os.Remove(s.filePath(key)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Keys lists stored keys starting with prefix.
func (s *FileStore) Keys(prefix string) ([]string, error) {
	entries, err := os.ReadDir(s.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}

	keys := []string{}
	for _, entry := range entries {
		key, ok := keyFromFileName(entry.Name())
		if entry.IsDir() || !ok {
			continue
		}
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Close is a no-op for the file store.
func (s *FileStore) Close() error { return nil }

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func (s *FileStore) filePath(key string) string {
	return filepath.Join(s.BaseDir, fileName(key)+fileExt)
}

// fileName maps a key to its record file name without the extension. Keys
// whose escaped form exceeds maxEscapedLen are named by their SHA-256 and
// are not reported by Keys.
func fileName(key string) string {
	escaped := escapeKey(key)
	if len(escaped) <= maxEscapedLen {
		return escaped
	}
	sum := sha256.Sum256([]byte(key))
	return hashedPrefix + hex.EncodeToString(sum[:])
}

// escapeKey maps a key to a safe file name. Letters, digits, '_', '-' and
// '.' pass through; every other byte becomes %XX.
func escapeKey(key string) string {
	var sb strings.Builder
	for i := 0; i < len(key); i++ {
		c := key[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9',
			c == '_', c == '-':
			sb.WriteByte(c)
		case c == '.' && i > 0:
			sb.WriteByte(c)
		default:
			fmt.Fprintf(&sb, "%%%02X", c)
		}
	}
	return sb.String()
}

// keyFromFileName reverses escapeKey. Temp files, hashed names and foreign
// files are rejected.
func keyFromFileName(name string) (string, bool) {
	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, hashedPrefix) || !strings.HasSuffix(name, fileExt) {
		return "", false
	}
	key, err := url.PathUnescape(strings.TrimSuffix(name, fileExt))
	if err != nil || key == "" {
		return "", false
	}
	return key, true
}
