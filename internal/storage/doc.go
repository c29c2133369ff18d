// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the persisted key/value store behind the client's
// session, current-project cache, and chat transcripts.
//
// # Backends
//
//   - FileStore: one JSON file per key under a directory (default).
//     Supports change watching via fsnotify.
//   - SQLiteStore: a single kv table in a modernc.org/sqlite database.
//   - RedisStore: keys namespaced by a prefix in a shared redis.
//   - MemoryStore: process-local, for tests and headless commands.
//
// # Usage
//
//	store, err := storage.Open(storage.Options{Backend: "file", Dir: dir})
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	err = storage.SetJSON(store, storage.KeyAuth, record)
//	found, err := storage.GetJSON(store, storage.KeyAuth, &record)
package storage
