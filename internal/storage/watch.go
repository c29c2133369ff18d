// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// CHANGE EVENTS
// =============================================================================

// ChangeOp describes what happened to a key.
type ChangeOp int

const (
	// OpWritten means the key now has a (possibly new) value.
	OpWritten ChangeOp = iota
	// OpRemoved means the key no longer exists.
	OpRemoved
)

// String returns a readable name for the op.
func (o ChangeOp) String() string {
	if o == OpRemoved {
		return "removed"
	}
	return "written"
}

// Change is a settled modification of one key.
type Change struct {
	Key string
	Op  ChangeOp
}

// =============================================================================
// WATCHER
// =============================================================================

// Watcher reports changes made to a FileStore, including those made by other
// processes. Bursts of events on a key are coalesced over the debounce window
// and reported once with the key's final state.
type Watcher struct {
	store    *FileStore
	watcher  *fsnotify.Watcher
	debounce time.Duration
	onChange func(Change)

	mu      sync.Mutex
	pending map[string]time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Watch starts watching the store directory. onChange is invoked from the
// watcher goroutine.
func (s *FileStore) Watch(debounce time.Duration, onChange func(Change)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(s.BaseDir); err != nil {
		fsw.Close()
		return nil, err
	}
	if debounce <= 0 {
		debounce = 50 * time.Millisecond
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		store:    s,
		watcher:  fsw,
		debounce: debounce,
		onChange: onChange,
		pending:  make(map[string]time.Time),
		ctx:      ctx,
		cancel:   cancel,
	}

	w.wg.Add(2)
	go w.processEvents()
	go w.processPending()
	return w, nil
}

// processEvents records raw fsnotify events as pending keys.
func (w *Watcher) processEvents() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			key, ok := keyFromFileName(filepath.Base(event.Name))
			if !ok {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.mu.Lock()
			w.pending[key] = time.Now()
			w.mu.Unlock()

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Non-fatal; the next event resynchronises state.
		}
	}
}

// processPending flushes keys whose last event is older than the debounce
// window.
func (w *Watcher) processPending() {
	defer w.wg.Done()
	tick := w.debounce / 2
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return

		case <-ticker.C:
			now := time.Now()

			w.mu.Lock()
			var ready []string
			for key, at := range w.pending {
				if now.Sub(at) >= w.debounce {
					ready = append(ready, key)
					delete(w.pending, key)
				}
			}
			w.mu.Unlock()

			for _, key := range ready {
				op := OpWritten
				if _, err := os.Stat(w.store.filePath(key)); os.IsNotExist(err) {
					op = OpRemoved
				}
				if w.onChange != nil {
					w.onChange(Change{Key: key, Op: op})
				}
			}
		}
	}
}

// Close stops watching and waits for the watcher goroutines to exit.
func (w *Watcher) Close() error {
	w.cancel()
	err := w.watcher.Close()
	w.wg.Wait()
	return err
}
