// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func waitForChange(t *testing.T, ch <-chan Change, want Change) {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case got := <-ch:
			if got == want {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %+v", want)
		}
	}
}

func TestWatcher_ReportsWriteAndRemove(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	changes := make(chan Change, 16)
	w, err := s.Watch(20*time.Millisecond, func(c Change) { changes <- c })
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer w.Close()

	// A second store on the same directory plays the other process.
	other, _ := NewFileStore(dir)

	if err := other.Set(KeyAuth, []byte("{}")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	waitForChange(t, changes, Change{Key: KeyAuth, Op: OpWritten})

	if err := other.Delete(KeyAuth); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	waitForChange(t, changes, Change{Key: KeyAuth, Op: OpRemoved})
}

func TestWatcher_IgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	s, _ := NewFileStore(dir)

	changes := make(chan Change, 16)
	w, err := s.Watch(20*time.Millisecond, func(c Change) { changes <- c })
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer w.Close()

	os.WriteFile(filepath.Join(dir, "README.txt"), []byte("x"), 0600)

	select {
	case c := <-changes:
		t.Errorf("unexpected change %+v", c)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestChangeOp_String(t *testing.T) {
	if OpWritten.String() != "written" || OpRemoved.String() != "removed" {
		t.Errorf("unexpected op names: %s %s", OpWritten, OpRemoved)
	}
}
