// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jeranaias/l8vibe-tui/internal/logging"
	"github.com/jeranaias/l8vibe-tui/internal/model"
	"github.com/jeranaias/l8vibe-tui/internal/storage"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestStore() (*Store, *storage.MemoryStore) {
	kv := storage.NewMemoryStore()
	return NewStore(kv, DefaultTTL).WithLogger(logging.Discard()), kv
}

func testSession(at time.Time) model.Session {
	return model.Session{User: model.NewUser("ada@example.com"), AuthenticatedAt: at}
}

// =============================================================================
// SAVE / LOAD TESTS
// =============================================================================

func TestStore_SaveLoad(t *testing.T) {
	st, kv := newTestStore()

	if err := st.Save(testSession(t0)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, ok := st.Load()
	if !ok {
		t.Fatal("Load returned no session")
	}
	if got.User.Email != "ada@example.com" || got.User.DisplayName != "Ada" {
		t.Errorf("user = %+v", got.User)
	}
	if !got.AuthenticatedAt.Equal(t0) {
		t.Errorf("AuthenticatedAt = %v, want %v", got.AuthenticatedAt, t0)
	}

	raw, _ := kv.Get(storage.KeyAuth)
	var wire map[string]any
	if err := json.Unmarshal(raw, &wire); err != nil {
		t.Fatalf("stored record is not JSON: %v", err)
	}
	if wire["authenticated"] != true {
		t.Errorf("authenticated = %v, want true", wire["authenticated"])
	}
	if ts, _ := wire["timestamp"].(float64); int64(ts) != t0.UnixMilli() {
		t.Errorf("timestamp = %v, want %d", wire["timestamp"], t0.UnixMilli())
	}
	user, _ := wire["user"].(map[string]any)
	if user["email"] != "ada@example.com" || user["name"] != "Ada" {
		t.Errorf("user = %v", user)
	}
}

func TestStore_LoadDegradesToAbsent(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"malformed", "{not json"},
		{"not authenticated", `{"user":{"email":"a@b.co","name":"A"},"authenticated":false,"timestamp":1}`},
		{"no email", `{"user":{"name":"A"},"authenticated":true,"timestamp":1}`},
		{"wrong shape", `[1,2,3]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, kv := newTestStore()
			kv.Set(storage.KeyAuth, []byte(tt.raw))
			if _, ok := st.Load(); ok {
				t.Errorf("Load(%s) should report no session", tt.raw)
			}
		})
	}
}

func TestStore_Clear(t *testing.T) {
	st, kv := newTestStore()
	st.Save(testSession(t0))

	if err := st.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := kv.Get(storage.KeyAuth); err == nil {
		t.Error("record still present after Clear")
	}
	if _, ok := st.Load(); ok {
		t.Error("Load after Clear should report no session")
	}
}

// =============================================================================
// EXPIRY TESTS
// =============================================================================

func TestStore_IsExpired(t *testing.T) {
	st, _ := newTestStore()
	sess := testSession(t0)

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"fresh", t0, false},
		{"one ms short", t0.Add(24*time.Hour - time.Millisecond), false},
		{"exactly ttl", t0.Add(24 * time.Hour), true},
		{"past ttl", t0.Add(25 * time.Hour), true},
	}
	for _, tt := range tests {
		if got := st.IsExpired(sess, tt.now); got != tt.want {
			t.Errorf("%s: IsExpired = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestStore_Valid(t *testing.T) {
	st, _ := newTestStore()
	st.Save(testSession(t0))

	if _, ok := st.Valid(t0.Add(time.Hour)); !ok {
		t.Error("session should be valid after 1h")
	}
	if _, ok := st.Valid(t0.Add(24 * time.Hour)); ok {
		t.Error("session should be expired after 24h")
	}
}

func TestStore_CustomTTL(t *testing.T) {
	st := NewStore(storage.NewMemoryStore(), 2*time.Hour)
	if st.TTL() != 2*time.Hour {
		t.Errorf("TTL = %v", st.TTL())
	}
	if !st.IsExpired(testSession(t0), t0.Add(2*time.Hour)) {
		t.Error("expected expiry at custom TTL")
	}
	if NewStore(storage.NewMemoryStore(), 0).TTL() != DefaultTTL {
		t.Error("zero ttl should select DefaultTTL")
	}
}

// =============================================================================
// TICK TESTS
// =============================================================================

func TestStore_HandleTick(t *testing.T) {
	st, _ := newTestStore()
	sess := testSession(t0)

	if msg := st.HandleTick(sess, t0.Add(time.Hour)); msg != nil {
		t.Errorf("early tick = %#v, want nil", msg)
	}

	msg := st.HandleTick(sess, t0.Add(24*time.Hour-2*time.Minute))
	warn, ok := msg.(ExpiryWarningMsg)
	if !ok {
		t.Fatalf("tick in warning window = %#v, want ExpiryWarningMsg", msg)
	}
	if warn.Remaining != 2*time.Minute {
		t.Errorf("Remaining = %v, want 2m", warn.Remaining)
	}

	if _, ok := st.HandleTick(sess, t0.Add(24*time.Hour)).(ExpiredMsg); !ok {
		t.Error("tick at ttl should return ExpiredMsg")
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{45 * time.Second, "45s"},
		{4 * time.Minute, "4m"},
		{3 * time.Hour, "3h"},
		{3*time.Hour + 20*time.Minute, "3h 20m"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.d); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
