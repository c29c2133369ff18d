// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/l8vibe-tui/internal/logging"
	"github.com/jeranaias/l8vibe-tui/internal/model"
	"github.com/jeranaias/l8vibe-tui/internal/storage"
)

// DefaultTTL is how long a login stays valid.
const DefaultTTL = 24 * time.Hour

// =============================================================================
// WIRE RECORD
// =============================================================================

// record is the persisted shape of a session.
type record struct {
	User          model.User `json:"user"`
	Authenticated bool       `json:"authenticated"`
	Timestamp     int64      `json:"timestamp"` // unix milliseconds
	Token         string     `json:"token,omitempty"`
}

func toRecord(s model.Session) record {
	return record{
		User:          s.User,
		Authenticated: true,
		Timestamp:     s.AuthenticatedAt.UnixMilli(),
		Token:         s.Token,
	}
}

func (r record) session() model.Session {
	return model.Session{
		User:            r.User,
		AuthenticatedAt: time.UnixMilli(r.Timestamp),
		Token:           r.Token,
	}
}

// =============================================================================
// SESSION STORE
// =============================================================================

// Store reads and writes the session record.
type Store struct {
	mu     sync.Mutex
	kv     storage.Store
	ttl    time.Duration
	logger *slog.Logger
}

// NewStore creates a session store over kv. A non-positive ttl selects
// DefaultTTL.
func NewStore(kv storage.Store, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{kv: kv, ttl: ttl, logger: slog.Default()}
}

// WithLogger sets the logger used for degraded reads.
func (s *Store) WithLogger(l *slog.Logger) *Store {
	s.logger = logging.OrDefault(l)
	return s
}

// TTL returns the configured session lifetime.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Save persists sess as the current session.
func (s *Store) Save(sess model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := storage.SetJSON(s.kv, storage.KeyAuth, toRecord(sess)); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Load returns the persisted session without checking expiry. It reports
// false for an absent record, one that fails to decode, or one not marked
// authenticated.
func (s *Store) Load() (model.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rec record
	found, err := storage.GetJSON(s.kv, storage.KeyAuth, &rec)
	if err != nil {
		s.logger.Warn("session record unreadable", "error", err)
		return model.Session{}, false
	}
	if !found || !rec.Authenticated || rec.User.Email == "" {
		return model.Session{}, false
	}
	return rec.session(), true
}

// Clear removes the persisted session.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Delete(storage.KeyAuth); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// IsExpired reports whether sess is at least TTL old at now.
func (s *Store) IsExpired(sess model.Session, now time.Time) bool {
	return sess.Age(now) >= s.ttl
}

// Remaining returns how long sess stays valid after now (zero once expired).
func (s *Store) Remaining(sess model.Session, now time.Time) time.Duration {
	left := s.ttl - sess.Age(now)
	if left < 0 {
		return 0
	}
	return left
}

// Valid returns the persisted session when it exists and has not expired.
func (s *Store) Valid(now time.Time) (model.Session, bool) {
	sess, ok := s.Load()
	if !ok || s.IsExpired(sess, now) {
		return model.Session{}, false
	}
	return sess, true
}

// =============================================================================
// BUBBLE TEA INTEGRATION
// =============================================================================

// TickMsg is sent periodically to check the running session.
type TickMsg struct {
	Time time.Time
}

// ExpiryWarningMsg indicates the session expires soon.
type ExpiryWarningMsg struct {
	Remaining time.Duration
}

// ExpiredMsg indicates the session ran out while the program was open.
type ExpiredMsg struct{}

// TickInterval is how often a running program re-checks the session.
const TickInterval = time.Minute

// WarningBefore is how long before expiry ExpiryWarningMsg is emitted.
const WarningBefore = 5 * time.Minute

// TickCmd returns a command that ticks after interval.
func TickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// HandleTick evaluates sess at now. It returns ExpiredMsg once the session
// is expired, ExpiryWarningMsg inside the warning window, and otherwise nil.
// The caller reschedules TickCmd.
func (s *Store) HandleTick(sess model.Session, now time.Time) tea.Msg {
	if s.IsExpired(sess, now) {
		return ExpiredMsg{}
	}
	if left := s.Remaining(sess, now); left <= WarningBefore {
		return ExpiryWarningMsg{Remaining: left}
	}
	return nil
}

// FormatDuration returns a short human-readable duration ("45s", "4m",
// "3h 20m").
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	default:
		h := int(d.Hours())
		m := int(d.Minutes()) % 60
		if m == 0 {
			return fmt.Sprintf("%dh", h)
		}
		return fmt.Sprintf("%dh %dm", h, m)
	}
}
