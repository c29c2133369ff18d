// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/l8vibe-tui/internal/events"
	"github.com/jeranaias/l8vibe-tui/internal/logging"
	"github.com/jeranaias/l8vibe-tui/internal/model"
	"github.com/jeranaias/l8vibe-tui/internal/session"
)

// Notice texts shown to the user.
const (
	NoticeWelcome    = "Welcome back! You can now create projects."
	NoticeAuthFailed = "Authentication failed. Please check your credentials."
	NoticeSignedOut  = "You have been signed out"

	NoticeMissingCredentials = "Please enter both email and password"
	NoticeInvalidEmail       = "Please enter a valid email address"
)

// Validation errors.
var (
	ErrMissingCredentials = errors.New("email and password are required")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrBusy               = errors.New("sign-in already in progress")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether email has the shape local@domain.tld.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller holds the signed-in user.
type Controller struct {
	mu            sync.Mutex
	store         *session.Store
	authn         Authenticator
	bus           *events.Bus
	logger        *slog.Logger
	now           func() time.Time
	current       model.Session
	authenticated bool
	busy          bool
}

// NewController creates an auth controller.
func NewController(store *session.Store, authn Authenticator, bus *events.Bus) *Controller {
	if authn == nil {
		authn = AcceptAll{}
	}
	return &Controller{
		store:  store,
		authn:  authn,
		bus:    bus,
		logger: slog.Default(),
		now:    time.Now,
	}
}

// WithClock replaces the time source.
func (c *Controller) WithClock(now func() time.Time) *Controller {
	if now != nil {
		c.now = now
	}
	return c
}

// WithLogger sets the logger.
func (c *Controller) WithLogger(l *slog.Logger) *Controller {
	c.logger = logging.OrDefault(l)
	return c
}

// =============================================================================
// STATE
// =============================================================================

// IsAuthenticated reports whether a user is signed in.
func (c *Controller) IsAuthenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.authenticated
}

// CurrentUser returns the signed-in user.
func (c *Controller) CurrentUser() (model.User, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current.User, c.authenticated
}

// Session returns the active session.
func (c *Controller) Session() (model.Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current, c.authenticated
}

// Busy reports whether a login is in flight.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// =============================================================================
// LOGIN / LOGOUT
// =============================================================================

// Login validates input, checks the credentials, and on success persists
// and announces the session. Validation failures return before any call to
// the authenticator.
func (c *Controller) Login(ctx context.Context, email, password string) error {
	email = norm.NFC.String(strings.TrimSpace(email))
	password = strings.TrimSpace(password)

	if email == "" || password == "" {
		c.notify(events.Error(NoticeMissingCredentials))
		return ErrMissingCredentials
	}
	if !ValidEmail(email) {
		c.notify(events.Error(NoticeInvalidEmail))
		return ErrInvalidEmail
	}

	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return ErrBusy
	}
	c.busy = true
	c.mu.Unlock()

	identity, err := c.authn.Authenticate(ctx, email, password)

	c.mu.Lock()
	c.busy = false
	if err != nil {
		c.mu.Unlock()
		c.logger.Warn("login failed", "email", email, "error", err)
		c.notify(events.Error(NoticeAuthFailed))
		return err
	}

	sess := model.Session{
		User:            identity.User,
		AuthenticatedAt: c.now(),
		Token:           identity.Token,
	}
	c.current = sess
	c.authenticated = true
	c.mu.Unlock()

	if err := c.store.Save(sess); err != nil {
		// The session works for this run; it just won't survive a restart.
		c.logger.Error("session not persisted", "error", err)
	}
	c.logger.Info("login", "email", email)

	c.publish(events.SessionChanged{Authenticated: true, User: sess.User})
	c.notify(events.Success(NoticeWelcome))
	return nil
}

// Logout clears the session in memory and in storage.
func (c *Controller) Logout() error {
	c.mu.Lock()
	user := c.current.User
	c.current = model.Session{}
	c.authenticated = false
	c.mu.Unlock()

	err := c.store.Clear()
	if err != nil {
		c.logger.Error("session not cleared", "error", err)
	}
	c.logger.Info("logout", "email", user.Email)

	c.publish(events.SessionChanged{Authenticated: false})
	c.notify(events.Success(NoticeSignedOut))
	return err
}

// RestoreSession loads the persisted session. An expired, malformed, or
// missing record is cleared and false is returned.
func (c *Controller) RestoreSession(now time.Time) bool {
	sess, ok := c.store.Valid(now)
	if !ok {
		if err := c.store.Clear(); err != nil {
			c.logger.Warn("stale session not cleared", "error", err)
		}
		return false
	}

	c.mu.Lock()
	c.current = sess
	c.authenticated = true
	c.mu.Unlock()

	c.logger.Info("session restored", "email", sess.User.Email,
		"remaining", session.FormatDuration(c.store.Remaining(sess, now)))
	c.publish(events.SessionChanged{Authenticated: true, User: sess.User, Restored: true})
	return true
}

// Expire ends a session that ran out while the program was open.
func (c *Controller) Expire() {
	if !c.IsAuthenticated() {
		return
	}
	c.logger.Info("session expired")
	c.Logout()
}

func (c *Controller) publish(ev any) {
	if c.bus != nil {
		c.bus.Publish(ev)
	}
}

func (c *Controller) notify(n events.Notice) {
	c.publish(n)
}
