// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package nav is the screen state machine.
package nav

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jeranaias/l8vibe-tui/internal/events"
	"github.com/jeranaias/l8vibe-tui/internal/logging"
	"github.com/jeranaias/l8vibe-tui/internal/model"
)

// DefaultConfirmDelay is how long the creation confirmation stays on screen
// before the workspace opens.
const DefaultConfirmDelay = time.Second

// View is the part of the UI navigation drives.
type View interface {
	ShowScreen(s model.Screen)
	FocusChatInput()
	FocusProjectName()
	RefreshProjectName(name string)
}

// Scheduler runs fn after d and returns a func that cancels it.
type Scheduler func(d time.Duration, fn func()) (cancel func())

// AfterFunc schedules on the runtime timer.
func AfterFunc(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// Controller tracks the visible screen.
type Controller struct {
	mu          sync.Mutex
	current     model.Screen
	view        View
	bus         *events.Bus
	logger      *slog.Logger
	schedule    Scheduler
	delay       time.Duration
	projectName func() string
	onNew       func()
	cancel      func()
	gen         uint64
}

// New creates a controller showing the marketing screen.
func New(view View, bus *events.Bus) *Controller {
	return &Controller{
		current:  model.ScreenMarketing,
		view:     view,
		bus:      bus,
		logger:   slog.Default(),
		schedule: AfterFunc,
		delay:    DefaultConfirmDelay,
	}
}

// WithScheduler replaces the timer used by ProjectCreated.
func (c *Controller) WithScheduler(s Scheduler) *Controller {
	if s != nil {
		c.schedule = s
	}
	return c
}

// WithDelay sets the confirmation delay.
func (c *Controller) WithDelay(d time.Duration) *Controller {
	if d >= 0 {
		c.delay = d
	}
	return c
}

// WithLogger sets the logger.
func (c *Controller) WithLogger(l *slog.Logger) *Controller {
	c.logger = logging.OrDefault(l)
	return c
}

// OnNewProject registers the callback NewProject runs before switching to
// the creation screen.
func (c *Controller) OnNewProject(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onNew = fn
}

// ProjectName registers the source of the name shown in the workspace.
func (c *Controller) ProjectName(fn func() string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.projectName = fn
}

// Initial picks the first screen.
func Initial(authenticated, hasProject bool) model.Screen {
	if authenticated && hasProject {
		return model.ScreenWorkspace
	}
	return model.ScreenMarketing
}

// Current returns the visible screen.
func (c *Controller) Current() model.Screen {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Show switches to screen and runs its entry effects.
func (c *Controller) Show(screen model.Screen) {
	c.mu.Lock()
	from := c.current
	c.current = screen
	c.stopPendingLocked()
	view := c.view
	nameFn := c.projectName
	c.mu.Unlock()

	c.logger.Debug("navigate", "from", from.String(), "to", screen.String())
	if view != nil {
		view.ShowScreen(screen)
		switch screen {
		case model.ScreenWorkspace:
			name := ""
			if nameFn != nil {
				name = nameFn()
			}
			view.RefreshProjectName(name)
			view.FocusChatInput()
		case model.ScreenProjectCreation:
			view.FocusProjectName()
		}
	}
	if c.bus != nil {
		c.bus.Publish(events.ScreenChanged{From: from, To: screen})
	}
}

// NewProject runs the registered reset callback and opens the creation
// screen.
func (c *Controller) NewProject() {
	c.mu.Lock()
	fn := c.onNew
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
	c.Show(model.ScreenProjectCreation)
}

// ProjectCreated opens the workspace after the confirmation delay. Any
// navigation before the delay elapses cancels it.
func (c *Controller) ProjectCreated() {
	c.mu.Lock()
	c.stopPendingLocked()
	gen := c.gen
	delay := c.delay
	c.mu.Unlock()

	cancel := c.schedule(delay, func() {
		c.mu.Lock()
		if c.gen != gen {
			c.mu.Unlock()
			return
		}
		c.cancel = nil
		c.mu.Unlock()
		c.Show(model.ScreenWorkspace)
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen == gen {
		c.cancel = cancel
	}
}

// PendingTransition reports whether a delayed navigation is scheduled.
func (c *Controller) PendingTransition() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancel != nil
}

// Logout returns to the marketing screen.
func (c *Controller) Logout() {
	c.Show(model.ScreenMarketing)
}

func (c *Controller) stopPendingLocked() {
	c.gen++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}
