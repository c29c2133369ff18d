// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/l8vibe-tui/internal/api"
	"github.com/jeranaias/l8vibe-tui/internal/events"
	"github.com/jeranaias/l8vibe-tui/internal/logging"
	"github.com/jeranaias/l8vibe-tui/internal/model"
	"github.com/jeranaias/l8vibe-tui/internal/storage"
)

// Notice texts shown to the user.
const (
	NoticeNameRequired     = "Please enter a project name"
	NoticeAPIKeyRequired   = "Please enter your Claude.ai API key"
	NoticeNotAuthenticated = "Failed to create project: User not authenticated"

	noticeCreated      = "Project \"%s\" created successfully!"
	noticeCreateFailed = "Failed to create project: %s"
)

var (
	ErrNameRequired       = errors.New("project name is required")
	ErrAPIKeyRequired     = errors.New("api key is required")
	ErrNotAuthenticated   = errors.New("user not authenticated")
	ErrBusy               = errors.New("project creation already in progress")
	ErrNoProject          = errors.New("no active project")
	ErrUnknownProject     = errors.New("unknown project")
	ErrUnknownPreviewMode = errors.New("unknown preview mode")
)

// Backend is the part of the API the controller needs.
type Backend interface {
	CreateProject(ctx context.Context, req api.CreateRequest) (*model.Project, error)
	ListProjects(ctx context.Context, email string) ([]*model.Project, error)
}

// UserSource reports the signed-in user.
type UserSource interface {
	CurrentUser() (model.User, bool)
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller holds the current project and preview state.
type Controller struct {
	mu       sync.Mutex
	backend  Backend
	users    UserSource
	store    storage.Store
	bus      *events.Bus
	logger   *slog.Logger
	current  *model.Project
	preview  Preview
	projects []*model.Project
	busy     bool
}

// NewController creates a project controller.
func NewController(backend Backend, users UserSource, store storage.Store, bus *events.Bus) *Controller {
	return &Controller{
		backend: backend,
		users:   users,
		store:   store,
		bus:     bus,
		logger:  slog.Default(),
		preview: Preview{Mode: model.PreviewDesktop},
	}
}

// WithLogger sets the logger.
func (c *Controller) WithLogger(l *slog.Logger) *Controller {
	c.logger = logging.OrDefault(l)
	return c
}

// Current returns a copy of the current project, or nil.
func (c *Controller) Current() *model.Project {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current.Clone()
}

// Busy reports whether a create is in flight.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// =============================================================================
// CREATE
// =============================================================================

// Create validates the form, creates the project on the backend, and makes
// it current. Validation happens before any network call and leaves state
// untouched.
func (c *Controller) Create(ctx context.Context, name, description, apiKey string) (*model.Project, error) {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	apiKey = strings.TrimSpace(apiKey)

	if name == "" {
		c.notify(events.Error(NoticeNameRequired))
		return nil, ErrNameRequired
	}
	if apiKey == "" {
		c.notify(events.Error(NoticeAPIKeyRequired))
		return nil, ErrAPIKeyRequired
	}
	user, ok := c.currentUser()
	if !ok {
		c.notify(events.Error(NoticeNotAuthenticated))
		return nil, ErrNotAuthenticated
	}

	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	c.busy = true
	c.mu.Unlock()

	created, err := c.backend.CreateProject(ctx, api.CreateRequest{
		Name:        name,
		Description: description,
		User:        user.Email,
		APIKey:      apiKey,
	})

	c.mu.Lock()
	c.busy = false
	c.mu.Unlock()

	if err != nil {
		c.logger.Error("create project failed", "name", name, "key", logging.Fingerprint(apiKey), "error", err)
		c.notify(events.Error(fmt.Sprintf(noticeCreateFailed, err)))
		return nil, fmt.Errorf("create project: %w", err)
	}

	c.logger.Info("project created", "name", created.Name, "id", created.ID, "key", logging.Fingerprint(created.APIKey))
	c.commit(created, events.ProjectChanged{Created: true})
	c.notify(events.Success(fmt.Sprintf(noticeCreated, created.Name)))
	return created.Clone(), nil
}

// =============================================================================
// CURRENT PROJECT
// =============================================================================

// SetCurrent replaces the current project, caches it, and announces it.
func (c *Controller) SetCurrent(p *model.Project) {
	if p == nil {
		c.ClearCurrent()
		return
	}
	c.commit(p, events.ProjectChanged{})
}

// ClearCurrent drops the current project and its cached snapshot. The
// backend is not touched.
func (c *Controller) ClearCurrent() {
	c.mu.Lock()
	c.current = nil
	c.preview = Preview{Mode: c.preview.Mode}
	c.mu.Unlock()

	if err := c.store.Delete(storage.KeyCurrentProject); err != nil {
		c.logger.Warn("cached project not removed", "error", err)
	}
	c.publish(events.ProjectChanged{})
}

// RestoreCurrent loads the cached project snapshot. A missing or malformed
// snapshot returns false.
func (c *Controller) RestoreCurrent() bool {
	p, ok := c.cached()
	if !ok {
		return false
	}

	c.mu.Lock()
	c.current = p.Clone()
	c.mu.Unlock()

	c.logger.Info("project restored", "name", p.Name)
	c.publish(events.ProjectChanged{Project: p.Clone(), Restored: true})
	return true
}

// HasCached reports whether a usable project snapshot is stored. It applies
// the same rule as RestoreCurrent, so a corrupt snapshot counts as absent.
func (c *Controller) HasCached() bool {
	_, ok := c.cached()
	return ok
}

func (c *Controller) cached() (*model.Project, bool) {
	var p model.Project
	found, err := storage.GetJSON(c.store, storage.KeyCurrentProject, &p)
	if err != nil {
		c.logger.Warn("cached project unreadable", "error", err)
		return nil, false
	}
	if !found || p.Name == "" {
		return nil, false
	}
	return &p, true
}

// Persist writes the current project snapshot again.
func (c *Controller) Persist() error {
	c.mu.Lock()
	p := c.current.Clone()
	c.mu.Unlock()
	if p == nil {
		return nil
	}
	return storage.SetJSON(c.store, storage.KeyCurrentProject, p)
}

func (c *Controller) commit(p *model.Project, ev events.ProjectChanged) {
	p = p.Clone()

	c.mu.Lock()
	c.current = p
	c.mu.Unlock()

	if err := storage.SetJSON(c.store, storage.KeyCurrentProject, p); err != nil {
		c.logger.Error("project not cached", "name", p.Name, "error", err)
	}
	ev.Project = p.Clone()
	c.publish(ev)
}

// =============================================================================
// PROJECT LIST
// =============================================================================

// RefreshProjects lists the user's projects. Failures leave an empty list;
// the error is returned and carried on the published event.
func (c *Controller) RefreshProjects(ctx context.Context) ([]*model.Project, error) {
	user, ok := c.currentUser()
	if !ok {
		c.setProjects(nil)
		c.publish(events.ProjectsListed{Err: ErrNotAuthenticated})
		return nil, ErrNotAuthenticated
	}

	projects, err := c.backend.ListProjects(ctx, user.Email)
	if err != nil {
		c.logger.Warn("list projects failed", "error", err)
		c.setProjects(nil)
		c.publish(events.ProjectsListed{Err: err})
		return nil, fmt.Errorf("list projects: %w", err)
	}

	c.setProjects(projects)
	c.logger.Debug("projects listed", "count", len(projects))
	c.publish(events.ProjectsListed{Projects: c.Projects()})
	return c.Projects(), nil
}

// Projects returns the cached project list.
func (c *Controller) Projects() []*model.Project {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*model.Project, len(c.projects))
	for i, p := range c.projects {
		out[i] = p.Clone()
	}
	return out
}

// Open makes the cached project with the given id (or name) current.
func (c *Controller) Open(id string) error {
	c.mu.Lock()
	var found *model.Project
	for _, p := range c.projects {
		if p.StorageID() == id {
			found = p.Clone()
			break
		}
	}
	c.mu.Unlock()

	if found == nil {
		return fmt.Errorf("%w: %s", ErrUnknownProject, id)
	}
	c.SetCurrent(found)
	return nil
}

func (c *Controller) setProjects(ps []*model.Project) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.projects = c.projects[:0]
	for _, p := range ps {
		c.projects = append(c.projects, p.Clone())
	}
}

// =============================================================================
// STATS
// =============================================================================

// Stats summarises the current project.
type Stats struct {
	Name         string
	Created      time.Time
	DaysActive   int
	ChatMessages int
	HasPreview   bool
}

// Stats returns a summary of the current project, or nil when there is none.
func (c *Controller) Stats(now time.Time, chatCount int) *Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return nil
	}
	s := &Stats{
		Name:         c.current.Name,
		ChatMessages: chatCount,
		HasPreview:   c.preview.Active,
	}
	if c.current.CreatedAt != nil {
		s.Created = *c.current.CreatedAt
		if d := now.Sub(s.Created); d > 0 {
			s.DaysActive = int(d / (24 * time.Hour))
		}
	}
	return s
}

// =============================================================================
// HELPERS
// =============================================================================

func (c *Controller) currentUser() (model.User, bool) {
	if c.users == nil {
		return model.User{}, false
	}
	u, ok := c.users.CurrentUser()
	if !ok || u.Email == "" {
		return model.User{}, false
	}
	return u, true
}

func (c *Controller) publish(ev any) {
	if c.bus != nil {
		c.bus.Publish(ev)
	}
}

func (c *Controller) notify(n events.Notice) {
	c.publish(n)
}
