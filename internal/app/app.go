// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/l8vibe-tui/internal/api"
	"github.com/jeranaias/l8vibe-tui/internal/auth"
	"github.com/jeranaias/l8vibe-tui/internal/chat"
	"github.com/jeranaias/l8vibe-tui/internal/config"
	"github.com/jeranaias/l8vibe-tui/internal/events"
	"github.com/jeranaias/l8vibe-tui/internal/logging"
	"github.com/jeranaias/l8vibe-tui/internal/model"
	"github.com/jeranaias/l8vibe-tui/internal/nav"
	"github.com/jeranaias/l8vibe-tui/internal/project"
	"github.com/jeranaias/l8vibe-tui/internal/session"
	"github.com/jeranaias/l8vibe-tui/internal/storage"
)

// watchDebounce coalesces bursts of storage events.
const watchDebounce = 100 * time.Millisecond

// Deps overrides what New would otherwise build from the config.
type Deps struct {
	Store         storage.Store
	Client        *api.Client
	Authenticator auth.Authenticator
	View          View
	Logger        *slog.Logger
	Now           func() time.Time
	Scheduler     nav.Scheduler
}

// App owns the controllers and their wiring.
type App struct {
	Auth     *auth.Controller
	Projects *project.Controller
	Chat     *chat.Controller
	Nav      *nav.Controller
	Sessions *session.Store
	Client   *api.Client
	Bus      *events.Bus

	cfg     *config.Config
	store   storage.Store
	view    *viewProxy
	logger  *slog.Logger
	now     func() time.Time
	watcher *storage.Watcher

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu          sync.Mutex
	initialized bool
	closed      bool
}

// =============================================================================
// CONSTRUCTION
// =============================================================================

// New builds the application from cfg, using any dependency supplied in deps
// instead of constructing it.
func New(cfg *config.Config, deps Deps) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	logger := logging.OrDefault(deps.Logger)
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	store := deps.Store
	if store == nil {
		var err error
		store, err = storage.Open(storage.Options{
			Backend:     cfg.Storage.Backend,
			Dir:         cfg.StorageDir(),
			RedisAddr:   cfg.Storage.RedisAddr,
			RedisDB:     cfg.Storage.RedisDB,
			RedisPrefix: cfg.Storage.RedisPrefix,
		})
		if err != nil {
			return nil, fmt.Errorf("open storage: %w", err)
		}
	}

	client := deps.Client
	if client == nil {
		client = NewClient(cfg, logger)
	}

	authn := deps.Authenticator
	if authn == nil {
		var err error
		authn, err = NewAuthenticator(cfg, client)
		if err != nil {
			store.Close()
			return nil, err
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		Bus:    events.NewBus(),
		Client: client,
		cfg:    cfg,
		store:  store,
		view:   &viewProxy{},
		logger: logger,
		now:    now,
		ctx:    ctx,
		cancel: cancel,
	}
	a.view.set(deps.View)

	a.Sessions = session.NewStore(store, cfg.Session.TTL()).WithLogger(logger)
	a.Auth = auth.NewController(a.Sessions, authn, a.Bus).WithClock(now).WithLogger(logger)
	a.Projects = project.NewController(client, a.Auth, store, a.Bus).WithLogger(logger)
	a.Chat = chat.NewController(client, store, a.Bus).WithClock(now).WithLogger(logger)
	a.Nav = nav.New(a.view, a.Bus).
		WithScheduler(deps.Scheduler).
		WithDelay(cfg.UI.ConfirmDelay()).
		WithLogger(logger)

	a.wire()
	return a, nil
}

// NewClient builds the API client described by cfg.
func NewClient(cfg *config.Config, logger *slog.Logger) *api.Client {
	return api.NewClient(cfg.Server.URL).
		WithProjectPath(cfg.Server.ProjectPath).
		WithTimeout(cfg.HTTPTimeout()).
		WithInsecureSkipVerify(cfg.Server.InsecureSkipVerify).
		WithRateLimit(cfg.Server.RequestsPerSecond).
		WithLogger(logger)
}

// NewAuthenticator returns the credential check selected by auth.mode.
func NewAuthenticator(cfg *config.Config, client *api.Client) (auth.Authenticator, error) {
	switch cfg.Auth.Mode {
	case "", "any":
		return auth.AcceptAll{}, nil
	case "credentials":
		creds, err := auth.LoadCredentials(cfg.Auth.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("load credentials: %w", err)
		}
		return creds, nil
	case "remote":
		return auth.NewRemote(client, cfg.Server.AuthPath), nil
	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.Auth.Mode)
	}
}

// SetView replaces the view. Nil installs a NoopView.
func (a *App) SetView(v View) {
	a.view.set(v)
}

// Config returns the configuration the app was built with.
func (a *App) Config() *config.Config {
	return a.cfg
}

// Store returns the storage backend.
func (a *App) Store() storage.Store {
	return a.store
}

// =============================================================================
// WIRING
// =============================================================================

func (a *App) wire() {
	events.Subscribe(a.Bus, func(n events.Notice) {
		a.view.Notify(n)
	})

	events.Subscribe(a.Bus, func(ev events.SessionChanged) {
		if ev.Authenticated {
			sess, _ := a.Auth.Session()
			a.Client.SetToken(sess.Token)
		} else {
			a.Client.SetToken("")
		}
		a.view.SetProjectActions(ev.Authenticated)
		if !ev.Authenticated {
			a.Nav.Logout()
			a.view.ClearForms()
		}
	})

	events.Subscribe(a.Bus, func(ev events.ProjectChanged) {
		a.Chat.SetProject(ev.Project)
		if ev.Project != nil {
			a.view.RefreshProjectName(ev.Project.Name)
		}
		if ev.Created {
			a.view.ClearForms()
			a.Nav.ProjectCreated()
			a.refreshProjects(a.ctx)
		}
	})

	events.Subscribe(a.Bus, func(ev events.TranscriptChanged) {
		a.view.SetTyping(ev.Pending)
	})

	events.Subscribe(a.Bus, func(ev events.AssistantReplied) {
		if content, ok := chat.ExtractPreview(ev.Content); ok {
			a.Projects.PushPreview(content)
		}
	})

	events.Subscribe(a.Bus, func(ev events.ScreenChanged) {
		a.logger.Debug("screen changed", "from", ev.From.String(), "to", ev.To.String())
	})

	a.Nav.OnNewProject(func() {
		a.Chat.Clear()
		a.Projects.ClearCurrent()
		a.view.ClearForms()
	})
	a.Nav.ProjectName(func() string {
		if p := a.Projects.Current(); p != nil {
			return p.Name
		}
		return ""
	})
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// Init restores the saved state: session, initial screen, cached project,
// and its transcript. Calling it again does nothing.
func (a *App) Init(ctx context.Context) {
	a.mu.Lock()
	if a.initialized {
		a.mu.Unlock()
		return
	}
	a.initialized = true
	a.mu.Unlock()

	authenticated := a.Auth.RestoreSession(a.now())
	a.Nav.Show(nav.Initial(authenticated, a.Projects.HasCached()))
	a.Projects.RestoreCurrent()
	a.view.SetProjectActions(authenticated)

	a.startWatcher()
	if authenticated {
		a.refreshProjects(ctx)
	}
	a.logger.Info("initialized", "authenticated", authenticated, "screen", a.Nav.Current().String())
}

// Initialized reports whether Init ran.
func (a *App) Initialized() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.initialized
}

// Persist saves the current project and transcript. Called on quit and
// suspend.
func (a *App) Persist() error {
	return errors.Join(a.Projects.Persist(), a.Chat.Save())
}

// Wait blocks until background refreshes finish.
func (a *App) Wait() {
	a.wg.Wait()
}

// Close persists state, stops background work, and closes the store.
func (a *App) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	a.mu.Unlock()

	persistErr := a.Persist()
	a.cancel()
	if a.watcher != nil {
		a.watcher.Close()
	}
	a.wg.Wait()
	return errors.Join(persistErr, a.store.Close())
}

// CheckSession re-evaluates the running session. An expired session is
// ended; the returned message is session.ExpiredMsg, session.ExpiryWarningMsg,
// or nil.
func (a *App) CheckSession(now time.Time) tea.Msg {
	sess, ok := a.Auth.Session()
	if !ok {
		return nil
	}
	msg := a.Sessions.HandleTick(sess, now)
	if _, expired := msg.(session.ExpiredMsg); expired {
		a.Auth.Expire()
	}
	return msg
}

// RefreshProjects lists projects in the foreground.
func (a *App) RefreshProjects(ctx context.Context) ([]*model.Project, error) {
	return a.Projects.RefreshProjects(ctx)
}

func (a *App) refreshProjects(parent context.Context) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		ctx, cancel := context.WithTimeout(parent, a.cfg.HTTPTimeout())
		defer cancel()
		a.Projects.RefreshProjects(ctx)
	}()
}

// =============================================================================
// IMPORT / EXPORT
// =============================================================================

// ExportFile writes the current project and transcript as JSON into dir.
func (a *App) ExportFile(dir string) (string, error) {
	return a.Projects.ExportFile(dir, a.Chat.Messages(), a.now())
}

// ExportFormat writes the current project in a named format into dir.
func (a *App) ExportFormat(dir, format string) (string, error) {
	return a.Projects.ExportFormat(dir, format, a.Chat.Messages(), a.now())
}

// ImportFile loads an export, restores its transcript, and opens the
// workspace.
func (a *App) ImportFile(path string) (*model.Project, error) {
	f, err := os.Open(path)
	if err != nil {
		a.logger.Warn("import file unreadable", "path", path, "error", err)
		a.Bus.Publish(events.Error(project.NoticeImportFailed))
		return nil, fmt.Errorf("import: %w", err)
	}
	defer f.Close()

	doc, err := a.Projects.Import(f)
	if err != nil {
		return nil, err
	}
	if doc.HasHistory() {
		a.Chat.Replace(doc.ChatHistory)
	}
	a.Nav.Show(model.ScreenWorkspace)
	return doc.Project.Clone(), nil
}

// =============================================================================
// STORAGE WATCH
// =============================================================================

func (a *App) startWatcher() {
	fs, ok := a.store.(*storage.FileStore)
	if !ok || !a.cfg.Storage.Watch {
		return
	}
	w, err := fs.Watch(watchDebounce, a.onStorageChange)
	if err != nil {
		a.logger.Warn("storage watch unavailable", "error", err)
		return
	}
	a.watcher = w
}

// onStorageChange follows session changes made by another process.
func (a *App) onStorageChange(ch storage.Change) {
	if ch.Key != storage.KeyAuth {
		return
	}
	switch ch.Op {
	case storage.OpRemoved:
		if a.Auth.IsAuthenticated() {
			a.logger.Info("session removed externally")
			a.Auth.Logout()
		}
	case storage.OpWritten:
		if !a.Auth.IsAuthenticated() {
			a.Auth.RestoreSession(a.now())
		}
	}
}

// =============================================================================
// DEBUG
// =============================================================================

// Snapshot is a point-in-time summary of the application state.
type Snapshot struct {
	Screen        model.Screen   `json:"-"`
	ScreenName    string         `json:"screen"`
	Authenticated bool           `json:"authenticated"`
	User          *model.User    `json:"user,omitempty"`
	Project       *model.Project `json:"project,omitempty"`
	ChatMessages  int            `json:"chat_messages"`
	Pending       bool           `json:"pending"`
	Initialized   bool           `json:"initialized"`
	SessionLeft   string         `json:"session_remaining,omitempty"`
}

// Debug returns a snapshot of the application state. The project's API key
// is masked.
func (a *App) Debug() Snapshot {
	s := Snapshot{
		Screen:       a.Nav.Current(),
		ScreenName:   a.Nav.Current().String(),
		ChatMessages: a.Chat.Count(),
		Pending:      a.Chat.Pending(),
		Initialized:  a.Initialized(),
	}
	if sess, ok := a.Auth.Session(); ok {
		u := sess.User
		s.Authenticated = true
		s.User = &u
		s.SessionLeft = session.FormatDuration(a.Sessions.Remaining(sess, a.now()))
	}
	if p := a.Projects.Current(); p != nil {
		if p.APIKey != "" {
			p.APIKey = "fp:" + logging.Fingerprint(p.APIKey)
		}
		p.Messages = nil
		s.Project = p
	}
	return s
}
