// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jeranaias/l8vibe-tui/internal/api"
	"github.com/jeranaias/l8vibe-tui/internal/api/apitest"
	"github.com/jeranaias/l8vibe-tui/internal/auth"
	"github.com/jeranaias/l8vibe-tui/internal/config"
	"github.com/jeranaias/l8vibe-tui/internal/events"
	"github.com/jeranaias/l8vibe-tui/internal/logging"
	"github.com/jeranaias/l8vibe-tui/internal/model"
	"github.com/jeranaias/l8vibe-tui/internal/project"
	"github.com/jeranaias/l8vibe-tui/internal/session"
	"github.com/jeranaias/l8vibe-tui/internal/storage"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// recordingView records the calls the app makes.
type recordingView struct {
	mu      sync.Mutex
	screens []model.Screen
	notices []events.Notice
	typing  []bool
	actions []bool
	cleared int
	names   []string
}

func (v *recordingView) ShowScreen(s model.Screen) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.screens = append(v.screens, s)
}
func (v *recordingView) FocusChatInput()   {}
func (v *recordingView) FocusProjectName() {}
func (v *recordingView) RefreshProjectName(name string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.names = append(v.names, name)
}
func (v *recordingView) Notify(n events.Notice) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.notices = append(v.notices, n)
}
func (v *recordingView) SetTyping(typing bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.typing = append(v.typing, typing)
}
func (v *recordingView) SetProjectActions(enabled bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.actions = append(v.actions, enabled)
}
func (v *recordingView) ClearForms() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cleared++
}

func (v *recordingView) lastNotice() events.Notice {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.notices) == 0 {
		return events.Notice{}
	}
	return v.notices[len(v.notices)-1]
}

func (v *recordingView) lastAction() (bool, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.actions) == 0 {
		return false, false
	}
	return v.actions[len(v.actions)-1], true
}

// manualScheduler fires delayed navigation on demand.
type manualScheduler struct {
	mu  sync.Mutex
	fns []func()
}

func (m *manualScheduler) schedule(_ time.Duration, fn func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fns = append(m.fns, fn)
	return func() {}
}

func (m *manualScheduler) fire() {
	m.mu.Lock()
	fns := m.fns
	m.fns = nil
	m.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

type fixture struct {
	app   *App
	srv   *apitest.Server
	store storage.Store
	view  *recordingView
	sched *manualScheduler
	clock *time.Time
}

func newFixture(t *testing.T, store storage.Store) *fixture {
	t.Helper()
	srv := apitest.NewServer()
	t.Cleanup(srv.Close)
	return newFixtureWithServer(t, store, srv)
}

func newFixtureWithServer(t *testing.T, store storage.Store, srv *apitest.Server) *fixture {
	t.Helper()
	if store == nil {
		store = storage.NewMemoryStore()
	}
	cfg := config.Default()
	cfg.Server.URL = srv.URL

	clock := t0
	f := &fixture{srv: srv, store: store, view: &recordingView{}, sched: &manualScheduler{}, clock: &clock}
	client := api.NewClient(srv.URL).WithHTTPClient(srv.Client()).WithLogger(logging.Discard())

	a, err := New(cfg, Deps{
		Store:     store,
		Client:    client,
		View:      f.view,
		Logger:    logging.Discard(),
		Now:       func() time.Time { return *f.clock },
		Scheduler: f.sched.schedule,
	})
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	f.app = a
	return f
}

func saveSession(t *testing.T, store storage.Store, at time.Time) {
	t.Helper()
	sess := model.Session{User: model.NewUser("jane@example.com"), AuthenticatedAt: at}
	require.NoError(t, session.NewStore(store, 0).Save(sess))
}

func transcript(msgs []model.ChatMessage) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = string(m.Sender) + ":" + m.Content
	}
	return out
}

func login(t *testing.T, f *fixture) {
	t.Helper()
	require.NoError(t, f.app.Auth.Login(context.Background(), "jane@example.com", "pw"))
}

// =============================================================================
// INIT TESTS
// =============================================================================

func TestInit_Fresh(t *testing.T) {
	f := newFixture(t, nil)
	f.app.Init(context.Background())

	require.True(t, f.app.Initialized())
	require.Equal(t, model.ScreenMarketing, f.app.Nav.Current())
	require.False(t, f.app.Auth.IsAuthenticated())
	require.Nil(t, f.app.Projects.Current())
}

func TestInit_RestoresSessionProjectAndTranscript(t *testing.T) {
	store := storage.NewMemoryStore()
	saveSession(t, store, t0.Add(-time.Hour))
	p := &model.Project{ID: "p1", Name: "Site", OwnerEmail: "jane@example.com"}
	require.NoError(t, storage.SetJSON(store, storage.KeyCurrentProject, p))
	require.NoError(t, storage.SetJSON(store, storage.ChatKey("p1"), []model.ChatMessage{
		model.NewChatMessage("hello", model.SenderUser, t0),
	}))

	f := newFixture(t, store)
	f.app.Init(context.Background())
	f.app.Wait()

	require.True(t, f.app.Auth.IsAuthenticated())
	require.Equal(t, model.ScreenWorkspace, f.app.Nav.Current())
	require.Equal(t, "Site", f.app.Projects.Current().Name)
	require.Len(t, f.app.Chat.Messages(), 1)
	require.Contains(t, f.view.names, "Site")
	enabled, ok := f.view.lastAction()
	require.True(t, ok)
	require.True(t, enabled)
}

func TestInit_CorruptCachedProjectStaysOnMarketing(t *testing.T) {
	store := storage.NewMemoryStore()
	saveSession(t, store, t0.Add(-time.Hour))
	require.NoError(t, store.Set(storage.KeyCurrentProject, []byte("{not json")))

	f := newFixture(t, store)
	f.app.Init(context.Background())
	f.app.Wait()

	require.True(t, f.app.Auth.IsAuthenticated())
	require.Equal(t, model.ScreenMarketing, f.app.Nav.Current())
	require.Nil(t, f.app.Projects.Current())
}

func TestInit_ProjectWithoutSessionStaysOnMarketing(t *testing.T) {
	store := storage.NewMemoryStore()
	require.NoError(t, storage.SetJSON(store, storage.KeyCurrentProject, &model.Project{ID: "p1", Name: "Site"}))

	f := newFixture(t, store)
	f.app.Init(context.Background())
	require.Equal(t, model.ScreenMarketing, f.app.Nav.Current())
	require.NotNil(t, f.app.Projects.Current(), "cached project still restored")
}

func TestInit_ExpiredSessionCleared(t *testing.T) {
	store := storage.NewMemoryStore()
	saveSession(t, store, t0.Add(-24*time.Hour))

	f := newFixture(t, store)
	f.app.Init(context.Background())

	require.False(t, f.app.Auth.IsAuthenticated())
	require.Equal(t, model.ScreenMarketing, f.app.Nav.Current())
	_, err := store.Get(storage.KeyAuth)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestInit_Idempotent(t *testing.T) {
	f := newFixture(t, nil)
	f.app.Init(context.Background())
	f.app.Init(context.Background())
	require.Len(t, f.view.screens, 1)
}

// =============================================================================
// FLOW TESTS
// =============================================================================

func TestLogin_EnablesActionsWithoutNavigating(t *testing.T) {
	f := newFixture(t, nil)
	f.app.Init(context.Background())
	login(t, f)

	require.Equal(t, model.ScreenMarketing, f.app.Nav.Current())
	enabled, _ := f.view.lastAction()
	require.True(t, enabled)
	require.Equal(t, auth.NoticeWelcome, f.view.lastNotice().Text)
}

func TestCreate_NavigatesAfterDelayAndRefreshes(t *testing.T) {
	f := newFixture(t, nil)
	f.app.Init(context.Background())
	login(t, f)
	f.app.Nav.NewProject()

	p, err := f.app.Projects.Create(context.Background(), "Site", "desc", "sk")
	require.NoError(t, err)
	f.app.Wait()

	require.Equal(t, model.ScreenProjectCreation, f.app.Nav.Current(), "waits for the confirmation")
	require.Equal(t, p.ID, f.app.Chat.Project().ID)
	require.Len(t, f.app.Projects.Projects(), 1)

	f.sched.fire()
	require.Equal(t, model.ScreenWorkspace, f.app.Nav.Current())
}

func TestNewProject_ClearsProjectAndChat(t *testing.T) {
	f := newFixture(t, nil)
	f.app.Init(context.Background())
	login(t, f)
	p, err := f.app.Projects.Create(context.Background(), "Site", "", "sk")
	require.NoError(t, err)
	f.app.Wait()
	_, err = f.app.Chat.Send(context.Background(), "hi")
	require.NoError(t, err)

	before := f.view.cleared
	f.app.Nav.NewProject()

	require.Nil(t, f.app.Projects.Current())
	require.Empty(t, f.app.Chat.Messages())
	require.False(t, f.app.Projects.HasCached())
	_, err = f.store.Get(storage.ChatKey(p.ID))
	require.ErrorIs(t, err, storage.ErrNotFound)
	require.Greater(t, f.view.cleared, before)
	require.Equal(t, model.ScreenProjectCreation, f.app.Nav.Current())
}

func TestLogout_ForcesMarketing(t *testing.T) {
	f := newFixture(t, nil)
	f.app.Init(context.Background())
	login(t, f)
	f.app.Nav.Show(model.ScreenWorkspace)

	require.NoError(t, f.app.Auth.Logout())

	require.Equal(t, model.ScreenMarketing, f.app.Nav.Current())
	enabled, _ := f.view.lastAction()
	require.False(t, enabled)
	_, err := f.store.Get(storage.KeyAuth)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSend_TogglesTypingAndPushesPreview(t *testing.T) {
	f := newFixture(t, nil)
	f.srv.SetReply(func(_ *model.Project, text string) (string, bool) {
		return "Here it is:\n```html\n<h1>" + text + "</h1>\n```", true
	})
	f.app.Init(context.Background())
	login(t, f)
	_, err := f.app.Projects.Create(context.Background(), "Site", "", "sk")
	require.NoError(t, err)
	f.app.Wait()

	f.view.typing = nil
	_, err = f.app.Chat.Send(context.Background(), "Hello")
	require.NoError(t, err)

	require.Equal(t, []bool{true, false}, f.view.typing)
	pv := f.app.Projects.Preview()
	require.True(t, pv.Active)
	require.Equal(t, "<h1>Hello</h1>", pv.Content)
	require.Equal(t, project.PreviewHTML, pv.Kind)
}

func TestCheckSession_ExpiresRunningSession(t *testing.T) {
	f := newFixture(t, nil)
	f.app.Init(context.Background())
	login(t, f)

	require.Nil(t, f.app.CheckSession(t0.Add(time.Hour)))

	msg := f.app.CheckSession(t0.Add(24*time.Hour - time.Minute))
	_, warned := msg.(session.ExpiryWarningMsg)
	require.True(t, warned)

	msg = f.app.CheckSession(t0.Add(24 * time.Hour))
	_, expired := msg.(session.ExpiredMsg)
	require.True(t, expired)
	require.False(t, f.app.Auth.IsAuthenticated())
	require.Equal(t, model.ScreenMarketing, f.app.Nav.Current())
}

// =============================================================================
// IMPORT / EXPORT TESTS
// =============================================================================

func TestExportImport_RoundTrip(t *testing.T) {
	f := newFixture(t, nil)
	f.app.Init(context.Background())
	login(t, f)
	_, err := f.app.Projects.Create(context.Background(), "My Site", "d", "sk")
	require.NoError(t, err)
	f.app.Wait()
	_, err = f.app.Chat.Send(context.Background(), "one")
	require.NoError(t, err)

	dir := t.TempDir()
	path, err := f.app.ExportFile(dir)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "My_Site_export.json"), path)

	g := newFixtureWithServer(t, nil, f.srv)
	g.app.Init(context.Background())
	got, err := g.app.ImportFile(path)
	require.NoError(t, err)

	require.Equal(t, "My Site", got.Name)
	require.Equal(t, model.ScreenWorkspace, g.app.Nav.Current())
	require.Equal(t, transcript(f.app.Chat.Messages()), transcript(g.app.Chat.Messages()))
	require.Len(t, g.app.Chat.Messages(), 2)
	require.Equal(t, project.NoticeImported, g.view.lastNotice().Text)
}

func TestImportFile_Missing(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.app.ImportFile(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	require.Equal(t, project.NoticeImportFailed, f.view.lastNotice().Text)
}

func TestImportFile_Invalid(t *testing.T) {
	f := newFixture(t, nil)
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name":"x"}`), 0o600))

	_, err := f.app.ImportFile(path)
	require.ErrorIs(t, err, project.ErrInvalidExport)
	require.Equal(t, project.NoticeInvalidImport, f.view.lastNotice().Text)
	require.Equal(t, model.ScreenMarketing, f.app.Nav.Current())
}

// =============================================================================
// PERSISTENCE TESTS
// =============================================================================

func TestPersist(t *testing.T) {
	f := newFixture(t, nil)
	f.app.Init(context.Background())
	f.app.Projects.SetCurrent(&model.Project{ID: "p1", Name: "Site"})
	f.app.Chat.Replace([]model.ChatMessage{model.NewChatMessage("x", model.SenderUser, t0)})

	require.NoError(t, f.store.Delete(storage.KeyCurrentProject))
	require.NoError(t, f.store.Delete(storage.ChatKey("p1")))
	require.NoError(t, f.app.Persist())

	require.True(t, f.app.Projects.HasCached())
	var msgs []model.ChatMessage
	found, err := storage.GetJSON(f.store, storage.ChatKey("p1"), &msgs)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, msgs, 1)
}

func TestStorageWatch_ExternalLogout(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewFileStore(dir)
	require.NoError(t, err)

	f := newFixture(t, store)
	f.app.Init(context.Background())
	login(t, f)

	other, err := storage.NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, other.Delete(storage.KeyAuth))

	require.Eventually(t, func() bool { return !f.app.Auth.IsAuthenticated() }, 2*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool { return f.app.Nav.Current() == model.ScreenMarketing }, time.Second, 10*time.Millisecond)
}

// =============================================================================
// DEBUG / CONSTRUCTION TESTS
// =============================================================================

func TestDebug(t *testing.T) {
	f := newFixture(t, nil)
	f.app.Init(context.Background())
	login(t, f)
	f.app.Projects.SetCurrent(&model.Project{ID: "p1", Name: "Site", APIKey: "sk-secret"})

	s := f.app.Debug()
	require.True(t, s.Initialized)
	require.True(t, s.Authenticated)
	require.Equal(t, "jane@example.com", s.User.Email)
	require.Equal(t, "marketing", s.ScreenName)
	require.Equal(t, "Site", s.Project.Name)
	require.True(t, strings.HasPrefix(s.Project.APIKey, "fp:"))
	require.NotContains(t, s.Project.APIKey, "secret")
	require.Equal(t, "sk-secret", f.app.Projects.Current().APIKey, "snapshot must not alter state")
}

func TestNewAuthenticator(t *testing.T) {
	cfg := config.Default()
	client := api.NewClient("http://127.0.0.1:1")

	a, err := NewAuthenticator(cfg, client)
	require.NoError(t, err)
	require.IsType(t, auth.AcceptAll{}, a)

	cfg.Auth.Mode = "remote"
	a, err = NewAuthenticator(cfg, client)
	require.NoError(t, err)
	require.IsType(t, &auth.Remote{}, a)

	cfg.Auth.Mode = "credentials"
	cfg.Auth.CredentialsFile = filepath.Join(t.TempDir(), "missing.toml")
	_, err = NewAuthenticator(cfg, client)
	require.Error(t, err)

	cfg.Auth.Mode = "bogus"
	_, err = NewAuthenticator(cfg, client)
	require.Error(t, err)
}

func TestNew_OpensConfiguredStore(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Backend = "sqlite"
	cfg.Storage.Dir = t.TempDir()

	a, err := New(cfg, Deps{Logger: logging.Discard()})
	require.NoError(t, err)
	require.NoError(t, a.Close())
	_, err = os.Stat(filepath.Join(cfg.Storage.Dir, "l8vibe.db"))
	require.NoError(t, err)
}

func TestRemoteMode_AttachesToken(t *testing.T) {
	srv := apitest.NewServer()
	t.Cleanup(srv.Close)
	srv.AddUser("jane@example.com", "pw", "Jane")

	cfg := config.Default()
	cfg.Server.URL = srv.URL
	cfg.Server.AuthPath = apitest.AuthPath
	cfg.Auth.Mode = "remote"
	client := api.NewClient(srv.URL).WithHTTPClient(srv.Client()).WithLogger(logging.Discard())

	a, err := New(cfg, Deps{Store: storage.NewMemoryStore(), Client: client, Logger: logging.Discard()})
	require.NoError(t, err)
	defer a.Close()
	a.Init(context.Background())

	require.NoError(t, a.Auth.Login(context.Background(), "jane@example.com", "pw"))
	_, err = a.RefreshProjects(context.Background())
	require.NoError(t, err)

	sess, _ := a.Auth.Session()
	require.NotEmpty(t, sess.Token)
	var authz string
	for _, r := range srv.Requests() {
		if r.Method == http.MethodGet {
			authz = r.Authorization
		}
	}
	require.Equal(t, "Bearer "+sess.Token, authz)
	require.Equal(t, "Jane", sess.User.DisplayName)
}
