// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package nav

import (
	"reflect"
	"testing"
	"time"

	"github.com/jeranaias/l8vibe-tui/internal/events"
	"github.com/jeranaias/l8vibe-tui/internal/logging"
	"github.com/jeranaias/l8vibe-tui/internal/model"
)

// viewLog records view calls as strings.
type viewLog struct {
	calls []string
}

func (v *viewLog) ShowScreen(s model.Screen)      { v.calls = append(v.calls, "show:"+s.String()) }
func (v *viewLog) FocusChatInput()                { v.calls = append(v.calls, "focus:chat") }
func (v *viewLog) FocusProjectName()              { v.calls = append(v.calls, "focus:name") }
func (v *viewLog) RefreshProjectName(name string) { v.calls = append(v.calls, "name:"+name) }

// manualScheduler holds scheduled funcs until fired.
type manualScheduler struct {
	delays    []time.Duration
	fns       []func()
	cancelled int
}

func (m *manualScheduler) schedule(d time.Duration, fn func()) func() {
	m.delays = append(m.delays, d)
	m.fns = append(m.fns, fn)
	return func() { m.cancelled++ }
}

func (m *manualScheduler) fire() {
	for _, fn := range m.fns {
		fn()
	}
	m.fns = nil
}

func newController() (*Controller, *viewLog, *manualScheduler, *[]events.ScreenChanged) {
	view := &viewLog{}
	sched := &manualScheduler{}
	bus := events.NewBus()
	var changes []events.ScreenChanged
	events.Subscribe(bus, func(ev events.ScreenChanged) { changes = append(changes, ev) })
	c := New(view, bus).WithScheduler(sched.schedule).WithLogger(logging.Discard())
	return c, view, sched, &changes
}

// =============================================================================
// INITIAL SCREEN TESTS
// =============================================================================

func TestInitial(t *testing.T) {
	tests := []struct {
		auth, project bool
		want          model.Screen
	}{
		{false, false, model.ScreenMarketing},
		{false, true, model.ScreenMarketing},
		{true, false, model.ScreenMarketing},
		{true, true, model.ScreenWorkspace},
	}
	for _, tt := range tests {
		if got := Initial(tt.auth, tt.project); got != tt.want {
			t.Errorf("Initial(%v, %v) = %v, want %v", tt.auth, tt.project, got, tt.want)
		}
	}
}

// =============================================================================
// SHOW TESTS
// =============================================================================

func TestShow_EntryEffects(t *testing.T) {
	c, view, _, changes := newController()
	c.ProjectName(func() string { return "Site" })

	c.Show(model.ScreenWorkspace)
	c.Show(model.ScreenProjectCreation)
	c.Show(model.ScreenMarketing)

	want := []string{
		"show:workspace", "name:Site", "focus:chat",
		"show:project-creation", "focus:name",
		"show:marketing",
	}
	if !reflect.DeepEqual(view.calls, want) {
		t.Errorf("calls = %v, want %v", view.calls, want)
	}
	if c.Current() != model.ScreenMarketing {
		t.Errorf("Current = %v", c.Current())
	}
	if len(*changes) != 3 || (*changes)[0].From != model.ScreenMarketing || (*changes)[0].To != model.ScreenWorkspace {
		t.Errorf("changes = %+v", *changes)
	}
}

func TestShow_NilView(t *testing.T) {
	c := New(nil, nil).WithLogger(logging.Discard())
	c.Show(model.ScreenWorkspace)
	if c.Current() != model.ScreenWorkspace {
		t.Errorf("Current = %v", c.Current())
	}
}

// =============================================================================
// TRANSITION TESTS
// =============================================================================

func TestNewProject_RunsCallbackFirst(t *testing.T) {
	c, view, _, _ := newController()
	c.OnNewProject(func() { view.calls = append(view.calls, "reset") })

	c.NewProject()

	want := []string{"reset", "show:project-creation", "focus:name"}
	if !reflect.DeepEqual(view.calls, want) {
		t.Errorf("calls = %v, want %v", view.calls, want)
	}
}

func TestProjectCreated_Delayed(t *testing.T) {
	c, _, sched, _ := newController()
	c.WithDelay(250 * time.Millisecond)
	c.Show(model.ScreenProjectCreation)

	c.ProjectCreated()
	if c.Current() != model.ScreenProjectCreation {
		t.Fatalf("navigated before delay: %v", c.Current())
	}
	if !c.PendingTransition() {
		t.Error("expected pending transition")
	}
	if len(sched.delays) != 1 || sched.delays[0] != 250*time.Millisecond {
		t.Errorf("delays = %v", sched.delays)
	}

	sched.fire()
	if c.Current() != model.ScreenWorkspace {
		t.Errorf("Current = %v, want workspace", c.Current())
	}
	if c.PendingTransition() {
		t.Error("transition still pending")
	}
}

func TestProjectCreated_DefaultDelay(t *testing.T) {
	c, _, sched, _ := newController()
	c.ProjectCreated()
	if sched.delays[0] != DefaultConfirmDelay {
		t.Errorf("delay = %v, want %v", sched.delays[0], DefaultConfirmDelay)
	}
}

func TestProjectCreated_CancelledByLogout(t *testing.T) {
	c, _, sched, _ := newController()
	c.Show(model.ScreenProjectCreation)
	c.ProjectCreated()

	c.Logout()
	sched.fire()

	if c.Current() != model.ScreenMarketing {
		t.Errorf("Current = %v, want marketing", c.Current())
	}
	if sched.cancelled != 1 {
		t.Errorf("cancelled = %d, want 1", sched.cancelled)
	}
}

func TestProjectCreated_SynchronousScheduler(t *testing.T) {
	c := New(nil, nil).WithLogger(logging.Discard()).
		WithScheduler(func(_ time.Duration, fn func()) func() { fn(); return func() {} })
	c.ProjectCreated()
	if c.Current() != model.ScreenWorkspace {
		t.Errorf("Current = %v", c.Current())
	}
	if c.PendingTransition() {
		t.Error("transition left pending")
	}
}

func TestProjectCreated_RealTimer(t *testing.T) {
	c := New(nil, nil).WithLogger(logging.Discard()).WithDelay(5 * time.Millisecond)
	c.ProjectCreated()
	deadline := time.Now().Add(time.Second)
	for c.Current() != model.ScreenWorkspace {
		if time.Now().After(deadline) {
			t.Fatal("timer never fired")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestLogout_Unconditional(t *testing.T) {
	for _, from := range []model.Screen{model.ScreenMarketing, model.ScreenProjectCreation, model.ScreenWorkspace} {
		c, _, _, _ := newController()
		c.Show(from)
		c.Logout()
		if c.Current() != model.ScreenMarketing {
			t.Errorf("Logout from %v ended on %v", from, c.Current())
		}
	}
}
