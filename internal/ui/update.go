// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/l8vibe-tui/internal/events"
	"github.com/jeranaias/l8vibe-tui/internal/model"
	"github.com/jeranaias/l8vibe-tui/internal/session"
	"github.com/jeranaias/l8vibe-tui/internal/ui/components"
)

// NoticeSessionExpired is shown when the session runs out while the program
// is open.
const NoticeSessionExpired = "Your session has expired. Please sign in again."

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages and returns the updated model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		m.sync()
		return m, nil

	// View calls
	case ShowScreenMsg:
		m.screen = msg.Screen
		m.picker = -1
		m.sync()
		return m, nil

	case FocusMsg:
		switch msg.Target {
		case FocusChatInput:
			return m, m.input.Focus()
		case FocusProjectName:
			m.input.Blur()
			return m, m.create.Focus(0)
		}
		return m, nil

	case ProjectNameMsg:
		m.header.Project = msg.Name
		return m, nil

	case NoticeMsg:
		m.toasts.Add(msg.Notice)
		return m, nil

	case TypingMsg:
		m.typing = msg.Typing
		m.sync()
		if m.typing {
			return m, m.spin.Tick
		}
		return m, nil

	case ProjectActionsMsg:
		m.actions = msg.Enabled
		if !m.actions {
			m.picker = -1
			m.sessionLeft = ""
			m.warned = false
		}
		m.sync()
		return m, nil

	case ClearFormsMsg:
		m.input.Reset()
		return m, tea.Batch(m.login.Reset(), m.create.Reset())

	// Operations
	case InitDoneMsg:
		m.refreshSession(m.now())
		m.sync()
		return m, nil

	case OpDoneMsg:
		return m.handleOpDone(msg)

	// Ticks
	case components.ToastTickMsg:
		m.toasts.Tick()
		m.sync()
		return m, components.ToastTickCmd()

	case session.TickMsg:
		m.handleSessionTick(msg.Time)
		m.sync()
		return m, session.TickCmd(session.TickInterval)

	case spinner.TickMsg:
		if !m.typing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, m.updateFocused(msg)
}

// updateFocused forwards msg (cursor blink and the like) to the input of the
// visible screen.
func (m *Model) updateFocused(msg tea.Msg) tea.Cmd {
	switch m.screen {
	case model.ScreenWorkspace:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return cmd
	case model.ScreenProjectCreation:
		return m.create.Update(msg)
	default:
		if !m.actions {
			return m.login.Update(msg)
		}
	}
	return nil
}

func (m Model) handleOpDone(msg OpDoneMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg.Op {
	case OpLogin:
		m.busy = false
		if msg.Err == nil {
			m.login.Reset()
			m.login.Blur()
			m.refreshSession(m.now())
			cmd = m.refreshCmd(OpRefresh)
		} else {
			m.login.SetValue(1, "")
		}
	case OpCreate:
		m.busy = false
	case OpExport, OpProjects:
		if msg.Err == nil && msg.Detail != "" {
			m.toasts.Add(events.Info(msg.Detail))
		}
	case OpImport, OpSend, OpRefresh:
	}
	m.sync()
	return m, cmd
}

// =============================================================================
// SESSION
// =============================================================================

func (m *Model) handleSessionTick(now time.Time) {
	switch res := m.app.CheckSession(now).(type) {
	case session.ExpiredMsg:
		m.toasts.Add(events.Error(NoticeSessionExpired))
		m.sessionLeft = ""
		m.warned = false
		return
	case session.ExpiryWarningMsg:
		if !m.warned {
			m.toasts.Add(events.Info("Session expires in " + session.FormatDuration(res.Remaining)))
			m.warned = true
		}
	}
	m.refreshSession(now)
}

func (m *Model) refreshSession(now time.Time) {
	sess, ok := m.app.Auth.Session()
	if !ok {
		m.sessionLeft = ""
		return
	}
	m.sessionLeft = session.FormatDuration(m.app.Sessions.Remaining(sess, now))
}

// =============================================================================
// KEYS
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Dismiss) && m.toasts.HasToasts() && m.screen != model.ScreenProjectCreation:
		m.toasts.DismissNewest()
		return m, nil
	}

	switch m.screen {
	case model.ScreenWorkspace:
		return m.handleWorkspaceKey(msg)
	case model.ScreenProjectCreation:
		return m.handleCreationKey(msg)
	default:
		return m.handleMarketingKey(msg)
	}
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	// Close persists again and reports errors; the state is saved here so
	// an interrupted shutdown keeps it.
	_ = m.app.Persist()
	return m, tea.Quit
}

func (m Model) handleMarketingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !m.actions {
		switch {
		case key.Matches(msg, m.keys.NextField):
			return m, m.login.Move(1, 2)
		case key.Matches(msg, m.keys.PrevField):
			return m, m.login.Move(-1, 2)
		case key.Matches(msg, m.keys.Submit):
			if m.login.Focused() == 0 {
				return m, m.login.Focus(1)
			}
			return m.submitLogin()
		}
		return m, m.login.Update(msg)
	}

	projects := m.app.Projects.Projects()
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.picker > -1 {
			m.picker--
		}
	case key.Matches(msg, m.keys.Down):
		if m.picker < len(projects) {
			m.picker++
		}
	case key.Matches(msg, m.keys.Submit):
		switch {
		case m.picker >= 0 && m.picker < len(projects):
			m.openProject(projects[m.picker])
		case m.picker == -1 && m.app.Projects.Current() != nil:
			m.app.Nav.Show(model.ScreenWorkspace)
		default:
			m.app.Nav.NewProject()
		}
	case key.Matches(msg, m.keys.NewProject):
		m.app.Nav.NewProject()
	case key.Matches(msg, m.keys.Refresh):
		return m, m.refreshCmd(OpRefresh)
	case key.Matches(msg, m.keys.Logout):
		m.app.Auth.Logout()
	}
	return m, nil
}

func (m Model) handleCreationKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	const n = 3
	switch {
	case key.Matches(msg, m.keys.NextField):
		return m, m.create.Move(1, n)
	case key.Matches(msg, m.keys.PrevField):
		return m, m.create.Move(-1, n)
	case key.Matches(msg, m.keys.Submit):
		if m.create.Focused() < n-1 {
			return m, m.create.Move(1, n)
		}
		return m.submitCreate()
	case key.Matches(msg, m.keys.Dismiss):
		// Esc leaves the form even while a toast is showing.
		if m.toasts.HasToasts() {
			m.toasts.DismissNewest()
		}
		m.app.Nav.Show(model.ScreenMarketing)
		return m, nil
	case key.Matches(msg, m.keys.Logout):
		m.app.Auth.Logout()
		return m, nil
	}
	return m, m.create.Update(msg)
}

func (m Model) handleWorkspaceKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.NewProject):
		m.app.Nav.NewProject()
		return m, nil
	case key.Matches(msg, m.keys.CyclePreview):
		m.app.Projects.CyclePreviewMode()
		m.sync()
		return m, nil
	case key.Matches(msg, m.keys.Logout):
		m.app.Auth.Logout()
		return m, nil
	case key.Matches(msg, m.keys.PageUp, m.keys.PageDown, m.keys.Up, m.keys.Down):
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(msg)
		return m, cmd
	case key.Matches(msg, m.keys.Submit):
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}
		if strings.HasPrefix(text, "/") {
			m.input.Reset()
			return m.handleCommand(text)
		}
		if m.typing || m.app.Chat.Pending() {
			return m, nil
		}
		m.input.Reset()
		return m, m.sendCmd(text)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) openProject(p *model.Project) {
	if err := m.app.Projects.Open(p.StorageID()); err != nil {
		m.toasts.Add(events.Error(err.Error()))
		return
	}
	m.app.Nav.Show(model.ScreenWorkspace)
}

// =============================================================================
// COMMANDS
// =============================================================================

// opContext bounds a background operation by the configured HTTP timeout.
func (m *Model) opContext() (context.Context, context.CancelFunc) {
	if d := m.app.Config().HTTPTimeout(); d > 0 {
		return context.WithTimeout(m.ctx, d)
	}
	return context.WithCancel(m.ctx)
}

func (m Model) submitLogin() (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	m.busy = true
	email, password := m.login.Value(0), m.login.Value(1)
	a := m.app
	ctx, cancel := m.opContext()
	return m, func() tea.Msg {
		defer cancel()
		return OpDoneMsg{Op: OpLogin, Err: a.Auth.Login(ctx, email, password)}
	}
}

func (m Model) submitCreate() (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	m.busy = true
	name, description, apiKey := m.create.Value(0), m.create.Value(1), m.create.Value(2)
	a := m.app
	ctx, cancel := m.opContext()
	return m, func() tea.Msg {
		defer cancel()
		_, err := a.Projects.Create(ctx, name, description, apiKey)
		return OpDoneMsg{Op: OpCreate, Err: err}
	}
}

func (m *Model) sendCmd(text string) tea.Cmd {
	a := m.app
	ctx, cancel := m.opContext()
	return func() tea.Msg {
		defer cancel()
		_, err := a.Chat.Send(ctx, text)
		return OpDoneMsg{Op: OpSend, Err: err}
	}
}

func (m *Model) refreshCmd(op Op) tea.Cmd {
	a := m.app
	ctx, cancel := m.opContext()
	return func() tea.Msg {
		defer cancel()
		ps, err := a.RefreshProjects(ctx)
		return OpDoneMsg{Op: op, Err: err, Detail: projectSummary(ps)}
	}
}

func projectSummary(ps []*model.Project) string {
	if len(ps) == 0 {
		return "No projects yet"
	}
	names := make([]string, 0, len(ps))
	for _, p := range ps {
		names = append(names, p.Name)
	}
	return "Projects: " + strings.Join(names, ", ")
}
