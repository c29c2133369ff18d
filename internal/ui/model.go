// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/l8vibe-tui/internal/app"
	"github.com/jeranaias/l8vibe-tui/internal/model"
	"github.com/jeranaias/l8vibe-tui/internal/session"
	"github.com/jeranaias/l8vibe-tui/internal/ui/components"
	"github.com/jeranaias/l8vibe-tui/internal/ui/styles"
)

// Options configures a Model.
type Options struct {
	// Theme defaults to styles.NewTheme(cfg.UI.Theme).
	Theme *styles.Theme
	// ExportDir is where /export writes files (default: working directory).
	ExportDir string
	// Now is the clock used for stats (default time.Now).
	Now func() time.Time
	// SkipTicks disables the periodic toast and session commands.
	SkipTicks bool
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model of the l8vibe TUI.
type Model struct {
	app       *app.App
	ctx       context.Context
	theme     *styles.Theme
	keys      KeyMap
	now       func() time.Time
	exportDir string
	skipTicks bool

	// Dimensions
	width     int
	height    int
	chatWidth int

	// State mirrored from view calls
	screen  model.Screen
	actions bool
	typing  bool

	// busy is set while a login or create request is in flight.
	busy        bool
	sessionLeft string
	warned      bool
	quitting    bool

	// Components
	header   *components.Header
	status   *components.StatusBar
	toasts   *components.ToastManager
	messages *components.MessageRenderer
	preview  *components.PreviewPane

	// Inputs
	login  form
	create form
	input  textinput.Model
	chat   viewport.Model
	spin   spinner.Model

	// picker is the selected row of the projects menu; -1 when the menu
	// does not have focus.
	picker int

	// rendered tracks what the transcript viewport currently shows.
	rendered      int
	renderedWidth int
}

// New creates a model over a. The app must not have been initialised yet;
// Init runs App.Init as its first command.
func New(ctx context.Context, a *app.App, opts Options) Model {
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme(a.Config().UI.Theme)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	input := textinput.New()
	input.Placeholder = "Describe what you want to build..."
	input.Prompt = "> "
	input.CharLimit = 4000

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = theme.Typing

	m := Model{
		app:       a,
		ctx:       ctx,
		theme:     theme,
		keys:      DefaultKeyMap(),
		now:       now,
		exportDir: opts.ExportDir,
		skipTicks: opts.SkipTicks,
		width:     100,
		height:    30,
		screen:    model.ScreenMarketing,
		header:    components.NewHeader(theme),
		status:    components.NewStatusBar(theme),
		toasts:    components.NewToastManager(),
		messages:  components.NewMessageRenderer(theme, a.Config().UI.Markdown),
		preview:   components.NewPreviewPane(theme, a.Config().UI.PreviewStyle),
		login:     newLoginForm(),
		create:    newCreateForm(),
		input:     input,
		chat:      viewport.New(80, 20),
		spin:      spin,
		picker:    -1,
		rendered:  -1,
	}
	m.login.Focus(0)
	m.layout()
	return m
}

// Init starts the app restore sequence and the periodic ticks.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.initCmd(), textinput.Blink}
	if !m.skipTicks {
		cmds = append(cmds, components.ToastTickCmd(), session.TickCmd(session.TickInterval))
	}
	return tea.Batch(cmds...)
}

func (m Model) initCmd() tea.Cmd {
	a, ctx := m.app, m.ctx
	return func() tea.Msg {
		a.Init(ctx)
		return InitDoneMsg{}
	}
}

// Screen returns the visible screen.
func (m Model) Screen() model.Screen {
	return m.screen
}

// =============================================================================
// LAYOUT
// =============================================================================

// previewSideBySide reports whether the preview sits right of the chat.
func (m *Model) previewSideBySide() bool {
	return m.theme.GetLayoutMode() == styles.LayoutWide
}

// layout recomputes component sizes from the window size.
func (m *Model) layout() {
	m.theme.SetSize(m.width, m.height)
	m.header.Width = m.width
	m.status.Width = m.width

	formWidth := m.width - 12
	if formWidth > 60 {
		formWidth = 60
	}
	if formWidth < 20 {
		formWidth = 20
	}
	m.login.SetWidth(formWidth)
	m.create.SetWidth(formWidth)

	bodyHeight := m.height - 2
	if bodyHeight < 6 {
		bodyHeight = 6
	}

	chatWidth := m.width
	chatHeight := bodyHeight
	if m.previewSideBySide() {
		m.preview.MaxWidth = m.width / 2
		m.preview.MaxHeight = bodyHeight
		chatWidth = m.width - m.preview.Width()
	} else {
		m.preview.MaxWidth = m.width
		m.preview.MaxHeight = bodyHeight / 3
		chatHeight = bodyHeight - m.preview.MaxHeight
	}

	// Border (2) + padding (2) around the chat pane; input and typing rows.
	inner := chatWidth - 4
	if inner < 10 {
		inner = 10
	}
	vpHeight := chatHeight - 2 - 2
	if vpHeight < 1 {
		vpHeight = 1
	}
	m.chatWidth = chatWidth
	m.chat.Width = inner
	m.chat.Height = vpHeight
	m.input.Width = inner - 3
	m.messages.SetWidth(inner)
}

// =============================================================================
// SYNC
// =============================================================================

// sync refreshes derived component state from the controllers.
func (m *Model) sync() {
	if user, ok := m.app.Auth.CurrentUser(); ok {
		m.header.User = user.DisplayName
	} else {
		m.header.User = ""
	}
	if p := m.app.Projects.Current(); p != nil {
		m.header.Project = p.Name
	} else {
		m.header.Project = ""
	}

	m.preview.Preview = m.app.Projects.Preview()
	if m.previewSideBySide() {
		m.layout()
	}

	m.status.Stats = m.app.Projects.Stats(m.now(), m.app.Chat.Count())
	m.status.Session = m.sessionLeft
	m.status.Hints = m.screenHints()

	if n := len(m.app.Projects.Projects()); m.picker >= n {
		m.picker = n - 1
	}

	m.renderTranscript()
}

func (m *Model) renderTranscript() {
	msgs := m.app.Chat.Messages()
	if len(msgs) == m.rendered && m.chat.Width == m.renderedWidth {
		return
	}
	if len(msgs) == 0 {
		m.chat.SetContent(m.theme.PreviewEmpty.Render("No messages yet. Tell L8Vibe what to build."))
	} else {
		m.chat.SetContent(m.messages.RenderTranscript(msgs))
	}
	m.rendered = len(msgs)
	m.renderedWidth = m.chat.Width
	m.chat.GotoBottom()
}

func (m *Model) screenHints() []components.KeyHint {
	k := m.keys
	switch m.screen {
	case model.ScreenWorkspace:
		return hints(k.NewProject, k.CyclePreview, k.Logout, k.Quit)
	case model.ScreenProjectCreation:
		return hints(k.Submit, k.NextField, k.Logout, k.Quit)
	default:
		if m.actions {
			return hints(k.NewProject, k.Refresh, k.Logout, k.Quit)
		}
		return hints(k.Submit, k.NextField, k.Quit)
	}
}
