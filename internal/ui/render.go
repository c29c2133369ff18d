// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/l8vibe-tui/internal/model"
	"github.com/jeranaias/l8vibe-tui/internal/ui/components"
	"github.com/jeranaias/l8vibe-tui/internal/util"
)

// Marketing copy.
const (
	heroTitle   = "Build web apps by chatting with AI"
	heroTagline = "Describe your idea. L8Vibe writes the code and shows you a live preview."
)

var heroFeatures = []string{
	"Chat-driven development with Claude",
	"Live preview framed for desktop, tablet and mobile",
	"Projects saved on the server, transcripts kept locally",
	"Export and import projects as JSON, Markdown or HTML",
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the current screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var body string
	switch m.screen {
	case model.ScreenWorkspace:
		body = m.viewWorkspace()
	case model.ScreenProjectCreation:
		body = m.viewCreation()
	default:
		body = m.viewMarketing()
	}

	bodyHeight := m.height - 2
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	lines := fitLines(body, bodyHeight)
	lines = m.overlayToasts(lines)

	return lipgloss.JoinVertical(lipgloss.Left,
		m.header.View(),
		strings.Join(lines, "\n"),
		m.status.View(),
	)
}

// fitLines splits s into exactly n lines, truncating or padding.
func fitLines(s string, n int) []string {
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[:n]
	}
	for len(lines) < n {
		lines = append(lines, "")
	}
	return lines
}

// overlayToasts replaces the bottom lines of the body with the toast stack,
// right-aligned.
func (m Model) overlayToasts(lines []string) []string {
	stack := components.RenderToastStack(m.toasts.Toasts(), m.width)
	if stack == "" {
		return lines
	}
	toastLines := strings.Split(stack, "\n")
	offset := len(lines) - len(toastLines)
	for i, tl := range toastLines {
		if offset+i < 0 {
			continue
		}
		lines[offset+i] = lipgloss.PlaceHorizontal(m.width, lipgloss.Right, tl)
	}
	return lines
}

func (m Model) center(s string) string {
	return lipgloss.PlaceHorizontal(m.width, lipgloss.Center, s)
}

// =============================================================================
// MARKETING
// =============================================================================

func (m Model) viewMarketing() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(m.center(m.theme.Hero.Render(heroTitle)))
	b.WriteString("\n")
	b.WriteString(m.center(m.theme.Tagline.Render(util.TruncateWidth(heroTagline, m.width-4))))
	b.WriteString("\n\n")

	features := make([]string, 0, len(heroFeatures))
	for _, f := range heroFeatures {
		features = append(features, m.theme.Feature.Render("* "+f))
	}
	b.WriteString(m.center(strings.Join(features, "\n")))
	b.WriteString("\n\n")

	if m.actions {
		b.WriteString(m.center(m.viewProjectsMenu()))
	} else {
		b.WriteString(m.center(m.viewLoginForm()))
	}
	return b.String()
}

func (m Model) viewLoginForm() string {
	button := m.theme.Button.Render("Sign in")
	if m.busy {
		button = m.theme.ButtonDisabled.Render("Signing in...")
	}
	content := m.theme.FormTitle.Render("Sign in to start building") + "\n" +
		m.login.View(m.theme) + "\n" + button
	return m.theme.Form.Render(content)
}

func (m Model) viewProjectsMenu() string {
	var b strings.Builder
	b.WriteString(m.theme.FormTitle.Render("Projects"))
	b.WriteString("\n")

	if p := m.app.Projects.Current(); p != nil {
		line := "Continue " + p.Name
		b.WriteString(m.menuItem(line, m.picker == -1))
		b.WriteString("\n\n")
	}

	projects := m.app.Projects.Projects()
	for i, p := range projects {
		name := p.Name
		if name == "" {
			name = "Unnamed Project"
		}
		b.WriteString(m.menuItem(name, m.picker == i))
		b.WriteString("\n")
	}
	if len(projects) > 0 {
		b.WriteString(m.theme.Hint.Render(strings.Repeat("-", 24)))
		b.WriteString("\n")
	}
	b.WriteString(m.menuItem("+ Create Project", m.picker == len(projects) ||
		(m.picker == -1 && m.app.Projects.Current() == nil)))
	return m.theme.Form.Render(b.String())
}

func (m Model) menuItem(label string, selected bool) string {
	if selected {
		return m.theme.HintKey.Render("> " + label)
	}
	return m.theme.Feature.Render(label)
}

// =============================================================================
// PROJECT CREATION
// =============================================================================

func (m Model) viewCreation() string {
	button := m.theme.Button.Render("Create Project")
	if m.busy {
		button = m.theme.ButtonDisabled.Render("Creating...")
	}
	content := m.theme.FormTitle.Render("Create a new project") + "\n" +
		m.create.View(m.theme) + "\n" + button + "\n\n" +
		m.theme.Hint.Render("Enter next field / create   Esc back")
	return "\n" + m.center(m.theme.Form.Render(content))
}

// =============================================================================
// WORKSPACE
// =============================================================================

func (m Model) viewWorkspace() string {
	typing := ""
	if m.typing {
		typing = m.spin.View() + m.theme.Typing.Render(" L8Vibe is typing...")
	}

	pane := m.chat.View() + "\n" + typing + "\n" + m.input.View()
	chat := m.theme.ChatPane.Width(m.chatWidth - 2).Render(pane)
	preview := m.preview.View()

	if m.previewSideBySide() {
		return lipgloss.JoinHorizontal(lipgloss.Top, chat, preview)
	}
	return lipgloss.JoinVertical(lipgloss.Left, chat, preview)
}
