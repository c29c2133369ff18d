// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/l8vibe-tui/internal/events"
	"github.com/jeranaias/l8vibe-tui/internal/model"
)

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// commandHandler handles one slash command typed in the chat input.
type commandHandler func(m *Model, args []string) tea.Cmd

// commandHandlers maps command names to their handlers. /quit and /exit
// are handled by handleCommand itself.
var commandHandlers = map[string]commandHandler{
	"help":     handleHelpCommand,
	"?":        handleHelpCommand,
	"new":      handleNewCommand,
	"open":     handleOpenCommand,
	"projects": handleProjectsCommand,
	"preview":  handlePreviewCommand,
	"export":   handleExportCommand,
	"import":   handleImportCommand,
	"logout":   handleLogoutCommand,
}

// CommandHelp lists the slash commands.
const CommandHelp = "Commands: /new, /open NAME, /projects, /preview [desktop|tablet|mobile], " +
	"/export [json|md|html] [DIR], /import FILE, /logout, /quit"

// handleCommand processes slash commands using the command registry.
func (m Model) handleCommand(content string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(content)
	if len(parts) == 0 {
		return m, nil
	}

	name := strings.ToLower(strings.TrimPrefix(parts[0], "/"))
	args := parts[1:]

	if name == "quit" || name == "exit" {
		return m.quit()
	}

	handler, ok := commandHandlers[name]
	if !ok {
		m.toasts.Add(events.Error(fmt.Sprintf("Unknown command '%s'. Type /help for available commands", parts[0])))
		return m, nil
	}
	cmd := handler(&m, args)
	m.sync()
	return m, cmd
}

func handleHelpCommand(m *Model, args []string) tea.Cmd {
	m.toasts.Add(events.Info(CommandHelp))
	return nil
}

func handleNewCommand(m *Model, args []string) tea.Cmd {
	m.app.Nav.NewProject()
	return nil
}

func handleLogoutCommand(m *Model, args []string) tea.Cmd {
	m.app.Auth.Logout()
	return nil
}

func handleProjectsCommand(m *Model, args []string) tea.Cmd {
	return m.refreshCmd(OpProjects)
}

func handleOpenCommand(m *Model, args []string) tea.Cmd {
	name := strings.Join(args, " ")
	if name == "" {
		m.toasts.Add(events.Error("Usage: /open NAME"))
		return nil
	}
	for _, p := range m.app.Projects.Projects() {
		if p.Name == name || p.StorageID() == name {
			m.openProject(p)
			return nil
		}
	}
	m.toasts.Add(events.Error(fmt.Sprintf("No project named '%s'. Use /projects to refresh the list", name)))
	return nil
}

func handlePreviewCommand(m *Model, args []string) tea.Cmd {
	if len(args) == 0 {
		mode := m.app.Projects.CyclePreviewMode()
		m.toasts.Add(events.Info("Preview: " + string(mode)))
		return nil
	}
	if err := m.app.Projects.SetPreviewMode(model.PreviewMode(strings.ToLower(args[0]))); err != nil {
		m.toasts.Add(events.Error("Preview mode must be desktop, tablet or mobile"))
	}
	return nil
}

func handleExportCommand(m *Model, args []string) tea.Cmd {
	format, dir := "json", m.exportDir
	if len(args) > 0 {
		format = args[0]
	}
	if len(args) > 1 {
		dir = strings.Join(args[1:], " ")
	}
	if dir == "" {
		dir = "."
	}

	a := m.app
	return func() tea.Msg {
		path, err := a.ExportFormat(dir, format)
		detail := ""
		if err == nil {
			detail = "Saved to " + path
		}
		return OpDoneMsg{Op: OpExport, Err: err, Detail: detail}
	}
}

func handleImportCommand(m *Model, args []string) tea.Cmd {
	path := strings.Join(args, " ")
	if path == "" {
		m.toasts.Add(events.Error("Usage: /import FILE"))
		return nil
	}
	a := m.app
	return func() tea.Msg {
		_, err := a.ImportFile(path)
		return OpDoneMsg{Op: OpImport, Err: err}
	}
}
