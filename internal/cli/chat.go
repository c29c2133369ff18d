// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Line-mode chat on the current project.
//
// Command: chat
// Short:   Chat with the assistant without the full-screen UI
//
// Interactive Commands (during chat):
//   /help, /h           Show available commands
//   /history            Show the conversation so far
//   /preview [mode]     Show the preview, or set desktop|tablet|mobile
//   /projects           List your projects
//   /open NAME          Switch to another project
//   /export [format]    Export the project (json, md, html)
//   /status, /s         Show session and project summary
//   /quit, /q           Exit chat
//   Ctrl+C              Cancel the message being sent
//   Ctrl+D              Exit chat
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/peterh/liner"

	"github.com/jeranaias/l8vibe-tui/internal/app"
	"github.com/jeranaias/l8vibe-tui/internal/config"
	"github.com/jeranaias/l8vibe-tui/internal/model"
	"github.com/jeranaias/l8vibe-tui/internal/ui/components"
	"github.com/jeranaias/l8vibe-tui/internal/ui/styles"
)

// historyLimit is how many earlier messages the welcome banner replays.
const historyLimit = 6

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides input history and line editing for interactive chat.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a line editor with history loaded from the config
// directory.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}

	c := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(configDir, "chat_history"),
	}
	c.LoadHistory()
	return c
}

// LoadHistory loads command history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line with the given prompt. Non-empty input is added
// to the history.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory writes the history file with owner-only permissions.
func (c *ChatCLI) SaveHistory() {
	if err := os.MkdirAll(filepath.Dir(c.historyFile), 0700); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

// Close saves history and restores the terminal.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// SESSION STATE
// =============================================================================

// chatSession is the line-mode loop over an initialized application.
type chatSession struct {
	a         *app.App
	out       io.Writer
	messages  *components.MessageRenderer
	preview   *components.PreviewPane
	exportDir string

	mu     sync.Mutex
	cancel context.CancelFunc
}

func newChatSession(a *app.App, out io.Writer, width int) *chatSession {
	cfg := a.Config()
	theme := styles.NewTheme(cfg.UI.Theme)
	theme.SetSize(width, 0)

	messages := components.NewMessageRenderer(theme, cfg.UI.Markdown)
	messages.SetWidth(width)

	preview := components.NewPreviewPane(theme, cfg.UI.PreviewStyle)
	preview.MaxWidth = width
	preview.MaxHeight = 40

	dir, err := os.Getwd()
	if err != nil {
		dir = "."
	}
	return &chatSession{a: a, out: out, messages: messages, preview: preview, exportDir: dir}
}

// =============================================================================
// CHAT HANDLER
// =============================================================================

// HandleChat runs the interactive line-mode chat.
func HandleChat(args Args) error {
	if err := RequiresTTY("chat"); err != nil {
		return err
	}

	view := newLineView(os.Stdout)
	return withApp(context.Background(), args, view, func(ctx context.Context, a *app.App) error {
		if err := requireSession(a); err != nil {
			return err
		}
		if a.Projects.Current() == nil {
			return ErrNoProject
		}

		s := newChatSession(a, os.Stdout, GetTerminalWidth())
		input := NewChatCLI()
		defer input.Close()

		// First Ctrl+C outside the prompt cancels the message in flight.
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigChan)
		go func() {
			for range sigChan {
				if s.cancelSend() {
					fmt.Fprintln(os.Stderr, WarningStyle.Render("[Cancelled]"))
				}
			}
		}()

		s.printWelcome()
		for {
			line, err := input.ReadInput(PromptStyle.Render("you> "))
			if err != nil {
				// Ctrl+C at the prompt, Ctrl+D, or a closed stdin.
				if !errors.Is(err, liner.ErrPromptAborted) && !errors.Is(err, io.EOF) {
					return err
				}
				fmt.Fprintln(s.out)
				return nil
			}
			if s.handleLine(ctx, line) {
				return nil
			}
		}
	})
}

// handleLine processes one line of input and reports whether to exit.
func (s *chatSession) handleLine(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if strings.EqualFold(line, "exit") || strings.EqualFold(line, "quit") {
		return true
	}
	if strings.HasPrefix(line, "/") {
		quit, err := s.handleSlashCommand(ctx, line)
		if err != nil {
			DisplayError(s.out, err)
		}
		return quit
	}
	if err := s.send(ctx, line); err != nil {
		DisplayError(s.out, err)
	}
	return false
}

// =============================================================================
// MESSAGE PROCESSING
// =============================================================================

func (s *chatSession) send(parent context.Context, text string) error {
	ctx, cancel := context.WithTimeout(parent, s.a.Config().HTTPTimeout())
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()
	defer s.cancelSend()

	before := s.a.Projects.Preview().Content

	reply, err := s.a.Chat.Send(ctx, text)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, s.messages.Render(reply))
	fmt.Fprintln(s.out)

	if p := s.a.Projects.Preview(); p.Content != "" && p.Content != before {
		fmt.Fprintln(s.out, DimStyle.Render("Preview updated. Type /preview to show it."))
	}
	return nil
}

// cancelSend cancels the message in flight and reports whether there was one.
func (s *chatSession) cancelSend() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel == nil {
		return false
	}
	s.cancel()
	s.cancel = nil
	return true
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleSlashCommand runs a /command and reports whether to exit.
func (s *chatSession) handleSlashCommand(ctx context.Context, line string) (bool, error) {
	fields := strings.Fields(line)
	name, rest := strings.ToLower(fields[0]), fields[1:]

	switch name {
	case "/quit", "/q", "/exit":
		return true, nil

	case "/help", "/h", "/?":
		s.printHelp()

	case "/history":
		s.printHistory(0)

	case "/preview":
		if len(rest) > 0 {
			if err := s.a.Projects.SetPreviewMode(model.PreviewMode(strings.ToLower(rest[0]))); err != nil {
				return false, NewValidationError("preview mode", rest[0], "must be desktop, tablet or mobile")
			}
		}
		s.preview.Preview = s.a.Projects.Preview()
		fmt.Fprintln(s.out, s.preview.View())

	case "/projects", "/ls":
		ps, err := s.a.RefreshProjects(ctx)
		if err != nil {
			return false, err
		}
		writeProjectTable(s.out, ps, s.a.Projects.Current())

	case "/open":
		if len(rest) == 0 {
			return false, ErrMissingArgument("project", "/open NAME")
		}
		return false, s.open(ctx, strings.Join(rest, " "))

	case "/export":
		format := "json"
		if len(rest) > 0 {
			format = rest[0]
		}
		path, err := s.a.ExportFormat(s.exportDir, format)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(s.out, "%s %s\n", SuccessStyle.Render("Saved to"), path)

	case "/status", "/s":
		writeStatus(s.out, s.a.Debug())

	default:
		return false, NewValidationError("command", name, "type /help for available commands")
	}
	return false, nil
}

// open switches to the project named name, refreshing the list if it is not
// known yet.
func (s *chatSession) open(ctx context.Context, name string) error {
	find := func() *model.Project {
		for _, p := range s.a.Projects.Projects() {
			if strings.EqualFold(p.Name, name) {
				return p
			}
		}
		return nil
	}

	p := find()
	if p == nil {
		if _, err := s.a.RefreshProjects(ctx); err != nil {
			return err
		}
		p = find()
	}
	if p == nil {
		return fmt.Errorf("no project named %q: %w", name, os.ErrNotExist)
	}
	if err := s.a.Projects.Open(p.StorageID()); err != nil {
		return err
	}
	s.printHistory(historyLimit)
	return nil
}

// =============================================================================
// OUTPUT
// =============================================================================

func (s *chatSession) printWelcome() {
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, TitleStyle.Render(components.Brand+" chat"))
	fmt.Fprintln(s.out, RenderSeparator(30))
	if user, ok := s.a.Auth.CurrentUser(); ok {
		fmt.Fprintln(s.out, RenderField("Signed in as", user.DisplayName))
	}
	if p := s.a.Projects.Current(); p != nil {
		fmt.Fprintln(s.out, RenderField("Project", p.Name))
	}
	fmt.Fprintln(s.out)
	s.printHistory(historyLimit)
	fmt.Fprintln(s.out, DimStyle.Render("Type your message and press Enter. Commands: /help, /quit"))
	fmt.Fprintln(s.out)
}

func (s *chatSession) printHelp() {
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, TitleStyle.Render("Available Commands"))
	fmt.Fprintln(s.out, RenderSeparator(20))

	commands := []struct {
		cmd  string
		desc string
	}{
		{"/help, /h", "Show this help"},
		{"/history", "Show the conversation so far"},
		{"/preview [mode]", "Show the preview or set desktop|tablet|mobile"},
		{"/projects", "List your projects"},
		{"/open NAME", "Switch to another project"},
		{"/export [format]", "Export the project (json, md, html)"},
		{"/status, /s", "Show session and project summary"},
		{"/quit, /q", "Exit chat"},
	}
	for _, c := range commands {
		fmt.Fprintf(s.out, "  %s  %s\n", SuccessStyle.Render(fmt.Sprintf("%-17s", c.cmd)), DimStyle.Render(c.desc))
	}
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, DimStyle.Render("Tip: Ctrl+C cancels the message being sent, Ctrl+D exits"))
	fmt.Fprintln(s.out)
}

// printHistory prints the last limit messages, or all of them when limit
// is zero.
func (s *chatSession) printHistory(limit int) {
	msgs := s.a.Chat.Messages()
	if len(msgs) == 0 {
		fmt.Fprintln(s.out, DimStyle.Render("No messages yet. Tell L8Vibe what to build."))
		fmt.Fprintln(s.out)
		return
	}
	if limit > 0 && len(msgs) > limit {
		fmt.Fprintln(s.out, DimStyle.Render(fmt.Sprintf("... %d earlier messages (/history shows all)", len(msgs)-limit)))
		msgs = msgs[len(msgs)-limit:]
	}
	fmt.Fprintln(s.out, s.messages.RenderTranscript(msgs))
	fmt.Fprintln(s.out)
}
