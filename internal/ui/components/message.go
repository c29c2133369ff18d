// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/l8vibe-tui/internal/model"
	"github.com/jeranaias/l8vibe-tui/internal/ui/styles"
)

// =============================================================================
// MESSAGE RENDERER
// =============================================================================

// MessageRenderer renders transcript entries. Assistant replies go through
// glamour when markdown is enabled; user text is shown verbatim.
type MessageRenderer struct {
	theme    *styles.Theme
	markdown bool
	width    int
	md       *glamour.TermRenderer
}

// NewMessageRenderer creates a renderer for theme.
func NewMessageRenderer(theme *styles.Theme, markdown bool) *MessageRenderer {
	return &MessageRenderer{theme: theme, markdown: markdown, width: 80}
}

// SetWidth changes the wrap width. The glamour renderer is rebuilt lazily.
func (r *MessageRenderer) SetWidth(width int) {
	if width < 20 {
		width = 20
	}
	if width != r.width {
		r.width = width
		r.md = nil
	}
}

// Render renders one message with its label line.
func (r *MessageRenderer) Render(msg model.ChatMessage) string {
	label := r.theme.AssistantLabel.Render(msg.Sender.DisplayName())
	body := r.renderAssistant(msg.Content)
	if msg.IsUser() {
		label = r.theme.UserLabel.Render(msg.Sender.DisplayName())
		body = r.theme.UserText.Width(r.width).Render(msg.Content)
	}

	if !msg.Timestamp.IsZero() {
		label += " " + r.theme.Timestamp.Render(msg.Timestamp.Local().Format("15:04"))
	}
	return label + "\n" + body
}

// RenderTranscript renders msgs in order separated by blank lines.
func (r *MessageRenderer) RenderTranscript(msgs []model.ChatMessage) string {
	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		parts = append(parts, r.Render(m))
	}
	return strings.Join(parts, "\n\n")
}

func (r *MessageRenderer) renderAssistant(content string) string {
	if r.markdown {
		if md := r.renderer(); md != nil {
			if out, err := md.Render(content); err == nil {
				return strings.TrimRight(out, "\n")
			}
		}
	}
	return r.theme.AssistantText.Width(r.width).Render(content)
}

func (r *MessageRenderer) renderer() *glamour.TermRenderer {
	if r.md != nil {
		return r.md
	}
	style := "light"
	if r.theme.IsDark {
		style = "dark"
	}
	md, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(r.width-2),
	)
	if err != nil {
		r.markdown = false
		return nil
	}
	r.md = md
	return md
}
