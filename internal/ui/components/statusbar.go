// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/l8vibe-tui/internal/project"
	"github.com/jeranaias/l8vibe-tui/internal/ui/styles"
)

// =============================================================================
// STATUS BAR
// =============================================================================

// KeyHint is one shortcut shown in the status bar.
type KeyHint struct {
	Key  string
	Desc string
}

// StatusBar renders project statistics on the left and key hints on the
// right.
type StatusBar struct {
	Stats   *project.Stats
	Hints   []KeyHint
	Session string // time left in the session, empty to hide
	Width   int
	theme   *styles.Theme
}

// NewStatusBar creates a status bar for theme.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{Width: 80, theme: theme}
}

// View renders the bar. Hints that do not fit are dropped from the end.
func (s *StatusBar) View() string {
	left := s.renderStats()

	inner := s.Width - 2
	budget := inner - lipgloss.Width(left) - 2
	var hints []string
	used := 0
	for _, h := range s.Hints {
		r := s.theme.HintKey.Render(h.Key) + " " + s.theme.Hint.Render(h.Desc)
		w := lipgloss.Width(r)
		if used > 0 {
			w += 2
		}
		if used+w > budget {
			break
		}
		hints = append(hints, r)
		used += w
	}
	right := strings.Join(hints, "  ")

	gap := inner - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return s.theme.StatusBar.Width(s.Width).Render(left + strings.Repeat(" ", gap) + right)
}

func (s *StatusBar) renderStats() string {
	var parts []string
	if s.Stats != nil {
		parts = append(parts,
			s.stat("msgs", fmt.Sprintf("%d", s.Stats.ChatMessages)),
			s.stat("days", fmt.Sprintf("%d", s.Stats.DaysActive)),
		)
		preview := "off"
		if s.Stats.HasPreview {
			preview = "on"
		}
		parts = append(parts, s.stat("preview", preview))
	}
	if s.Session != "" {
		parts = append(parts, s.stat("session", s.Session))
	}
	return strings.Join(parts, "  ")
}

func (s *StatusBar) stat(label, value string) string {
	return s.theme.StatsLabel.Render(label+":") + s.theme.StatsValue.Render(value)
}
