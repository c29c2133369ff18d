// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/l8vibe-tui/internal/ui/styles"
	"github.com/jeranaias/l8vibe-tui/internal/util"
)

// =============================================================================
// HEADER COMPONENT
// =============================================================================

// Brand is the product name shown in the header.
const Brand = "L8Vibe"

// Header is the single-line title bar.
type Header struct {
	User    string // display name, empty when signed out
	Project string // current project name
	Width   int
	theme   *styles.Theme
}

// NewHeader creates a header for theme.
func NewHeader(theme *styles.Theme) *Header {
	return &Header{Width: 80, theme: theme}
}

// View renders the header: brand on the left, project and user on the right.
func (h *Header) View() string {
	width := h.Width
	if width < 20 {
		width = 20
	}

	brand := h.theme.Brand.Render("< " + Brand + " >")

	right := ""
	if h.Project != "" {
		right = h.theme.HeaderProject.Render(util.TruncateWidth(h.Project, width/3))
	}
	if h.User != "" {
		if right != "" {
			right += "  "
		}
		right += h.theme.HeaderUser.Render(h.User)
	} else {
		right += h.theme.Hint.Render("not signed in")
	}

	inner := width - 2
	gap := inner - lipgloss.Width(brand) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	line := brand + lipgloss.NewStyle().Width(gap).Render("") + right

	return h.theme.Header.Width(width).Render(line)
}
