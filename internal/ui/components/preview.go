// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"

	"github.com/jeranaias/l8vibe-tui/internal/model"
	"github.com/jeranaias/l8vibe-tui/internal/project"
	"github.com/jeranaias/l8vibe-tui/internal/ui/styles"
	"github.com/jeranaias/l8vibe-tui/internal/util"
)

// =============================================================================
// PREVIEW PANE
// =============================================================================

// PreviewPlaceholder is shown before anything has been generated.
const PreviewPlaceholder = "Your generated app will appear here"

// PreviewPane renders the preview surface framed by mode.
type PreviewPane struct {
	Preview   project.Preview
	MaxWidth  int
	MaxHeight int
	// Style is the chroma style for HTML content.
	Style string
	theme *styles.Theme
}

// NewPreviewPane creates a pane for theme highlighting with chromaStyle.
func NewPreviewPane(theme *styles.Theme, chromaStyle string) *PreviewPane {
	return &PreviewPane{MaxWidth: 100, MaxHeight: 20, Style: chromaStyle, theme: theme}
}

// Width returns the pane width: the mode's column budget capped by MaxWidth.
func (p *PreviewPane) Width() int {
	w := p.Preview.Mode.Width()
	if p.Preview.Mode == "" {
		w = model.PreviewDesktop.Width()
	}
	if p.MaxWidth > 0 && w > p.MaxWidth {
		w = p.MaxWidth
	}
	if w < 20 {
		w = 20
	}
	return w
}

// View renders the pane.
func (p *PreviewPane) View() string {
	width := p.Width()
	inner := width - 4

	mode := p.Preview.Mode
	if mode == "" {
		mode = model.PreviewDesktop
	}
	title := p.theme.PreviewTitle.Render("Preview") + " " + p.modeTabs(mode)

	var body string
	switch {
	case !p.Preview.Active:
		body = p.theme.PreviewEmpty.Render(PreviewPlaceholder)
	case p.Preview.Kind == project.PreviewURL:
		body = p.theme.Label.Render("Open: ") + p.theme.HeaderUser.Underline(true).Render(util.TruncateWidth(p.Preview.Content, inner-6))
	default:
		body = HighlightHTML(clipLines(p.Preview.Content, inner, p.MaxHeight-3), p.Style, p.theme.HasTrueColor)
	}

	return p.theme.PreviewFrame.Width(width - 2).Render(title + "\n\n" + body)
}

func (p *PreviewPane) modeTabs(current model.PreviewMode) string {
	tabs := make([]string, 0, len(model.PreviewModes))
	for _, m := range model.PreviewModes {
		if m == current {
			tabs = append(tabs, p.theme.HintKey.Render(fmt.Sprintf("[%s]", m)))
		} else {
			tabs = append(tabs, p.theme.Hint.Render(string(m)))
		}
	}
	return strings.Join(tabs, " ")
}

// clipLines truncates each line to width cells and keeps at most maxLines.
func clipLines(content string, width, maxLines int) string {
	lines := strings.Split(strings.ReplaceAll(content, "\r", ""), "\n")
	if maxLines > 0 && len(lines) > maxLines {
		lines = append(lines[:maxLines-1], "...")
	}
	for i, l := range lines {
		lines[i] = util.TruncateWidth(strings.ReplaceAll(l, "\t", "  "), width)
	}
	return strings.Join(lines, "\n")
}

// =============================================================================
// SYNTAX HIGHLIGHTING (Chroma-based)
// =============================================================================

// HighlightHTML applies chroma highlighting to markup. It returns the input
// unchanged when highlighting fails.
func HighlightHTML(code, styleName string, trueColor bool) string {
	lexer := lexers.Get("html")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get(styleName)
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatterName := "terminal256"
	if trueColor {
		formatterName = "terminal16m"
	}
	formatter := formatters.Get(formatterName)
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return buf.String()
}
