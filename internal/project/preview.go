// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package project

import (
	"fmt"
	"strings"

	"github.com/jeranaias/l8vibe-tui/internal/model"
)

// PreviewKind tells how preview content is interpreted.
type PreviewKind int

const (
	PreviewNone PreviewKind = iota
	// PreviewURL content is a location to load.
	PreviewURL
	// PreviewHTML content is markup to render.
	PreviewHTML
)

// String returns the kind name.
func (k PreviewKind) String() string {
	switch k {
	case PreviewURL:
		return "url"
	case PreviewHTML:
		return "html"
	default:
		return "none"
	}
}

// Preview is the state of the preview surface.
type Preview struct {
	Mode    model.PreviewMode
	Content string
	Kind    PreviewKind
	Active  bool
}

// ClassifyPreview reports whether content is a URL or HTML. Content starting
// with "http" or "/" is a URL.
func ClassifyPreview(content string) PreviewKind {
	if content == "" {
		return PreviewNone
	}
	if strings.HasPrefix(content, "http") || strings.HasPrefix(content, "/") {
		return PreviewURL
	}
	return PreviewHTML
}

// SetPreviewMode switches the preview frame.
func (c *Controller) SetPreviewMode(mode model.PreviewMode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownPreviewMode, mode)
	}
	c.mu.Lock()
	c.preview.Mode = mode
	c.mu.Unlock()
	return nil
}

// CyclePreviewMode advances to the next mode and returns it.
func (c *Controller) CyclePreviewMode() model.PreviewMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.preview.Mode = c.preview.Mode.Next()
	return c.preview.Mode
}

// PreviewMode returns the current frame.
func (c *Controller) PreviewMode() model.PreviewMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.preview.Mode
}

// PushPreview shows content in the preview surface.
func (c *Controller) PushPreview(content string) {
	c.mu.Lock()
	c.preview.Content = content
	c.preview.Kind = ClassifyPreview(content)
	c.preview.Active = true
	c.mu.Unlock()
	c.logger.Debug("preview updated", "kind", ClassifyPreview(content).String(), "bytes", len(content))
}

// ClearPreview empties the preview surface. The mode is kept.
func (c *Controller) ClearPreview() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.preview = Preview{Mode: c.preview.Mode}
}

// HasActivePreview reports whether content has been pushed.
func (c *Controller) HasActivePreview() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.preview.Active
}

// Preview returns the preview state.
func (c *Controller) Preview() Preview {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.preview
}
