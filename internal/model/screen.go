// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// Screen is one of the mutually exclusive top-level views.
type Screen int

const (
	ScreenMarketing Screen = iota
	ScreenProjectCreation
	ScreenWorkspace
)

// String returns the screen name.
func (s Screen) String() string {
	switch s {
	case ScreenMarketing:
		return "marketing"
	case ScreenProjectCreation:
		return "project-creation"
	case ScreenWorkspace:
		return "workspace"
	default:
		return "unknown"
	}
}

// PreviewMode frames the preview surface.
type PreviewMode string

const (
	PreviewDesktop PreviewMode = "desktop"
	PreviewTablet  PreviewMode = "tablet"
	PreviewMobile  PreviewMode = "mobile"
)

// PreviewModes lists the modes in toggle order.
var PreviewModes = []PreviewMode{PreviewDesktop, PreviewTablet, PreviewMobile}

// Valid reports whether m is a known mode.
func (m PreviewMode) Valid() bool {
	switch m {
	case PreviewDesktop, PreviewTablet, PreviewMobile:
		return true
	}
	return false
}

// Width returns the column budget the preview uses for this mode.
func (m PreviewMode) Width() int {
	switch m {
	case PreviewTablet:
		return 64
	case PreviewMobile:
		return 40
	default:
		return 100
	}
}

// Next returns the mode after m in toggle order.
func (m PreviewMode) Next() PreviewMode {
	for i, mode := range PreviewModes {
		if mode == m {
			return PreviewModes[(i+1)%len(PreviewModes)]
		}
	}
	return PreviewDesktop
}
