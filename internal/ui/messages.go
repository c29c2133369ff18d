// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"github.com/jeranaias/l8vibe-tui/internal/events"
	"github.com/jeranaias/l8vibe-tui/internal/model"
)

// =============================================================================
// VIEW MESSAGES
// =============================================================================

// These carry app.View calls into the event loop.

// ShowScreenMsg switches the visible screen.
type ShowScreenMsg struct {
	Screen model.Screen
}

// FocusTarget names an input that can take focus.
type FocusTarget int

const (
	FocusChatInput FocusTarget = iota
	FocusProjectName
)

// FocusMsg moves keyboard focus.
type FocusMsg struct {
	Target FocusTarget
}

// ProjectNameMsg updates the displayed project name.
type ProjectNameMsg struct {
	Name string
}

// NoticeMsg shows a toast.
type NoticeMsg struct {
	Notice events.Notice
}

// TypingMsg toggles the typing indicator.
type TypingMsg struct {
	Typing bool
}

// ProjectActionsMsg enables or disables project actions.
type ProjectActionsMsg struct {
	Enabled bool
}

// ClearFormsMsg empties every form field.
type ClearFormsMsg struct{}

// =============================================================================
// OPERATION MESSAGES
// =============================================================================

// InitDoneMsg is sent once App.Init has returned.
type InitDoneMsg struct{}

// Op names a background operation.
type Op string

const (
	OpLogin    Op = "login"
	OpCreate   Op = "create"
	OpSend     Op = "send"
	OpRefresh  Op = "refresh"
	OpExport   Op = "export"
	OpImport   Op = "import"
	OpProjects Op = "projects"
)

// OpDoneMsg reports that a background operation finished. Controllers emit
// their own notices; Detail carries extra information such as a file path.
type OpDoneMsg struct {
	Op     Op
	Err    error
	Detail string
}
