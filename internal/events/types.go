// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package events

import (
	"github.com/jeranaias/l8vibe-tui/internal/model"
)

// SessionChanged is published on login, restore, and logout.
type SessionChanged struct {
	Authenticated bool
	User          model.User
	// Restored is set when the session came from storage rather than a login.
	Restored bool
}

// ProjectChanged is published whenever the current project is replaced or
// cleared. Project is nil after a clear.
type ProjectChanged struct {
	Project *model.Project
	// Created is set when the project was just created on the backend.
	Created bool
	// Restored is set when the project came from the local cache.
	Restored bool
}

// ScreenChanged is published on every navigation.
type ScreenChanged struct {
	From model.Screen
	To   model.Screen
}

// ProjectsListed carries the result of a project list refresh.
type ProjectsListed struct {
	Projects []*model.Project
	// Err is the refresh failure, if any. Projects is empty when set.
	Err error
}

// TranscriptChanged is published after the chat transcript changes.
type TranscriptChanged struct {
	ProjectID string
	Count     int
	Pending   bool
}

// AssistantReplied carries an assistant turn returned by the backend.
// Fallback and apology texts are not published.
type AssistantReplied struct {
	ProjectID string
	Content   string
}

// NoticeLevel classifies a Notice.
type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeSuccess
	NoticeError
)

// String returns the level name.
func (l NoticeLevel) String() string {
	switch l {
	case NoticeSuccess:
		return "success"
	case NoticeError:
		return "error"
	default:
		return "info"
	}
}

// Notice is a transient message for the user.
type Notice struct {
	Level NoticeLevel
	Text  string
}

// Info returns an info notice.
func Info(text string) Notice { return Notice{Level: NoticeInfo, Text: text} }

// Success returns a success notice.
func Success(text string) Notice { return Notice{Level: NoticeSuccess, Text: text} }

// Error returns an error notice.
func Error(text string) Notice { return Notice{Level: NoticeError, Text: text} }
