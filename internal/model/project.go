// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role identifies the author of a raw project message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// =============================================================================
// PROJECT TYPES
// =============================================================================

// ProjectMessage is one entry of the backend's project message log.
type ProjectMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NewUserMessage creates a user-role project message.
func NewUserMessage(content string) ProjectMessage {
	return ProjectMessage{Role: RoleUser, Content: content}
}

// Project is the backend's project record. The client holds at most one
// current project and caches it locally.
type Project struct {
	ID          string           `json:"id,omitempty"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	OwnerEmail  string           `json:"user"`
	APIKey      string           `json:"apiKey"`
	Messages    []ProjectMessage `json:"messages,omitempty"`
	CreatedAt   *time.Time       `json:"createdAt,omitempty"`
}

// Clone returns a deep copy of p.
func (p *Project) Clone() *Project {
	if p == nil {
		return nil
	}
	c := *p
	if p.Messages != nil {
		c.Messages = append([]ProjectMessage(nil), p.Messages...)
	}
	if p.CreatedAt != nil {
		t := *p.CreatedAt
		c.CreatedAt = &t
	}
	return &c
}

// WithSingleMessage returns a copy of p whose message log holds only msg.
// The prior log is dropped so an append request never resends history.
func (p *Project) WithSingleMessage(msg ProjectMessage) *Project {
	c := p.Clone()
	c.Messages = []ProjectMessage{msg}
	return c
}

// FirstAssistantMessage returns the first assistant message. Its content
// may be empty.
func (p *Project) FirstAssistantMessage() (ProjectMessage, bool) {
	if p == nil {
		return ProjectMessage{}, false
	}
	for _, m := range p.Messages {
		if m.Role == RoleAssistant {
			return m, true
		}
	}
	return ProjectMessage{}, false
}

// StorageID returns the identifier transcripts are keyed by. Backends that
// key projects by (owner, name) return no id, so the name stands in.
func (p *Project) StorageID() string {
	if p == nil {
		return ""
	}
	if p.ID != "" {
		return p.ID
	}
	return p.Name
}
