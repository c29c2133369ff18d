// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// Sender identifies who a transcript entry is shown as coming from.
type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// DisplayName returns the label shown next to a message.
func (s Sender) DisplayName() string {
	switch s {
	case SenderUser:
		return "You"
	case SenderAI:
		return "L8Vibe"
	default:
		return string(s)
	}
}

// ChatMessage is one entry of the client-visible transcript.
type ChatMessage struct {
	Content   string    `json:"content"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// NewChatMessage creates a transcript entry.
func NewChatMessage(content string, sender Sender, at time.Time) ChatMessage {
	return ChatMessage{Content: content, Sender: sender, Timestamp: at}
}

// IsUser reports whether the message was sent by the user.
func (m ChatMessage) IsUser() bool {
	return m.Sender == SenderUser
}
