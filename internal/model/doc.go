// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures shared by the l8vibe client.
//
// # Key Types
//
//   - User, Session: the signed-in identity and its proof of authentication
//   - Project, ProjectMessage: the backend's project record and its raw log
//   - ChatMessage, Sender: one entry of the client-visible transcript
//   - Screen: the three mutually exclusive top-level views
//   - PreviewMode: desktop, tablet, or mobile preview framing
//
// # Usage
//
//	p := &model.Project{Name: "Landing page", OwnerEmail: user.Email}
//	p.Messages = append(p.Messages, model.NewUserMessage("add a hero"))
//
//	msg := model.NewChatMessage("hi", model.SenderUser, time.Now())
package model
