// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestDisplayNameFromEmail(t *testing.T) {
	tests := map[string]string{
		"jane@example.com":  "Jane",
		"bob.smith@x.io":    "Bob.smith",
		"élodie@example.fr": "Élodie",
		"@example.com":      "",
	}
	for email, want := range tests {
		if got := DisplayNameFromEmail(email); got != want {
			t.Errorf("DisplayNameFromEmail(%q) = %q, want %q", email, got, want)
		}
	}
}

func TestProject_WireFormat(t *testing.T) {
	p := Project{ID: "p1", Name: "Site", OwnerEmail: "a@b.co", APIKey: "k"}
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	if !strings.Contains(s, `"user":"a@b.co"`) {
		t.Errorf("owner should be sent as user, got %s", s)
	}
	if !strings.Contains(s, `"apiKey":"k"`) {
		t.Errorf("api key field missing, got %s", s)
	}
}

func TestProject_WithSingleMessage(t *testing.T) {
	p := &Project{Name: "Site", Messages: []ProjectMessage{
		{Role: RoleUser, Content: "old"},
		{Role: RoleAssistant, Content: "reply"},
	}}

	c := p.WithSingleMessage(NewUserMessage("new"))

	if len(c.Messages) != 1 || c.Messages[0].Content != "new" {
		t.Errorf("clone messages = %+v", c.Messages)
	}
	if len(p.Messages) != 2 {
		t.Error("original project should be untouched")
	}
}

func TestProject_FirstAssistantMessage(t *testing.T) {
	p := &Project{Messages: []ProjectMessage{
		{Role: RoleUser, Content: "q"},
		{Role: RoleAssistant, Content: ""},
		{Role: RoleAssistant, Content: "a1"},
		{Role: RoleAssistant, Content: "a2"},
	}}
	m, ok := p.FirstAssistantMessage()
	if !ok || m.Content != "" {
		t.Errorf("FirstAssistantMessage = %+v, %v", m, ok)
	}

	var nilProject *Project
	if _, ok := nilProject.FirstAssistantMessage(); ok {
		t.Error("nil project has no assistant message")
	}
}

func TestPreviewMode_Next(t *testing.T) {
	if PreviewDesktop.Next() != PreviewTablet || PreviewTablet.Next() != PreviewMobile || PreviewMobile.Next() != PreviewDesktop {
		t.Error("preview modes should cycle desktop -> tablet -> mobile")
	}
	if PreviewMode("tv").Valid() {
		t.Error("unknown mode should be invalid")
	}
}

func TestScreen_String(t *testing.T) {
	if ScreenProjectCreation.String() != "project-creation" {
		t.Errorf("got %q", ScreenProjectCreation.String())
	}
}

func TestProject_StorageID(t *testing.T) {
	var nilProject *Project
	if nilProject.StorageID() != "" {
		t.Error("nil project should have empty storage id")
	}
	if got := (&Project{ID: "p1", Name: "Todo"}).StorageID(); got != "p1" {
		t.Errorf("StorageID = %q, want p1", got)
	}
	if got := (&Project{Name: "Todo"}).StorageID(); got != "Todo" {
		t.Errorf("StorageID = %q, want Todo", got)
	}
}
