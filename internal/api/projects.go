// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jeranaias/l8vibe-tui/internal/model"
)

// =============================================================================
// DECLARATIVE QUERY
// =============================================================================

// Query is the backend's declarative query document, sent URL-encoded as the
// body= parameter of a GET.
type Query struct {
	Text       string   `json:"text"`
	RootType   string   `json:"rootType"`
	Properties []string `json:"properties"`
	Criteria   Criteria `json:"criteria"`
	MatchCase  bool     `json:"matchCase"`
}

// Criteria wraps a single condition.
type Criteria struct {
	Condition Condition `json:"condition"`
}

// Condition wraps a single comparator.
type Condition struct {
	Comparator Comparator `json:"comparator"`
}

// Comparator is a left-oper-right comparison.
type Comparator struct {
	Left  string `json:"left"`
	Oper  string `json:"oper"`
	Right string `json:"right"`
}

// OwnerQuery selects every project owned by email.
func OwnerQuery(email string) Query {
	return Query{
		Text:       "select * from project where user=" + email,
		RootType:   "project",
		Properties: []string{"*"},
		Criteria: Criteria{Condition: Condition{Comparator: Comparator{
			Left:  "user",
			Oper:  "=",
			Right: email,
		}}},
		MatchCase: true,
	}
}

// =============================================================================
// REQUEST BODIES
// =============================================================================

// CreateRequest is the POST body for a new project.
type CreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	User        string `json:"user"`
	APIKey      string `json:"apiKey"`
}

// messageRequest is the PATCH body carrying one chat turn. It deliberately
// has no id: the backend keys projects by (user, name).
type messageRequest struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	User        string                 `json:"user"`
	APIKey      string                 `json:"apiKey"`
	Messages    []model.ProjectMessage `json:"messages"`
}

// projectList is the GET response shape.
type projectList struct {
	List []*model.Project `json:"list"`
}

// =============================================================================
// OPERATIONS
// =============================================================================

// CreateProject registers a new project and returns the backend's copy.
func (c *Client) CreateProject(ctx context.Context, req CreateRequest) (*model.Project, error) {
	data, err := c.do(ctx, http.MethodPost, c.ProjectURL(), req)
	if err != nil {
		return nil, err
	}
	project, err := UnwrapProject(data)
	if err != nil {
		return nil, err
	}
	// Backends that echo nothing useful still leave us a usable project.
	if project.Name == "" {
		project.Name = req.Name
	}
	if project.OwnerEmail == "" {
		project.OwnerEmail = req.User
	}
	if project.APIKey == "" {
		project.APIKey = req.APIKey
	}
	if project.Description == "" {
		project.Description = req.Description
	}
	return project, nil
}

// ListProjects returns the projects owned by email.
func (c *Client) ListProjects(ctx context.Context, email string) ([]*model.Project, error) {
	target, err := withQuery(c.ProjectURL(), OwnerQuery(email))
	if err != nil {
		return nil, err
	}
	data, err := c.do(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []*model.Project{}, nil
	}

	var out projectList
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, fmt.Errorf("failed to decode project list: %w", err)
	}
	projects := make([]*model.Project, 0, len(out.List))
	for _, p := range out.List {
		if p != nil {
			projects = append(projects, p)
		}
	}
	return projects, nil
}

// SendMessage PATCHes a copy of project carrying only msg and returns the
// project found in the response envelope.
func (c *Client) SendMessage(ctx context.Context, project *model.Project, msg model.ProjectMessage) (*model.Project, error) {
	if project == nil {
		return nil, fmt.Errorf("send message: no project")
	}
	one := project.WithSingleMessage(msg)
	body := messageRequest{
		Name:        one.Name,
		Description: one.Description,
		User:        one.OwnerEmail,
		APIKey:      one.APIKey,
		Messages:    one.Messages,
	}
	data, err := c.do(ctx, http.MethodPatch, c.ProjectURL(), body)
	if err != nil {
		return nil, err
	}
	return UnwrapProject(data)
}

// =============================================================================
// RESPONSE ENVELOPES
// =============================================================================

// envelopeKeys are tried in order before treating the body as the project
// itself.
var envelopeKeys = []string{"project", "element", "data"}

// UnwrapProject extracts a project from a response body. It accepts
// {"list":[p,...]}, {"project":p}, {"element":p}, {"data":p}, or p itself.
func UnwrapProject(data []byte) (*model.Project, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, ErrEmptyResponse
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if raw, ok := fields["list"]; ok {
		var list []json.RawMessage
		if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
			return decodeProject(list[0])
		}
	}
	for _, key := range envelopeKeys {
		if raw, ok := fields[key]; ok && isObject(raw) {
			return decodeProject(raw)
		}
	}
	return decodeProject(trimmed)
}

func decodeProject(raw json.RawMessage) (*model.Project, error) {
	var p model.Project
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("failed to decode project: %w", err)
	}
	return &p, nil
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
