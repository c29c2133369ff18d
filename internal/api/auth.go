// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// DefaultAuthPath is the login endpoint used by remote authentication.
const DefaultAuthPath = "/l8vibe/auth/login"

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login exchanges credentials for a bearer token at authPath.
func (c *Client) Login(ctx context.Context, authPath, email, password string) (string, error) {
	if authPath == "" {
		authPath = DefaultAuthPath
	}
	target := c.baseURL + "/" + strings.TrimPrefix(authPath, "/")

	data, err := c.do(ctx, http.MethodPost, target, loginRequest{Email: email, Password: password})
	if err != nil {
		return "", err
	}

	var out loginResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("failed to decode login response: %w", err)
	}
	if out.Token == "" {
		return "", ErrEmptyResponse
	}
	return out.Token, nil
}
