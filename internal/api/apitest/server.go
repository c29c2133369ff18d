// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package apitest provides an in-memory fake of the l8vibe project backend
// for tests. It implements the collection contract (POST create, GET list by
// owner query, PATCH with an echo assistant) and a JWT-issuing login
// endpoint.
package apitest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jeranaias/l8vibe-tui/internal/model"
)

const (
	// ProjectPath is the collection endpoint served by the fake.
	ProjectPath = "/l8vibe/0/proj"
	// AuthPath is the login endpoint served by the fake.
	AuthPath = "/l8vibe/auth/login"
	// SigningKey signs issued tokens. Clients never verify it.
	SigningKey = "apitest-signing-key"
)

// Envelope selects how single-project responses are wrapped.
type Envelope string

const (
	EnvelopeList    Envelope = "list"
	EnvelopeProject Envelope = "project"
	EnvelopeElement Envelope = "element"
	EnvelopeData    Envelope = "data"
	EnvelopeBare    Envelope = "bare"
)

// Request is a recorded inbound request.
type Request struct {
	Method string
	Path   string
	Query  string
	Body   []byte

	// Authorization is the request's Authorization header.
	Authorization string
}

// ReplyFunc produces the assistant content for a user message. Returning
// false omits the assistant message from the response.
type ReplyFunc func(project *model.Project, text string) (string, bool)

// EchoReply answers every message with "Echo <text>".
func EchoReply(_ *model.Project, text string) (string, bool) {
	return "Echo " + text, true
}

type account struct {
	hash []byte
	name string
}

// Server is a running fake backend.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	projects map[string]*model.Project
	accounts map[string]account
	requests []Request
	failures map[string]int
	envelope Envelope
	reply    ReplyFunc
	gate     chan struct{}
	release  func()
	now      func() time.Time
}

// NewServer starts a fake backend. Close it when done.
func NewServer() *Server {
	s := &Server{
		projects: make(map[string]*model.Project),
		accounts: make(map[string]account),
		failures: make(map[string]int),
		envelope: EnvelopeList,
		reply:    EchoReply,
		now:      time.Now,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.record)
	r.Use(s.injectFailures)

	r.Post(ProjectPath, s.handleCreate)
	r.Get(ProjectPath, s.handleList)
	r.Patch(ProjectPath, s.handlePatch)
	r.Post(AuthPath, s.handleLogin)

	s.Server = httptest.NewServer(r)
	return s
}

// =============================================================================
// CONFIGURATION
// =============================================================================

// SetEnvelope changes how single-project responses are wrapped.
func (s *Server) SetEnvelope(e Envelope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.envelope = e
}

// SetReply replaces the assistant behaviour.
func (s *Server) SetReply(fn ReplyFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reply = fn
}

// FailWith makes every request with method answer status until cleared
// with FailWith(method, 0).
func (s *Server) FailWith(method string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.failures, method)
		return
	}
	s.failures[method] = status
}

// HoldPatches blocks PATCH handling until the returned release func is
// called. Close releases held requests as well.
func (s *Server) HoldPatches() (release func()) {
	gate := make(chan struct{})
	var once sync.Once
	release = func() {
		once.Do(func() {
			s.mu.Lock()
			if s.gate == gate {
				s.gate = nil
				s.release = nil
			}
			s.mu.Unlock()
			close(gate)
		})
	}

	s.mu.Lock()
	s.gate = gate
	s.release = release
	s.mu.Unlock()
	return release
}

// Close releases held requests and shuts the server down.
func (s *Server) Close() {
	s.mu.Lock()
	release := s.release
	s.mu.Unlock()
	if release != nil {
		release()
	}
	s.Server.Close()
}

// AddUser registers login credentials.
func (s *Server) AddUser(email, password, name string) {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[email] = account{hash: hash, name: name}
}

// Seed stores p as if it had been created. A missing id is assigned.
func (s *Server) Seed(p *model.Project) *model.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := p.Clone()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	s.projects[projectKey(c.OwnerEmail, c.Name)] = c
	return c.Clone()
}

// =============================================================================
// INSPECTION
// =============================================================================

// Requests returns the recorded requests.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Count returns how many requests with method were received.
func (s *Server) Count(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.requests {
		if r.Method == method {
			n++
		}
	}
	return n
}

// Project returns the stored project for (owner, name).
func (s *Server) Project(owner, name string) (*model.Project, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[projectKey(owner, name)]
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

// Projects returns every stored project sorted by name.
func (s *Server) Projects() []*model.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Project, 0, len(s.projects))
	for _, p := range s.projects {
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// =============================================================================
// MIDDLEWARE
// =============================================================================

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body.Close()
		r.Body = io.NopCloser(strings.NewReader(string(body)))

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Body:   body,

			Authorization: r.Header.Get("Authorization"),
		})
		s.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		status := s.failures[r.Method]
		s.mu.Unlock()
		if status != 0 {
			writeJSON(w, status, map[string]string{"error": http.StatusText(status)})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// =============================================================================
// HANDLERS
// =============================================================================

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var p model.Project
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if p.Name == "" || p.OwnerEmail == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name and user are required"})
		return
	}

	s.mu.Lock()
	key := projectKey(p.OwnerEmail, p.Name)
	if _, exists := s.projects[key]; exists {
		s.mu.Unlock()
		writeJSON(w, http.StatusConflict, map[string]string{"error": "project already exists"})
		return
	}
	created := s.now().UTC().Truncate(time.Second)
	p.ID = uuid.NewString()
	p.CreatedAt = &created
	p.Messages = nil
	s.projects[key] = p.Clone()
	envelope := s.envelope
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, wrap(envelope, &p))
}

// listQuery mirrors the subset of the declarative query the fake evaluates.
type listQuery struct {
	Criteria struct {
		Condition struct {
			Comparator struct {
				Left  string `json:"left"`
				Oper  string `json:"oper"`
				Right string `json:"right"`
			} `json:"comparator"`
		} `json:"condition"`
	} `json:"criteria"`
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	var q listQuery
	if err := json.Unmarshal([]byte(r.URL.Query().Get("body")), &q); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid query"})
		return
	}
	cmp := q.Criteria.Condition.Comparator
	if cmp.Left != "user" || cmp.Oper != "=" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unsupported query"})
		return
	}

	list := []*model.Project{}
	for _, p := range s.Projects() {
		if p.OwnerEmail == cmp.Right {
			list = append(list, p)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"list": list})
}

func (s *Server) handlePatch(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	gate := s.gate
	s.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-r.Context().Done():
			return
		}
	}

	var p model.Project
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if p.Name == "" || p.OwnerEmail == "" || len(p.Messages) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Patch request for project is invalid"})
		return
	}

	s.mu.Lock()
	stored, ok := s.projects[projectKey(p.OwnerEmail, p.Name)]
	if !ok {
		s.mu.Unlock()
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "project not found"})
		return
	}
	userMsg := p.Messages[len(p.Messages)-1]
	stored.Messages = append(stored.Messages, userMsg)

	resp := stored.Clone()
	resp.Messages = []model.ProjectMessage{userMsg}
	if content, ok := s.reply(stored, userMsg.Content); ok {
		assistant := model.ProjectMessage{Role: model.RoleAssistant, Content: content}
		stored.Messages = append(stored.Messages, assistant)
		resp.Messages = append(resp.Messages, assistant)
	}
	envelope := s.envelope
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, wrap(envelope, resp))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	s.mu.Lock()
	acct, ok := s.accounts[req.Email]
	now := s.now()
	s.mu.Unlock()

	if !ok || bcrypt.CompareHashAndPassword(acct.hash, []byte(req.Password)) != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		return
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  req.Email,
		"name": acct.name,
		"iat":  now.Unix(),
		"exp":  now.Add(24 * time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(SigningKey))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "token signing failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": signed})
}

// =============================================================================
// HELPERS
// =============================================================================

func projectKey(owner, name string) string {
	return owner + "\x00" + name
}

func wrap(e Envelope, p *model.Project) any {
	switch e {
	case EnvelopeProject, EnvelopeElement, EnvelopeData:
		return map[string]any{string(e): p}
	case EnvelopeBare:
		return p
	default:
		return map[string]any{"list": []*model.Project{p}}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
