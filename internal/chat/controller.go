// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/l8vibe-tui/internal/events"
	"github.com/jeranaias/l8vibe-tui/internal/logging"
	"github.com/jeranaias/l8vibe-tui/internal/model"
	"github.com/jeranaias/l8vibe-tui/internal/storage"
)

// Replies used when the backend gives no usable assistant turn.
const (
	FallbackReply = "I'm here to help you create amazing web applications. What would you like to build?"
	ApologyReply  = "I apologize, but I'm having trouble connecting right now. Please try again in a moment."
)

// Suffix appended to derived assistant lines.
const doneSuffix = "...Done!"

var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrNoProject    = errors.New("no current project")
	ErrBusy         = errors.New("a message is already being sent")
)

// Backend appends a chat turn to a project.
type Backend interface {
	SendMessage(ctx context.Context, project *model.Project, msg model.ProjectMessage) (*model.Project, error)
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller holds the transcript of the current project.
type Controller struct {
	mu       sync.Mutex
	backend  Backend
	store    storage.Store
	bus      *events.Bus
	logger   *slog.Logger
	now      func() time.Time
	project  *model.Project
	messages []model.ChatMessage
	pending  bool
}

// NewController creates a chat controller.
func NewController(backend Backend, store storage.Store, bus *events.Bus) *Controller {
	return &Controller{
		backend: backend,
		store:   store,
		bus:     bus,
		logger:  slog.Default(),
		now:     time.Now,
	}
}

// WithClock replaces the time source.
func (c *Controller) WithClock(now func() time.Time) *Controller {
	if now != nil {
		c.now = now
	}
	return c
}

// WithLogger sets the logger.
func (c *Controller) WithLogger(l *slog.Logger) *Controller {
	c.logger = logging.OrDefault(l)
	return c
}

// Messages returns a copy of the transcript.
func (c *Controller) Messages() []model.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.ChatMessage(nil), c.messages...)
}

// Count returns the number of transcript entries.
func (c *Controller) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

// Pending reports whether a send is outstanding.
func (c *Controller) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Project returns the project the transcript belongs to.
func (c *Controller) Project() *model.Project {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.project.Clone()
}

// =============================================================================
// PROJECT BINDING
// =============================================================================

// SetProject binds the transcript to p. A project carrying messages has its
// transcript derived from them and persisted; otherwise the persisted
// transcript is loaded. A nil project clears the in-memory transcript.
func (c *Controller) SetProject(p *model.Project) {
	if p == nil {
		c.mu.Lock()
		c.project = nil
		c.messages = nil
		c.mu.Unlock()
		c.changed("")
		return
	}

	p = p.Clone()
	var msgs []model.ChatMessage
	derived := len(p.Messages) > 0
	if derived {
		msgs = DeriveTranscript(p.Messages, c.now())
	} else {
		msgs = c.load(p.StorageID())
	}

	c.mu.Lock()
	c.project = p
	c.messages = msgs
	c.mu.Unlock()

	if derived {
		c.persist(p.StorageID(), msgs)
	}
	c.logger.Debug("transcript bound", "project", p.StorageID(), "messages", len(msgs), "derived", derived)
	c.changed(p.StorageID())
}

// DeriveTranscript converts a project message log into transcript entries.
// User messages are kept verbatim. An assistant message becomes its last
// non-blank line followed by "...Done!". Other roles are skipped.
func DeriveTranscript(msgs []model.ProjectMessage, now time.Time) []model.ChatMessage {
	out := make([]model.ChatMessage, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case model.RoleUser:
			out = append(out, model.NewChatMessage(m.Content, model.SenderUser, now))
		case model.RoleAssistant:
			out = append(out, model.NewChatMessage(lastNonBlankLine(m.Content)+doneSuffix, model.SenderAI, now))
		}
	}
	return out
}

func lastNonBlankLine(content string) string {
	lines := strings.Split(content, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.TrimSpace(lines[i]) != "" {
			return lines[i]
		}
	}
	return content
}

// =============================================================================
// SEND CYCLE
// =============================================================================

// Send appends text as a user message, asks the backend for a reply, and
// appends the reply. It returns the appended assistant message. Transport
// failures are logged and answered with ApologyReply; they are not returned.
func (c *Controller) Send(ctx context.Context, text string) (model.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.ChatMessage{}, ErrEmptyMessage
	}

	c.mu.Lock()
	if c.project == nil {
		c.mu.Unlock()
		return model.ChatMessage{}, ErrNoProject
	}
	if c.pending {
		c.mu.Unlock()
		return model.ChatMessage{}, ErrBusy
	}
	project := c.project.Clone()
	id := project.StorageID()
	c.messages = append(c.messages, model.NewChatMessage(text, model.SenderUser, c.now()))
	c.pending = true
	snapshot := append([]model.ChatMessage(nil), c.messages...)
	c.mu.Unlock()

	c.persist(id, snapshot)
	c.changed(id)

	reply, fromBackend := c.ask(ctx, project, text)
	aiMsg := model.NewChatMessage(reply, model.SenderAI, c.now())

	c.mu.Lock()
	c.pending = false
	if c.project == nil || c.project.StorageID() != id {
		// Rebound while waiting: keep the reply with the project it belongs to.
		c.mu.Unlock()
		c.appendStored(id, aiMsg)
		c.changed(c.currentID())
		return aiMsg, nil
	}
	c.messages = append(c.messages, aiMsg)
	snapshot = append([]model.ChatMessage(nil), c.messages...)
	c.mu.Unlock()

	c.persist(id, snapshot)
	c.changed(id)
	if fromBackend {
		c.publish(events.AssistantReplied{ProjectID: id, Content: reply})
	}
	return aiMsg, nil
}

// ask returns the assistant text and whether it came from the backend.
func (c *Controller) ask(ctx context.Context, project *model.Project, text string) (string, bool) {
	start := time.Now()
	resp, err := c.backend.SendMessage(ctx, project, model.NewUserMessage(text))
	if err != nil {
		c.logger.Error("chat request failed", "project", project.StorageID(), "error", err)
		return ApologyReply, false
	}
	msg, ok := resp.FirstAssistantMessage()
	if !ok || msg.Content == "" {
		c.logger.Warn("chat response had no assistant reply", "project", project.StorageID())
		return FallbackReply, false
	}
	c.logger.Debug("chat reply", "project", project.StorageID(), "bytes", len(msg.Content), "elapsed", time.Since(start))
	return msg.Content, true
}

// =============================================================================
// TRANSCRIPT MAINTENANCE
// =============================================================================

// Clear empties the transcript and deletes its persisted copy.
func (c *Controller) Clear() {
	c.mu.Lock()
	c.messages = nil
	id := ""
	if c.project != nil {
		id = c.project.StorageID()
	}
	c.mu.Unlock()

	if id != "" {
		if err := c.store.Delete(storage.ChatKey(id)); err != nil {
			c.logger.Warn("transcript not removed", "project", id, "error", err)
		}
	}
	c.changed(id)
}

// Replace swaps in a transcript, as after an import, and persists it.
func (c *Controller) Replace(transcript []model.ChatMessage) {
	msgs := append([]model.ChatMessage(nil), transcript...)
	c.mu.Lock()
	c.messages = msgs
	id := ""
	if c.project != nil {
		id = c.project.StorageID()
	}
	c.mu.Unlock()

	if id != "" {
		c.persist(id, msgs)
	}
	c.changed(id)
}

// Save persists the transcript of the current project.
func (c *Controller) Save() error {
	c.mu.Lock()
	if c.project == nil {
		c.mu.Unlock()
		return nil
	}
	id := c.project.StorageID()
	msgs := append([]model.ChatMessage(nil), c.messages...)
	c.mu.Unlock()

	return storage.SetJSON(c.store, storage.ChatKey(id), msgs)
}

// =============================================================================
// PERSISTENCE
// =============================================================================

func (c *Controller) load(id string) []model.ChatMessage {
	if id == "" {
		return nil
	}
	var msgs []model.ChatMessage
	if _, err := storage.GetJSON(c.store, storage.ChatKey(id), &msgs); err != nil {
		c.logger.Warn("transcript unreadable", "project", id, "error", err)
		return nil
	}
	return msgs
}

func (c *Controller) persist(id string, msgs []model.ChatMessage) {
	if id == "" {
		return
	}
	if msgs == nil {
		msgs = []model.ChatMessage{}
	}
	if err := storage.SetJSON(c.store, storage.ChatKey(id), msgs); err != nil {
		c.logger.Error("transcript not saved", "project", id, "error", err)
	}
}

func (c *Controller) appendStored(id string, msg model.ChatMessage) {
	msgs := append(c.load(id), msg)
	c.persist(id, msgs)
}

func (c *Controller) currentID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.project == nil {
		return ""
	}
	return c.project.StorageID()
}

func (c *Controller) changed(id string) {
	c.mu.Lock()
	ev := events.TranscriptChanged{ProjectID: id, Count: len(c.messages), Pending: c.pending}
	c.mu.Unlock()
	c.publish(ev)
}

func (c *Controller) publish(ev any) {
	if c.bus != nil {
		c.bus.Publish(ev)
	}
}
