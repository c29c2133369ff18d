// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jeranaias/l8vibe-tui/internal/api"
	"github.com/jeranaias/l8vibe-tui/internal/api/apitest"
	"github.com/jeranaias/l8vibe-tui/internal/events"
	"github.com/jeranaias/l8vibe-tui/internal/logging"
	"github.com/jeranaias/l8vibe-tui/internal/model"
	"github.com/jeranaias/l8vibe-tui/internal/storage"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	ctrl    *Controller
	srv     *apitest.Server
	store   storage.Store
	project *model.Project

	mu      sync.Mutex
	changes []events.TranscriptChanged
	replies []events.AssistantReplied
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	srv := apitest.NewServer()
	t.Cleanup(srv.Close)

	project := srv.Seed(&model.Project{Name: "Site", OwnerEmail: "jane@example.com", APIKey: "sk"})
	client := api.NewClient(srv.URL).WithHTTPClient(srv.Client()).WithLogger(logging.Discard())

	bus := events.NewBus()
	store := storage.NewMemoryStore()
	f := &fixture{srv: srv, store: store, project: project}
	events.Subscribe(bus, func(ev events.TranscriptChanged) {
		f.mu.Lock()
		f.changes = append(f.changes, ev)
		f.mu.Unlock()
	})
	events.Subscribe(bus, func(ev events.AssistantReplied) {
		f.mu.Lock()
		f.replies = append(f.replies, ev)
		f.mu.Unlock()
	})

	f.ctrl = NewController(client, store, bus).
		WithClock(func() time.Time { return t0 }).
		WithLogger(logging.Discard())
	return f
}

func (f *fixture) stored(t *testing.T, id string) []model.ChatMessage {
	t.Helper()
	var msgs []model.ChatMessage
	found, err := storage.GetJSON(f.store, storage.ChatKey(id), &msgs)
	require.NoError(t, err)
	if !found {
		return nil
	}
	return msgs
}

func contents(msgs []model.ChatMessage) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = string(m.Sender) + ":" + m.Content
	}
	return out
}

// =============================================================================
// DERIVATION TESTS
// =============================================================================

func TestDeriveTranscript(t *testing.T) {
	msgs := []model.ProjectMessage{
		{Role: model.RoleUser, Content: "hi"},
		{Role: model.RoleAssistant, Content: "line1\nline2"},
	}
	got := DeriveTranscript(msgs, t0)
	require.Equal(t, []string{"user:hi", "ai:line2...Done!"}, contents(got))
}

func TestDeriveTranscript_EdgeCases(t *testing.T) {
	tests := []struct {
		name string
		in   model.ProjectMessage
		want []string
	}{
		{"trailing blank lines", model.ProjectMessage{Role: model.RoleAssistant, Content: "a\nb\n\n  \n"}, []string{"ai:b...Done!"}},
		{"only blank", model.ProjectMessage{Role: model.RoleAssistant, Content: "\n \n"}, []string{"ai:\n \n...Done!"}},
		{"empty", model.ProjectMessage{Role: model.RoleAssistant, Content: ""}, []string{"ai:...Done!"}},
		{"user multiline verbatim", model.ProjectMessage{Role: model.RoleUser, Content: "a\nb"}, []string{"user:a\nb"}},
		{"system skipped", model.ProjectMessage{Role: "system", Content: "x"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := contents(DeriveTranscript([]model.ProjectMessage{tt.in}, t0))
			require.Equal(t, tt.want, got)
		})
	}
}

func TestDeriveTranscript_Idempotent(t *testing.T) {
	msgs := []model.ProjectMessage{
		{Role: model.RoleUser, Content: "make it blue"},
		{Role: model.RoleAssistant, Content: "ok\n\ndone"},
	}
	a := DeriveTranscript(msgs, t0)
	b := DeriveTranscript(msgs, t0)
	require.Equal(t, a, b)
}

// =============================================================================
// PROJECT BINDING TESTS
// =============================================================================

func TestSetProject_DerivesAndPersists(t *testing.T) {
	f := newFixture(t)
	p := f.project.Clone()
	p.Messages = []model.ProjectMessage{
		{Role: model.RoleUser, Content: "hi"},
		{Role: model.RoleAssistant, Content: "line1\nline2"},
	}
	f.ctrl.SetProject(p)

	require.Equal(t, []string{"user:hi", "ai:line2...Done!"}, contents(f.ctrl.Messages()))
	require.Equal(t, contents(f.ctrl.Messages()), contents(f.stored(t, p.ID)))
}

func TestSetProject_LoadsPersisted(t *testing.T) {
	f := newFixture(t)
	saved := []model.ChatMessage{model.NewChatMessage("earlier", model.SenderUser, t0)}
	require.NoError(t, storage.SetJSON(f.store, storage.ChatKey(f.project.ID), saved))

	f.ctrl.SetProject(f.project)
	require.Equal(t, []string{"user:earlier"}, contents(f.ctrl.Messages()))
}

func TestSetProject_MalformedIsEmpty(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Set(storage.ChatKey(f.project.ID), []byte("[{")))
	f.ctrl.SetProject(f.project)
	require.Empty(t, f.ctrl.Messages())
}

func TestSetProject_KeyedByNameWithoutID(t *testing.T) {
	f := newFixture(t)
	p := &model.Project{Name: "No Id"}
	f.ctrl.SetProject(p)
	_, err := f.ctrl.Send(context.Background(), "x")
	require.NoError(t, err)
	require.Len(t, f.stored(t, "No Id"), 2)
}

func TestSetProject_NilClears(t *testing.T) {
	f := newFixture(t)
	f.ctrl.SetProject(f.project)
	_, err := f.ctrl.Send(context.Background(), "hello")
	require.NoError(t, err)

	f.ctrl.SetProject(nil)
	require.Empty(t, f.ctrl.Messages())
	require.Nil(t, f.ctrl.Project())
	require.Len(t, f.stored(t, f.project.ID), 2, "persisted transcript kept")
}

// =============================================================================
// SEND TESTS
// =============================================================================

func TestSend_Success(t *testing.T) {
	f := newFixture(t)
	f.ctrl.SetProject(f.project)

	reply, err := f.ctrl.Send(context.Background(), "  build a hero  ")
	require.NoError(t, err)
	require.Equal(t, model.SenderAI, reply.Sender)
	require.Equal(t, "Echo build a hero", reply.Content)

	require.Equal(t, []string{"user:build a hero", "ai:Echo build a hero"}, contents(f.ctrl.Messages()))
	require.Equal(t, contents(f.ctrl.Messages()), contents(f.stored(t, f.project.ID)))
	require.False(t, f.ctrl.Pending())

	require.Len(t, f.replies, 1)
	require.Equal(t, "Echo build a hero", f.replies[0].Content)
}

func TestSend_PatchCarriesSingleMessage(t *testing.T) {
	f := newFixture(t)
	p := f.project.Clone()
	p.Messages = []model.ProjectMessage{{Role: model.RoleUser, Content: "old"}, {Role: model.RoleAssistant, Content: "older"}}
	f.ctrl.SetProject(p)

	_, err := f.ctrl.Send(context.Background(), "new")
	require.NoError(t, err)

	var patch map[string]json.RawMessage
	for _, r := range f.srv.Requests() {
		if r.Method == http.MethodPatch {
			require.NoError(t, json.Unmarshal(r.Body, &patch))
		}
	}
	var msgs []model.ProjectMessage
	require.NoError(t, json.Unmarshal(patch["messages"], &msgs))
	require.Equal(t, []model.ProjectMessage{{Role: model.RoleUser, Content: "new"}}, msgs)
	_, hasID := patch["id"]
	require.False(t, hasID)
}

func TestSend_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.ctrl.Send(context.Background(), "hi")
	require.ErrorIs(t, err, ErrNoProject)

	f.ctrl.SetProject(f.project)
	_, err = f.ctrl.Send(context.Background(), "   ")
	require.ErrorIs(t, err, ErrEmptyMessage)

	require.Equal(t, 0, f.srv.Count(http.MethodPatch))
	require.Empty(t, f.ctrl.Messages())
}

func TestSend_FailureAppendsApology(t *testing.T) {
	f := newFixture(t)
	f.ctrl.SetProject(f.project)
	f.srv.FailWith(http.MethodPatch, http.StatusBadGateway)

	reply, err := f.ctrl.Send(context.Background(), "hello")
	require.NoError(t, err)
	require.Equal(t, ApologyReply, reply.Content)
	require.Equal(t, []string{"user:hello", "ai:" + ApologyReply}, contents(f.ctrl.Messages()))
	require.Empty(t, f.replies)
}

func TestSend_NoAssistantUsesFallback(t *testing.T) {
	f := newFixture(t)
	f.ctrl.SetProject(f.project)
	f.srv.SetReply(func(*model.Project, string) (string, bool) { return "", false })

	reply, err := f.ctrl.Send(context.Background(), "hello")
	require.NoError(t, err)
	require.Equal(t, FallbackReply, reply.Content)
}

func TestSend_EmptyAssistantUsesFallback(t *testing.T) {
	f := newFixture(t)
	f.ctrl.SetProject(f.project)
	f.srv.SetReply(func(*model.Project, string) (string, bool) { return "", true })

	reply, err := f.ctrl.Send(context.Background(), "hello")
	require.NoError(t, err)
	require.Equal(t, FallbackReply, reply.Content)
}

// fixedBackend answers every send with the same project.
type fixedBackend struct{ resp *model.Project }

func (b fixedBackend) SendMessage(context.Context, *model.Project, model.ProjectMessage) (*model.Project, error) {
	return b.resp.Clone(), nil
}

func TestSend_FirstAssistantEmptyUsesFallback(t *testing.T) {
	resp := &model.Project{Name: "Site", Messages: []model.ProjectMessage{
		{Role: model.RoleAssistant, Content: ""},
		{Role: model.RoleAssistant, Content: "later reply"},
	}}
	ctrl := NewController(fixedBackend{resp: resp}, storage.NewMemoryStore(), events.NewBus()).
		WithClock(func() time.Time { return t0 }).
		WithLogger(logging.Discard())
	ctrl.SetProject(&model.Project{ID: "p1", Name: "Site"})

	reply, err := ctrl.Send(context.Background(), "hello")
	require.NoError(t, err)
	require.Equal(t, FallbackReply, reply.Content)
}

func TestSend_Envelopes(t *testing.T) {
	for _, env := range []apitest.Envelope{apitest.EnvelopeList, apitest.EnvelopeProject, apitest.EnvelopeElement, apitest.EnvelopeData, apitest.EnvelopeBare} {
		t.Run(string(env), func(t *testing.T) {
			f := newFixture(t)
			f.srv.SetEnvelope(env)
			f.ctrl.SetProject(f.project)
			reply, err := f.ctrl.Send(context.Background(), "x")
			require.NoError(t, err)
			require.Equal(t, "Echo x", reply.Content)
		})
	}
}

func TestSend_WhilePendingIsRejected(t *testing.T) {
	f := newFixture(t)
	f.ctrl.SetProject(f.project)
	release := f.srv.HoldPatches()

	done := make(chan model.ChatMessage, 1)
	go func() {
		reply, err := f.ctrl.Send(context.Background(), "first")
		if err != nil {
			t.Errorf("first send: %v", err)
		}
		done <- reply
	}()

	require.Eventually(t, f.ctrl.Pending, time.Second, time.Millisecond)
	_, err := f.ctrl.Send(context.Background(), "second")
	require.True(t, errors.Is(err, ErrBusy), "err = %v", err)

	release()
	reply := <-done
	require.Equal(t, "Echo first", reply.Content)
	require.Equal(t, []string{"user:first", "ai:Echo first"}, contents(f.ctrl.Messages()))
	require.Equal(t, 1, f.srv.Count(http.MethodPatch))
}

func TestSend_OrderMatchesSendOrder(t *testing.T) {
	f := newFixture(t)
	f.ctrl.SetProject(f.project)
	for _, text := range []string{"one", "two", "three"} {
		_, err := f.ctrl.Send(context.Background(), text)
		require.NoError(t, err)
	}
	require.Equal(t, []string{
		"user:one", "ai:Echo one",
		"user:two", "ai:Echo two",
		"user:three", "ai:Echo three",
	}, contents(f.ctrl.Messages()))
}

func TestSend_PublishesPendingTransitions(t *testing.T) {
	f := newFixture(t)
	f.ctrl.SetProject(f.project)
	f.changes = nil

	_, err := f.ctrl.Send(context.Background(), "x")
	require.NoError(t, err)

	require.Len(t, f.changes, 2)
	require.True(t, f.changes[0].Pending)
	require.Equal(t, 1, f.changes[0].Count)
	require.False(t, f.changes[1].Pending)
	require.Equal(t, 2, f.changes[1].Count)
}

func TestSend_ReboundWhilePending(t *testing.T) {
	f := newFixture(t)
	f.ctrl.SetProject(f.project)
	release := f.srv.HoldPatches()

	done := make(chan struct{})
	go func() {
		defer close(done)
		f.ctrl.Send(context.Background(), "first")
	}()
	require.Eventually(t, f.ctrl.Pending, time.Second, time.Millisecond)

	other := &model.Project{ID: "other", Name: "Other"}
	f.ctrl.SetProject(other)
	release()
	<-done

	require.Empty(t, f.ctrl.Messages())
	require.Equal(t, []string{"user:first", "ai:Echo first"}, contents(f.stored(t, f.project.ID)))
}

// =============================================================================
// MAINTENANCE TESTS
// =============================================================================

func TestClear(t *testing.T) {
	f := newFixture(t)
	f.ctrl.SetProject(f.project)
	_, err := f.ctrl.Send(context.Background(), "x")
	require.NoError(t, err)

	f.ctrl.Clear()
	require.Empty(t, f.ctrl.Messages())
	require.Nil(t, f.stored(t, f.project.ID))
}

func TestReplaceAndSave(t *testing.T) {
	f := newFixture(t)
	f.ctrl.SetProject(f.project)
	imported := []model.ChatMessage{
		model.NewChatMessage("a", model.SenderUser, t0),
		model.NewChatMessage("b", model.SenderAI, t0),
	}
	f.ctrl.Replace(imported)
	imported[0].Content = "mutated"

	require.Equal(t, []string{"user:a", "ai:b"}, contents(f.ctrl.Messages()))
	require.Equal(t, []string{"user:a", "ai:b"}, contents(f.stored(t, f.project.ID)))

	require.NoError(t, f.store.Delete(storage.ChatKey(f.project.ID)))
	require.NoError(t, f.ctrl.Save())
	require.Len(t, f.stored(t, f.project.ID), 2)
}

// =============================================================================
// PREVIEW EXTRACTION TESTS
// =============================================================================

func TestExtractPreview(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		ok      bool
	}{
		{"html fence", "Here:\n```html\n<h1>Hi</h1>\n```\nenjoy", "<h1>Hi</h1>", true},
		{"url line", "Deployed to\nhttps://example.com/site\n", "https://example.com/site", true},
		{"fence wins", "https://a.example\n```html\n<p>x</p>\n```", "<p>x</p>", true},
		{"other fence", "```go\nfmt.Println()\n```", "", false},
		{"inline url", "see https://example.com for details", "", false},
		{"plain", "nothing here", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractPreview(tt.content)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ExtractPreview() = %q, %v; want %q, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}
