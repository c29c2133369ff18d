// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jeranaias/l8vibe-tui/internal/model"
)

var exportedAt = time.Date(2025, 4, 2, 9, 30, 0, 0, time.UTC)

func sampleDocument() *Document {
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	p := &model.Project{
		ID:          "p-1",
		Name:        "My  Landing\tPage",
		Description: "A page",
		OwnerEmail:  "jane@example.com",
		APIKey:      "sk-test",
		CreatedAt:   &created,
	}
	history := []model.ChatMessage{
		model.NewChatMessage("build a hero", model.SenderUser, created.Add(time.Minute)),
		model.NewChatMessage("Here you go\n\n```html\n<h1>Hi</h1>\n```", model.SenderAI, created.Add(2*time.Minute)),
	}
	return NewDocument(p, history, exportedAt)
}

// =============================================================================
// DOCUMENT TESTS
// =============================================================================

func TestNewDocument_CopiesInputs(t *testing.T) {
	created := time.Now()
	p := &model.Project{Name: "x", CreatedAt: &created}
	history := []model.ChatMessage{{Content: "a", Sender: model.SenderUser}}

	doc := NewDocument(p, history, exportedAt)
	p.Name = "changed"
	history[0].Content = "changed"

	if doc.Project.Name != "x" {
		t.Errorf("project not copied: %q", doc.Project.Name)
	}
	if doc.ChatHistory[0].Content != "a" {
		t.Errorf("history not copied: %q", doc.ChatHistory[0].Content)
	}
	if doc.Version != FormatVersion {
		t.Errorf("Version = %q", doc.Version)
	}
	if !doc.HasHistory() {
		t.Error("empty-but-present history should count as history")
	}
}

func TestJSONExporter_WireShape(t *testing.T) {
	data, err := NewJSONExporter(nil).Export(sampleDocument())
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"project", "chat_history", "exported_at", "version"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("missing key %q", key)
		}
	}
	require.Equal(t, `"1.0"`, string(raw["version"]))
	require.Equal(t, `"2025-04-02T09:30:00Z"`, string(raw["exported_at"]))
	require.Contains(t, string(data), "\n  \"project\"", "expected two-space indent")
}

func TestJSONExporter_EmptyHistoryIsArray(t *testing.T) {
	doc := &Document{Project: &model.Project{Name: "x"}, Version: FormatVersion}
	data, err := NewJSONExporter(nil).Export(doc)
	require.NoError(t, err)
	require.Contains(t, string(data), `"chat_history": []`)
}

func TestDecode_RoundTrip(t *testing.T) {
	doc := sampleDocument()
	data, err := NewJSONExporter(nil).Export(doc)
	require.NoError(t, err)

	got, err := Decode(strings.NewReader(string(data)))
	require.NoError(t, err)
	require.Equal(t, doc.Project.Name, got.Project.Name)
	require.Equal(t, doc.Project.APIKey, got.Project.APIKey)
	require.True(t, doc.Project.CreatedAt.Equal(*got.Project.CreatedAt))
	require.Len(t, got.ChatHistory, 2)
	require.Equal(t, doc.ChatHistory[1].Content, got.ChatHistory[1].Content)
	require.Equal(t, model.SenderAI, got.ChatHistory[1].Sender)
}

func TestDecode_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		malformed bool
	}{
		{"malformed", `{"project":`, true},
		{"not json", `hello`, true},
		{"no project", `{"version":"1.0","chat_history":[]}`, false},
		{"no version", `{"project":{"name":"x"}}`, false},
		{"null project", `{"project":null,"version":"1.0"}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.input))
			if !errors.Is(err, ErrInvalidFormat) {
				t.Errorf("err = %v, want ErrInvalidFormat", err)
			}
			if got := errors.Is(err, ErrMalformed); got != tt.malformed {
				t.Errorf("errors.Is(err, ErrMalformed) = %v, want %v", got, tt.malformed)
			}
		})
	}
}

func TestDecode_MissingHistory(t *testing.T) {
	doc, err := Decode(strings.NewReader(`{"project":{"name":"x"},"version":"1.0"}`))
	require.NoError(t, err)
	if doc.HasHistory() {
		t.Error("absent chat_history should not count as history")
	}
}

// =============================================================================
// FILE TESTS
// =============================================================================

func TestFileName(t *testing.T) {
	tests := []struct {
		name, want string
	}{
		{"My Project", "My_Project_export.json"},
		{"a  b\t\nc", "a_b_c_export.json"},
		{"../etc/passwd", "..-etc-passwd_export.json"},
		{"", "project_export.json"},
	}
	for _, tt := range tests {
		if got := FileName(tt.name, ".json"); got != tt.want {
			t.Errorf("FileName(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestExportToFile(t *testing.T) {
	dir := t.TempDir()
	opts := DefaultOptions()
	opts.OutputDir = filepath.Join(dir, "out")

	path, err := ExportToFile(sampleDocument(), NewJSONExporter(opts), opts)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(opts.OutputDir, "My_Landing_Page_export.json"), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	doc, err := Decode(f)
	require.NoError(t, err)
	require.Equal(t, "p-1", doc.Project.ID)
}

func TestExportToFile_NoProject(t *testing.T) {
	_, err := ExportToFile(&Document{}, NewJSONExporter(nil), &Options{OutputDir: t.TempDir()})
	if err == nil {
		t.Fatal("expected error")
	}
}

// =============================================================================
// READABLE FORMAT TESTS
// =============================================================================

func TestMarkdownExporter(t *testing.T) {
	data, err := NewMarkdownExporter(nil).Export(sampleDocument())
	require.NoError(t, err)
	out := string(data)

	require.True(t, strings.HasPrefix(out, "---\n"), "frontmatter expected")
	require.Contains(t, out, "# My  Landing\tPage")
	require.Contains(t, out, "### [You]")
	require.Contains(t, out, "### [L8Vibe]")
	require.Contains(t, out, "```html\n<h1>Hi</h1>\n```")
	require.Contains(t, out, "- **Messages**: 2")
}

func TestMarkdownExporter_NoMetadata(t *testing.T) {
	data, err := NewMarkdownExporter(&Options{}).Export(sampleDocument())
	require.NoError(t, err)
	out := string(data)
	if strings.HasPrefix(out, "---") {
		t.Error("frontmatter written without IncludeMetadata")
	}
	if strings.Contains(out, "<sub>") {
		t.Error("timestamps written without IncludeTimestamps")
	}
}

func TestHTMLExporter_EscapesContent(t *testing.T) {
	doc := sampleDocument()
	doc.Project.Name = "<script>alert(1)</script>"
	doc.ChatHistory = append(doc.ChatHistory, model.NewChatMessage("<b>bold</b> and `code`", model.SenderUser, exportedAt))

	data, err := NewHTMLExporter(nil).Export(doc)
	require.NoError(t, err)
	out := string(data)

	require.NotContains(t, out, "<script>")
	require.Contains(t, out, "&lt;script&gt;")
	require.Contains(t, out, "&lt;b&gt;bold&lt;/b&gt;")
	require.Contains(t, out, `<code class="inline-code">code</code>`)
	require.Contains(t, out, `<code class="language-html">&lt;h1&gt;Hi&lt;/h1&gt;</code>`)
}

func TestForFormat(t *testing.T) {
	for name, ext := range map[string]string{"": ".json", "json": ".json", "md": ".md", "Markdown": ".md", "html": ".html"} {
		e, err := ForFormat(name, nil)
		require.NoError(t, err, name)
		require.Equal(t, ext, e.FileExtension(), name)
	}
	if _, err := ForFormat("pdf", nil); err == nil {
		t.Error("expected error for unknown format")
	}
}
