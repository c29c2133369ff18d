// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/jeranaias/l8vibe-tui/internal/model"
	"github.com/jeranaias/l8vibe-tui/internal/util"
)

// FormatVersion is written into every document.
const FormatVersion = "1.0"

// ErrInvalidFormat is returned by Decode for input that is not a project
// export.
var ErrInvalidFormat = errors.New("invalid project file format")

// ErrMalformed marks a Decode failure caused by unparseable JSON, as
// opposed to a well-formed file that lacks the required fields. Errors that
// wrap it also wrap ErrInvalidFormat.
var ErrMalformed = errors.New("malformed JSON")

// =============================================================================
// DOCUMENT
// =============================================================================

// Document is a project export.
type Document struct {
	Project *model.Project `json:"project"`
	// ChatHistory is nil when the file carried no transcript.
	ChatHistory []model.ChatMessage `json:"chat_history"`
	ExportedAt  time.Time           `json:"exported_at"`
	Version     string              `json:"version"`
}

// NewDocument builds a document stamped with now.
func NewDocument(p *model.Project, history []model.ChatMessage, now time.Time) *Document {
	h := make([]model.ChatMessage, len(history))
	copy(h, history)
	return &Document{
		Project:     p.Clone(),
		ChatHistory: h,
		ExportedAt:  now.UTC(),
		Version:     FormatVersion,
	}
}

// HasHistory reports whether the document carried a transcript.
func (d *Document) HasHistory() bool {
	return d != nil && d.ChatHistory != nil
}

// Decode reads a JSON document. Both project and version must be present.
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %w: %v", ErrInvalidFormat, ErrMalformed, err)
	}
	if doc.Project == nil || doc.Version == "" {
		return nil, ErrInvalidFormat
	}
	return &doc, nil
}

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter renders a document in one format.
type Exporter interface {
	Export(doc *Document) ([]byte, error)

	// FileExtension returns the extension including the dot.
	FileExtension() string

	MimeType() string
}

// Options configures export behavior.
type Options struct {
	// OutputDir is the directory files are written to.
	OutputDir string

	// IncludeMetadata adds the project header to readable formats.
	IncludeMetadata bool

	// IncludeTimestamps adds per-message times to readable formats.
	IncludeTimestamps bool
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		OutputDir:         ".",
		IncludeMetadata:   true,
		IncludeTimestamps: true,
	}
}

// Formats lists the names accepted by ForFormat.
var Formats = []string{"json", "markdown", "html"}

// ForFormat returns the exporter for a format name.
func ForFormat(name string, opts *Options) (Exporter, error) {
	switch strings.ToLower(name) {
	case "", "json":
		return NewJSONExporter(opts), nil
	case "md", "markdown":
		return NewMarkdownExporter(opts), nil
	case "html":
		return NewHTMLExporter(opts), nil
	default:
		return nil, fmt.Errorf("unknown export format %q (want one of %s)", name, strings.Join(Formats, ", "))
	}
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// ExportToFile renders doc and writes it into opts.OutputDir. It returns the
// path written.
func ExportToFile(doc *Document, exporter Exporter, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if doc == nil || doc.Project == nil {
		return "", fmt.Errorf("export failed: no project")
	}

	content, err := exporter.Export(doc)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	dir := opts.OutputDir
	if dir == "" {
		dir = "."
	}
	outputPath := filepath.Join(dir, FileName(doc.Project.Name, exporter.FileExtension()))
	if err := util.AtomicWriteFileWithDir(outputPath, content, 0644, 0755); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return outputPath, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

var whitespaceRun = regexp.MustCompile(`\s+`)

// FileName returns "<name>_export<ext>" with whitespace runs in name
// collapsed to a single underscore.
func FileName(projectName, ext string) string {
	return sanitizeFilename(projectName) + "_export" + ext
}

// sanitizeFilename replaces characters that are invalid in filenames.
func sanitizeFilename(s string) string {
	s = whitespaceRun.ReplaceAllString(s, "_")

	const maxLen = 80
	if runes := []rune(s); len(runes) > maxLen {
		s = string(runes[:maxLen])
	}

	var b strings.Builder
	for _, r := range s {
		switch {
		case strings.ContainsRune(`/\:*?"<>|`, r):
			b.WriteRune('-')
		case r < 32 || r == 127:
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}

	if b.Len() == 0 {
		return "project"
	}
	return b.String()
}

func formatTimestamp(t time.Time) string {
	return t.Format("January 2, 2006 at 3:04 PM")
}

func formatShortTimestamp(t time.Time) string {
	return t.Format("Jan 2, 3:04 PM")
}
