// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package project

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jeranaias/l8vibe-tui/internal/events"
	"github.com/jeranaias/l8vibe-tui/internal/export"
	"github.com/jeranaias/l8vibe-tui/internal/model"
)

// Notice texts for export and import.
const (
	NoticeNoProjectToExport = "No active project to export"
	NoticeExported          = "Project exported successfully"
	NoticeImported          = "Project imported successfully"
	NoticeInvalidImport     = "Invalid project file format"
	NoticeImportFailed      = "Failed to import project file"
)

// ErrInvalidExport is returned for input that is not a project export.
var ErrInvalidExport = export.ErrInvalidFormat

// Export writes the current project and transcript as indented JSON.
func (c *Controller) Export(w io.Writer, transcript []model.ChatMessage, now time.Time) error {
	doc, err := c.document(transcript, now)
	if err != nil {
		return err
	}
	data, err := export.NewJSONExporter(nil).Export(doc)
	if err != nil {
		return fmt.Errorf("export project: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("export project: %w", err)
	}
	return nil
}

// ExportFile writes the JSON export into dir and returns its path.
func (c *Controller) ExportFile(dir string, transcript []model.ChatMessage, now time.Time) (string, error) {
	return c.ExportFormat(dir, "json", transcript, now)
}

// ExportFormat writes the export in a named format (json, markdown, html).
// Only json can be imported again.
func (c *Controller) ExportFormat(dir, format string, transcript []model.ChatMessage, now time.Time) (string, error) {
	doc, err := c.document(transcript, now)
	if err != nil {
		return "", err
	}
	opts := export.DefaultOptions()
	opts.OutputDir = dir
	exporter, err := export.ForFormat(format, opts)
	if err != nil {
		return "", err
	}

	path, err := export.ExportToFile(doc, exporter, opts)
	if err != nil {
		c.logger.Error("export failed", "error", err)
		c.notify(events.Error(err.Error()))
		return "", err
	}
	c.logger.Info("project exported", "name", doc.Project.Name, "path", path)
	c.notify(events.Success(NoticeExported))
	return path, nil
}

// Import reads an export and makes its project current. The caller restores
// the transcript from the returned document.
func (c *Controller) Import(r io.Reader) (*export.Document, error) {
	doc, err := export.Decode(r)
	if err != nil {
		c.logger.Warn("import rejected", "error", err)
		if errors.Is(err, export.ErrMalformed) {
			c.notify(events.Error(NoticeImportFailed))
		} else {
			c.notify(events.Error(NoticeInvalidImport))
		}
		return nil, err
	}

	c.commit(doc.Project, events.ProjectChanged{})
	c.logger.Info("project imported", "name", doc.Project.Name, "messages", len(doc.ChatHistory))
	c.notify(events.Success(NoticeImported))
	return doc, nil
}

func (c *Controller) document(transcript []model.ChatMessage, now time.Time) (*export.Document, error) {
	p := c.Current()
	if p == nil {
		c.notify(events.Error(NoticeNoProjectToExport))
		return nil, ErrNoProject
	}
	return export.NewDocument(p, transcript, now), nil
}
