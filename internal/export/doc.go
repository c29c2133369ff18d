// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes and reads project exports.
//
// A Document bundles a project with its chat transcript. The JSON format is
// the interchange format and is the only one Decode accepts; Markdown and
// HTML render the same document for reading.
//
// # Usage
//
//	doc := export.NewDocument(project, transcript, time.Now())
//	path, err := export.ExportToFile(doc, export.NewJSONExporter(nil), export.DefaultOptions())
//
//	doc, err := export.Decode(f)
package export
