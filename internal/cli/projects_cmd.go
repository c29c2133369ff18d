// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// projects_cmd.go - Project listing, export and import.
//
// Command: projects [--json]     (alias: ls)
// Command: export [--dir D] [--format json|md|html] [--json]
// Command: import FILE

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jeranaias/l8vibe-tui/internal/app"
	"github.com/jeranaias/l8vibe-tui/internal/model"
	"github.com/jeranaias/l8vibe-tui/internal/util"
)

// =============================================================================
// PROJECTS
// =============================================================================

// HandleProjects handles the "projects" command.
func HandleProjects(args Args) error {
	view := newLineView(os.Stderr)
	view.setQuiet(args.JSON)
	return withApp(context.Background(), args, view, func(ctx context.Context, a *app.App) error {
		if err := requireSession(a); err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(ctx, a.Config().HTTPTimeout())
		defer cancel()

		ps, err := a.RefreshProjects(ctx)
		if err != nil {
			return NewCommandError("projects", "list failed", err)
		}
		current := a.Projects.Current()
		if args.JSON {
			return NewJSONResponse("projects", projectEntries(ps, current)).Write(os.Stdout)
		}
		writeProjectTable(os.Stdout, ps, current)
		return nil
	})
}

func projectEntries(ps []*model.Project, current *model.Project) []ProjectEntry {
	entries := make([]ProjectEntry, 0, len(ps))
	for _, p := range ps {
		entries = append(entries, ProjectEntry{
			ID:          p.StorageID(),
			Name:        p.Name,
			Description: p.Description,
			Current:     isCurrent(p, current),
		})
	}
	return entries
}

// writeProjectTable prints one project per line, marking the current one.
func writeProjectTable(w io.Writer, ps []*model.Project, current *model.Project) {
	if len(ps) == 0 {
		fmt.Fprintln(w, DimStyle.Render("No projects yet. Create one in the TUI with Ctrl+N."))
		return
	}

	nameWidth := 4
	for _, p := range ps {
		if n := util.DisplayWidth(p.Name); n > nameWidth {
			nameWidth = n
		}
	}
	if nameWidth > 32 {
		nameWidth = 32
	}

	fmt.Fprintf(w, "  %s  %s\n", DimStyle.Render(util.PadRight("NAME", nameWidth)), DimStyle.Render("DESCRIPTION"))
	for _, p := range ps {
		marker := "  "
		if isCurrent(p, current) {
			marker = SuccessStyle.Render("* ")
		}
		name := util.PadRight(util.TruncateWidth(p.Name, nameWidth), nameWidth)
		desc := util.TruncateWidth(util.SingleLine(p.Description), 60)
		fmt.Fprintf(w, "%s%s  %s\n", marker, ValueStyle.Render(name), DimStyle.Render(desc))
	}
}

func isCurrent(p, current *model.Project) bool {
	return current != nil && p.StorageID() == current.StorageID()
}

// =============================================================================
// EXPORT / IMPORT
// =============================================================================

// HandleExport handles the "export" command.
func HandleExport(args Args) error {
	view := newLineView(os.Stderr)
	view.setQuiet(args.JSON)
	return withApp(context.Background(), args, view, func(_ context.Context, a *app.App) error {
		if a.Projects.Current() == nil {
			return ErrNoProject
		}
		format := strings.ToLower(args.Format)
		if format == "" {
			format = "json"
		}
		dir := args.Dir
		if dir == "" {
			dir = "."
		}

		path, err := a.ExportFormat(dir, format)
		if err != nil {
			return NewCommandError("export", "write failed", err)
		}
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}

		if args.JSON {
			return NewJSONResponse("export", ExportData{Path: path, Format: format}).Write(os.Stdout)
		}
		fmt.Printf("%s %s\n", SuccessStyle.Render("Saved to"), path)
		return nil
	})
}

// HandleImport handles the "import" command.
func HandleImport(args Args) error {
	if args.File == "" {
		return ErrMissingArgument("file", "l8vibe import FILE")
	}
	view := newLineView(os.Stdout)
	return withApp(context.Background(), args, view, func(_ context.Context, a *app.App) error {
		p, err := a.ImportFile(args.File)
		if err != nil {
			return NewCommandError("import", args.File, err)
		}
		fmt.Printf("%s %q with %d messages is now the current project.\n",
			SuccessStyle.Render("Imported"), p.Name, a.Chat.Count())
		return nil
	})
}
