// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - Session and project summary.
//
// Command: status [--json]
// Aliases: s

package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jeranaias/l8vibe-tui/internal/app"
	"github.com/jeranaias/l8vibe-tui/internal/ui/styles"
)

// HandleStatus handles the "status" command.
func HandleStatus(args Args) error {
	view := newLineView(os.Stderr)
	view.setQuiet(args.JSON)
	return withApp(context.Background(), args, view, func(_ context.Context, a *app.App) error {
		snap := a.Debug()
		if args.JSON {
			return NewJSONResponse("status", snap).Write(os.Stdout)
		}
		writeStatus(os.Stdout, snap)
		fmt.Fprintln(os.Stdout, RenderField("Server", a.Config().Server.URL))
		return nil
	})
}

// writeStatus prints snap as labelled fields.
func writeStatus(w io.Writer, snap app.Snapshot) {
	fmt.Fprintln(w, TitleStyle.Render("L8Vibe status"))
	fmt.Fprintln(w, RenderSeparator(30))

	if snap.Authenticated && snap.User != nil {
		fmt.Fprintln(w, RenderField("Session", styles.RenderSuccess("signed in")))
		fmt.Fprintln(w, RenderField("User", fmt.Sprintf("%s <%s>", snap.User.DisplayName, snap.User.Email)))
		if snap.SessionLeft != "" {
			fmt.Fprintln(w, RenderField("Expires in", snap.SessionLeft))
		}
	} else {
		fmt.Fprintln(w, RenderField("Session", styles.RenderError("not signed in")))
	}

	if snap.Project != nil {
		fmt.Fprintln(w, RenderField("Project", snap.Project.Name))
		if snap.Project.Description != "" {
			fmt.Fprintln(w, RenderField("Description", snap.Project.Description))
		}
		fmt.Fprintln(w, RenderField("Messages", fmt.Sprintf("%d", snap.ChatMessages)))
	} else {
		fmt.Fprintln(w, RenderField("Project", DimStyle.Render("none")))
	}
	fmt.Fprintln(w, RenderField("Screen", snap.ScreenName))
}
