// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"sync"

	"github.com/jeranaias/l8vibe-tui/internal/events"
	"github.com/jeranaias/l8vibe-tui/internal/model"
)

// lineView is the app.View of line-mode commands: notices and typing state
// are printed, focus and form calls are ignored.
type lineView struct {
	mu     sync.Mutex
	out    io.Writer
	screen model.Screen
	quiet  bool
}

func newLineView(out io.Writer) *lineView {
	return &lineView{out: out}
}

func (v *lineView) ShowScreen(s model.Screen) {
	v.mu.Lock()
	v.screen = s
	v.mu.Unlock()
}

func (v *lineView) FocusChatInput()        {}
func (v *lineView) FocusProjectName()      {}
func (v *lineView) SetProjectActions(bool) {}
func (v *lineView) ClearForms()            {}

func (v *lineView) RefreshProjectName(name string) {
	v.printf("%s %s\n", DimStyle.Render("Project:"), ValueStyle.Render(name))
}

func (v *lineView) Notify(n events.Notice) {
	v.printf("%s\n", renderNotice(n))
}

func (v *lineView) SetTyping(typing bool) {
	if typing {
		v.printf("%s\n", DimStyle.Render("L8Vibe is typing..."))
	}
}

// Screen returns the last screen shown.
func (v *lineView) Screen() model.Screen {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.screen
}

// setQuiet suppresses output, for --json runs.
func (v *lineView) setQuiet(quiet bool) {
	v.mu.Lock()
	v.quiet = quiet
	v.mu.Unlock()
}

func (v *lineView) printf(format string, args ...any) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.quiet {
		return
	}
	fmt.Fprintf(v.out, format, args...)
}

func renderNotice(n events.Notice) string {
	switch n.Level {
	case events.NoticeSuccess:
		return SuccessStyle.Render("[OK]") + " " + n.Text
	case events.NoticeError:
		return ErrorStyle.Render("[X]") + " " + n.Text
	default:
		return DimStyle.Render("[i]") + " " + n.Text
	}
}
