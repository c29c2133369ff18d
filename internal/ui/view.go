// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/l8vibe-tui/internal/events"
	"github.com/jeranaias/l8vibe-tui/internal/model"
)

// ProgramView implements app.View by posting messages to a Bubble Tea
// program. Calls never block: messages are queued and delivered in order by
// Run. tea.Program.Send blocks while Update is running, so calling it from a
// controller invoked by Update would deadlock without the queue.
type ProgramView struct {
	mu    sync.Mutex
	queue []tea.Msg
	wake  chan struct{}
	send  func(tea.Msg)
}

// NewProgramView creates a view delivering through send, usually
// (*tea.Program).Send.
func NewProgramView(send func(tea.Msg)) *ProgramView {
	return &ProgramView{wake: make(chan struct{}, 1), send: send}
}

// Run delivers queued messages until ctx is done.
func (v *ProgramView) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-v.wake:
		}
		for {
			msg, ok := v.next()
			if !ok {
				break
			}
			v.send(msg)
		}
	}
}

func (v *ProgramView) next() (tea.Msg, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.queue) == 0 {
		return nil, false
	}
	msg := v.queue[0]
	v.queue[0] = nil
	v.queue = v.queue[1:]
	return msg, true
}

func (v *ProgramView) post(msg tea.Msg) {
	v.mu.Lock()
	v.queue = append(v.queue, msg)
	v.mu.Unlock()
	select {
	case v.wake <- struct{}{}:
	default:
	}
}

func (v *ProgramView) ShowScreen(s model.Screen)      { v.post(ShowScreenMsg{Screen: s}) }
func (v *ProgramView) FocusChatInput()                { v.post(FocusMsg{Target: FocusChatInput}) }
func (v *ProgramView) FocusProjectName()              { v.post(FocusMsg{Target: FocusProjectName}) }
func (v *ProgramView) RefreshProjectName(name string) { v.post(ProjectNameMsg{Name: name}) }
func (v *ProgramView) Notify(n events.Notice)         { v.post(NoticeMsg{Notice: n}) }
func (v *ProgramView) SetTyping(typing bool)          { v.post(TypingMsg{Typing: typing}) }
func (v *ProgramView) SetProjectActions(enabled bool) { v.post(ProjectActionsMsg{Enabled: enabled}) }
func (v *ProgramView) ClearForms()                    { v.post(ClearFormsMsg{}) }
