// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"sync"

	"github.com/jeranaias/l8vibe-tui/internal/events"
	"github.com/jeranaias/l8vibe-tui/internal/model"
	"github.com/jeranaias/l8vibe-tui/internal/nav"
)

// View is everything the controllers ask of a user interface. Methods may
// be called from any goroutine.
type View interface {
	nav.View
	Notify(n events.Notice)
	SetTyping(typing bool)
	SetProjectActions(enabled bool)
	ClearForms()
}

// NoopView ignores every call.
type NoopView struct{}

func (NoopView) ShowScreen(model.Screen)   {}
func (NoopView) FocusChatInput()           {}
func (NoopView) FocusProjectName()         {}
func (NoopView) RefreshProjectName(string) {}
func (NoopView) Notify(events.Notice)      {}
func (NoopView) SetTyping(bool)            {}
func (NoopView) SetProjectActions(bool)    {}
func (NoopView) ClearForms()               {}

// viewProxy forwards to a view that can be swapped after construction.
type viewProxy struct {
	mu sync.RWMutex
	v  View
}

func (p *viewProxy) set(v View) {
	if v == nil {
		v = NoopView{}
	}
	p.mu.Lock()
	p.v = v
	p.mu.Unlock()
}

func (p *viewProxy) get() View {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.v
}

func (p *viewProxy) ShowScreen(s model.Screen)      { p.get().ShowScreen(s) }
func (p *viewProxy) FocusChatInput()                { p.get().FocusChatInput() }
func (p *viewProxy) FocusProjectName()              { p.get().FocusProjectName() }
func (p *viewProxy) RefreshProjectName(name string) { p.get().RefreshProjectName(name) }
func (p *viewProxy) Notify(n events.Notice)         { p.get().Notify(n) }
func (p *viewProxy) SetTyping(typing bool)          { p.get().SetTyping(typing) }
func (p *viewProxy) SetProjectActions(enabled bool) { p.get().SetProjectActions(enabled) }
func (p *viewProxy) ClearForms()                    { p.get().ClearForms() }
