// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package events is the typed publish/subscribe bus the controllers use to
// react to each other without holding references.
//
// Dispatch is synchronous and in subscription order. A handler may publish;
// the nested event is delivered before the outer Publish returns.
//
//	bus := events.NewBus()
//	events.Subscribe(bus, func(e events.SessionChanged) {
//	    if !e.Authenticated {
//	        nav.Logout()
//	    }
//	})
//	bus.Publish(events.SessionChanged{Authenticated: false})
package events
