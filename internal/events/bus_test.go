// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package events

import (
	"sync"
	"testing"

	"github.com/jeranaias/l8vibe-tui/internal/model"
)

func TestBus_DeliversByType(t *testing.T) {
	bus := NewBus()

	var sessions []SessionChanged
	var notices []Notice
	Subscribe(bus, func(e SessionChanged) { sessions = append(sessions, e) })
	Subscribe(bus, func(e Notice) { notices = append(notices, e) })

	bus.Publish(SessionChanged{Authenticated: true, User: model.NewUser("a@b.co")})
	bus.Publish(Success("Welcome back! You can now create projects."))
	bus.Publish(ScreenChanged{From: model.ScreenMarketing, To: model.ScreenWorkspace})

	if len(sessions) != 1 || !sessions[0].Authenticated {
		t.Errorf("sessions = %+v", sessions)
	}
	if len(notices) != 1 || notices[0].Level != NoticeSuccess {
		t.Errorf("notices = %+v", notices)
	}
}

func TestBus_SubscriptionOrder(t *testing.T) {
	bus := NewBus()
	var order []int
	for i := 0; i < 5; i++ {
		i := i
		Subscribe(bus, func(ProjectChanged) { order = append(order, i) })
	}

	bus.Publish(ProjectChanged{})

	for i, v := range order {
		if v != i {
			t.Fatalf("order = %v, want ascending", order)
		}
	}
	if len(order) != 5 {
		t.Errorf("delivered %d times, want 5", len(order))
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus()
	count := 0
	unsub := Subscribe(bus, func(Notice) { count++ })
	Subscribe(bus, func(Notice) {})

	bus.Publish(Info("one"))
	unsub()
	unsub() // idempotent
	bus.Publish(Info("two"))

	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
	if bus.Len() != 1 {
		t.Errorf("Len = %d, want 1", bus.Len())
	}
}

func TestBus_NestedPublish(t *testing.T) {
	bus := NewBus()
	var got []string

	Subscribe(bus, func(e SessionChanged) {
		got = append(got, "session")
		if !e.Authenticated {
			bus.Publish(ScreenChanged{To: model.ScreenMarketing})
		}
	})
	Subscribe(bus, func(ScreenChanged) { got = append(got, "screen") })

	bus.Publish(SessionChanged{Authenticated: false})

	if len(got) != 2 || got[0] != "session" || got[1] != "screen" {
		t.Errorf("got %v, want [session screen]", got)
	}
}

func TestBus_ConcurrentPublish(t *testing.T) {
	bus := NewBus()
	var mu sync.Mutex
	count := 0
	Subscribe(bus, func(Notice) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Publish(Info("x"))
		}()
	}
	wg.Wait()

	if count != 20 {
		t.Errorf("count = %d, want 20", count)
	}
}

func TestNoticeLevel_String(t *testing.T) {
	if NoticeInfo.String() != "info" || NoticeSuccess.String() != "success" || NoticeError.String() != "error" {
		t.Error("unexpected notice level names")
	}
}
