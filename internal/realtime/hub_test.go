package realtime

import (
	"encoding/json"
	"testing"
)

func event(table, familyID, id string) Event {
	return Event{
		Table:    table,
		Op:       OpInsert,
		FamilyID: familyID,
		Record:   json.RawMessage(`{"id":"` + id + `"}`),
	}
}

func TestHubDeliversToMatchingSubscriber(t *testing.T) {
	h := NewHub(4, nil)
	defer h.Close()

	sub := h.Subscribe(TableChat, "fam-1")
	h.Publish(event(TableChat, "fam-1", "m1"))

	select {
	case ev := <-sub.Events():
		if ev.FamilyID != "fam-1" {
			t.Errorf("got family %q, want fam-1", ev.FamilyID)
		}
	default:
		t.Fatal("expected a delivered event")
	}
}

func TestHubScopesByFamilyAndTable(t *testing.T) {
	h := NewHub(4, nil)
	defer h.Close()

	sub := h.Subscribe(TableChat, "fam-1")
	h.Publish(event(TableChat, "fam-2", "m1"))
	h.Publish(event(TableHoliday, "fam-1", "h1"))

	select {
	case ev := <-sub.Events():
		t.Fatalf("unexpected event delivered: %+v", ev)
	default:
	}
}

func TestHubDropsWhenBufferFull(t *testing.T) {
	dropped := 0
	h := NewHub(1, func() { dropped++ })
	defer h.Close()

	h.Subscribe(TableChat, "fam-1")
	h.Publish(event(TableChat, "fam-1", "m1"))
	h.Publish(event(TableChat, "fam-1", "m2"))

	if dropped != 1 {
		t.Errorf("dropped = %d, want 1", dropped)
	}
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	h := NewHub(4, nil)
	defer h.Close()

	sub := h.Subscribe(TableChat, "fam-1")
	h.Unsubscribe(sub)
	h.Unsubscribe(sub) // second call must be safe

	if _, open := <-sub.Events(); open {
		t.Error("channel still open after unsubscribe")
	}
	if n := h.SubscriberCount(); n != 0 {
		t.Errorf("SubscriberCount = %d, want 0", n)
	}
}

func TestHubCloseStopsEverything(t *testing.T) {
	h := NewHub(4, nil)
	sub := h.Subscribe(TableChat, "fam-1")
	h.Close()

	if _, open := <-sub.Events(); open {
		t.Error("channel still open after close")
	}

	// Subscribing after close yields an already-closed channel.
	late := h.Subscribe(TableChat, "fam-1")
	if _, open := <-late.Events(); open {
		t.Error("late subscription channel should be closed")
	}
	h.Publish(event(TableChat, "fam-1", "m1")) // must not panic
}

func TestWatchableTable(t *testing.T) {
	for _, table := range []string{TableFinancial, TableHoliday, TableChat} {
		if !WatchableTable(table) {
			t.Errorf("WatchableTable(%q) = false", table)
		}
	}
	if WatchableTable("users") {
		t.Error("users must not be watchable")
	}
}
