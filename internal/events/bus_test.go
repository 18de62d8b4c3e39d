package events

import (
	"testing"
	"time"
)

func TestBusDeliversToSubscribers(t *testing.T) {
	bus := NewBus()
	fixed := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)
	bus.now = func() time.Time { return fixed }

	var first, second []Change
	bus.Subscribe(func(c Change) { first = append(first, c) })
	unsubscribe := bus.Subscribe(func(c Change) { second = append(second, c) })

	bus.Publish(Change{Collection: CollectionCart, Action: ActionUpdated, ID: 3})
	unsubscribe()
	bus.Publish(Change{Collection: CollectionBills, Action: ActionAppended, ID: 1})

	if len(first) != 2 {
		t.Fatalf("expected 2 changes for first subscriber, got %d", len(first))
	}
	if len(second) != 1 {
		t.Fatalf("expected unsubscribed listener to stop receiving, got %d", len(second))
	}
	if !first[0].At.Equal(fixed) {
		t.Fatalf("expected timestamp to be stamped, got %v", first[0].At)
	}
	if first[1].Collection != CollectionBills || first[1].ID != 1 {
		t.Fatalf("unexpected change %+v", first[1])
	}
}
