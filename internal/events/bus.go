// Package events fans out state-change notifications to subscribers such as the
// server-sent events stream and the metrics recorder.
package events

import (
	"sync"
	"time"
)

// Collection names the owner of the state that changed.
type Collection string

const (
	CollectionMenu  Collection = "menu"
	CollectionCart  Collection = "cart"
	CollectionBills Collection = "bills"
)

// Action describes the mutation.
type Action string

const (
	ActionCreated  Action = "created"
	ActionUpdated  Action = "updated"
	ActionDeleted  Action = "deleted"
	ActionCleared  Action = "cleared"
	ActionLoaded   Action = "loaded"
	ActionAppended Action = "appended"
)

// Change is a single state-changed notification.
type Change struct {
	Collection Collection `json:"collection"`
	Action     Action     `json:"action"`
	ID         int        `json:"id,omitempty"`
	At         time.Time  `json:"at"`
}

// Publisher is what the POS components depend on.
type Publisher interface {
	Publish(change Change)
}

// Bus delivers changes synchronously to every subscriber.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]func(Change)
	now    func() time.Time
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]func(Change)), now: time.Now}
}

// Subscribe registers fn and returns a function that removes it.
func (b *Bus) Subscribe(fn func(Change)) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.subs[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

func (b *Bus) Publish(change Change) {
	if change.At.IsZero() {
		change.At = b.now()
	}
	b.mu.RLock()
	subs := make([]func(Change), 0, len(b.subs))
	for _, fn := range b.subs {
		subs = append(subs, fn)
	}
	b.mu.RUnlock()

	for _, fn := range subs {
		fn(change)
	}
}

// Discard drops every change.
type Discard struct{}

func (Discard) Publish(Change) {}
