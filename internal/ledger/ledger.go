// Package ledger keeps the append-only bill history.
package ledger

import (
	"context"
	"time"

	"github.com/angelmondragon/counterpos/internal/cart"
	"github.com/angelmondragon/counterpos/internal/events"
	"github.com/angelmondragon/counterpos/internal/storage"
	pkgerrors "github.com/angelmondragon/counterpos/pkg/errors"
)

// Ledger holds bills in append order. It is not safe for concurrent use.
type Ledger struct {
	store  storage.Store
	pub    events.Publisher
	loc    *time.Location
	bills  []Bill
	nextID int
	// loadErr is set while the stored history could not be loaded.
	loadErr error
}

// New builds a ledger that stamps bills in loc. A nil loc means time.Local.
func New(store storage.Store, pub events.Publisher, loc *time.Location) *Ledger {
	if pub == nil {
		pub = events.Discard{}
	}
	if loc == nil {
		loc = time.Local
	}
	return &Ledger{store: store, pub: pub, loc: loc, nextID: 1}
}

// Location is the zone bills are keyed in.
func (l *Ledger) Location() *time.Location {
	return l.loc
}

// Load restores the history. A missing or blank document is an empty ledger.
// Read and decode failures leave the ledger empty and unavailable: Append is
// refused until a later Load or Recover succeeds, so the stored history is never
// overwritten. The next id is recomputed from the highest stored id and never
// moves backwards.
func (l *Ledger) Load(ctx context.Context) error {
	var stored []Bill
	_, err := storage.LoadJSON(ctx, l.store, storage.KeyBills, &stored)
	if err != nil {
		stored = nil
	}
	l.bills = stored
	l.loadErr = err
	if next := maxID(stored) + 1; next > l.nextID {
		l.nextID = next
	}
	l.pub.Publish(events.Change{Collection: events.CollectionBills, Action: events.ActionLoaded})
	return err
}

// Degraded reports whether the stored history has not been loaded yet.
func (l *Ledger) Degraded() bool {
	return l.loadErr != nil
}

// Recover retries a failed Load. It reports whether the ledger became available.
func (l *Ledger) Recover(ctx context.Context) (bool, error) {
	if l.loadErr == nil {
		return false, nil
	}
	if err := l.Load(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// Append records a bill for lines stamped at now. An empty cart is rejected
// without touching the ledger.
func (l *Ledger) Append(ctx context.Context, lines []cart.Line, now time.Time) (Bill, error) {
	if len(lines) == 0 {
		return Bill{}, pkgerrors.New(pkgerrors.CodeEmptyCart, "cart is empty")
	}
	if l.loadErr != nil {
		return Bill{}, storage.Unavailable(storage.KeyBills, l.loadErr)
	}

	id := l.nextID
	if next := maxID(l.bills) + 1; next > id {
		id = next
	}
	l.nextID = id + 1

	bill := newBill(id, lines, now, l.loc)
	l.bills = append(l.bills, bill)

	l.pub.Publish(events.Change{Collection: events.CollectionBills, Action: events.ActionAppended, ID: id})
	return copyBill(bill), l.flush(ctx)
}

// Find returns the bill with id.
func (l *Ledger) Find(id int) (Bill, error) {
	for _, bill := range l.bills {
		if bill.ID == id {
			return copyBill(bill), nil
		}
	}
	return Bill{}, pkgerrors.New(pkgerrors.CodeNotFound, "bill not found").
		WithDetails(map[string]any{"bill_id": id})
}

// All returns every bill in append order.
func (l *Ledger) All() []Bill {
	out := make([]Bill, len(l.bills))
	for i, bill := range l.bills {
		out[i] = copyBill(bill)
	}
	return out
}

func (l *Ledger) flush(ctx context.Context) error {
	bills := l.bills
	if bills == nil {
		bills = []Bill{}
	}
	return storage.SaveJSON(ctx, l.store, storage.KeyBills, bills)
}

func maxID(bills []Bill) int {
	highest := 0
	for _, bill := range bills {
		if bill.ID > highest {
			highest = bill.ID
		}
	}
	return highest
}
