// Package cart owns the in-progress order.
package cart

import (
	"context"
	"errors"

	"github.com/angelmondragon/counterpos/internal/events"
	"github.com/angelmondragon/counterpos/internal/menu"
	"github.com/angelmondragon/counterpos/internal/storage"
	pkgerrors "github.com/angelmondragon/counterpos/pkg/errors"
	"github.com/shopspring/decimal"
)

// Cart keeps one line per menu item id in first-add order and flushes after every change.
// It is not safe for concurrent use.
type Cart struct {
	store storage.Store
	pub   events.Publisher
	lines []Line
	// readErr is set while the stored cart could not be read.
	readErr error
}

func New(store storage.Store, pub events.Publisher) *Cart {
	if pub == nil {
		pub = events.Discard{}
	}
	return &Cart{store: store, pub: pub}
}

// Load restores the cart. A missing or blank document is an empty cart. A read or
// decode failure also leaves the cart empty and the error is returned for logging.
// After a read failure the cart keeps working in memory but is not written until
// Recover succeeds. Lines with a non-positive quantity are dropped and repeated
// ids are merged.
func (c *Cart) Load(ctx context.Context) error {
	var stored []Line
	_, err := storage.LoadJSON(ctx, c.store, storage.KeyCart, &stored)
	c.readErr = nil
	if err != nil {
		c.lines = nil
		if !errors.Is(err, storage.ErrDecode) {
			c.readErr = err
		}
		return err
	}
	c.lines = sanitize(stored)
	c.pub.Publish(events.Change{Collection: events.CollectionCart, Action: events.ActionLoaded})
	return nil
}

// Degraded reports whether the stored cart has not been read yet.
func (c *Cart) Degraded() bool {
	return c.readErr != nil
}

// Recover retries a failed read. Once the store answers, the stored lines and the
// lines added since startup are merged and written back. It reports whether the
// cart became available; the error is the read failure or the flush failure.
func (c *Cart) Recover(ctx context.Context) (bool, error) {
	if c.readErr == nil {
		return false, nil
	}
	var stored []Line
	_, err := storage.LoadJSON(ctx, c.store, storage.KeyCart, &stored)
	if err != nil && !errors.Is(err, storage.ErrDecode) {
		c.readErr = err
		return false, err
	}
	c.readErr = nil
	if err != nil {
		stored = nil
	}
	c.lines = sanitize(append(stored, c.lines...))
	c.pub.Publish(events.Change{Collection: events.CollectionCart, Action: events.ActionLoaded})
	return true, c.flush(ctx)
}

func sanitize(stored []Line) []Line {
	var lines []Line
	index := make(map[int]int, len(stored))
	for _, line := range stored {
		if line.Quantity <= 0 {
			continue
		}
		if at, ok := index[line.ID]; ok {
			lines[at].Quantity += line.Quantity
			continue
		}
		index[line.ID] = len(lines)
		lines = append(lines, line)
	}
	return lines
}

// AddItem increments the line for item, or appends a new line with quantity one
// holding a copy of the item as it is now.
func (c *Cart) AddItem(ctx context.Context, item menu.Item) error {
	if idx := c.indexOf(item.ID); idx >= 0 {
		c.lines[idx].Quantity++
		c.pub.Publish(events.Change{Collection: events.CollectionCart, Action: events.ActionUpdated, ID: item.ID})
		return c.flush(ctx)
	}
	c.lines = append(c.lines, Line{Item: item, Quantity: 1})
	c.pub.Publish(events.Change{Collection: events.CollectionCart, Action: events.ActionCreated, ID: item.ID})
	return c.flush(ctx)
}

// ChangeQuantity adds delta to the line for itemID. A resulting quantity of zero
// or less removes the line. Unknown ids are ignored.
func (c *Cart) ChangeQuantity(ctx context.Context, itemID, delta int) error {
	idx := c.indexOf(itemID)
	if idx < 0 {
		return nil
	}
	c.lines[idx].Quantity += delta
	if c.lines[idx].Quantity <= 0 {
		c.removeAt(idx)
		c.pub.Publish(events.Change{Collection: events.CollectionCart, Action: events.ActionDeleted, ID: itemID})
		return c.flush(ctx)
	}
	c.pub.Publish(events.Change{Collection: events.CollectionCart, Action: events.ActionUpdated, ID: itemID})
	return c.flush(ctx)
}

// Remove drops the line for itemID and reports whether one existed.
func (c *Cart) Remove(ctx context.Context, itemID int) (bool, error) {
	idx := c.indexOf(itemID)
	if idx < 0 {
		return false, nil
	}
	c.removeAt(idx)
	c.pub.Publish(events.Change{Collection: events.CollectionCart, Action: events.ActionDeleted, ID: itemID})
	return true, c.flush(ctx)
}

// Clear empties the cart. Clearing an empty cart does nothing.
func (c *Cart) Clear(ctx context.Context) error {
	if len(c.lines) == 0 {
		return nil
	}
	c.lines = nil
	c.pub.Publish(events.Change{Collection: events.CollectionCart, Action: events.ActionCleared})
	return c.flush(ctx)
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []Line {
	return CopyLines(c.lines)
}

func (c *Cart) Total() decimal.Decimal {
	return Total(c.lines)
}

func (c *Cart) Count() int {
	return Count(c.lines)
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

func (c *Cart) flush(ctx context.Context) error {
	if c.readErr != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, c.readErr, "cart kept in memory; stored cart unreadable")
	}
	lines := c.lines
	if lines == nil {
		lines = []Line{}
	}
	return storage.SaveJSON(ctx, c.store, storage.KeyCart, lines)
}

func (c *Cart) indexOf(itemID int) int {
	for i, line := range c.lines {
		if line.ID == itemID {
			return i
		}
	}
	return -1
}

func (c *Cart) removeAt(idx int) {
	c.lines = append(c.lines[:idx:idx], c.lines[idx+1:]...)
}
