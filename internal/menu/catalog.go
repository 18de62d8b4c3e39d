// Package menu owns the counter's menu items.
package menu

import (
	"context"
	"errors"

	"github.com/angelmondragon/counterpos/internal/events"
	"github.com/angelmondragon/counterpos/internal/storage"
	pkgerrors "github.com/angelmondragon/counterpos/pkg/errors"
)

// Catalog holds the menu in insertion order and flushes it after every change.
// It is not safe for concurrent use; callers serialize access.
type Catalog struct {
	store  storage.Store
	pub    events.Publisher
	items  []Item
	nextID int
	// readErr is set while the stored menu could not be read.
	readErr error
}

func NewCatalog(store storage.Store, pub events.Publisher) *Catalog {
	if pub == nil {
		pub = events.Discard{}
	}
	return &Catalog{store: store, pub: pub, nextID: 1}
}

// Load restores the menu. A missing, blank, malformed or empty document seeds the
// default menu and persists it. When the store cannot be read the defaults are
// shown for the session, edits are refused until Recover succeeds, and the read
// error is returned.
func (c *Catalog) Load(ctx context.Context) error {
	var stored []Item
	found, err := storage.LoadJSON(ctx, c.store, storage.KeyMenuItems, &stored)
	c.readErr = nil
	switch {
	case err != nil && !errors.Is(err, storage.ErrDecode):
		c.replace(DefaultItems())
		c.readErr = err
		return err
	case err != nil, !found, len(stored) == 0:
		c.replace(DefaultItems())
		flushErr := c.flush(ctx)
		c.pub.Publish(events.Change{Collection: events.CollectionMenu, Action: events.ActionLoaded})
		if err != nil {
			return err
		}
		return flushErr
	}

	c.replace(stored)
	c.pub.Publish(events.Change{Collection: events.CollectionMenu, Action: events.ActionLoaded})
	return nil
}

// Degraded reports whether the stored menu has not been read yet.
func (c *Catalog) Degraded() bool {
	return c.readErr != nil
}

// Recover retries a failed Load. It reports whether the menu became available.
func (c *Catalog) Recover(ctx context.Context) (bool, error) {
	if c.readErr == nil {
		return false, nil
	}
	if err := c.Load(ctx); err != nil {
		return !c.Degraded(), err
	}
	return true, nil
}

func (c *Catalog) replace(items []Item) {
	c.items = items
	c.nextID = maxID(items) + 1
}

// List returns a copy of the menu in insertion order.
func (c *Catalog) List() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Get returns the item with id.
func (c *Catalog) Get(id int) (Item, error) {
	if idx := c.indexOf(id); idx >= 0 {
		return c.items[idx], nil
	}
	return Item{}, notFound(id)
}

// Create appends a new item with the next identifier.
func (c *Catalog) Create(ctx context.Context, input Input) (Item, error) {
	in, err := input.normalize()
	if err != nil {
		return Item{}, err
	}
	if c.readErr != nil {
		return Item{}, storage.Unavailable(storage.KeyMenuItems, c.readErr)
	}

	id := c.nextID
	if next := maxID(c.items) + 1; next > id {
		id = next
	}
	c.nextID = id + 1

	item := Item{ID: id, Name: in.Name, Price: in.Price, Image: in.Image, Description: in.Description}
	c.items = append(c.items, item)

	c.pub.Publish(events.Change{Collection: events.CollectionMenu, Action: events.ActionCreated, ID: id})
	return item, c.flush(ctx)
}

// Update replaces the editable fields of item id in place.
func (c *Catalog) Update(ctx context.Context, id int, input Input) (Item, error) {
	idx := c.indexOf(id)
	if idx < 0 {
		return Item{}, notFound(id)
	}
	in, err := input.normalize()
	if err != nil {
		return Item{}, err
	}
	if c.readErr != nil {
		return Item{}, storage.Unavailable(storage.KeyMenuItems, c.readErr)
	}

	item := Item{ID: id, Name: in.Name, Price: in.Price, Image: in.Image, Description: in.Description}
	c.items[idx] = item

	c.pub.Publish(events.Change{Collection: events.CollectionMenu, Action: events.ActionUpdated, ID: id})
	return item, c.flush(ctx)
}

// Delete removes item id. Deleting an unknown id is a no-op.
func (c *Catalog) Delete(ctx context.Context, id int) (bool, error) {
	idx := c.indexOf(id)
	if idx < 0 {
		return false, nil
	}
	if c.readErr != nil {
		return false, storage.Unavailable(storage.KeyMenuItems, c.readErr)
	}
	c.items = append(c.items[:idx:idx], c.items[idx+1:]...)

	c.pub.Publish(events.Change{Collection: events.CollectionMenu, Action: events.ActionDeleted, ID: id})
	return true, c.flush(ctx)
}

func (c *Catalog) flush(ctx context.Context) error {
	items := c.items
	if items == nil {
		items = []Item{}
	}
	return storage.SaveJSON(ctx, c.store, storage.KeyMenuItems, items)
}

func (c *Catalog) indexOf(id int) int {
	for i, item := range c.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func maxID(items []Item) int {
	highest := 0
	for _, item := range items {
		if item.ID > highest {
			highest = item.ID
		}
	}
	return highest
}

func notFound(id int) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found").
		WithDetails(map[string]any{"item_id": id})
}
