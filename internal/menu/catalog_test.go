package menu

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/angelmondragon/counterpos/internal/events"
	"github.com/angelmondragon/counterpos/internal/storage"
	pkgerrors "github.com/angelmondragon/counterpos/pkg/errors"
	"github.com/shopspring/decimal"
)

type flakyStore struct {
	*storage.Memory
	readErr  error
	writeErr error
	writes   int
}

func (f *flakyStore) Read(ctx context.Context, key string) (string, bool, error) {
	if f.readErr != nil {
		return "", false, f.readErr
	}
	return f.Memory.Read(ctx, key)
}

func (f *flakyStore) Write(ctx context.Context, key, value string) error {
	f.writes++
	if f.writeErr != nil {
		return f.writeErr
	}
	return f.Memory.Write(ctx, key, value)
}

type recorder struct {
	changes []events.Change
}

func (r *recorder) Publish(c events.Change) {
	r.changes = append(r.changes, c)
}

func newStore() *flakyStore {
	return &flakyStore{Memory: storage.NewMemory()}
}

func storedItems(t *testing.T, s storage.Store) []Item {
	t.Helper()
	raw, found, err := s.Read(context.Background(), storage.KeyMenuItems)
	if err != nil || !found {
		t.Fatalf("expected stored menu, found=%v err=%v", found, err)
	}
	var items []Item
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		t.Fatalf("stored menu is not valid json: %v", err)
	}
	return items
}

func TestLoadSeedsDefaultsWhenMissing(t *testing.T) {
	store := newStore()
	catalog := NewCatalog(store, nil)

	if err := catalog.Load(context.Background()); err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}

	items := catalog.List()
	if len(items) != 10 {
		t.Fatalf("expected 10 default items, got %d", len(items))
	}
	for i, item := range items {
		if item.ID != i+1 {
			t.Fatalf("expected id %d at position %d, got %d", i+1, i, item.ID)
		}
	}
	if items[0].Name != "Idly" || items[9].Name != "Coffee" {
		t.Fatalf("unexpected default names %q..%q", items[0].Name, items[9].Name)
	}
	if persisted := storedItems(t, store); len(persisted) != 10 {
		t.Fatalf("expected defaults persisted immediately, got %d", len(persisted))
	}
}

func TestLoadSeedsDefaultsForEmptyOrMalformed(t *testing.T) {
	for _, raw := range []string{"[]", "  ", "{oops", `{"id":1}`} {
		store := newStore()
		_ = store.Memory.Write(context.Background(), storage.KeyMenuItems, raw)
		catalog := NewCatalog(store, nil)

		_ = catalog.Load(context.Background())
		if got := len(catalog.List()); got != 10 {
			t.Fatalf("raw %q: expected defaults, got %d items", raw, got)
		}
		if persisted := storedItems(t, store); len(persisted) != 10 {
			t.Fatalf("raw %q: expected defaults persisted, got %d", raw, len(persisted))
		}
	}
}

func TestLoadKeepsStoredItems(t *testing.T) {
	store := newStore()
	_ = store.Memory.Write(context.Background(), storage.KeyMenuItems,
		`[{"id":4,"name":"Vada","price":20,"image":"","description":""},{"id":12,"name":"Upma","price":"22.50","image":"","description":"Semolina"}]`)
	catalog := NewCatalog(store, nil)

	if err := catalog.Load(context.Background()); err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	items := catalog.List()
	if len(items) != 2 || items[1].Price.StringFixed(2) != "22.50" {
		t.Fatalf("unexpected items %+v", items)
	}

	created, err := catalog.Create(context.Background(), Input{Name: "Pongal", Price: decimal.NewFromInt(30)})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.ID != 13 {
		t.Fatalf("expected id after stored max, got %d", created.ID)
	}
}

func TestLoadReadFailureUsesDefaultsWithoutOverwriting(t *testing.T) {
	store := newStore()
	store.readErr = errors.New("connection refused")
	catalog := NewCatalog(store, nil)

	err := catalog.Load(context.Background())
	if !pkgerrors.Is(err, pkgerrors.CodeStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
	if len(catalog.List()) != 10 {
		t.Fatal("expected session defaults")
	}
	if store.writes != 0 {
		t.Fatalf("read failure must not overwrite the store, got %d writes", store.writes)
	}
}

func TestEditsRefusedUntilStoredMenuIsRead(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	_ = store.Memory.Write(ctx, storage.KeyMenuItems, `[{"id":4,"name":"Pongal","price":"30"}]`)
	store.readErr = errors.New("connection refused")
	catalog := NewCatalog(store, nil)
	_ = catalog.Load(ctx)

	_, err := catalog.Create(ctx, Input{Name: "Upma", Price: decimal.NewFromInt(22)})
	if !errors.Is(err, storage.ErrUnavailable) {
		t.Fatalf("expected create to be refused, got %v", err)
	}
	if _, err := catalog.Update(ctx, 1, Input{Name: "Idly", Price: decimal.NewFromInt(30)}); !errors.Is(err, storage.ErrUnavailable) {
		t.Fatalf("expected update to be refused, got %v", err)
	}
	if _, err := catalog.Delete(ctx, 1); !errors.Is(err, storage.ErrUnavailable) {
		t.Fatalf("expected delete to be refused, got %v", err)
	}
	if store.writes != 0 {
		t.Fatalf("refused edits must not write, got %d writes", store.writes)
	}

	store.readErr = nil
	recovered, err := catalog.Recover(ctx)
	if err != nil || !recovered {
		t.Fatalf("expected recovery, got %v %v", recovered, err)
	}
	created, err := catalog.Create(ctx, Input{Name: "Upma", Price: decimal.NewFromInt(22)})
	if err != nil {
		t.Fatalf("create after recovery failed: %v", err)
	}
	if created.ID != 5 {
		t.Fatalf("expected id after the stored menu, got %d", created.ID)
	}
	if items := storedItems(t, store); len(items) != 2 {
		t.Fatalf("expected stored item plus new one, got %+v", items)
	}
}

func TestCreateAssignsIncreasingIDs(t *testing.T) {
	store := newStore()
	pub := &recorder{}
	catalog := NewCatalog(store, pub)
	ctx := context.Background()

	first, err := catalog.Create(ctx, Input{Name: "  Upma ", Price: decimal.RequireFromString("22.5")})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if first.ID != 1 || first.Name != "Upma" || first.Price.StringFixed(2) != "22.50" {
		t.Fatalf("unexpected first item %+v", first)
	}

	second, _ := catalog.Create(ctx, Input{Name: "Upma", Price: decimal.NewFromInt(22)})
	if second.ID != 2 {
		t.Fatalf("duplicate names are allowed and get a new id, got %d", second.ID)
	}

	if _, err := catalog.Delete(ctx, 2); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	third, _ := catalog.Create(ctx, Input{Name: "Kesari", Price: decimal.NewFromInt(18)})
	if third.ID != 3 {
		t.Fatalf("deleted ids are not reused within a session, got %d", third.ID)
	}

	if persisted := storedItems(t, store); len(persisted) != 2 {
		t.Fatalf("expected flushed catalog of 2, got %d", len(persisted))
	}
	if len(pub.changes) != 4 || pub.changes[0].Action != events.ActionCreated {
		t.Fatalf("unexpected notifications %+v", pub.changes)
	}
}

func TestCreateValidation(t *testing.T) {
	catalog := NewCatalog(newStore(), nil)
	ctx := context.Background()

	if _, err := catalog.Create(ctx, Input{Name: "   ", Price: decimal.NewFromInt(1)}); !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for blank name, got %v", err)
	}
	if _, err := catalog.Create(ctx, Input{Name: "Tea", Price: decimal.NewFromInt(-1)}); !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for negative price, got %v", err)
	}
	if len(catalog.List()) != 0 {
		t.Fatal("rejected input must not change state")
	}
}

func TestUpdateInPlace(t *testing.T) {
	store := newStore()
	catalog := NewCatalog(store, nil)
	ctx := context.Background()
	_ = catalog.Load(ctx)

	updated, err := catalog.Update(ctx, 3, Input{Name: "Masala Dosa", Price: decimal.NewFromInt(55), Description: "With potato"})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.ID != 3 || updated.Name != "Masala Dosa" {
		t.Fatalf("unexpected updated item %+v", updated)
	}
	items := catalog.List()
	if items[2].Name != "Masala Dosa" || items[2].Price.StringFixed(2) != "55.00" {
		t.Fatalf("expected position to be kept, got %+v", items[2])
	}
	if persisted := storedItems(t, store); persisted[2].Name != "Masala Dosa" {
		t.Fatalf("expected update flushed, got %+v", persisted[2])
	}

	if _, err := catalog.Update(ctx, 99, Input{Name: "Ghost", Price: decimal.Zero}); !pkgerrors.Is(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	store := newStore()
	catalog := NewCatalog(store, nil)
	ctx := context.Background()
	_ = catalog.Load(ctx)
	writes := store.writes

	removed, err := catalog.Delete(ctx, 5)
	if err != nil || !removed {
		t.Fatalf("expected removal, got removed=%v err=%v", removed, err)
	}
	removed, err = catalog.Delete(ctx, 5)
	if err != nil || removed {
		t.Fatalf("second delete should be a no-op, got removed=%v err=%v", removed, err)
	}
	if store.writes != writes+1 {
		t.Fatalf("expected one flush, got %d", store.writes-writes)
	}
	if _, err := catalog.Get(5); !pkgerrors.Is(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected deleted item to be gone, got %v", err)
	}
	if len(catalog.List()) != 9 {
		t.Fatalf("expected 9 items, got %d", len(catalog.List()))
	}
}

func TestFlushFailureKeepsInMemoryState(t *testing.T) {
	store := newStore()
	store.writeErr = errors.New("disk full")
	catalog := NewCatalog(store, nil)

	item, err := catalog.Create(context.Background(), Input{Name: "Tea", Price: decimal.NewFromInt(10)})
	if !pkgerrors.Is(err, pkgerrors.CodeStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
	if item.ID != 1 || len(catalog.List()) != 1 {
		t.Fatal("in-memory state should stay authoritative after a failed flush")
	}
}

func TestDisplayImageFallback(t *testing.T) {
	item := Item{Name: "Filter Coffee"}
	if got := item.DisplayImage(); got != "https://picsum.photos/seed/filter%20coffee/400/400" {
		t.Fatalf("unexpected placeholder %q", got)
	}
	item.Image = "https://example.com/coffee.jpg"
	if got := item.DisplayImage(); got != item.Image {
		t.Fatalf("expected explicit image, got %q", got)
	}
}
