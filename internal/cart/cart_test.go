package cart

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/angelmondragon/counterpos/internal/events"
	"github.com/angelmondragon/counterpos/internal/menu"
	"github.com/angelmondragon/counterpos/internal/storage"
	pkgerrors "github.com/angelmondragon/counterpos/pkg/errors"
	"github.com/shopspring/decimal"
)

type brokenStore struct {
	storage.Memory
}

func (*brokenStore) Write(context.Context, string, string) error {
	return errors.New("quota exceeded")
}

type recorder struct {
	changes []events.Change
}

func (r *recorder) Publish(c events.Change) { r.changes = append(r.changes, c) }

func item(id int, name, price string) menu.Item {
	return menu.Item{ID: id, Name: name, Price: decimal.RequireFromString(price)}
}

func storedLines(t *testing.T, s storage.Store) []Line {
	t.Helper()
	raw, found, err := s.Read(context.Background(), storage.KeyCart)
	if err != nil || !found {
		t.Fatalf("expected stored cart, found=%v err=%v", found, err)
	}
	var lines []Line
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		t.Fatalf("stored cart is not valid json: %v", err)
	}
	return lines
}

func TestAddItemNeverDuplicatesLines(t *testing.T) {
	c := New(storage.NewMemory(), nil)
	ctx := context.Background()
	idly := item(1, "Idly", "25")

	for i := 0; i < 5; i++ {
		if err := c.AddItem(ctx, idly); err != nil {
			t.Fatalf("add failed: %v", err)
		}
	}
	lines := c.Lines()
	if len(lines) != 1 || lines[0].Quantity != 5 {
		t.Fatalf("expected a single line with quantity 5, got %+v", lines)
	}
}

func TestCartTotalScenario(t *testing.T) {
	store := storage.NewMemory()
	c := New(store, nil)
	ctx := context.Background()
	a := item(1, "Idly", "25.00")
	b := item(9, "Tea", "10.00")

	_ = c.AddItem(ctx, a)
	_ = c.AddItem(ctx, a)
	_ = c.AddItem(ctx, b)

	if got := c.Total().StringFixed(2); got != "60.00" {
		t.Fatalf("expected total 60.00, got %s", got)
	}
	if c.Count() != 3 {
		t.Fatalf("expected count 3, got %d", c.Count())
	}
	lines := storedLines(t, store)
	if len(lines) != 2 || lines[0].ID != 1 || lines[0].Quantity != 2 || lines[1].ID != 9 {
		t.Fatalf("unexpected flushed lines %+v", lines)
	}
}

func TestEmptyCartTotalsZero(t *testing.T) {
	c := New(storage.NewMemory(), nil)
	if !c.Total().IsZero() || !c.IsEmpty() || c.Count() != 0 {
		t.Fatalf("expected empty cart, got total=%s count=%d", c.Total(), c.Count())
	}
}

func TestLinesAreSnapshots(t *testing.T) {
	c := New(storage.NewMemory(), nil)
	dosa := item(3, "Dosa", "40")
	_ = c.AddItem(context.Background(), dosa)

	dosa.Price = decimal.NewFromInt(99)
	dosa.Name = "Masala Dosa"
	_ = c.AddItem(context.Background(), dosa)

	lines := c.Lines()
	if lines[0].Name != "Dosa" || lines[0].Price.StringFixed(2) != "40.00" {
		t.Fatalf("catalog edits must not leak into the line, got %+v", lines[0])
	}

	lines[0].Quantity = 100
	if c.Lines()[0].Quantity != 2 {
		t.Fatal("Lines must return a copy")
	}
}

func TestChangeQuantity(t *testing.T) {
	c := New(storage.NewMemory(), nil)
	ctx := context.Background()
	_ = c.AddItem(ctx, item(1, "Idly", "25"))
	_ = c.AddItem(ctx, item(2, "Puttu", "30"))

	if err := c.ChangeQuantity(ctx, 1, 3); err != nil {
		t.Fatalf("change failed: %v", err)
	}
	if c.Lines()[0].Quantity != 4 {
		t.Fatalf("expected quantity 4, got %d", c.Lines()[0].Quantity)
	}

	_ = c.ChangeQuantity(ctx, 1, -10)
	lines := c.Lines()
	if len(lines) != 1 || lines[0].ID != 2 {
		t.Fatalf("expected line removed at or below zero, got %+v", lines)
	}

	if err := c.ChangeQuantity(ctx, 42, 1); err != nil {
		t.Fatalf("unknown id should be ignored, got %v", err)
	}
	for _, line := range c.Lines() {
		if line.Quantity <= 0 {
			t.Fatalf("cart holds a non-positive line %+v", line)
		}
	}
}

func TestRemoveAndClear(t *testing.T) {
	pub := &recorder{}
	c := New(storage.NewMemory(), pub)
	ctx := context.Background()
	_ = c.AddItem(ctx, item(1, "Idly", "25"))
	_ = c.AddItem(ctx, item(2, "Puttu", "30"))

	removed, err := c.Remove(ctx, 1)
	if err != nil || !removed {
		t.Fatalf("expected removal, got removed=%v err=%v", removed, err)
	}
	if removed, _ := c.Remove(ctx, 1); removed {
		t.Fatal("second removal should report nothing removed")
	}

	if err := c.Clear(ctx); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if !c.IsEmpty() {
		t.Fatal("expected empty cart")
	}
	published := len(pub.changes)
	if err := c.Clear(ctx); err != nil {
		t.Fatalf("clearing an empty cart failed: %v", err)
	}
	if len(pub.changes) != published {
		t.Fatal("clearing an empty cart should not notify")
	}
}

func TestLoadSanitizesStoredLines(t *testing.T) {
	store := storage.NewMemory()
	_ = store.Write(context.Background(), storage.KeyCart, `[
		{"id":1,"name":"Idly","price":25,"image":"","description":"","quantity":2},
		{"id":2,"name":"Puttu","price":"30.00","image":"","description":"","quantity":0},
		{"id":1,"name":"Idly","price":25,"image":"","description":"","quantity":1}
	]`)
	c := New(store, nil)

	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	lines := c.Lines()
	if len(lines) != 1 || lines[0].Quantity != 3 {
		t.Fatalf("expected merged line with quantity 3, got %+v", lines)
	}
}

func TestLoadDegradesToEmpty(t *testing.T) {
	store := storage.NewMemory()
	c := New(store, nil)
	if err := c.Load(context.Background()); err != nil || !c.IsEmpty() {
		t.Fatalf("missing cart should load empty, err=%v", err)
	}

	_ = store.Write(context.Background(), storage.KeyCart, "not json")
	err := c.Load(context.Background())
	if !errors.Is(err, storage.ErrDecode) {
		t.Fatalf("expected decode error, got %v", err)
	}
	if !c.IsEmpty() {
		t.Fatal("unparseable cart should load empty")
	}
}

type unreadableStore struct {
	*storage.Memory
	fail   bool
	writes int
}

func (u *unreadableStore) Read(ctx context.Context, key string) (string, bool, error) {
	if u.fail {
		return "", false, errors.New("connection refused")
	}
	return u.Memory.Read(ctx, key)
}

func (u *unreadableStore) Write(ctx context.Context, key, value string) error {
	u.writes++
	return u.Memory.Write(ctx, key, value)
}

func TestReadFailureKeepsStoredCartUntilRecovered(t *testing.T) {
	ctx := context.Background()
	store := &unreadableStore{Memory: storage.NewMemory()}
	_ = store.Memory.Write(ctx, storage.KeyCart, `[{"id":1,"name":"Idly","price":"25","quantity":2}]`)
	store.fail = true

	c := New(store, nil)
	if err := c.Load(ctx); !pkgerrors.Is(err, pkgerrors.CodeStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
	if !c.Degraded() {
		t.Fatal("cart should be degraded after a read failure")
	}
	err := c.AddItem(ctx, item(2, "Vada", "15"))
	if !pkgerrors.Is(err, pkgerrors.CodeStorage) {
		t.Fatalf("expected storage warning, got %v", err)
	}
	if c.Count() != 1 {
		t.Fatal("in-memory cart should keep the new line")
	}
	if store.writes != 0 {
		t.Fatalf("stored cart must not be overwritten while unreadable, got %d writes", store.writes)
	}

	store.fail = false
	recovered, err := c.Recover(ctx)
	if err != nil || !recovered {
		t.Fatalf("expected recovery, got %v %v", recovered, err)
	}
	lines := storedLines(t, store)
	if len(lines) != 2 || lines[0].ID != 1 || lines[0].Quantity != 2 || lines[1].ID != 2 {
		t.Fatalf("expected stored and session lines merged, got %+v", lines)
	}
	if c.Count() != 3 {
		t.Fatalf("expected 3 units after merge, got %d", c.Count())
	}
}

func TestFlushFailureKeepsLines(t *testing.T) {
	c := New(&brokenStore{}, nil)
	err := c.AddItem(context.Background(), item(1, "Idly", "25"))
	if !pkgerrors.Is(err, pkgerrors.CodeStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
	if c.Count() != 1 {
		t.Fatal("in-memory cart should keep the line")
	}
}
