package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/angelmondragon/counterpos/internal/cart"
	"github.com/angelmondragon/counterpos/internal/menu"
	"github.com/angelmondragon/counterpos/internal/storage"
	pkgerrors "github.com/angelmondragon/counterpos/pkg/errors"
	"github.com/shopspring/decimal"
)

var kolkata = time.FixedZone("IST", 5*60*60+30*60)

func line(id int, name, price string, qty int) cart.Line {
	return cart.Line{Item: menu.Item{ID: id, Name: name, Price: decimal.RequireFromString(price)}, Quantity: qty}
}

func TestAppendCapturesSnapshot(t *testing.T) {
	store := storage.NewMemory()
	l := New(store, nil, kolkata)
	lines := []cart.Line{line(1, "Idly", "25", 2), line(9, "Tea", "10", 1)}
	now := time.Date(2024, 5, 1, 20, 15, 0, 0, time.UTC)

	bill, err := l.Append(context.Background(), lines, now)
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if bill.ID != 1 || bill.Total.StringFixed(2) != "60.00" || len(bill.Items) != 2 {
		t.Fatalf("unexpected bill %+v", bill)
	}
	if bill.DateKey != "2024-05-02" || bill.MonthYear != "2024-05" || bill.Day != 2 || bill.Month != 5 || bill.Year != 2024 {
		t.Fatalf("expected local calendar keys, got %s %s", bill.DateKey, bill.MonthYear)
	}
	if bill.Date != "5/2/2024" || bill.Time != "1:45:00 AM" {
		t.Fatalf("unexpected display forms %q %q", bill.Date, bill.Time)
	}
	if !bill.DateTime.Equal(now) {
		t.Fatalf("expected instant %s, got %s", now, bill.DateTime)
	}
	if bill.ItemCount() != 3 || bill.Label() != "#1" {
		t.Fatalf("unexpected count %d label %s", bill.ItemCount(), bill.Label())
	}

	lines[0].Quantity = 50
	lines[0].Price = decimal.NewFromInt(1)
	stored, _ := l.Find(1)
	if stored.Items[0].Quantity != 2 || stored.Total.StringFixed(2) != "60.00" {
		t.Fatalf("bill must not change with the cart, got %+v", stored)
	}

	raw, _, _ := store.Read(context.Background(), storage.KeyBills)
	var persisted []map[string]any
	if err := json.Unmarshal([]byte(raw), &persisted); err != nil || len(persisted) != 1 {
		t.Fatalf("expected flushed bill, got %s", raw)
	}
	for _, field := range []string{"id", "items", "total", "date", "time", "dateTime", "year", "month", "day", "monthYear", "dateKey"} {
		if _, ok := persisted[0][field]; !ok {
			t.Fatalf("persisted bill is missing %q", field)
		}
	}
}

func TestAppendRejectsEmptyCart(t *testing.T) {
	store := storage.NewMemory()
	l := New(store, nil, time.UTC)

	_, err := l.Append(context.Background(), nil, time.Now())
	if !pkgerrors.Is(err, pkgerrors.CodeEmptyCart) {
		t.Fatalf("expected empty cart error, got %v", err)
	}
	if len(l.All()) != 0 {
		t.Fatal("ledger must not change")
	}
	if _, found, _ := store.Read(context.Background(), storage.KeyBills); found {
		t.Fatal("nothing should be flushed")
	}
}

func TestIDsIncreaseAcrossReload(t *testing.T) {
	store := storage.NewMemory()
	ctx := context.Background()
	first := New(store, nil, time.UTC)
	lines := []cart.Line{line(1, "Idly", "25", 1)}

	var last int
	for i := 0; i < 3; i++ {
		bill, err := first.Append(ctx, lines, time.Now())
		if err != nil {
			t.Fatalf("append failed: %v", err)
		}
		if bill.ID <= last {
			t.Fatalf("ids must strictly increase, got %d after %d", bill.ID, last)
		}
		last = bill.ID
	}

	reloaded := New(store, nil, time.UTC)
	if err := reloaded.Load(ctx); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(reloaded.All()) != 3 {
		t.Fatalf("expected 3 bills after reload, got %d", len(reloaded.All()))
	}
	bill, _ := reloaded.Append(ctx, lines, time.Now())
	if bill.ID != 4 {
		t.Fatalf("expected id 4 after reload, got %d", bill.ID)
	}
}

func TestLoadAcceptsNumericAmounts(t *testing.T) {
	store := storage.NewMemory()
	_ = store.Write(context.Background(), storage.KeyBills, `[{"id":7,"items":[{"id":1,"name":"Idly","price":25,"image":"","description":"","quantity":2}],"total":50,"date":"5/1/2024","time":"9:00:00 AM","dateTime":"2024-05-01T03:30:00.000Z","year":2024,"month":5,"day":1,"monthYear":"2024-05","dateKey":"2024-05-01"}]`)
	l := New(store, nil, kolkata)

	if err := l.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	bill, err := l.Find(7)
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if bill.Total.StringFixed(2) != "50.00" || bill.Items[0].Quantity != 2 {
		t.Fatalf("unexpected bill %+v", bill)
	}
	if _, err := l.Find(8); !pkgerrors.Is(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestLoadDegradesToEmpty(t *testing.T) {
	store := storage.NewMemory()
	_ = store.Write(context.Background(), storage.KeyBills, "{broken")
	l := New(store, nil, time.UTC)

	if err := l.Load(context.Background()); !errors.Is(err, storage.ErrDecode) {
		t.Fatalf("expected decode error, got %v", err)
	}
	if len(l.All()) != 0 {
		t.Fatal("expected empty ledger")
	}

	_, err := l.Append(context.Background(), []cart.Line{line(1, "Idly", "25", 1)}, time.Now())
	if !errors.Is(err, storage.ErrUnavailable) {
		t.Fatalf("append over an unreadable history must be refused, got %v", err)
	}
	if raw, _, _ := store.Read(context.Background(), storage.KeyBills); raw != "{broken" {
		t.Fatalf("stored history was overwritten: %q", raw)
	}
}

type failingReads struct {
	*storage.Memory
	fail bool
}

func (f *failingReads) Read(ctx context.Context, key string) (string, bool, error) {
	if f.fail {
		return "", false, errors.New("connection refused")
	}
	return f.Memory.Read(ctx, key)
}

func TestAppendAfterFailedLoadKeepsStoredHistory(t *testing.T) {
	ctx := context.Background()
	store := &failingReads{Memory: storage.NewMemory()}
	seed := New(store, nil, time.UTC)
	for i := 0; i < 2; i++ {
		if _, err := seed.Append(ctx, []cart.Line{line(1, "Idly", "25", 1)}, time.Now()); err != nil {
			t.Fatalf("seed append failed: %v", err)
		}
	}
	before, _, _ := store.Read(ctx, storage.KeyBills)

	store.fail = true
	l := New(store, nil, time.UTC)
	if err := l.Load(ctx); !pkgerrors.Is(err, pkgerrors.CodeStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
	if !l.Degraded() {
		t.Fatal("ledger should be degraded after a read failure")
	}
	_, err := l.Append(ctx, []cart.Line{line(2, "Vada", "15", 1)}, time.Now())
	if !pkgerrors.Is(err, pkgerrors.CodeStorage) || !errors.Is(err, storage.ErrUnavailable) {
		t.Fatalf("expected unavailable storage error, got %v", err)
	}

	store.fail = false
	if after, _, _ := store.Read(ctx, storage.KeyBills); after != before {
		t.Fatalf("stored history changed while unreadable:\n%s\n%s", before, after)
	}

	recovered, err := l.Recover(ctx)
	if err != nil || !recovered {
		t.Fatalf("expected recovery, got %v %v", recovered, err)
	}
	bill, err := l.Append(ctx, []cart.Line{line(2, "Vada", "15", 1)}, time.Now())
	if err != nil {
		t.Fatalf("append after recovery failed: %v", err)
	}
	if bill.ID != 3 {
		t.Fatalf("expected id 3 after recovery, got %d", bill.ID)
	}
	if got := len(l.All()); got != 3 {
		t.Fatalf("expected 3 bills, got %d", got)
	}
}

func TestKeysUseLocation(t *testing.T) {
	instant := time.Date(2024, 5, 31, 20, 0, 0, 0, time.UTC)
	if got := DateKey(instant, kolkata); got != "2024-06-01" {
		t.Fatalf("unexpected date key %s", got)
	}
	if got := MonthKey(instant, time.UTC); got != "2024-05" {
		t.Fatalf("unexpected month key %s", got)
	}
}
