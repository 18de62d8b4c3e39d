// Package pos coordinates the menu, cart and ledger behind a single writer and
// translates user intents into component calls.
package pos

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/angelmondragon/counterpos/internal/analytics"
	"github.com/angelmondragon/counterpos/internal/cart"
	"github.com/angelmondragon/counterpos/internal/events"
	"github.com/angelmondragon/counterpos/internal/ledger"
	"github.com/angelmondragon/counterpos/internal/menu"
	"github.com/angelmondragon/counterpos/internal/storage"
	pkgerrors "github.com/angelmondragon/counterpos/pkg/errors"
	"github.com/angelmondragon/counterpos/pkg/logger"
	"github.com/angelmondragon/counterpos/pkg/metrics"
	"go.uber.org/multierr"
)

// Service exposes every counter command. Implementations serialize all calls.
type Service interface {
	Load(ctx context.Context) error

	Menu(ctx context.Context) []MenuEntry
	CreateItem(ctx context.Context, input menu.Input) (ItemResult, error)
	UpdateItem(ctx context.Context, id int, input menu.Input) (ItemResult, error)
	DeleteItem(ctx context.Context, id int) (DeleteItemResult, error)

	Cart(ctx context.Context) CartView
	AddToCart(ctx context.Context, itemID int) (CartResult, error)
	ChangeQuantity(ctx context.Context, itemID, delta int) (CartResult, error)
	RemoveLine(ctx context.Context, itemID int) (CartResult, error)
	ClearCart(ctx context.Context, confirm bool) (CartResult, error)

	Pay(ctx context.Context) (PayResult, error)
	Print(ctx context.Context) (PrintResult, error)
	PaymentCode(ctx context.Context) (PaymentCode, error)

	Bills(ctx context.Context, view analytics.View) BillsView
	Bill(ctx context.Context, id int) (BillDetail, error)
	PrintBill(ctx context.Context, id int) (string, error)
}

// PaymentOptions configures the UPI payment request.
type PaymentOptions struct {
	Payee  string
	Name   string
	Note   string
	QRSize int
}

// Options configures the coordinator.
type Options struct {
	ShopName      string
	Payment       PaymentOptions
	PayClearsCart bool
	Location      *time.Location
	TopItems      int
	Now           func() time.Time
}

type service struct {
	mu      sync.Mutex
	catalog *menu.Catalog
	cart    *cart.Cart
	ledger  *ledger.Ledger
	logg    *logger.Logger
	metrics *metrics.POSMetrics
	opts    Options
}

const defaultTopItems = 5

// NewService wires the three collections over store. Changes are published to pub.
func NewService(store storage.Store, pub events.Publisher, logg *logger.Logger, m *metrics.POSMetrics, opts Options) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.TopItems <= 0 {
		opts.TopItems = defaultTopItems
	}
	return &service{
		catalog: menu.NewCatalog(store, pub),
		cart:    cart.New(store, pub),
		ledger:  ledger.New(store, pub, opts.Location),
		logg:    logg,
		metrics: m,
		opts:    opts,
	}, nil
}

// Load restores all three collections. Failures degrade to defaults or empty
// collections; the combined error is returned for the caller to report.
func (s *service) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx = s.logg.WithCommand(ctx, "load")

	var errs error
	for _, step := range []struct {
		collection string
		load       func(context.Context) error
	}{
		{storage.KeyMenuItems, s.catalog.Load},
		{storage.KeyCart, s.cart.Load},
		{storage.KeyBills, s.ledger.Load},
	} {
		if err := step.load(ctx); err != nil {
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
				"collection": step.collection,
				"error":      err.Error(),
			}), "collection load degraded")
			errs = multierr.Append(errs, err)
		}
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"menu_items": len(s.catalog.List()),
		"cart_lines": len(s.cart.Lines()),
		"bills":      len(s.ledger.All()),
	}), "state loaded")
	return errs
}

// exec runs fn as one serialized command and records its outcome.
func (s *service) exec(ctx context.Context, command string, fn func(ctx context.Context, w *warnings) error) ([]Warning, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	ctx = s.logg.WithCommand(ctx, command)
	w := &warnings{svc: s, ctx: ctx}
	s.recover(ctx, w)
	err := fn(ctx, w)

	outcome := metrics.OutcomeOK
	switch {
	case err != nil:
		outcome = metrics.OutcomeError
	case len(w.list) > 0:
		outcome = metrics.OutcomeWarning
	}
	s.metrics.ObserveCommand(command, outcome, time.Since(start))
	if err != nil {
		s.logg.Debug(s.logg.WithField(ctx, "error", err.Error()), "command rejected")
	}
	return w.list, err
}

// recover retries collections whose stored document could not be read at load time.
func (s *service) recover(ctx context.Context, w *warnings) {
	for _, step := range []struct {
		collection string
		recover    func(context.Context) (bool, error)
	}{
		{storage.KeyMenuItems, s.catalog.Recover},
		{storage.KeyCart, s.cart.Recover},
		{storage.KeyBills, s.ledger.Recover},
	} {
		recovered, err := step.recover(ctx)
		if !recovered {
			if err != nil {
				s.logg.Debug(s.logg.WithFields(ctx, map[string]any{
					"collection": step.collection,
					"error":      err.Error(),
				}), "collection still unavailable")
			}
			continue
		}
		s.logg.Info(s.logg.WithField(ctx, "collection", step.collection), "collection recovered")
		_ = w.absorb(step.collection, err)
	}
}

// read runs fn under the writer lock without command accounting.
func (s *service) read(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

type warnings struct {
	svc  *service
	ctx  context.Context
	list []Warning
}

// absorb turns a storage failure into a warning and passes every other error through.
func (w *warnings) absorb(collection string, err error) error {
	if err == nil {
		return nil
	}
	if !pkgerrors.Is(err, pkgerrors.CodeStorage) || errors.Is(err, storage.ErrUnavailable) {
		return err
	}
	w.svc.metrics.IncFlushFailure(collection)
	w.svc.logg.Warn(w.svc.logg.WithFields(w.ctx, map[string]any{
		"collection": collection,
		"error":      err.Error(),
	}), "flush failed; keeping in-memory state")
	w.list = append(w.list, Warning{
		Collection: collection,
		Message:    fmt.Sprintf("%s could not be saved; changes will be lost on restart", collection),
	})
	return nil
}

func (s *service) cartView() CartView {
	return CartView{Items: s.cart.Lines(), Total: s.cart.Total(), Count: s.cart.Count()}
}
