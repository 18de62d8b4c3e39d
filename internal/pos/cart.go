package pos

import (
	"context"

	"github.com/angelmondragon/counterpos/internal/storage"
	pkgerrors "github.com/angelmondragon/counterpos/pkg/errors"
)

func (s *service) Cart(_ context.Context) CartView {
	var view CartView
	s.read(func() { view = s.cartView() })
	return view
}

func (s *service) AddToCart(ctx context.Context, itemID int) (CartResult, error) {
	return s.cartCommand(ctx, "add_to_cart", func(ctx context.Context, w *warnings) error {
		item, err := s.catalog.Get(itemID)
		if err != nil {
			return err
		}
		return w.absorb(storage.KeyCart, s.cart.AddItem(ctx, item))
	})
}

func (s *service) ChangeQuantity(ctx context.Context, itemID, delta int) (CartResult, error) {
	return s.cartCommand(ctx, "change_quantity", func(ctx context.Context, w *warnings) error {
		return w.absorb(storage.KeyCart, s.cart.ChangeQuantity(ctx, itemID, delta))
	})
}

func (s *service) RemoveLine(ctx context.Context, itemID int) (CartResult, error) {
	return s.cartCommand(ctx, "remove_line", func(ctx context.Context, w *warnings) error {
		_, err := s.cart.Remove(ctx, itemID)
		return w.absorb(storage.KeyCart, err)
	})
}

// ClearCart empties the cart. A non-empty cart is only cleared when confirm is set.
func (s *service) ClearCart(ctx context.Context, confirm bool) (CartResult, error) {
	return s.cartCommand(ctx, "clear_cart", func(ctx context.Context, w *warnings) error {
		if s.cart.IsEmpty() {
			return nil
		}
		if !confirm {
			return pkgerrors.New(pkgerrors.CodeConfirmationRequired, "clearing the cart must be confirmed").
				WithDetails(map[string]any{"confirm": "must be true", "lines": len(s.cart.Lines())})
		}
		return w.absorb(storage.KeyCart, s.cart.Clear(ctx))
	})
}

func (s *service) cartCommand(ctx context.Context, command string, fn func(ctx context.Context, w *warnings) error) (CartResult, error) {
	var result CartResult
	warns, err := s.exec(ctx, command, func(ctx context.Context, w *warnings) error {
		if err := fn(ctx, w); err != nil {
			return err
		}
		result.Cart = s.cartView()
		return nil
	})
	result.Warnings = warns
	return result, err
}
