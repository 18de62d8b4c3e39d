package pos

import (
	"context"

	"github.com/angelmondragon/counterpos/internal/menu"
	"github.com/angelmondragon/counterpos/internal/storage"
)

func (s *service) Menu(_ context.Context) []MenuEntry {
	var entries []MenuEntry
	s.read(func() { entries = toEntries(s.catalog.List()) })
	return entries
}

func (s *service) CreateItem(ctx context.Context, input menu.Input) (ItemResult, error) {
	var result ItemResult
	warns, err := s.exec(ctx, "create_item", func(ctx context.Context, w *warnings) error {
		item, err := s.catalog.Create(ctx, input)
		if err := w.absorb(storage.KeyMenuItems, err); err != nil {
			return err
		}
		result.Item = toEntry(item)
		s.logg.Info(s.logg.WithItemID(ctx, item.ID), "menu item created")
		return nil
	})
	result.Warnings = warns
	return result, err
}

func (s *service) UpdateItem(ctx context.Context, id int, input menu.Input) (ItemResult, error) {
	var result ItemResult
	warns, err := s.exec(ctx, "update_item", func(ctx context.Context, w *warnings) error {
		item, err := s.catalog.Update(ctx, id, input)
		if err := w.absorb(storage.KeyMenuItems, err); err != nil {
			return err
		}
		result.Item = toEntry(item)
		s.logg.Info(s.logg.WithItemID(ctx, id), "menu item updated")
		return nil
	})
	result.Warnings = warns
	return result, err
}

// DeleteItem removes the item and any cart line for it in the same command.
func (s *service) DeleteItem(ctx context.Context, id int) (DeleteItemResult, error) {
	var result DeleteItemResult
	warns, err := s.exec(ctx, "delete_item", func(ctx context.Context, w *warnings) error {
		removed, err := s.catalog.Delete(ctx, id)
		if err := w.absorb(storage.KeyMenuItems, err); err != nil {
			return err
		}
		_, err = s.cart.Remove(ctx, id)
		if err := w.absorb(storage.KeyCart, err); err != nil {
			return err
		}
		result.Removed = removed
		result.Cart = s.cartView()
		if removed {
			s.logg.Info(s.logg.WithItemID(ctx, id), "menu item deleted")
		}
		return nil
	})
	result.Warnings = warns
	return result, err
}
