package pos

import (
	"context"

	"github.com/angelmondragon/counterpos/internal/ledger"
	"github.com/angelmondragon/counterpos/internal/receipt"
	"github.com/angelmondragon/counterpos/internal/storage"
	pkgerrors "github.com/angelmondragon/counterpos/pkg/errors"
	"github.com/angelmondragon/counterpos/pkg/upi"
	"github.com/shopspring/decimal"
)

// Pay records a bill for the cart and returns its payment request. The cart is
// kept unless PayClearsCart is set.
func (s *service) Pay(ctx context.Context) (PayResult, error) {
	var result PayResult
	warns, err := s.exec(ctx, "pay", func(ctx context.Context, w *warnings) error {
		if s.cart.IsEmpty() {
			return emptyCart()
		}
		payment, err := s.payment(s.cart.Total())
		if err != nil {
			return err
		}
		bill, err := s.checkout(ctx, w)
		if err != nil {
			return err
		}
		if s.opts.PayClearsCart {
			if err := w.absorb(storage.KeyCart, s.cart.Clear(ctx)); err != nil {
				return err
			}
		}
		result.Bill = bill
		result.Payment = payment
		result.Cart = s.cartView()
		return nil
	})
	result.Warnings = warns
	return result, err
}

// Print records a bill for the cart, renders its slip and clears the cart.
func (s *service) Print(ctx context.Context) (PrintResult, error) {
	var result PrintResult
	warns, err := s.exec(ctx, "print", func(ctx context.Context, w *warnings) error {
		bill, err := s.checkout(ctx, w)
		if err != nil {
			return err
		}
		if err := w.absorb(storage.KeyCart, s.cart.Clear(ctx)); err != nil {
			return err
		}
		result.Bill = bill
		result.Printable = receipt.Render(s.opts.ShopName, bill)
		result.Cart = s.cartView()
		return nil
	})
	result.Warnings = warns
	return result, err
}

// PaymentCode builds the payment request and QR image for the current cart
// without recording a bill.
func (s *service) PaymentCode(ctx context.Context) (PaymentCode, error) {
	var code PaymentCode
	_, err := s.exec(ctx, "payment_code", func(ctx context.Context, _ *warnings) error {
		if s.cart.IsEmpty() {
			return emptyCart()
		}
		payment, err := s.payment(s.cart.Total())
		if err != nil {
			return err
		}
		png, err := upi.QRCode(payment.URI, s.opts.Payment.QRSize)
		if err != nil {
			return err
		}
		code = PaymentCode{Payment: payment, PNG: png}
		return nil
	})
	return code, err
}

func (s *service) checkout(ctx context.Context, w *warnings) (ledger.Bill, error) {
	if s.cart.IsEmpty() {
		return ledger.Bill{}, emptyCart()
	}
	bill, err := s.ledger.Append(ctx, s.cart.Lines(), s.opts.Now())
	if err := w.absorb(storage.KeyBills, err); err != nil {
		return ledger.Bill{}, err
	}
	total, _ := bill.Total.Float64()
	s.metrics.ObserveBill(total)
	s.logg.Info(s.logg.WithFields(s.logg.WithBillID(ctx, bill.ID), map[string]any{
		"total": bill.Total.StringFixed(2),
		"items": bill.ItemCount(),
	}), "bill recorded")
	return bill, nil
}

func (s *service) payment(amount decimal.Decimal) (upi.Payment, error) {
	return upi.Build(upi.Request{
		Payee:  s.opts.Payment.Payee,
		Name:   s.opts.Payment.Name,
		Note:   s.opts.Payment.Note,
		Amount: amount,
	})
}

func emptyCart() error {
	return pkgerrors.New(pkgerrors.CodeEmptyCart, "cart is empty; add items before checkout")
}
