// Package money holds the rupee amount helpers shared by the menu, cart and bills.
package money

import (
	"strings"

	pkgerrors "github.com/angelmondragon/counterpos/pkg/errors"
	"github.com/shopspring/decimal"
)

// Symbol prefixes every displayed amount.
const Symbol = "₹"

// Places is the minor-unit precision of stored and displayed amounts.
const Places = 2

// ParsePrice validates a user supplied price. The result is rounded to paise.
func ParsePrice(raw string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "price is required").
			WithDetails(map[string]string{"price": "is required"})
	}
	value, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "price must be a number").
			WithDetails(map[string]string{"price": "must be a number"})
	}
	return Normalize(value)
}

// Normalize rejects negative amounts and rounds to paise.
func Normalize(value decimal.Decimal) (decimal.Decimal, error) {
	if value.IsNegative() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative").
			WithDetails(map[string]string{"price": "must not be negative"})
	}
	return value.Round(Places), nil
}

// LineTotal is price × quantity.
func LineTotal(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}

// Fixed renders an amount with exactly two decimals and no symbol.
func Fixed(amount decimal.Decimal) string {
	return amount.StringFixed(Places)
}

// Format renders an amount for display, e.g. ₹25.00.
func Format(amount decimal.Decimal) string {
	return Symbol + Fixed(amount)
}
