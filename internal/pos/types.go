package pos

import (
	"github.com/angelmondragon/counterpos/internal/analytics"
	"github.com/angelmondragon/counterpos/internal/cart"
	"github.com/angelmondragon/counterpos/internal/ledger"
	"github.com/angelmondragon/counterpos/internal/menu"
	"github.com/angelmondragon/counterpos/pkg/upi"
	"github.com/shopspring/decimal"
)

// Warning reports a store write that failed while the command itself succeeded.
// The in-memory state stays authoritative until the next successful flush.
type Warning struct {
	Collection string `json:"collection"`
	Message    string `json:"message"`
}

// MenuEntry is a menu item as shown to the presentation layer.
type MenuEntry struct {
	menu.Item
	DisplayImage string `json:"displayImage"`
}

// CartView is the current order with its derived values.
type CartView struct {
	Items []cart.Line     `json:"items"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

type ItemResult struct {
	Item     MenuEntry `json:"item"`
	Warnings []Warning `json:"warnings,omitempty"`
}

type DeleteItemResult struct {
	Removed  bool      `json:"removed"`
	Cart     CartView  `json:"cart"`
	Warnings []Warning `json:"warnings,omitempty"`
}

type CartResult struct {
	Cart     CartView  `json:"cart"`
	Warnings []Warning `json:"warnings,omitempty"`
}

type PayResult struct {
	Bill     ledger.Bill `json:"bill"`
	Payment  upi.Payment `json:"payment"`
	Cart     CartView    `json:"cart"`
	Warnings []Warning   `json:"warnings,omitempty"`
}

type PrintResult struct {
	Bill      ledger.Bill `json:"bill"`
	Printable string      `json:"printable"`
	Cart      CartView    `json:"cart"`
	Warnings  []Warning   `json:"warnings,omitempty"`
}

// PaymentCode is the payment request for the current cart.
type PaymentCode struct {
	upi.Payment
	PNG []byte `json:"-"`
}

// Daily lists today's bills.
type Daily struct {
	Date    string            `json:"date"`
	Bills   []ledger.Bill     `json:"bills"`
	Summary analytics.Summary `json:"summary"`
}

// BillsView is the bill history in the requested view. Exactly one of Daily and
// Monthly is set.
type BillsView struct {
	View     analytics.View        `json:"view"`
	Daily    *Daily                `json:"daily,omitempty"`
	Monthly  *analytics.Monthly    `json:"monthly,omitempty"`
	TopItems []analytics.ItemSales `json:"topItems"`
}

// BillDetail is a single bill with its unit count.
type BillDetail struct {
	ledger.Bill
	ItemCount int `json:"itemCount"`
}

func toEntry(item menu.Item) MenuEntry {
	return MenuEntry{Item: item, DisplayImage: item.DisplayImage()}
}

func toEntries(items []menu.Item) []MenuEntry {
	out := make([]MenuEntry, len(items))
	for i, item := range items {
		out[i] = toEntry(item)
	}
	return out
}
