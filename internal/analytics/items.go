package analytics

import (
	"cmp"
	"slices"

	"github.com/angelmondragon/counterpos/internal/ledger"
	"github.com/shopspring/decimal"
)

// ItemSales aggregates one menu item across a set of bills.
type ItemSales struct {
	ItemID   int             `json:"itemId"`
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// TopItems ranks items by revenue, then quantity, then id. A limit of zero or
// less returns every item.
func TopItems(bills []ledger.Bill, limit int) []ItemSales {
	index := make(map[int]int)
	out := []ItemSales{}
	for _, bill := range bills {
		for _, line := range bill.Items {
			at, ok := index[line.ID]
			if !ok {
				at = len(out)
				index[line.ID] = at
				out = append(out, ItemSales{ItemID: line.ID, Name: line.Name, Revenue: decimal.Zero})
			}
			out[at].Quantity += line.Quantity
			out[at].Revenue = out[at].Revenue.Add(line.LineTotal())
		}
	}

	slices.SortFunc(out, func(a, b ItemSales) int {
		if c := b.Revenue.Cmp(a.Revenue); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Quantity, a.Quantity); c != 0 {
			return c
		}
		return cmp.Compare(a.ItemID, b.ItemID)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
