package cart

import (
	"github.com/angelmondragon/counterpos/internal/menu"
	"github.com/angelmondragon/counterpos/pkg/money"
	"github.com/shopspring/decimal"
)

// Line is a snapshot of a menu item taken when it was first added, plus its quantity.
type Line struct {
	menu.Item
	Quantity int `json:"quantity"`
}

// LineTotal is price times quantity.
func (l Line) LineTotal() decimal.Decimal {
	return money.LineTotal(l.Price, l.Quantity)
}

// CopyLines returns an independent copy of lines.
func CopyLines(lines []Line) []Line {
	out := make([]Line, len(lines))
	copy(out, lines)
	return out
}

// Total sums the line totals; an empty slice totals zero.
func Total(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.LineTotal())
	}
	return total
}

// Count sums quantities.
func Count(lines []Line) int {
	count := 0
	for _, line := range lines {
		count += line.Quantity
	}
	return count
}
