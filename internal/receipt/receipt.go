// Package receipt renders bills as fixed-width text slips for a counter printer.
package receipt

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/angelmondragon/counterpos/internal/ledger"
	"github.com/angelmondragon/counterpos/pkg/money"
)

const (
	Width      = 40
	nameWidth  = 16
	qtyWidth   = 4
	priceWidth = 10
	totalWidth = 10
)

// Render returns the printable slip for bill under the shop header.
func Render(shop string, bill ledger.Bill) string {
	var b strings.Builder
	rule := strings.Repeat("-", Width)

	b.WriteString(center(shop))
	b.WriteByte('\n')
	b.WriteString(rule)
	b.WriteByte('\n')
	fmt.Fprintf(&b, "Bill: %s\n", bill.Label())
	fmt.Fprintf(&b, "Date: %s\n", bill.Date)
	fmt.Fprintf(&b, "Time: %s\n", bill.Time)
	b.WriteString(rule)
	b.WriteByte('\n')
	b.WriteString(row("Item", "Qty", "Price", "Total"))
	for _, line := range bill.Items {
		b.WriteString(row(
			line.Name,
			fmt.Sprint(line.Quantity),
			money.Format(line.Price),
			money.Format(line.LineTotal()),
		))
	}
	b.WriteString(rule)
	b.WriteByte('\n')
	total := money.Format(bill.Total)
	b.WriteString(padRight("TOTAL", Width-runeLen(total)))
	b.WriteString(total)
	b.WriteByte('\n')
	b.WriteString(rule)
	b.WriteByte('\n')
	b.WriteString(center("Thank you!"))
	b.WriteByte('\n')
	return b.String()
}

func row(name, qty, price, total string) string {
	return padRight(truncate(name, nameWidth), nameWidth) +
		padLeft(qty, qtyWidth) +
		padLeft(price, priceWidth) +
		padLeft(total, totalWidth) + "\n"
}

func center(text string) string {
	text = truncate(text, Width)
	pad := (Width - runeLen(text)) / 2
	return strings.Repeat(" ", pad) + text
}

func truncate(text string, width int) string {
	if runeLen(text) <= width {
		return text
	}
	runes := []rune(text)
	return string(runes[:width-1]) + "."
}

func padRight(text string, width int) string {
	if n := width - runeLen(text); n > 0 {
		return text + strings.Repeat(" ", n)
	}
	return text
}

func padLeft(text string, width int) string {
	if n := width - runeLen(text); n > 0 {
		return strings.Repeat(" ", n) + text
	}
	return text
}

func runeLen(text string) int {
	return utf8.RuneCountInString(text)
}
