package ledger

import (
	"fmt"
	"time"

	"github.com/angelmondragon/counterpos/internal/cart"
	"github.com/shopspring/decimal"
)

const (
	dateKeyLayout     = "2006-01-02"
	monthKeyLayout    = "2006-01"
	displayDateLayout = "1/2/2006"
	displayTimeLayout = "3:04:05 PM"
)

// Bill is an immutable record of one checkout.
type Bill struct {
	ID        int             `json:"id"`
	Items     []cart.Line     `json:"items"`
	Total     decimal.Decimal `json:"total"`
	Date      string          `json:"date"`
	Time      string          `json:"time"`
	DateTime  time.Time       `json:"dateTime"`
	Year      int             `json:"year"`
	Month     int             `json:"month"`
	Day       int             `json:"day"`
	MonthYear string          `json:"monthYear"`
	DateKey   string          `json:"dateKey"`
}

// ItemCount is the number of units on the bill.
func (b Bill) ItemCount() int {
	return cart.Count(b.Items)
}

// Label is the bill number as printed, e.g. #12.
func (b Bill) Label() string {
	return fmt.Sprintf("#%d", b.ID)
}

// DateKey is the zero-padded local calendar day of t, YYYY-MM-DD.
func DateKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dateKeyLayout)
}

// MonthKey is the zero-padded local calendar month of t, YYYY-MM.
func MonthKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(monthKeyLayout)
}

func newBill(id int, lines []cart.Line, now time.Time, loc *time.Location) Bill {
	local := now.In(loc)
	return Bill{
		ID:        id,
		Items:     cart.CopyLines(lines),
		Total:     cart.Total(lines),
		Date:      local.Format(displayDateLayout),
		Time:      local.Format(displayTimeLayout),
		DateTime:  now.UTC(),
		Year:      local.Year(),
		Month:     int(local.Month()),
		Day:       local.Day(),
		MonthYear: local.Format(monthKeyLayout),
		DateKey:   local.Format(dateKeyLayout),
	}
}

func copyBill(b Bill) Bill {
	b.Items = cart.CopyLines(b.Items)
	return b
}
