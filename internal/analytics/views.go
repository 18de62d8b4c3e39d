// Package analytics derives the bill history views. Everything here is pure.
package analytics

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/angelmondragon/counterpos/internal/ledger"
	pkgerrors "github.com/angelmondragon/counterpos/pkg/errors"
	"github.com/shopspring/decimal"
)

// View selects how bill history is presented.
type View string

const (
	ViewDaily   View = "daily"
	ViewMonthly View = "monthly"
)

// ParseView defaults to the daily view when raw is blank.
func ParseView(raw string) (View, error) {
	switch View(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ViewDaily:
		return ViewDaily, nil
	case ViewMonthly:
		return ViewMonthly, nil
	default:
		return "", pkgerrors.New(pkgerrors.CodeValidation, "unknown bill view").
			WithDetails(map[string]string{"view": "must be daily or monthly"})
	}
}

// DayGroup is one calendar day of the monthly view.
type DayGroup struct {
	DateKey  string          `json:"dateKey"`
	Label    string          `json:"label"`
	Bills    []ledger.Bill   `json:"bills"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// Summary counts and totals a set of bills.
type Summary struct {
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// Monthly is the grouped view of the current month.
type Monthly struct {
	Month   string     `json:"month"`
	Groups  []DayGroup `json:"groups"`
	Summary Summary    `json:"summary"`
}

// DailyView returns the bills dated on now's local day, most recent first.
func DailyView(bills []ledger.Bill, now time.Time, loc *time.Location) []ledger.Bill {
	today := ledger.DateKey(now, location(loc))
	out := filter(bills, func(b ledger.Bill) bool { return b.DateKey == today })
	newestFirst(out)
	return out
}

// MonthlyView groups the bills of now's local month by day. Groups are ordered by
// date key descending and bills within a group newest first.
func MonthlyView(bills []ledger.Bill, now time.Time, loc *time.Location) Monthly {
	loc = location(loc)
	month := ledger.MonthKey(now, loc)
	inMonth := filter(bills, func(b ledger.Bill) bool { return b.MonthYear == month })
	newestFirst(inMonth)

	result := Monthly{Month: month, Groups: []DayGroup{}, Summary: Summarize(inMonth)}
	index := make(map[string]int)
	for _, bill := range inMonth {
		at, ok := index[bill.DateKey]
		if !ok {
			at = len(result.Groups)
			index[bill.DateKey] = at
			result.Groups = append(result.Groups, DayGroup{
				DateKey:  bill.DateKey,
				Label:    DayLabel(bill.DateKey, loc),
				Subtotal: decimal.Zero,
			})
		}
		group := &result.Groups[at]
		group.Bills = append(group.Bills, bill)
		group.Subtotal = group.Subtotal.Add(bill.Total)
	}

	slices.SortStableFunc(result.Groups, func(a, b DayGroup) int {
		return strings.Compare(b.DateKey, a.DateKey)
	})
	return result
}

// Summarize counts bills and sums their totals.
func Summarize(bills []ledger.Bill) Summary {
	total := decimal.Zero
	for _, bill := range bills {
		total = total.Add(bill.Total)
	}
	return Summary{Count: len(bills), Total: total}
}

// ItemCount is the number of units on a bill.
func ItemCount(bill ledger.Bill) int {
	return bill.ItemCount()
}

// DayLabel renders a date key for a group header, e.g. "Thu, May 2, 2024".
// Keys that do not parse are returned unchanged.
func DayLabel(dateKey string, loc *time.Location) string {
	day, err := time.ParseInLocation("2006-01-02", dateKey, location(loc))
	if err != nil {
		return dateKey
	}
	return day.Format("Mon, Jan 2, 2006")
}

func filter(bills []ledger.Bill, keep func(ledger.Bill) bool) []ledger.Bill {
	out := make([]ledger.Bill, 0, len(bills))
	for _, bill := range bills {
		if keep(bill) {
			out = append(out, bill)
		}
	}
	return out
}

func newestFirst(bills []ledger.Bill) {
	slices.SortStableFunc(bills, func(a, b ledger.Bill) int {
		return cmp.Compare(b.DateTime.UnixNano(), a.DateTime.UnixNano())
	})
}

func location(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}
