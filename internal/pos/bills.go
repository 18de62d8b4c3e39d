package pos

import (
	"context"

	"github.com/angelmondragon/counterpos/internal/analytics"
	"github.com/angelmondragon/counterpos/internal/ledger"
	"github.com/angelmondragon/counterpos/internal/receipt"
)

// Bills returns the history in view relative to the current time.
func (s *service) Bills(_ context.Context, view analytics.View) BillsView {
	var all []ledger.Bill
	s.read(func() { all = s.ledger.All() })

	now := s.opts.Now()
	loc := s.opts.Location
	result := BillsView{View: view}
	if view == analytics.ViewMonthly {
		monthly := analytics.MonthlyView(all, now, loc)
		result.Monthly = &monthly
		var inMonth []ledger.Bill
		for _, group := range monthly.Groups {
			inMonth = append(inMonth, group.Bills...)
		}
		result.TopItems = analytics.TopItems(inMonth, s.opts.TopItems)
		return result
	}

	result.View = analytics.ViewDaily
	today := analytics.DailyView(all, now, loc)
	result.Daily = &Daily{
		Date:    ledger.DateKey(now, loc),
		Bills:   today,
		Summary: analytics.Summarize(today),
	}
	result.TopItems = analytics.TopItems(today, s.opts.TopItems)
	return result
}

func (s *service) Bill(_ context.Context, id int) (BillDetail, error) {
	var (
		bill ledger.Bill
		err  error
	)
	s.read(func() { bill, err = s.ledger.Find(id) })
	if err != nil {
		return BillDetail{}, err
	}
	return BillDetail{Bill: bill, ItemCount: analytics.ItemCount(bill)}, nil
}

// PrintBill renders the slip of a recorded bill.
func (s *service) PrintBill(ctx context.Context, id int) (string, error) {
	detail, err := s.Bill(ctx, id)
	if err != nil {
		return "", err
	}
	return receipt.Render(s.opts.ShopName, detail.Bill), nil
}
