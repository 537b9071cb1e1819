package main

import "github.com/shopspring/decimal"

// buildMonthlyAudit assembles the per-record audit trail: how the weekly
// rent was chosen, and per expected week the paid total with the source
// transactions behind it. A nil group means the tenant had no payments in
// the month; the weeks still appear with zero amounts so the due side of
// the ledger stays inspectable.
func buildMonthlyAudit(det RentDetermination, year int, weeks []int, g *monthGroup) *MonthlyAudit {
	audit := &MonthlyAudit{
		WeeklyRent: det,
		Weeks:      make([]WeekAudit, 0, len(weeks)),
	}
	for _, w := range weeks {
		wa := WeekAudit{
			Year:       year,
			WeekNumber: w,
			Amount:     decimal.Zero,
		}
		if g != nil {
			wa.Amount = g.weekPaid[w]
			wa.Sources = g.weekSources[w]
		}
		audit.Weeks = append(audit.Weeks, wa)
	}
	return audit
}
