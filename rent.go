package main

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Rent determination. Two closed variants: "mode" infers the weekly rent
// statistically from observed payments, "history-aware" looks it up in the
// tenant's effective-dated rent schedule, evaluated independently per ISO
// week so a mid-month rent change only applies from its effective date.

const (
	rentMethodMode    = "mode"
	rentMethodHistory = "history-aware"
)

// RentCandidate is one observed payment amount and how often it occurred.
type RentCandidate struct {
	Amount decimal.Decimal `json:"amount"`
	Count  int             `json:"count"`
}

// WeekRent is the effective rent for one ISO week on the history path.
type WeekRent struct {
	WeekNumber int             `json:"weekNumber"`
	Date       string          `json:"date"`
	Rent       decimal.Decimal `json:"rent"`
}

// RentDetermination records which method produced the weekly rent and the
// evidence behind it: ranked candidates for mode, a per-week breakdown for
// history-aware.
type RentDetermination struct {
	Method     string          `json:"method"`
	Chosen     decimal.Decimal `json:"chosen"`
	Candidates []RentCandidate `json:"candidates,omitempty"`
	Weekly     []WeekRent      `json:"weekly,omitempty"`
}

// rentObservations counts payment amounts (rounded to 2 decimals) per
// resident for the mode fallback.
type rentObservations map[string]int

func (o rentObservations) add(amount decimal.Decimal) {
	o[amount.Round(2).StringFixed(2)]++
}

// rankCandidates orders observed amounts by frequency descending, breaking
// ties by preferring the larger amount: larger payments are less likely to
// be partial or short payments.
func rankCandidates(obs rentObservations) []RentCandidate {
	out := make([]RentCandidate, 0, len(obs))
	for key, count := range obs {
		amount, err := decimal.NewFromString(key)
		if err != nil {
			continue
		}
		out = append(out, RentCandidate{Amount: amount, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Amount.GreaterThan(out[j].Amount)
	})
	return out
}

// modeDetermination infers the weekly rent as the most frequent observed
// payment amount, keeping up to 5 ranked candidates for the audit trail.
func modeDetermination(obs rentObservations) RentDetermination {
	candidates := rankCandidates(obs)
	chosen := decimal.Zero
	if len(candidates) > 0 {
		chosen = candidates[0].Amount
	}
	if len(candidates) > 5 {
		candidates = candidates[:5]
	}
	return RentDetermination{Method: rentMethodMode, Chosen: chosen, Candidates: candidates}
}

// effectiveRent returns the rent from the history entry with the latest
// effective date not after the query date. Entries sharing an effective
// date resolve to the earliest inserted one. With no qualifying entry the
// tenant's current weekly rent applies.
func effectiveRent(t Tenant, on time.Time) decimal.Decimal {
	best := -1
	for i, h := range t.RentHistory {
		if h.EffectiveDate.After(on) {
			continue
		}
		if best == -1 || h.EffectiveDate.After(t.RentHistory[best].EffectiveDate) {
			best = i
		}
	}
	if best == -1 {
		return t.WeeklyRent
	}
	return t.RentHistory[best].WeeklyRent
}

// historyDetermination evaluates the effective rent for each expected week
// of a month, dated at the week's Monday. Chosen carries the last week's
// value, which is what the report displays as the month's weekly rent.
func historyDetermination(t Tenant, year int, weeks []int) RentDetermination {
	weekly := make([]WeekRent, 0, len(weeks))
	for _, w := range weeks {
		monday := mondayOfISOWeek(year, w)
		weekly = append(weekly, WeekRent{
			WeekNumber: w,
			Date:       monday.Format("2006-01-02"),
			Rent:       effectiveRent(t, monday),
		})
	}
	chosen := decimal.Zero
	if len(weekly) > 0 {
		chosen = weekly[len(weekly)-1].Rent
	}
	return RentDetermination{Method: rentMethodHistory, Chosen: chosen, Weekly: weekly}
}

// hasRentSchedule reports whether the tenant record is authoritative about
// rent. Placeholders and zero-rent records fall back to mode inference.
func hasRentSchedule(t Tenant) bool {
	return len(t.RentHistory) > 0 || t.WeeklyRent.IsPositive()
}
