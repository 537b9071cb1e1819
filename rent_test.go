package main

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestModeDetermination(t *testing.T) {
	t.Run("most frequent amount wins", func(t *testing.T) {
		obs := make(rentObservations)
		for i := 0; i < 3; i++ {
			obs.add(decimal.RequireFromString("41.00"))
		}
		obs.add(decimal.RequireFromString("20.00"))

		det := modeDetermination(obs)
		assert.Equal(t, rentMethodMode, det.Method)
		assert.True(t, det.Chosen.Equal(decimal.RequireFromString("41.00")))
		require.Len(t, det.Candidates, 2)
		assert.Equal(t, 3, det.Candidates[0].Count)
	})

	t.Run("frequency tie prefers the larger amount", func(t *testing.T) {
		obs := make(rentObservations)
		obs.add(decimal.RequireFromString("41.00"))
		obs.add(decimal.RequireFromString("45.00"))

		det := modeDetermination(obs)
		assert.True(t, det.Chosen.Equal(decimal.RequireFromString("45.00")))
	})

	t.Run("rounding collapses near-equal observations", func(t *testing.T) {
		obs := make(rentObservations)
		obs.add(decimal.RequireFromString("41.001"))
		obs.add(decimal.RequireFromString("41.00"))

		det := modeDetermination(obs)
		require.Len(t, det.Candidates, 1)
		assert.Equal(t, 2, det.Candidates[0].Count)
	})

	t.Run("candidate list is capped at five", func(t *testing.T) {
		obs := make(rentObservations)
		for i := 1; i <= 8; i++ {
			obs.add(decimal.NewFromInt(int64(i * 10)))
		}
		det := modeDetermination(obs)
		assert.Len(t, det.Candidates, 5)
	})

	t.Run("no observations yields zero", func(t *testing.T) {
		det := modeDetermination(make(rentObservations))
		assert.True(t, det.Chosen.IsZero())
		assert.Empty(t, det.Candidates)
	})
}

func TestEffectiveRent(t *testing.T) {
	tenant := Tenant{
		WeeklyRent: decimal.RequireFromString("40"),
		RentHistory: []RentHistory{
			{WeeklyRent: decimal.RequireFromString("40"), EffectiveDate: mustDate("2025-01-01")},
			{WeeklyRent: decimal.RequireFromString("45"), EffectiveDate: mustDate("2025-06-01")},
		},
	}

	t.Run("latest entry on or before the date applies", func(t *testing.T) {
		assert.True(t, effectiveRent(tenant, mustDate("2025-03-10")).Equal(decimal.RequireFromString("40")))
		assert.True(t, effectiveRent(tenant, mustDate("2025-06-01")).Equal(decimal.RequireFromString("45")))
		assert.True(t, effectiveRent(tenant, mustDate("2025-07-01")).Equal(decimal.RequireFromString("45")))
		assert.True(t, effectiveRent(tenant, mustDate("2025-12-31")).Equal(decimal.RequireFromString("45")))
	})

	t.Run("date before all entries falls back to current rent", func(t *testing.T) {
		assert.True(t, effectiveRent(tenant, mustDate("2024-12-01")).Equal(decimal.RequireFromString("40")))
	})

	t.Run("entries sharing an effective date resolve to the earlier one", func(t *testing.T) {
		tied := Tenant{
			RentHistory: []RentHistory{
				{WeeklyRent: decimal.RequireFromString("40"), EffectiveDate: mustDate("2025-06-01")},
				{WeeklyRent: decimal.RequireFromString("45"), EffectiveDate: mustDate("2025-06-01")},
			},
		}
		assert.True(t, effectiveRent(tied, mustDate("2025-06-15")).Equal(decimal.RequireFromString("40")))
	})
}

func TestHistoryDetermination(t *testing.T) {
	tenant := Tenant{
		WeeklyRent: decimal.RequireFromString("40"),
		RentHistory: []RentHistory{
			{WeeklyRent: decimal.RequireFromString("40"), EffectiveDate: mustDate("2025-01-01")},
			{WeeklyRent: decimal.RequireFromString("45"), EffectiveDate: mustDate("2025-06-01")},
		},
	}

	// Weeks 23-26 cover June 2025; the raise on June 1 already applies to
	// week 23 (Monday June 2).
	det := historyDetermination(tenant, 2025, []int{23, 24, 25, 26})
	assert.Equal(t, rentMethodHistory, det.Method)
	require.Len(t, det.Weekly, 4)
	for _, w := range det.Weekly {
		assert.True(t, w.Rent.Equal(decimal.RequireFromString("45")), "week %d", w.WeekNumber)
	}
	assert.True(t, det.Chosen.Equal(decimal.RequireFromString("45")))

	t.Run("mid-month change splits the weeks", func(t *testing.T) {
		// Weeks 18-22 cover May 2025. Raise effective May 19 applies from
		// week 21 onward.
		raised := tenant
		raised.RentHistory = []RentHistory{
			{WeeklyRent: decimal.RequireFromString("40"), EffectiveDate: mustDate("2025-01-01")},
			{WeeklyRent: decimal.RequireFromString("45"), EffectiveDate: mustDate("2025-05-19")},
		}
		det := historyDetermination(raised, 2025, []int{18, 19, 20, 21, 22})
		require.Len(t, det.Weekly, 5)
		assert.True(t, det.Weekly[0].Rent.Equal(decimal.RequireFromString("40")))
		assert.True(t, det.Weekly[2].Rent.Equal(decimal.RequireFromString("40")))
		assert.True(t, det.Weekly[3].Rent.Equal(decimal.RequireFromString("45")))
		assert.True(t, det.Weekly[4].Rent.Equal(decimal.RequireFromString("45")))
	})
}

func TestHasRentSchedule(t *testing.T) {
	assert.False(t, hasRentSchedule(Tenant{}))
	assert.False(t, hasRentSchedule(Tenant{WeeklyRent: decimal.Zero}))
	assert.True(t, hasRentSchedule(Tenant{WeeklyRent: decimal.RequireFromString("41")}))
	assert.True(t, hasRentSchedule(Tenant{
		RentHistory: []RentHistory{{WeeklyRent: decimal.RequireFromString("41"), EffectiveDate: mustDate("2025-01-01")}},
	}))
}
