package main

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ledgerTx(year, week int, amount, room, name string) RawTransaction {
	monday := mondayOfISOWeek(year, week)
	return RawTransaction{
		RoomCode:   room,
		TenantName: name,
		Amount:     decimal.RequireFromString(amount),
		Date:       &monday,
		Year:       year,
		WeekNumber: week,
	}
}

func findRecord(t *testing.T, records []MonthlyArrearsRecord, period, sageID string) MonthlyArrearsRecord {
	t.Helper()
	for _, r := range records {
		if r.PeriodMonth == period && r.SageAccountID == sageID {
			return r
		}
	}
	t.Fatalf("no record for %s in %s", sageID, period)
	return MonthlyArrearsRecord{}
}

func decEq(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Errorf("want %s, got %s", want, got.String())
	}
}

func TestBuildMonthlyLedger(t *testing.T) {
	tenants := []Tenant{
		{SageID: "190", TenantName: "Robert Cam", RoomCode: "R-12", StaffName: "J Smith", WeeklyRent: decimal.RequireFromString("41")},
		{SageID: "201", TenantName: "Ana Field", RoomCode: "R-03", StaffName: "K Jones", WeeklyRent: decimal.RequireFromString("45.50")},
	}

	rows := []RawTransaction{
		// January: weeks 1-4. Robert misses week 3, Ana pays in full.
		ledgerTx(2025, 1, "41", "190", "Robert Cam"),
		ledgerTx(2025, 2, "41", "190", "Robert Cam"),
		ledgerTx(2025, 4, "41", "190", "Robert Cam"),
		ledgerTx(2025, 1, "45.50", "201", "Ana Field"),
		ledgerTx(2025, 2, "45.50", "201", "Ana Field"),
		ledgerTx(2025, 3, "45.50", "201", "Ana Field"),
		ledgerTx(2025, 4, "45.50", "201", "Ana Field"),
		// February: weeks 6-9. Robert catches up with a double payment.
		ledgerTx(2025, 6, "82", "190", "Robert Cam"),
		ledgerTx(2025, 7, "41", "190", "Robert Cam"),
		ledgerTx(2025, 8, "41", "190", "Robert Cam"),
		ledgerTx(2025, 9, "41", "190", "Robert Cam"),
	}

	records := BuildMonthlyLedger(rows, tenants, DefaultLedgerOptions())

	t.Run("missed week creates arrears and a negative balance", func(t *testing.T) {
		jan := findRecord(t, records, "2025-01", "190")
		decEq(t, "164", jan.WeeklyRentAmount.Mul(decimal.NewFromInt(4)))
		decEq(t, "123", jan.MonthTotalPaidAmount)
		decEq(t, "41", jan.MonthArrearsAmount)
		decEq(t, "0", jan.MonthSurplusAmount)
		decEq(t, "0", jan.PreviousBalanceAmount)
		decEq(t, "41", jan.CurrentArrearsAmount)
		decEq(t, "0", jan.CurrentSurplusAmount)
		decEq(t, "0", jan.YearArrearsAmount)
		assert.Equal(t, "EUR", jan.Currency)
		assert.Equal(t, "2025-01-01", jan.SnapshotDate)
	})

	t.Run("catch-up payment clears the carried balance", func(t *testing.T) {
		feb := findRecord(t, records, "2025-02", "190")
		decEq(t, "205", feb.MonthTotalPaidAmount)
		decEq(t, "0", feb.MonthArrearsAmount)
		decEq(t, "41", feb.MonthSurplusAmount)
		decEq(t, "-41", feb.PreviousBalanceAmount)
		decEq(t, "0", feb.CurrentArrearsAmount)
		decEq(t, "0", feb.CurrentSurplusAmount)
		decEq(t, "41", feb.YearArrearsAmount)
	})

	t.Run("fully paid tenant with zero balance is not billed in silent months", func(t *testing.T) {
		jan := findRecord(t, records, "2025-01", "201")
		decEq(t, "0", jan.CurrentArrearsAmount)
		decEq(t, "0", jan.CurrentSurplusAmount)
		for _, r := range records {
			if r.SageAccountID == "201" && r.PeriodMonth == "2025-02" {
				t.Fatalf("Ana should not appear in February")
			}
		}
	})

	t.Run("week paid amounts land in their slots", func(t *testing.T) {
		jan := findRecord(t, records, "2025-01", "190")
		decEq(t, "41", jan.Week1PaidAmount)
		decEq(t, "41", jan.Week2PaidAmount)
		decEq(t, "0", jan.Week3PaidAmount)
		decEq(t, "41", jan.Week4PaidAmount)
	})

	t.Run("balance recurrence holds across months", func(t *testing.T) {
		jan := findRecord(t, records, "2025-01", "190")
		feb := findRecord(t, records, "2025-02", "190")
		janBalance := jan.PreviousBalanceAmount.Add(jan.MonthTotalPaidAmount).Sub(decimal.RequireFromString("164"))
		assert.True(t, feb.PreviousBalanceAmount.Equal(janBalance))
	})

	t.Run("arrears and surplus are mutually exclusive", func(t *testing.T) {
		for _, r := range records {
			assert.False(t, r.MonthArrearsAmount.IsPositive() && r.MonthSurplusAmount.IsPositive(), r.PeriodMonth)
			assert.False(t, r.CurrentArrearsAmount.IsPositive() && r.CurrentSurplusAmount.IsPositive(), r.PeriodMonth)
			assert.False(t, r.MonthArrearsAmount.IsNegative())
			assert.False(t, r.MonthSurplusAmount.IsNegative())
		}
	})

	t.Run("audit trail carries the determination and sources", func(t *testing.T) {
		jan := findRecord(t, records, "2025-01", "190")
		require.NotNil(t, jan.Audit)
		assert.Equal(t, rentMethodHistory, jan.Audit.WeeklyRent.Method)
		require.Len(t, jan.Audit.Weeks, 4)
		assert.Equal(t, 1, jan.Audit.Weeks[0].WeekNumber)
		require.Len(t, jan.Audit.Weeks[0].Sources, 1)
		decEq(t, "41", jan.Audit.Weeks[0].Sources[0].Amount)
		assert.Empty(t, jan.Audit.Weeks[2].Sources)
	})
}

func TestBuildMonthlyLedgerCarriedTenantAccrues(t *testing.T) {
	tenants := []Tenant{
		{SageID: "190", TenantName: "Robert Cam", WeeklyRent: decimal.RequireFromString("41")},
	}
	rows := []RawTransaction{
		ledgerTx(2025, 1, "20", "190", "Robert Cam"),
		// February activity from another resident keeps weeks 6 and 7 in
		// the expected set.
		ledgerTx(2025, 6, "30", "999", "Walk In"),
		ledgerTx(2025, 7, "30", "999", "Walk In"),
	}

	records := BuildMonthlyLedger(rows, tenants, DefaultLedgerOptions())

	jan := findRecord(t, records, "2025-01", "190")
	decEq(t, "21", jan.CurrentArrearsAmount)

	feb := findRecord(t, records, "2025-02", "190")
	decEq(t, "0", feb.MonthTotalPaidAmount)
	decEq(t, "82", feb.MonthArrearsAmount)
	decEq(t, "-21", feb.PreviousBalanceAmount)
	decEq(t, "103", feb.CurrentArrearsAmount)
	decEq(t, "21", feb.YearArrearsAmount)
}

func TestBuildMonthlyLedgerModeFallback(t *testing.T) {
	// No tenant record matches, so rent is inferred from the payments.
	rows := []RawTransaction{
		ledgerTx(2025, 1, "50", "X1", "Pat Doe"),
		ledgerTx(2025, 2, "50", "X1", "Pat Doe"),
		ledgerTx(2025, 3, "30", "X1", "Pat Doe"),
	}

	records := BuildMonthlyLedger(rows, nil, DefaultLedgerOptions())
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "UNKNOWN-pat doe", rec.SageAccountID)
	assert.Equal(t, "Pat Doe", rec.TenantName)
	require.NotNil(t, rec.Audit)
	assert.Equal(t, rentMethodMode, rec.Audit.WeeklyRent.Method)
	decEq(t, "50", rec.WeeklyRentAmount)
	decEq(t, "130", rec.MonthTotalPaidAmount)
	decEq(t, "20", rec.MonthArrearsAmount)
}

func TestBuildMonthlyLedgerExcludedWeeks(t *testing.T) {
	tenants := []Tenant{
		{SageID: "190", TenantName: "Robert Cam", WeeklyRent: decimal.RequireFromString("41")},
	}
	rows := []RawTransaction{
		ledgerTx(2024, 10, "41", "190", "Robert Cam"),
		ledgerTx(2024, 11, "41", "190", "Robert Cam"),
	}

	records := BuildMonthlyLedger(rows, tenants, DefaultLedgerOptions())
	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, "2024-03", rec.PeriodMonth)
	// Only week 11 remains in the expected set.
	decEq(t, "41", rec.MonthTotalPaidAmount)
	decEq(t, "0", rec.MonthArrearsAmount)

	t.Run("exclusion list is removable", func(t *testing.T) {
		opts := DefaultLedgerOptions()
		opts.ExcludedWeeks = nil
		records := BuildMonthlyLedger(rows, tenants, opts)
		require.Len(t, records, 1)
		decEq(t, "82", records[0].MonthTotalPaidAmount)
	})
}

func TestBuildMonthlyLedgerAbsencePolicy(t *testing.T) {
	tenants := []Tenant{
		{
			SageID:     "190",
			TenantName: "Robert Cam",
			WeeklyRent: decimal.RequireFromString("41"),
			AbsentPeriods: []AbsentPeriod{
				// Week 2 of 2025 runs Jan 6 to Jan 12.
				{StartDate: mustDate("2025-01-06"), EndDate: mustDate("2025-01-12"), Reason: "hospital"},
			},
		},
	}
	rows := []RawTransaction{
		ledgerTx(2025, 1, "41", "190", "Robert Cam"),
		ledgerTx(2025, 2, "0.01", "190", "Robert Cam"),
	}

	t.Run("ignore policy charges the full month", func(t *testing.T) {
		records := BuildMonthlyLedger(rows, tenants, DefaultLedgerOptions())
		rec := findRecord(t, records, "2025-01", "190")
		decEq(t, "40.99", rec.MonthArrearsAmount)
	})

	t.Run("waive-due policy drops the absent week", func(t *testing.T) {
		opts := DefaultLedgerOptions()
		opts.AbsencePolicy = AbsenceWaiveDue
		records := BuildMonthlyLedger(rows, tenants, opts)
		rec := findRecord(t, records, "2025-01", "190")
		// Due is 41 for week 1 only; the 0.01 paid in the waived week
		// still counts toward the month.
		decEq(t, "0", rec.MonthArrearsAmount)
		decEq(t, "0.01", rec.CurrentSurplusAmount)
	})
}

func TestBuildMonthlyLedgerYearBoundary(t *testing.T) {
	tenants := []Tenant{
		{SageID: "190", TenantName: "Robert Cam", WeeklyRent: decimal.RequireFromString("41")},
	}
	rows := []RawTransaction{
		ledgerTx(2025, 1, "20", "190", "Robert Cam"),
		ledgerTx(2026, 1, "41", "190", "Robert Cam"),
	}

	records := BuildMonthlyLedger(rows, tenants, DefaultLedgerOptions())

	jan26 := findRecord(t, records, "2026-01", "190")
	decEq(t, "0", jan26.PreviousBalanceAmount)
	decEq(t, "0", jan26.CurrentArrearsAmount)
	decEq(t, "0", jan26.YearArrearsAmount)
}

func TestBuildMonthlyLedgerSkipsUndatedRows(t *testing.T) {
	rows := []RawTransaction{
		{TenantName: "No Date", Amount: decimal.RequireFromString("41")},
	}
	records := BuildMonthlyLedger(rows, nil, DefaultLedgerOptions())
	assert.Empty(t, records)
}

func TestBuildMonthlySnapshots(t *testing.T) {
	rows := []RawTransaction{
		ledgerTx(2025, 1, "41", "190", "Robert Cam"),
		ledgerTx(2025, 2, "41", "190", "Robert Cam"),
		ledgerTx(2025, 4, "41", "190", "Robert Cam"),
		// Keeps week 3 in January's expected set.
		ledgerTx(2025, 3, "45.50", "201", "Ana Field"),
		// February, week 6 only.
		ledgerTx(2025, 6, "41", "190", "Robert Cam"),
	}

	records := BuildMonthlySnapshots(rows, DefaultLedgerOptions())

	t.Run("due is mode rent times expected weeks", func(t *testing.T) {
		jan := findRecord(t, records, "2025-01", "190")
		decEq(t, "41", jan.WeeklyRentAmount)
		decEq(t, "123", jan.MonthTotalPaidAmount)
		decEq(t, "41", jan.MonthArrearsAmount)
		decEq(t, "41", jan.CurrentArrearsAmount)
	})

	t.Run("year arrears accumulate across months", func(t *testing.T) {
		jan := findRecord(t, records, "2025-01", "190")
		feb := findRecord(t, records, "2025-02", "190")
		decEq(t, "0", jan.YearArrearsAmount)
		decEq(t, "41", feb.YearArrearsAmount)
	})

	t.Run("residents are keyed without tenant resolution", func(t *testing.T) {
		jan := findRecord(t, records, "2025-01", "190")
		assert.Equal(t, "190", jan.RoomCode)
		assert.Equal(t, "Robert Cam", jan.TenantName)
	})
}
