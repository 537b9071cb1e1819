package main

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// topDebtorLimit caps the debtor list on the summary report.
const topDebtorLimit = 5

// Report handler functions

// @Summary Get monthly arrears ledger
// @Description Compute per-tenant monthly arrears with a signed running balance
// @Tags reports
// @Produce json
// @Param year query int false "Restrict to one year"
// @Success 200 {array} MonthlyArrearsRecord "Monthly records in chronological order"
// @Failure 400 {object} map[string]interface{} "Bad request"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /api/arrears [get]
func getMonthlyArrears(c *gin.Context) {
	years, ok := parseYearParam(c)
	if !ok {
		return
	}

	transactions, tenants, ok := loadLedgerInputs(c, years)
	if !ok {
		return
	}

	records := BuildMonthlyLedger(transactions, tenants, ledgerOpt)
	if records == nil {
		records = []MonthlyArrearsRecord{}
	}
	c.JSON(http.StatusOK, records)
}

// @Summary Get arrears summary
// @Description Aggregate statistics over the legacy monthly snapshots
// @Tags reports
// @Produce json
// @Param year query int false "Restrict to one year"
// @Success 200 {object} ArrearsSummary "Summary statistics"
// @Failure 400 {object} map[string]interface{} "Bad request"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /api/arrears/summary [get]
func getArrearsSummary(c *gin.Context) {
	years, ok := parseYearParam(c)
	if !ok {
		return
	}

	transactions, ok := loadLedgerTransactions(c, years)
	if !ok {
		return
	}

	snapshots := BuildMonthlySnapshots(transactions, ledgerOpt)
	c.JSON(http.StatusOK, summarizeArrears(snapshots))
}

// loadLedgerTransactions fetches the payment rows an aggregation runs on.
// Writes the error response itself on failure.
func loadLedgerTransactions(c *gin.Context, years []int) ([]RawTransaction, bool) {
	rows, err := dataStore.ListPayments(c.Request.Context(), years)
	if err != nil {
		logg.Error().Err(err).Msg("failed to list payments")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching payments"})
		return nil, false
	}
	transactions := make([]RawTransaction, 0, len(rows))
	for _, row := range rows {
		transactions = append(transactions, paymentRowToTransaction(row))
	}
	return transactions, true
}

// loadLedgerInputs fetches payment rows plus the tenant directory, for the
// aggregations that resolve residents against it.
func loadLedgerInputs(c *gin.Context, years []int) ([]RawTransaction, []Tenant, bool) {
	transactions, ok := loadLedgerTransactions(c, years)
	if !ok {
		return nil, nil, false
	}
	tenants, err := loadTenants(c.Request.Context())
	if err != nil {
		logg.Error().Err(err).Msg("failed to list tenants")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching tenants"})
		return nil, nil, false
	}
	return transactions, tenants, true
}

// summarizeArrears reduces monthly snapshots to the report screen figures.
// A resident's outstanding position is taken from their latest snapshot:
// that month's arrears plus the accumulated arrears of the earlier months.
func summarizeArrears(snapshots []MonthlyArrearsRecord) ArrearsSummary {
	summary := ArrearsSummary{
		TotalArrears:   decimal.Zero,
		TotalCollected: decimal.Zero,
		ArrearsByStaff: []StaffArrears{},
		TopDebtors:     []MonthlyArrearsRecord{},
	}

	latest := make(map[string]MonthlyArrearsRecord)
	for _, rec := range snapshots {
		summary.TotalCollected = summary.TotalCollected.Add(rec.MonthTotalPaidAmount)
		key := rec.RoomCode + "|" + rec.TenantName
		if prev, ok := latest[key]; !ok || rec.PeriodMonth > prev.PeriodMonth {
			latest[key] = rec
		}
	}

	type debtor struct {
		record      MonthlyArrearsRecord
		outstanding decimal.Decimal
	}
	var debtors []debtor
	byStaff := make(map[string]*StaffArrears)
	for _, rec := range latest {
		outstanding := rec.MonthArrearsAmount.Add(rec.YearArrearsAmount)
		if !outstanding.IsPositive() {
			continue
		}
		summary.TotalArrears = summary.TotalArrears.Add(outstanding)
		debtors = append(debtors, debtor{record: rec, outstanding: outstanding})

		staff := rec.StaffName
		if staff == "" {
			staff = "Unassigned"
		}
		entry := byStaff[staff]
		if entry == nil {
			entry = &StaffArrears{Name: staff, Amount: decimal.Zero}
			byStaff[staff] = entry
		}
		entry.Amount = entry.Amount.Add(outstanding)
		entry.Count++
	}

	for _, entry := range byStaff {
		summary.ArrearsByStaff = append(summary.ArrearsByStaff, *entry)
	}
	sort.Slice(summary.ArrearsByStaff, func(i, j int) bool {
		if !summary.ArrearsByStaff[i].Amount.Equal(summary.ArrearsByStaff[j].Amount) {
			return summary.ArrearsByStaff[i].Amount.GreaterThan(summary.ArrearsByStaff[j].Amount)
		}
		return summary.ArrearsByStaff[i].Name < summary.ArrearsByStaff[j].Name
	})

	sort.Slice(debtors, func(i, j int) bool {
		if !debtors[i].outstanding.Equal(debtors[j].outstanding) {
			return debtors[i].outstanding.GreaterThan(debtors[j].outstanding)
		}
		return debtors[i].record.TenantName < debtors[j].record.TenantName
	})
	for i, d := range debtors {
		if i == topDebtorLimit {
			break
		}
		summary.TopDebtors = append(summary.TopDebtors, d.record)
	}

	return summary
}
