package main

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Monthly aggregation. Transactions are partitioned into (month, tenant)
// buckets via the fixed week-to-month table, the expected weeks of a month
// are the weeks that actually occurred in the data, and a signed running
// balance is carried from month to month within a year. A tenant who pays
// nothing in a month still accrues arrears as long as a balance is carried.

// AbsencePolicy controls whether absence periods reduce the amount due.
type AbsencePolicy string

const (
	// AbsenceIgnore charges full rent regardless of recorded absences.
	AbsenceIgnore AbsencePolicy = "ignore"
	// AbsenceWaiveDue waives the due amount for weeks overlapping an absence.
	AbsenceWaiveDue AbsencePolicy = "waive-due"
)

// YearWeek names one ISO (year, week) pair.
type YearWeek struct {
	Year int `json:"year"`
	Week int `json:"week"`
}

// KnownBadWeeks lists (year, week) pairs dropped before aggregation.
// 2024 week 10 is a known bad export; remove the entry once the source
// data is fixed.
var KnownBadWeeks = []YearWeek{{Year: 2024, Week: 10}}

// LedgerOptions configures a ledger run.
type LedgerOptions struct {
	AbsencePolicy AbsencePolicy
	ExcludedWeeks []YearWeek
	Currency      string
}

// DefaultLedgerOptions returns the production configuration.
func DefaultLedgerOptions() LedgerOptions {
	return LedgerOptions{
		AbsencePolicy: AbsenceIgnore,
		ExcludedWeeks: KnownBadWeeks,
		Currency:      "EUR",
	}
}

// monthGroup accumulates one (month, tenant) bucket.
type monthGroup struct {
	weekPaid    map[int]decimal.Decimal
	weekSources map[int][]AuditSource
	roomCode    string
	tenantName  string
	staffName   string
}

// BuildMonthlyLedger aggregates transactions into monthly arrears records
// with a signed running balance per tenant, carried across the months of a
// year in chronological order. Balances do not cross year boundaries.
func BuildMonthlyLedger(rows []RawTransaction, tenants []Tenant, opts LedgerOptions) []MonthlyArrearsRecord {
	rows = dropExcludedWeeks(rows, opts.ExcludedWeeks)
	dir := NewTenantDirectory(tenants)

	rowsByYear := make(map[int][]RawTransaction)
	for _, row := range rows {
		if row.Year == 0 || row.WeekNumber == 0 {
			continue
		}
		rowsByYear[row.Year] = append(rowsByYear[row.Year], row)
	}
	years := sortedIntKeys(rowsByYear)

	var result []MonthlyArrearsRecord
	for _, year := range years {
		result = append(result, buildYearLedger(year, rowsByYear[year], dir, opts)...)
	}
	return result
}

func buildYearLedger(year int, rows []RawTransaction, dir *TenantDirectory, opts LedgerOptions) []MonthlyArrearsRecord {
	expectedWeeks := make(map[int]map[int]struct{})
	groups := make(map[int]map[string]*monthGroup)
	observations := make(map[string]rentObservations)
	resolved := make(map[string]Tenant)

	for _, row := range rows {
		month := weekToMonth(row.WeekNumber)
		if expectedWeeks[month] == nil {
			expectedWeeks[month] = make(map[int]struct{})
		}
		expectedWeeks[month][row.WeekNumber] = struct{}{}

		// Resolution runs per transaction: names and codes are not
		// consistent across files.
		tenant := dir.Resolve(row.RoomCode, row.TenantName)
		key := tenant.SageID
		resolved[key] = tenant
		if observations[key] == nil {
			observations[key] = make(rentObservations)
		}
		observations[key].add(row.Amount)

		if groups[month] == nil {
			groups[month] = make(map[string]*monthGroup)
		}
		g := groups[month][key]
		if g == nil {
			g = &monthGroup{
				weekPaid:    make(map[int]decimal.Decimal),
				weekSources: make(map[int][]AuditSource),
				roomCode:    displayRoomCode(tenant, row),
				tenantName:  tenant.TenantName,
				staffName:   firstNonEmpty(tenant.StaffName, row.StaffName),
			}
			groups[month][key] = g
		}
		g.weekPaid[row.WeekNumber] = g.weekPaid[row.WeekNumber].Add(row.Amount)
		g.weekSources[row.WeekNumber] = append(g.weekSources[row.WeekNumber], AuditSource{
			File:          sourceTag(row),
			TransactionNo: row.TransactionNo,
			Date:          formatDate(row.Date),
			Reference:     row.Reference,
			Amount:        row.Amount,
		})
	}

	balances := make(map[string]decimal.Decimal)
	priorArrears := make(map[string]decimal.Decimal)

	var result []MonthlyArrearsRecord
	for _, month := range sortedIntKeys(expectedWeeks) {
		weeks := sortedWeekSet(expectedWeeks[month])
		monthCode := fmt.Sprintf("%d-%02d", year, month)

		// Tenants billed this month: everyone seen in the data plus
		// everyone still carrying a balance from earlier months.
		keys := make(map[string]struct{})
		for key := range groups[month] {
			keys[key] = struct{}{}
		}
		for key, bal := range balances {
			if !bal.IsZero() {
				keys[key] = struct{}{}
			}
		}

		for _, key := range sortedStringKeys(keys) {
			tenant := resolved[key]
			g := groups[month][key]

			det := determineRent(tenant, observations[key], year, weeks)
			due := monthDue(tenant, det, year, weeks, opts.AbsencePolicy)

			paid := decimal.Zero
			weekPaid := make([]decimal.Decimal, len(weeks))
			for i, w := range weeks {
				amt := decimal.Zero
				if g != nil {
					amt = g.weekPaid[w]
				}
				weekPaid[i] = amt
				paid = paid.Add(amt)
			}

			prev := balances[key]
			newBalance := prev.Add(paid).Sub(due)
			monthArrears := maxZero(due.Sub(paid))
			monthSurplus := maxZero(paid.Sub(due))

			rec := MonthlyArrearsRecord{
				RoomCode:                           displayRoomCodeFor(tenant, g),
				SageAccountID:                      key,
				StaffName:                          staffNameFor(tenant, g),
				TenantName:                         tenantNameFor(tenant, g),
				WeeklyRentAmount:                   det.Chosen,
				Currency:                           opts.Currency,
				Week1PaidAmount:                    weekSlot(weekPaid, 0),
				Week2PaidAmount:                    weekSlot(weekPaid, 1),
				Week3PaidAmount:                    weekSlot(weekPaid, 2),
				Week4PaidAmount:                    weekSlot(weekPaid, 3),
				CarriedOverFromPreviousMonthAmount: prev,
				MonthTotalPaidAmount:               paid,
				MonthArrearsAmount:                 monthArrears,
				MonthSurplusAmount:                 monthSurplus,
				PreviousBalanceAmount:              prev,
				YearArrearsAmount:                  priorArrears[key],
				CurrentArrearsAmount:               maxZero(newBalance.Neg()),
				CurrentSurplusAmount:               maxZero(newBalance),
				PeriodMonth:                        monthCode,
				SnapshotDate:                       monthCode + "-01",
				Audit:                              buildMonthlyAudit(det, year, weeks, g),
			}
			result = append(result, rec)

			balances[key] = newBalance
			priorArrears[key] = priorArrears[key].Add(monthArrears)
		}
	}
	return result
}

// determineRent picks the history-aware path when the tenant record is
// authoritative about rent, and falls back to mode inference otherwise.
func determineRent(tenant Tenant, obs rentObservations, year int, weeks []int) RentDetermination {
	if hasRentSchedule(tenant) {
		return historyDetermination(tenant, year, weeks)
	}
	return modeDetermination(obs)
}

// monthDue sums the effective rent of each expected week. On the mode path
// every week charges the inferred rent; on the history path each week
// charges the rent effective on its Monday.
func monthDue(tenant Tenant, det RentDetermination, year int, weeks []int, policy AbsencePolicy) decimal.Decimal {
	due := decimal.Zero
	for _, w := range weeks {
		if policy == AbsenceWaiveDue && tenantAbsentInWeek(tenant, year, w) {
			continue
		}
		if det.Method == rentMethodHistory {
			due = due.Add(effectiveRent(tenant, mondayOfISOWeek(year, w)))
		} else {
			due = due.Add(det.Chosen)
		}
	}
	return due
}

// tenantAbsentInWeek reports whether any absence period overlaps the
// Monday..Sunday span of the given ISO week.
func tenantAbsentInWeek(tenant Tenant, year, week int) bool {
	start := mondayOfISOWeek(year, week)
	end := start.AddDate(0, 0, 6)
	for _, p := range tenant.AbsentPeriods {
		if !p.StartDate.After(end) && !p.EndDate.Before(start) {
			return true
		}
	}
	return false
}

// BuildMonthlySnapshots is the legacy display-only aggregation: mode rent
// only, no tenant resolution, due = rent x week count, and a cumulative
// year-arrears figure that is never reduced by surplus months.
func BuildMonthlySnapshots(rows []RawTransaction, opts LedgerOptions) []MonthlyArrearsRecord {
	rows = dropExcludedWeeks(rows, opts.ExcludedWeeks)

	rowsByYear := make(map[int][]RawTransaction)
	for _, row := range rows {
		if row.Year == 0 || row.WeekNumber == 0 {
			continue
		}
		rowsByYear[row.Year] = append(rowsByYear[row.Year], row)
	}

	var result []MonthlyArrearsRecord
	for _, year := range sortedIntKeys(rowsByYear) {
		yearRows := rowsByYear[year]

		expectedWeeks := make(map[int]map[int]struct{})
		groups := make(map[int]map[string]*monthGroup)
		observations := make(map[string]rentObservations)

		for _, row := range yearRows {
			month := weekToMonth(row.WeekNumber)
			if expectedWeeks[month] == nil {
				expectedWeeks[month] = make(map[int]struct{})
			}
			expectedWeeks[month][row.WeekNumber] = struct{}{}

			key := row.RoomCode + "|" + row.TenantName
			if observations[key] == nil {
				observations[key] = make(rentObservations)
			}
			observations[key].add(row.Amount)

			if groups[month] == nil {
				groups[month] = make(map[string]*monthGroup)
			}
			g := groups[month][key]
			if g == nil {
				g = &monthGroup{
					weekPaid:    make(map[int]decimal.Decimal),
					weekSources: make(map[int][]AuditSource),
					roomCode:    row.RoomCode,
					tenantName:  row.TenantName,
					staffName:   row.StaffName,
				}
				groups[month][key] = g
			}
			g.weekPaid[row.WeekNumber] = g.weekPaid[row.WeekNumber].Add(row.Amount)
			g.weekSources[row.WeekNumber] = append(g.weekSources[row.WeekNumber], AuditSource{
				File:          sourceTag(row),
				TransactionNo: row.TransactionNo,
				Date:          formatDate(row.Date),
				Reference:     row.Reference,
				Amount:        row.Amount,
			})
		}

		yearStart := len(result)
		for _, month := range sortedIntKeys(expectedWeeks) {
			weeks := sortedWeekSet(expectedWeeks[month])
			monthCode := fmt.Sprintf("%d-%02d", year, month)

			for _, key := range sortedGroupKeys(groups[month]) {
				g := groups[month][key]
				det := modeDetermination(observations[key])

				paid := decimal.Zero
				weekPaid := make([]decimal.Decimal, len(weeks))
				for i, w := range weeks {
					weekPaid[i] = g.weekPaid[w]
					paid = paid.Add(g.weekPaid[w])
				}
				due := det.Chosen.Mul(decimal.NewFromInt(int64(len(weeks))))
				monthArrears := maxZero(due.Sub(paid))

				result = append(result, MonthlyArrearsRecord{
					RoomCode:             g.roomCode,
					SageAccountID:        g.roomCode,
					StaffName:            g.staffName,
					TenantName:           g.tenantName,
					WeeklyRentAmount:     det.Chosen,
					Currency:             opts.Currency,
					Week1PaidAmount:      weekSlot(weekPaid, 0),
					Week2PaidAmount:      weekSlot(weekPaid, 1),
					Week3PaidAmount:      weekSlot(weekPaid, 2),
					Week4PaidAmount:      weekSlot(weekPaid, 3),
					MonthTotalPaidAmount: paid,
					MonthArrearsAmount:   monthArrears,
					MonthSurplusAmount:   maxZero(paid.Sub(due)),
					CurrentArrearsAmount: monthArrears,
					PeriodMonth:          monthCode,
					SnapshotDate:         monthCode + "-01",
					Audit:                buildMonthlyAudit(det, year, weeks, g),
				})
			}
		}

		// Second pass: cumulative arrears of the preceding months within
		// the year, per resident.
		fillYearArrears(result[yearStart:])
	}
	return result
}

// fillYearArrears sets YearArrearsAmount to the sum of the resident's
// earlier months' arrears within the same year.
func fillYearArrears(records []MonthlyArrearsRecord) {
	byResident := make(map[string][]int)
	for i, r := range records {
		key := r.RoomCode + "|" + r.TenantName
		byResident[key] = append(byResident[key], i)
	}
	for _, idxs := range byResident {
		sort.Slice(idxs, func(a, b int) bool {
			return records[idxs[a]].PeriodMonth < records[idxs[b]].PeriodMonth
		})
		cum := decimal.Zero
		for _, i := range idxs {
			records[i].YearArrearsAmount = cum
			cum = cum.Add(records[i].MonthArrearsAmount)
		}
	}
}

func dropExcludedWeeks(rows []RawTransaction, excluded []YearWeek) []RawTransaction {
	if len(excluded) == 0 {
		return rows
	}
	drop := make(map[YearWeek]struct{}, len(excluded))
	for _, yw := range excluded {
		drop[yw] = struct{}{}
	}
	out := make([]RawTransaction, 0, len(rows))
	for _, row := range rows {
		if _, bad := drop[YearWeek{Year: row.Year, Week: row.WeekNumber}]; bad {
			continue
		}
		out = append(out, row)
	}
	return out
}

func maxZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

func weekSlot(weekPaid []decimal.Decimal, i int) decimal.Decimal {
	if i >= len(weekPaid) {
		return decimal.Zero
	}
	return weekPaid[i]
}

func sourceTag(row RawTransaction) string {
	if row.Source != "" {
		return row.Source
	}
	return "db"
}

func displayRoomCode(tenant Tenant, row RawTransaction) string {
	if tenant.RoomCode != "" {
		return tenant.RoomCode
	}
	return row.RoomCode
}

func displayRoomCodeFor(tenant Tenant, g *monthGroup) string {
	if g != nil && g.roomCode != "" {
		return g.roomCode
	}
	return tenant.RoomCode
}

func tenantNameFor(tenant Tenant, g *monthGroup) string {
	if tenant.TenantName != "" {
		return tenant.TenantName
	}
	if g != nil {
		return g.tenantName
	}
	return ""
}

func staffNameFor(tenant Tenant, g *monthGroup) string {
	if tenant.StaffName != "" {
		return tenant.StaffName
	}
	if g != nil {
		return g.staffName
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func sortedIntKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func sortedStringKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedGroupKeys(m map[string]*monthGroup) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedWeekSet(set map[int]struct{}) []int {
	weeks := make([]int, 0, len(set))
	for w := range set {
		weeks = append(weeks, w)
	}
	sort.Ints(weeks)
	return weeks
}
