package main

import (
	"fmt"
	"time"
)

// weekToMonth maps an ISO week number to a calendar month using the fixed
// partition the arrears reports are built on. Calendar months do not align
// exactly to 4-week boundaries; this table is treated as ground truth.
func weekToMonth(week int) int {
	switch {
	case week <= 5:
		return 1
	case week <= 9:
		return 2
	case week <= 13:
		return 3
	case week <= 17:
		return 4
	case week <= 22:
		return 5
	case week <= 26:
		return 6
	case week <= 30:
		return 7
	case week <= 35:
		return 8
	case week <= 39:
		return 9
	case week <= 44:
		return 10
	case week <= 48:
		return 11
	default:
		return 12
	}
}

// weekToMonthCode returns the "YYYY-MM" period code for an ISO (year, week).
func weekToMonthCode(year, week int) string {
	return fmt.Sprintf("%d-%02d", year, weekToMonth(week))
}

// isoWeekOf returns the ISO-8601 (year, week) of a date. Weeks start Monday
// and week 1 is the week containing the year's first Thursday.
func isoWeekOf(t time.Time) (int, int) {
	return t.ISOWeek()
}

// mondayOfISOWeek returns the Monday (UTC midnight) of the given ISO week.
func mondayOfISOWeek(year, week int) time.Time {
	// Jan 4 is always inside ISO week 1.
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	wd := int(jan4.Weekday())
	if wd == 0 {
		wd = 7
	}
	week1Monday := jan4.AddDate(0, 0, 1-wd)
	return week1Monday.AddDate(0, 0, (week-1)*7)
}
