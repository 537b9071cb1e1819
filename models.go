package main

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawTransaction represents one payment event extracted from a source file
// or loaded back from the payments table. Amounts are stored non-negative.
type RawTransaction struct {
	ID            string          `json:"id,omitempty"`
	RoomCode      string          `json:"room_code"`
	TenantName    string          `json:"tenant_name"`
	Amount        decimal.Decimal `json:"amount"`
	TransactionNo string          `json:"transaction_no"`
	Date          *time.Time      `json:"transaction_date"`
	Reference     string          `json:"reference"`
	Type          string          `json:"transaction_type"`
	Details       string          `json:"details"`
	StaffName     string          `json:"staff_name"`
	WeekNumber    int             `json:"week_number"`
	Year          int             `json:"year"`
	PeriodMonth   string          `json:"period_month,omitempty"`
	Source        string          `json:"source,omitempty"`
	// Raw keeps the original spreadsheet cells for traceability.
	// Only populated at ingestion time.
	Raw []string `json:"raw_data,omitempty"`
}

// Tenant represents a canonical resident identity. The Sage account ID is
// the only reliable join key; room code and name can change or collide.
type Tenant struct {
	ID            string          `json:"id,omitempty"`
	SageID        string          `json:"sage_id"`
	TenantName    string          `json:"tenant_name"`
	RoomCode      string          `json:"room_code"`
	StaffName     string          `json:"staff_name"`
	WeeklyRent    decimal.Decimal `json:"weekly_rent"`
	StartDate     *string         `json:"start_date"`
	EndDate       *string         `json:"end_date"`
	Status        string          `json:"status"`
	RentHistory   []RentHistory   `json:"rent_history"`
	AbsentPeriods []AbsentPeriod  `json:"absent_periods"`
}

// RentHistory is one (effective date, weekly rent) fact belonging to a tenant.
type RentHistory struct {
	ID            string          `json:"id,omitempty"`
	TenantID      string          `json:"tenant_id,omitempty"`
	WeeklyRent    decimal.Decimal `json:"weekly_rent"`
	EffectiveDate time.Time       `json:"effective_date"`
}

// AbsentPeriod records a period where the tenant was away from the facility.
type AbsentPeriod struct {
	ID        string    `json:"id,omitempty"`
	TenantID  string    `json:"tenant_id,omitempty"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Reason    string    `json:"reason"`
	Notes     string    `json:"notes"`
}

// MonthlyArrearsRecord is one (tenant, calendar month) snapshot of rent
// position. monthArrears and monthSurplus are both floored at zero and at
// most one of them is nonzero.
type MonthlyArrearsRecord struct {
	RoomCode                           string          `json:"roomCode"`
	SageAccountID                      string          `json:"sageAccountId"`
	StaffName                          string          `json:"staffName"`
	TenantName                         string          `json:"tenantName"`
	WeeklyRentAmount                   decimal.Decimal `json:"weeklyRentAmount"`
	Currency                           string          `json:"currency"`
	Week1PaidAmount                    decimal.Decimal `json:"week1PaidAmount"`
	Week2PaidAmount                    decimal.Decimal `json:"week2PaidAmount"`
	Week3PaidAmount                    decimal.Decimal `json:"week3PaidAmount"`
	Week4PaidAmount                    decimal.Decimal `json:"week4PaidAmount"`
	CarriedOverFromPreviousMonthAmount decimal.Decimal `json:"carriedOverFromPreviousMonthAmount"`
	MonthTotalPaidAmount               decimal.Decimal `json:"monthTotalPaidAmount"`
	MonthArrearsAmount                 decimal.Decimal `json:"monthArrearsAmount"`
	MonthSurplusAmount                 decimal.Decimal `json:"monthSurplusAmount"`
	PreviousBalanceAmount              decimal.Decimal `json:"previousBalanceAmount"`
	YearArrearsAmount                  decimal.Decimal `json:"yearArrearsAmount"`
	CurrentArrearsAmount               decimal.Decimal `json:"currentArrearsAmount"`
	CurrentSurplusAmount               decimal.Decimal `json:"currentSurplusAmount"`
	PeriodMonth                        string          `json:"periodMonth"`
	SnapshotDate                       string          `json:"snapshotDate"`
	Audit                              *MonthlyAudit   `json:"audit,omitempty"`
}

// MonthlyAudit explains how a monthly record was computed from raw rows.
type MonthlyAudit struct {
	WeeklyRent RentDetermination `json:"weeklyRent"`
	Weeks      []WeekAudit       `json:"weeks"`
}

// WeekAudit lists what was paid in one ISO week and where it came from.
type WeekAudit struct {
	Year       int             `json:"year"`
	WeekNumber int             `json:"weekNumber"`
	Amount     decimal.Decimal `json:"amount"`
	Sources    []AuditSource   `json:"sources"`
}

// AuditSource points at one contributing transaction.
type AuditSource struct {
	File          string          `json:"file"`
	TransactionNo string          `json:"transactionNo"`
	Date          string          `json:"date"`
	Reference     string          `json:"reference"`
	Amount        decimal.Decimal `json:"amount"`
}

// ArrearsSummary is the aggregate view used by the reports screen.
type ArrearsSummary struct {
	TotalArrears   decimal.Decimal        `json:"totalArrears"`
	TotalCollected decimal.Decimal        `json:"totalCollected"`
	ArrearsByStaff []StaffArrears         `json:"arrearsByStaff"`
	TopDebtors     []MonthlyArrearsRecord `json:"topDebtors"`
}

// StaffArrears is the outstanding amount across the tenants of one staff member.
type StaffArrears struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
	Count  int             `json:"count"`
}

// UploadResult is the response body for a spreadsheet upload.
type UploadResult struct {
	Success        bool             `json:"success"`
	Type           string           `json:"type"`
	Count          int              `json:"count"`
	Skipped        int              `json:"skipped"`
	TotalProcessed int              `json:"totalProcessed"`
	Preview        []RawTransaction `json:"preview"`
}
