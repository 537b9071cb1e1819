package store

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// PageSize is the fetch window for paginated reads.
const PageSize = 1000

// InsertBatchSize caps how many payment rows go into one insert statement.
const InsertBatchSize = 1000

// ErrNotFound is returned when a row lookup matches nothing.
var ErrNotFound = errors.New("store: not found")

// PaymentRow mirrors the payments table.
type PaymentRow struct {
	ID              string
	RoomCode        string
	TenantName      string
	Amount          decimal.Decimal
	TransactionNo   string
	TransactionDate *time.Time
	Reference       string
	TransactionType string
	Details         string
	StaffName       string
	WeekNumber      int
	Year            int
	Source          string
	RawData         []byte
	CreatedAt       time.Time
}

// TenantRow mirrors the tenants table. RentHistory and AbsentPeriods are
// populated by ListTenants and GetTenant.
type TenantRow struct {
	ID            string
	SageID        string
	TenantName    string
	RoomCode      string
	StaffName     string
	WeeklyRent    decimal.Decimal
	StartDate     *time.Time
	EndDate       *time.Time
	Status        string
	RentHistory   []RentHistoryRow
	AbsentPeriods []AbsentPeriodRow
}

// RentHistoryRow mirrors the rent_history table. CreatedAt orders entries
// that share an effective date, so rent lookups resolve ties the same way
// on every read.
type RentHistoryRow struct {
	ID            string
	TenantID      string
	WeeklyRent    decimal.Decimal
	EffectiveDate time.Time
	CreatedAt     time.Time
}

// AbsentPeriodRow mirrors the absent_periods table.
type AbsentPeriodRow struct {
	ID        string
	TenantID  string
	StartDate time.Time
	EndDate   time.Time
	Reason    string
	Notes     string
}

// Store is the persistence boundary. The Postgres implementation backs the
// server; the Memory implementation backs the tests.
type Store interface {
	// ListPayments returns payment rows for the given years (all years when
	// empty), ordered by year then week number. Reads run in pages of
	// PageSize; a failing page truncates the result instead of failing the
	// whole read.
	ListPayments(ctx context.Context, years []int) ([]PaymentRow, error)
	// ListPaymentKeys returns only the columns that participate in the
	// duplicate signature, for the given years.
	ListPaymentKeys(ctx context.Context, years []int) ([]PaymentRow, error)
	// InsertPayments writes rows in batches of InsertBatchSize and returns
	// how many were stored. A failing batch is retried once with raw data
	// stripped before the batch is given up on.
	InsertPayments(ctx context.Context, rows []PaymentRow) (int, error)
	// ListDistinctYears returns the years present in the payments table,
	// newest first. An empty table yields the current ledger year so the
	// UI always has a year to select.
	ListDistinctYears(ctx context.Context) ([]int, error)

	ListTenants(ctx context.Context) ([]TenantRow, error)
	GetTenant(ctx context.Context, id string) (TenantRow, error)
	CreateTenant(ctx context.Context, row TenantRow) (TenantRow, error)
	UpdateTenant(ctx context.Context, row TenantRow) (TenantRow, error)
	DeleteTenant(ctx context.Context, id string) error

	AddRentHistory(ctx context.Context, row RentHistoryRow) (RentHistoryRow, error)
	DeleteRentHistory(ctx context.Context, id string) error
	AddAbsentPeriod(ctx context.Context, row AbsentPeriodRow) (AbsentPeriodRow, error)
	DeleteAbsentPeriod(ctx context.Context, id string) error
}
