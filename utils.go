package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"rentledger/db/store"
)

// Validation functions

// validateName validates that a name is not empty or just whitespace
func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name cannot be empty")
	}
	return nil
}

// validateDateRange checks that end does not precede start.
func validateDateRange(start, end time.Time) error {
	if end.Before(start) {
		return fmt.Errorf("end date cannot be before start date")
	}
	return nil
}

// handleDatabaseError converts database errors to appropriate HTTP responses
func handleDatabaseError(err error) (statusCode int, message string) {
	if errors.Is(err, store.ErrNotFound) {
		return http.StatusNotFound, "Resource not found"
	}

	errorStr := err.Error()

	if strings.Contains(errorStr, "duplicate key value violates unique constraint") {
		if strings.Contains(errorStr, "idx_tenants_sage_id") {
			return http.StatusConflict, "Tenant with this Sage account ID already exists"
		}
		return http.StatusConflict, "Resource already exists"
	}

	if strings.Contains(errorStr, "no rows in result set") {
		return http.StatusNotFound, "Resource not found"
	}

	if strings.Contains(errorStr, "invalid input syntax for type uuid") {
		return http.StatusBadRequest, "Invalid identifier"
	}

	return http.StatusInternalServerError, "Internal server error"
}

// Store row conversions

func paymentRowToTransaction(r store.PaymentRow) RawTransaction {
	t := RawTransaction{
		ID:            r.ID,
		RoomCode:      r.RoomCode,
		TenantName:    r.TenantName,
		Amount:        r.Amount,
		TransactionNo: r.TransactionNo,
		Date:          r.TransactionDate,
		Reference:     r.Reference,
		Type:          r.TransactionType,
		Details:       r.Details,
		StaffName:     r.StaffName,
		WeekNumber:    r.WeekNumber,
		Year:          r.Year,
		Source:        r.Source,
	}
	if r.Year > 0 && r.WeekNumber > 0 {
		t.PeriodMonth = weekToMonthCode(r.Year, r.WeekNumber)
	}
	if len(r.RawData) > 0 {
		// Raw cells are best-effort; a malformed blob loses the preview,
		// not the row.
		_ = json.Unmarshal(r.RawData, &t.Raw)
	}
	return t
}

func transactionToPaymentRow(t RawTransaction) store.PaymentRow {
	r := store.PaymentRow{
		RoomCode:        t.RoomCode,
		TenantName:      t.TenantName,
		Amount:          t.Amount,
		TransactionNo:   t.TransactionNo,
		TransactionDate: t.Date,
		Reference:       t.Reference,
		TransactionType: t.Type,
		Details:         t.Details,
		StaffName:       t.StaffName,
		WeekNumber:      t.WeekNumber,
		Year:            t.Year,
		Source:          t.Source,
	}
	if len(t.Raw) > 0 {
		if data, err := json.Marshal(t.Raw); err == nil {
			r.RawData = data
		}
	}
	return r
}

func tenantRowToTenant(r store.TenantRow) Tenant {
	t := Tenant{
		ID:         r.ID,
		SageID:     r.SageID,
		TenantName: r.TenantName,
		RoomCode:   r.RoomCode,
		StaffName:  r.StaffName,
		WeeklyRent: r.WeeklyRent,
		StartDate:  dateToString(r.StartDate),
		EndDate:    dateToString(r.EndDate),
		Status:     r.Status,
	}
	for _, h := range r.RentHistory {
		t.RentHistory = append(t.RentHistory, RentHistory{
			ID:            h.ID,
			TenantID:      h.TenantID,
			WeeklyRent:    h.WeeklyRent,
			EffectiveDate: h.EffectiveDate,
		})
	}
	for _, a := range r.AbsentPeriods {
		t.AbsentPeriods = append(t.AbsentPeriods, AbsentPeriod{
			ID:        a.ID,
			TenantID:  a.TenantID,
			StartDate: a.StartDate,
			EndDate:   a.EndDate,
			Reason:    a.Reason,
			Notes:     a.Notes,
		})
	}
	return t
}

func tenantToTenantRow(t Tenant) store.TenantRow {
	return store.TenantRow{
		ID:         t.ID,
		SageID:     strings.TrimSpace(t.SageID),
		TenantName: strings.TrimSpace(t.TenantName),
		RoomCode:   strings.TrimSpace(t.RoomCode),
		StaffName:  strings.TrimSpace(t.StaffName),
		WeeklyRent: t.WeeklyRent,
		StartDate:  stringToDate(t.StartDate),
		EndDate:    stringToDate(t.EndDate),
		Status:     t.Status,
	}
}

func dateToString(d *time.Time) *string {
	if d == nil {
		return nil
	}
	s := d.Format("2006-01-02")
	return &s
}

func stringToDate(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	d, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil
	}
	return &d
}

// loadTenants fetches all tenant rows and converts them to the domain model.
func loadTenants(ctx context.Context) ([]Tenant, error) {
	rows, err := dataStore.ListTenants(ctx)
	if err != nil {
		return nil, err
	}
	tenants := make([]Tenant, 0, len(rows))
	for _, r := range rows {
		tenants = append(tenants, tenantRowToTenant(r))
	}
	return tenants, nil
}
