package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Postgres implements Store on a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// NewPostgres wraps an existing pool.
func NewPostgres(pool *pgxpool.Pool, log zerolog.Logger) *Postgres {
	return &Postgres{pool: pool, log: log}
}

const paymentColumns = `id, room_code, tenant_name, amount, transaction_no,
	transaction_date, reference, transaction_type, details, staff_name,
	week_number, year, source, raw_data, created_at`

func (p *Postgres) ListPayments(ctx context.Context, years []int) ([]PaymentRow, error) {
	var all []PaymentRow
	for offset := 0; ; offset += PageSize {
		query := fmt.Sprintf(`SELECT %s FROM payments`, paymentColumns)
		args := []any{}
		if len(years) > 0 {
			query += ` WHERE year = ANY($1)`
			args = append(args, years)
		}
		query += fmt.Sprintf(` ORDER BY year, week_number, id LIMIT %d OFFSET %d`, PageSize, offset)

		rows, err := p.pool.Query(ctx, query, args...)
		if err != nil {
			// Return what we have rather than failing the whole read. The
			// caller sees a shorter ledger, not an error page.
			p.log.Warn().Err(err).Int("offset", offset).Msg("payment page read failed, truncating")
			return all, nil
		}
		page, err := scanPayments(rows)
		if err != nil {
			p.log.Warn().Err(err).Int("offset", offset).Msg("payment page scan failed, truncating")
			return all, nil
		}
		all = append(all, page...)
		if len(page) < PageSize {
			return all, nil
		}
	}
}

func (p *Postgres) ListPaymentKeys(ctx context.Context, years []int) ([]PaymentRow, error) {
	query := `SELECT transaction_date, amount, room_code, tenant_name, transaction_no, reference
		FROM payments`
	args := []any{}
	if len(years) > 0 {
		query += ` WHERE year = ANY($1)`
		args = append(args, years)
	}
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list payment keys: %w", err)
	}
	defer rows.Close()

	var out []PaymentRow
	for rows.Next() {
		var r PaymentRow
		if err := rows.Scan(&r.TransactionDate, &r.Amount, &r.RoomCode, &r.TenantName, &r.TransactionNo, &r.Reference); err != nil {
			return nil, fmt.Errorf("scan payment key: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (p *Postgres) InsertPayments(ctx context.Context, rows []PaymentRow) (int, error) {
	inserted := 0
	for start := 0; start < len(rows); start += InsertBatchSize {
		end := start + InsertBatchSize
		if end > len(rows) {
			end = len(rows)
		}
		batch := rows[start:end]

		if err := p.insertBatch(ctx, batch, false); err != nil {
			// Older deployments lack the raw_data column; retry once
			// without it before giving up.
			if !strings.Contains(err.Error(), "raw_data") {
				return inserted, fmt.Errorf("insert payments: %w", err)
			}
			p.log.Warn().Err(err).Int("batch_size", len(batch)).Msg("payment insert failed, retrying without raw data")
			if err := p.insertBatch(ctx, batch, true); err != nil {
				return inserted, fmt.Errorf("insert payments: %w", err)
			}
		}
		inserted += len(batch)
	}
	return inserted, nil
}

func (p *Postgres) insertBatch(ctx context.Context, batch []PaymentRow, stripRaw bool) error {
	var sb strings.Builder
	sb.WriteString(`INSERT INTO payments (room_code, tenant_name, amount, transaction_no,
		transaction_date, reference, transaction_type, details, staff_name,
		week_number, year, source, raw_data) VALUES `)

	args := make([]any, 0, len(batch)*13)
	for i, r := range batch {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * 13
		sb.WriteString("(")
		for j := 1; j <= 13; j++ {
			if j > 1 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "$%d", base+j)
		}
		sb.WriteString(")")

		raw := r.RawData
		if stripRaw {
			raw = nil
		}
		args = append(args, r.RoomCode, r.TenantName, r.Amount, r.TransactionNo,
			r.TransactionDate, r.Reference, r.TransactionType, r.Details, r.StaffName,
			r.WeekNumber, r.Year, r.Source, raw)
	}

	_, err := p.pool.Exec(ctx, sb.String(), args...)
	return err
}

func (p *Postgres) ListDistinctYears(ctx context.Context) ([]int, error) {
	rows, err := p.pool.Query(ctx, `SELECT DISTINCT year FROM payments WHERE year > 0 ORDER BY year DESC`)
	if err != nil {
		return nil, fmt.Errorf("list years: %w", err)
	}
	defer rows.Close()

	var years []int
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, fmt.Errorf("scan year: %w", err)
		}
		years = append(years, y)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(years) == 0 {
		years = []int{time.Now().Year()}
	}
	return years, nil
}

const tenantColumns = `id, sage_id, tenant_name, room_code, staff_name,
	weekly_rent, start_date, end_date, status`

func (p *Postgres) ListTenants(ctx context.Context) ([]TenantRow, error) {
	rows, err := p.pool.Query(ctx, fmt.Sprintf(`SELECT %s FROM tenants ORDER BY tenant_name`, tenantColumns))
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	tenants, err := scanTenants(rows)
	if err != nil {
		return nil, err
	}
	if err := p.attachTenantDetails(ctx, tenants); err != nil {
		return nil, err
	}
	return tenants, nil
}

func (p *Postgres) GetTenant(ctx context.Context, id string) (TenantRow, error) {
	row := p.pool.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM tenants WHERE id = $1`, tenantColumns), id)
	t, err := scanTenant(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return TenantRow{}, ErrNotFound
	}
	if err != nil {
		return TenantRow{}, fmt.Errorf("get tenant: %w", err)
	}
	tenants := []TenantRow{t}
	if err := p.attachTenantDetails(ctx, tenants); err != nil {
		return TenantRow{}, err
	}
	return tenants[0], nil
}

func (p *Postgres) CreateTenant(ctx context.Context, row TenantRow) (TenantRow, error) {
	q := `INSERT INTO tenants (sage_id, tenant_name, room_code, staff_name, weekly_rent, start_date, end_date, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + tenantColumns
	r := p.pool.QueryRow(ctx, q, row.SageID, row.TenantName, row.RoomCode, row.StaffName,
		row.WeeklyRent, row.StartDate, row.EndDate, row.Status)
	t, err := scanTenant(r)
	if err != nil {
		return TenantRow{}, fmt.Errorf("create tenant: %w", err)
	}
	return t, nil
}

func (p *Postgres) UpdateTenant(ctx context.Context, row TenantRow) (TenantRow, error) {
	q := `UPDATE tenants SET sage_id = $2, tenant_name = $3, room_code = $4, staff_name = $5,
		weekly_rent = $6, start_date = $7, end_date = $8, status = $9
		WHERE id = $1
		RETURNING ` + tenantColumns
	r := p.pool.QueryRow(ctx, q, row.ID, row.SageID, row.TenantName, row.RoomCode, row.StaffName,
		row.WeeklyRent, row.StartDate, row.EndDate, row.Status)
	t, err := scanTenant(r)
	if errors.Is(err, pgx.ErrNoRows) {
		return TenantRow{}, ErrNotFound
	}
	if err != nil {
		return TenantRow{}, fmt.Errorf("update tenant: %w", err)
	}
	return t, nil
}

func (p *Postgres) DeleteTenant(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM tenants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete tenant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) AddRentHistory(ctx context.Context, row RentHistoryRow) (RentHistoryRow, error) {
	q := `INSERT INTO rent_history (tenant_id, weekly_rent, effective_date)
		VALUES ($1, $2, $3)
		RETURNING id, tenant_id, weekly_rent, effective_date, created_at`
	r := p.pool.QueryRow(ctx, q, row.TenantID, row.WeeklyRent, row.EffectiveDate)
	var out RentHistoryRow
	if err := r.Scan(&out.ID, &out.TenantID, &out.WeeklyRent, &out.EffectiveDate, &out.CreatedAt); err != nil {
		return RentHistoryRow{}, fmt.Errorf("add rent history: %w", err)
	}
	return out, nil
}

func (p *Postgres) DeleteRentHistory(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM rent_history WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete rent history: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) AddAbsentPeriod(ctx context.Context, row AbsentPeriodRow) (AbsentPeriodRow, error) {
	q := `INSERT INTO absent_periods (tenant_id, start_date, end_date, reason, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, tenant_id, start_date, end_date, reason, notes`
	r := p.pool.QueryRow(ctx, q, row.TenantID, row.StartDate, row.EndDate, row.Reason, row.Notes)
	var out AbsentPeriodRow
	if err := r.Scan(&out.ID, &out.TenantID, &out.StartDate, &out.EndDate, &out.Reason, &out.Notes); err != nil {
		return AbsentPeriodRow{}, fmt.Errorf("add absent period: %w", err)
	}
	return out, nil
}

func (p *Postgres) DeleteAbsentPeriod(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM absent_periods WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete absent period: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// attachTenantDetails fills RentHistory and AbsentPeriods for the given
// tenants with two bulk queries.
func (p *Postgres) attachTenantDetails(ctx context.Context, tenants []TenantRow) error {
	if len(tenants) == 0 {
		return nil
	}
	ids := make([]string, len(tenants))
	index := make(map[string]int, len(tenants))
	for i, t := range tenants {
		ids[i] = t.ID
		index[t.ID] = i
	}

	rows, err := p.pool.Query(ctx, `SELECT id, tenant_id, weekly_rent, effective_date, created_at
		FROM rent_history WHERE tenant_id = ANY($1)
		ORDER BY effective_date, created_at, id`, ids)
	if err != nil {
		return fmt.Errorf("list rent history: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var h RentHistoryRow
		if err := rows.Scan(&h.ID, &h.TenantID, &h.WeeklyRent, &h.EffectiveDate, &h.CreatedAt); err != nil {
			return fmt.Errorf("scan rent history: %w", err)
		}
		if i, ok := index[h.TenantID]; ok {
			tenants[i].RentHistory = append(tenants[i].RentHistory, h)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = p.pool.Query(ctx, `SELECT id, tenant_id, start_date, end_date, reason, notes
		FROM absent_periods WHERE tenant_id = ANY($1) ORDER BY start_date`, ids)
	if err != nil {
		return fmt.Errorf("list absent periods: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var a AbsentPeriodRow
		if err := rows.Scan(&a.ID, &a.TenantID, &a.StartDate, &a.EndDate, &a.Reason, &a.Notes); err != nil {
			return fmt.Errorf("scan absent period: %w", err)
		}
		if i, ok := index[a.TenantID]; ok {
			tenants[i].AbsentPeriods = append(tenants[i].AbsentPeriods, a)
		}
	}
	return rows.Err()
}

func scanPayments(rows pgx.Rows) ([]PaymentRow, error) {
	defer rows.Close()
	var out []PaymentRow
	for rows.Next() {
		var r PaymentRow
		if err := rows.Scan(&r.ID, &r.RoomCode, &r.TenantName, &r.Amount, &r.TransactionNo,
			&r.TransactionDate, &r.Reference, &r.TransactionType, &r.Details, &r.StaffName,
			&r.WeekNumber, &r.Year, &r.Source, &r.RawData, &r.CreatedAt); err != nil {
			return out, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanTenants(rows pgx.Rows) ([]TenantRow, error) {
	defer rows.Close()
	var out []TenantRow
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanTenant(row pgx.Row) (TenantRow, error) {
	var t TenantRow
	err := row.Scan(&t.ID, &t.SageID, &t.TenantName, &t.RoomCode, &t.StaffName,
		&t.WeeklyRent, &t.StartDate, &t.EndDate, &t.Status)
	return t, err
}
