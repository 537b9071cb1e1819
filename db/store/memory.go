package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-process Store used by the test suites. It matches the
// read and write semantics of the Postgres implementation, minus the
// pagination mechanics.
type Memory struct {
	mu       sync.RWMutex
	payments []PaymentRow
	tenants  map[string]TenantRow
	history  []RentHistoryRow
	absences map[string]AbsentPeriodRow
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		tenants:  make(map[string]TenantRow),
		absences: make(map[string]AbsentPeriodRow),
	}
}

func (m *Memory) ListPayments(_ context.Context, years []int) ([]PaymentRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	want := make(map[int]struct{}, len(years))
	for _, y := range years {
		want[y] = struct{}{}
	}
	var out []PaymentRow
	for _, r := range m.payments {
		if len(want) > 0 {
			if _, ok := want[r.Year]; !ok {
				continue
			}
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].WeekNumber < out[j].WeekNumber
	})
	return out, nil
}

func (m *Memory) ListPaymentKeys(ctx context.Context, years []int) ([]PaymentRow, error) {
	return m.ListPayments(ctx, years)
}

func (m *Memory) InsertPayments(_ context.Context, rows []PaymentRow) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range rows {
		r.ID = uuid.NewString()
		r.CreatedAt = time.Now()
		m.payments = append(m.payments, r)
	}
	return len(rows), nil
}

func (m *Memory) ListDistinctYears(_ context.Context) ([]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[int]struct{})
	for _, r := range m.payments {
		if r.Year > 0 {
			seen[r.Year] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return []int{time.Now().Year()}, nil
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years, nil
}

func (m *Memory) ListTenants(_ context.Context) ([]TenantRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]TenantRow, 0, len(m.tenants))
	for _, t := range m.tenants {
		out = append(out, m.withDetails(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TenantName < out[j].TenantName })
	return out, nil
}

func (m *Memory) GetTenant(_ context.Context, id string) (TenantRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.tenants[id]
	if !ok {
		return TenantRow{}, ErrNotFound
	}
	return m.withDetails(t), nil
}

func (m *Memory) CreateTenant(_ context.Context, row TenantRow) (TenantRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	row.ID = uuid.NewString()
	row.RentHistory = nil
	row.AbsentPeriods = nil
	m.tenants[row.ID] = row
	return row, nil
}

func (m *Memory) UpdateTenant(_ context.Context, row TenantRow) (TenantRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tenants[row.ID]; !ok {
		return TenantRow{}, ErrNotFound
	}
	row.RentHistory = nil
	row.AbsentPeriods = nil
	m.tenants[row.ID] = row
	return row, nil
}

func (m *Memory) DeleteTenant(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tenants[id]; !ok {
		return ErrNotFound
	}
	delete(m.tenants, id)
	kept := m.history[:0]
	for _, h := range m.history {
		if h.TenantID != id {
			kept = append(kept, h)
		}
	}
	m.history = kept
	for aid, a := range m.absences {
		if a.TenantID == id {
			delete(m.absences, aid)
		}
	}
	return nil
}

func (m *Memory) AddRentHistory(_ context.Context, row RentHistoryRow) (RentHistoryRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tenants[row.TenantID]; !ok {
		return RentHistoryRow{}, ErrNotFound
	}
	row.ID = uuid.NewString()
	row.CreatedAt = time.Now()
	m.history = append(m.history, row)
	return row, nil
}

func (m *Memory) DeleteRentHistory(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, h := range m.history {
		if h.ID == id {
			m.history = append(m.history[:i], m.history[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *Memory) AddAbsentPeriod(_ context.Context, row AbsentPeriodRow) (AbsentPeriodRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tenants[row.TenantID]; !ok {
		return AbsentPeriodRow{}, ErrNotFound
	}
	row.ID = uuid.NewString()
	m.absences[row.ID] = row
	return row, nil
}

func (m *Memory) DeleteAbsentPeriod(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.absences[id]; !ok {
		return ErrNotFound
	}
	delete(m.absences, id)
	return nil
}

func (m *Memory) withDetails(t TenantRow) TenantRow {
	// m.history is in insertion order; the stable sort keeps that order
	// for entries sharing an effective date.
	for _, h := range m.history {
		if h.TenantID == t.ID {
			t.RentHistory = append(t.RentHistory, h)
		}
	}
	sort.SliceStable(t.RentHistory, func(i, j int) bool {
		return t.RentHistory[i].EffectiveDate.Before(t.RentHistory[j].EffectiveDate)
	})
	for _, a := range m.absences {
		if a.TenantID == t.ID {
			t.AbsentPeriods = append(t.AbsentPeriods, a)
		}
	}
	sort.Slice(t.AbsentPeriods, func(i, j int) bool {
		return t.AbsentPeriods[i].StartDate.Before(t.AbsentPeriods[j].StartDate)
	})
	return t
}
