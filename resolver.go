package main

import (
	"strings"

	"github.com/shopspring/decimal"
)

// TenantDirectory resolves the (room code, tenant name) pair on a
// transaction to a canonical tenant. It is rebuilt from a tenant snapshot
// at the start of every computation and never persisted: the same display
// name shows up with inconsistent casing and spacing across files, so the
// resolver runs per transaction against normalized keys.
type TenantDirectory struct {
	byAccount map[string]Tenant
	byName    map[string]Tenant
}

// NewTenantDirectory indexes a tenant snapshot for resolution.
func NewTenantDirectory(tenants []Tenant) *TenantDirectory {
	d := &TenantDirectory{
		byAccount: make(map[string]Tenant, len(tenants)),
		byName:    make(map[string]Tenant, len(tenants)),
	}
	for _, t := range tenants {
		if key := strings.TrimSpace(t.SageID); key != "" {
			if _, exists := d.byAccount[key]; !exists {
				d.byAccount[key] = t
			}
		}
		if key := normalizeName(t.TenantName); key != "" {
			if _, exists := d.byName[key]; !exists {
				d.byName[key] = t
			}
		}
	}
	return d
}

// Resolve maps a transaction's identifiers to a tenant. Priority order:
//  1. room code matched against a Sage account ID (legacy files store the
//     account code in the room-code field),
//  2. normalized tenant name,
//  3. a synthesized placeholder so the money still shows up in reports.
func (d *TenantDirectory) Resolve(roomCode, tenantName string) Tenant {
	if t, ok := d.byAccount[strings.TrimSpace(roomCode)]; ok {
		return t
	}
	if t, ok := d.byName[normalizeName(tenantName)]; ok {
		return t
	}
	return Tenant{
		SageID:     "UNKNOWN-" + normalizeName(tenantName),
		TenantName: tenantName,
		RoomCode:   roomCode,
		WeeklyRent: decimal.Zero,
		Status:     "active",
	}
}

// normalizeName lower-cases, trims and collapses runs of whitespace.
func normalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}
