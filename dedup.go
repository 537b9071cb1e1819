package main

import (
	"strings"
	"time"
)

// Duplicate filtering is a pure signature-set membership test: a row is a
// duplicate when its (date, amount, room code, tenant name, transaction no,
// reference) tuple was already persisted or already seen earlier in the
// same batch. No fuzzy matching happens at this stage.

// Signature returns the dedup key of a raw transaction.
func (t RawTransaction) Signature() string {
	return strings.Join([]string{
		formatDate(t.Date),
		t.Amount.StringFixed(2),
		t.RoomCode,
		t.TenantName,
		t.TransactionNo,
		t.Reference,
	}, "|")
}

// Deduplicator filters a batch of new transactions against a persisted
// signature set, also catching duplicates inside the batch itself.
type Deduplicator struct {
	seen map[string]struct{}
}

// NewDeduplicator seeds the filter with the signatures already persisted
// for the years the incoming batch touches.
func NewDeduplicator(existing []string) *Deduplicator {
	seen := make(map[string]struct{}, len(existing))
	for _, sig := range existing {
		seen[sig] = struct{}{}
	}
	return &Deduplicator{seen: seen}
}

// Filter returns the transactions not seen before, in input order, together
// with the number of rows skipped as duplicates. Accepted signatures are
// remembered for the rest of the batch.
func (d *Deduplicator) Filter(batch []RawTransaction) ([]RawTransaction, int) {
	unique := make([]RawTransaction, 0, len(batch))
	skipped := 0
	for _, tx := range batch {
		sig := tx.Signature()
		if _, dup := d.seen[sig]; dup {
			skipped++
			continue
		}
		d.seen[sig] = struct{}{}
		unique = append(unique, tx)
	}
	return unique, skipped
}

// formatDate renders a nullable date the way it is persisted.
func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
