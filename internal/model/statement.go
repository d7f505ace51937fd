package model

import "time"

// EntryKind classifies a statement (ledger) line.
type EntryKind string

const (
	KindNightlyCharge EntryKind = "NIGHTLY_CHARGE" // one row per booked night
	KindProductCharge EntryKind = "PRODUCT_CHARGE" // consumed product, positive total
	KindReversal      EntryKind = "REVERSAL"       // compensates a product charge, negative total
)

// Valid reports whether k is a known entry kind.
func (k EntryKind) Valid() bool {
	switch k {
	case KindNightlyCharge, KindProductCharge, KindReversal:
		return true
	}
	return false
}

// StatementEntry is one immutable line of a reservation's ledger.
// Entries are append-only: a correction is a new REVERSAL entry that
// references the entry it compensates, never an edit or a delete.
// TotalCents is signed (positive for charges, negative for reversals)
// so the ledger sums to the net billed amount without special cases.
//
// ReversalOf is set only on REVERSAL entries and is unique per target,
// which is what enforces "an entry is reversible at most once" at the
// storage level.
type StatementEntry struct {
	ID            uint64    // statement_entries.id
	ReservationID uint64    // statement_entries.reservation_id
	Kind          EntryKind // statement_entries.kind
	Description   string    // statement_entries.description
	UnitCents     int64     // statement_entries.unit_cents
	Quantity      uint32    // statement_entries.quantity
	TotalCents    int64     // statement_entries.total_cents (signed)
	ProductID     *uint64   // statement_entries.product_id (nullable, product charges only)
	ReversalOf    *uint64   // statement_entries.reversal_of (nullable, reversals only)
	OperatorID    uint64    // statement_entries.operator_id
	CreatedAt     time.Time // statement_entries.created_at
}
