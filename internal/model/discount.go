package model

import "time"

// Discount mirrors the `discounts` table.  Discounts are discrete
// records so each one can be removed independently while the
// reservation is ACTIVE.  Removal is a tombstone, not a hard delete:
// RemovedAt/RemovedBy are set and the row drops out of the balance,
// but the audit trail keeps it.
type Discount struct {
	ID            uint64     // discounts.id
	ReservationID uint64     // discounts.reservation_id
	ValueCents    int64      // discounts.value_cents (always > 0)
	Reason        string     // discounts.reason (required on grant; NULL in legacy rows reads as "")
	OperatorID    uint64     // discounts.operator_id
	CreatedAt     time.Time  // discounts.created_at
	RemovedAt     *time.Time // discounts.removed_at (nullable tombstone)
	RemovedBy     *uint64    // discounts.removed_by (nullable)
}

// Active reports whether the discount still counts toward the balance.
func (d Discount) Active() bool { return d.RemovedAt == nil }
