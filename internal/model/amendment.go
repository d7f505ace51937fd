package model

import "time"

// AmendmentField names the reservation attribute an amendment changed.
type AmendmentField string

const (
	AmendGuestCount   AmendmentField = "GUEST_COUNT"
	AmendCheckoutDate AmendmentField = "CHECKOUT_DATE"
	AmendStatus       AmendmentField = "STATUS" // cancellation audit rows
)

// Amendment mirrors the `reservation_amendments` table: the immutable
// history of guest-count, checkout-date and cancellation changes.
// Previous/new values are stored as strings so one table serves every
// field.  History rows are never edited or deleted.
type Amendment struct {
	ID            uint64         // reservation_amendments.id
	ReservationID uint64         // reservation_amendments.reservation_id
	Field         AmendmentField // reservation_amendments.field
	PreviousValue string         // reservation_amendments.previous_value
	NewValue      string         // reservation_amendments.new_value
	Reason        *string        // reservation_amendments.reason (nullable)
	OperatorID    uint64         // reservation_amendments.operator_id
	CreatedAt     time.Time      // reservation_amendments.created_at
}
