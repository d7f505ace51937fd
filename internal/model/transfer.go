package model

import "time"

// TransferRecord mirrors the `transfer_records` table.  It is the
// immutable history of room moves for a reservation.  An immediate
// transfer is applied (room reference updated) in the same transaction
// that records it.  A scheduled transfer stores a future EffectiveAt
// with Applied=false; applying it later flips Applied and updates the
// reservation's room.  The record itself never changes the ledger.
type TransferRecord struct {
	ID            uint64    // transfer_records.id
	ReservationID uint64    // transfer_records.reservation_id
	FromRoomID    uint64    // transfer_records.from_room_id
	ToRoomID      uint64    // transfer_records.to_room_id
	EffectiveAt   time.Time // transfer_records.effective_at
	Applied       bool      // transfer_records.applied
	Reason        string    // transfer_records.reason (required)
	OperatorID    uint64    // transfer_records.operator_id
	CreatedAt     time.Time // transfer_records.created_at
}
