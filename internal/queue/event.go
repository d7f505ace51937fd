// Package queue defines message payloads exchanged over the message broker.
package queue

// ReservationFinalizedEvent is published when a reservation checks out,
// whether settled in full or carried as a receivable.  It contains
// enough information for downstream consumers (housekeeping, night
// audit) to act without querying the primary database.
type ReservationFinalizedEvent struct {
	ReservationID   uint64 `json:"reservation_id"`
	GuestID         uint64 `json:"guest_id"`
	RoomID          uint64 `json:"room_id"`
	RoomNumber      string `json:"room_number"`
	TotalCents      int64  `json:"total_cents"`
	DiscountCents   int64  `json:"discount_cents"`
	ReceivedCents   int64  `json:"received_cents"`
	ReceivableCents int64  `json:"receivable_cents"`
	Invoiced        bool   `json:"invoiced"`
	FinalizedAt     string `json:"finalized_at"`
}

// RoomTransferScheduledEvent is published when a future-dated room
// change is recorded, so housekeeping can prepare the target room
// before the move.
type RoomTransferScheduledEvent struct {
	TransferID    uint64 `json:"transfer_id"`
	ReservationID uint64 `json:"reservation_id"`
	FromRoomID    uint64 `json:"from_room_id"`
	ToRoomID      uint64 `json:"to_room_id"`
	EffectiveAt   string `json:"effective_at"`
	Reason        string `json:"reason"`
}
