package model

import "time"

// RoomStatus tracks a room's operational state.
type RoomStatus string

const (
	RoomAvailable RoomStatus = "AVAILABLE"
	RoomOccupied  RoomStatus = "OCCUPIED"
	RoomCleaning  RoomStatus = "CLEANING" // set when a reservation finalizes
)

// Room mirrors the `rooms` table.  The billing core consults capacity
// for guest-count amendments and transfer validation, and flips the
// status on check-in, finalize (cleaning) and cancel (release).
type Room struct {
	ID        uint64     // rooms.id
	Number    string     // rooms.number (display label, e.g. "101")
	Capacity  uint32     // rooms.capacity (max guests)
	Status    RoomStatus // rooms.status
	CreatedAt time.Time  // rooms.created_at
	UpdatedAt time.Time  // rooms.updated_at
}
