package model

import "time"

// Status is the lifecycle state of a reservation.  Only ACTIVE
// reservations accept charges, discounts, payments, transfers or
// amendments.  FINALIZED and CANCELLED are terminal: the record stays
// readable forever but refuses every mutation.
type Status string

const (
	StatusPreReservation Status = "PRE_RESERVATION" // booked, guest not yet checked in
	StatusActive         Status = "ACTIVE"          // guest lodged, ledger open
	StatusFinalized      Status = "FINALIZED"       // checked out (paid or invoiced)
	StatusCancelled      Status = "CANCELLED"       // cancelled before settlement
)

// Valid reports whether s is one of the known lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusPreReservation, StatusActive, StatusFinalized, StatusCancelled:
		return true
	}
	return false
}

// Mutable reports whether ledger/discount/payment/transfer/amendment
// operations are allowed in this state.
func (s Status) Mutable() bool { return s == StatusActive }

// Terminal reports whether the state admits no further transition.
func (s Status) Terminal() bool { return s == StatusFinalized || s == StatusCancelled }

// CanActivate reports whether the reservation may move to ACTIVE
// (physical check-in).
func (s Status) CanActivate() bool { return s == StatusPreReservation }

// CanFinalize reports whether checkout-finalize (either variant) is
// legal from this state.
func (s Status) CanFinalize() bool { return s == StatusActive }

// CanCancel reports whether cancellation is legal from this state.
// A no-show pre-reservation and an active stay can both be cancelled;
// terminal states cannot.
func (s Status) CanCancel() bool { return s == StatusPreReservation || s == StatusActive }

// Reservation mirrors the `reservations` table.  Monetary fields are
// integer cents.  The balance figures (total charges, discounts,
// received, receivable) are never stored on this row; they are derived
// by the billing package from the statement, discount and payment
// records on every read.
//
// Fields:
//  ID               – primary key identifier.
//  GuestID          – guest the room is let to.
//  RoomID           – room currently assigned (updated by transfers).
//  GuestCount       – number of lodged guests, bounded by room capacity.
//  CheckinAt        – check-in timestamp (UTC).
//  CheckoutAt       – expected checkout timestamp (UTC).
//  NightlyRateCents – agreed price per night.
//  Nights           – number of billable nights.
//  Status           – lifecycle state, see Status.
type Reservation struct {
	ID               uint64    // reservations.id
	GuestID          uint64    // reservations.guest_id
	RoomID           uint64    // reservations.room_id
	GuestCount       uint32    // reservations.guest_count
	CheckinAt        time.Time // reservations.checkin_at
	CheckoutAt       time.Time // reservations.checkout_at
	NightlyRateCents int64     // reservations.nightly_rate_cents
	Nights           uint32    // reservations.nights
	Status           Status    // reservations.status
	CreatedAt        time.Time // reservations.created_at
	UpdatedAt        time.Time // reservations.updated_at
}

// NightlyChargeCents is the lodging portion of the bill: rate × nights.
func (r Reservation) NightlyChargeCents() int64 {
	return r.NightlyRateCents * int64(r.Nights)
}
