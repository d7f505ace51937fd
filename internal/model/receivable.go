package model

import "time"

// ReceivableStatus tracks whether an invoiced balance has been
// collected.
type ReceivableStatus string

const (
	ReceivableOpen    ReceivableStatus = "OPEN"
	ReceivableSettled ReceivableStatus = "SETTLED"
)

// Receivable is an outstanding balance carried over when a
// reservation is finalized on invoice rather than paid at checkout.
// The amount is frozen at finalization time; collection happens
// through back-office processes outside the front desk.
type Receivable struct {
	ID            uint64           `json:"id"`             // primary key
	ReservationID uint64           `json:"reservation_id"` // finalized reservation
	GuestID       uint64           `json:"guest_id"`       // debtor
	AmountCents   int64            `json:"amount_cents"`   // balance at finalization
	Status        ReceivableStatus `json:"status"`
	DueAt         time.Time        `json:"due_at"`      // agreed payment date
	SettledAt     *time.Time       `json:"settled_at"`  // nil while OPEN
	OperatorID    uint64           `json:"operator_id"` // who authorized invoicing
	CreatedAt     time.Time        `json:"created_at"`
}
