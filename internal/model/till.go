package model

import "time"

// TillStatus is the cash-register session state.
type TillStatus string

const (
	TillOpen   TillStatus = "OPEN"
	TillClosed TillStatus = "CLOSED"
)

// TillSession mirrors the `till_sessions` table.  At most one session
// is OPEN at a time; payments are only accepted while one is.  Closing
// a session records an optional note and freezes it.  Per-method
// received totals for the session report are derived from the payments
// table, not stored here.
type TillSession struct {
	ID                uint64     // till_sessions.id
	OperatorID        uint64     // till_sessions.operator_id (who opened it)
	OpeningFloatCents int64      // till_sessions.opening_float_cents
	Status            TillStatus // till_sessions.status
	OpenedAt          time.Time  // till_sessions.opened_at
	ClosedAt          *time.Time // till_sessions.closed_at (nullable)
	ClosingNote       *string    // till_sessions.closing_note (nullable)
}
