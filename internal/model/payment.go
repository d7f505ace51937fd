package model

import "time"

// PaymentMethod enumerates how a payment was settled.
type PaymentMethod string

const (
	MethodCash         PaymentMethod = "CASH"
	MethodPix          PaymentMethod = "PIX" // Brazilian instant transfer
	MethodDebitCard    PaymentMethod = "DEBIT_CARD"
	MethodCreditCard   PaymentMethod = "CREDIT_CARD"
	MethodBankTransfer PaymentMethod = "BANK_TRANSFER"
)

// Valid reports whether m is one of the accepted payment methods.
func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCash, MethodPix, MethodDebitCard, MethodCreditCard, MethodBankTransfer:
		return true
	}
	return false
}

// Payment mirrors the `payments` table.  A payment is permanent once
// accepted: there is no void or delete; corrections go through
// discounts or out-of-band reconciliation.  Every payment records the
// till session that was open when it was taken.
type Payment struct {
	ID            uint64        // payments.id
	ReservationID uint64        // payments.reservation_id
	TillSessionID uint64        // payments.till_session_id
	ValueCents    int64         // payments.value_cents (always > 0)
	Method        PaymentMethod // payments.method
	Note          *string       // payments.note (nullable)
	OperatorID    uint64        // payments.operator_id
	CreatedAt     time.Time     // payments.created_at
}
