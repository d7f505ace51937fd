package billing

import "github.com/gvan1961/frontdivan/internal/model"

// CanApplyDiscount reports whether a further discount of valueCents
// fits under the cap: active discounts may never exceed total charges,
// so the receivable can reach zero but never go negative through
// discounting alone.
func CanApplyDiscount(s Summary, valueCents int64) bool {
	if valueCents <= 0 {
		return false
	}
	return s.DiscountCents+valueCents <= s.TotalChargesCents
}

// CanAcceptPayment reports whether a payment of valueCents is allowed
// against the current summary.  Payments may settle the receivable
// exactly but never push it negative.
func CanAcceptPayment(s Summary, valueCents int64) bool {
	if valueCents <= 0 {
		return false
	}
	return valueCents <= s.ReceivableCents
}

// Settled reports whether the reservation owes nothing.
func Settled(s Summary) bool { return s.ReceivableCents == 0 }

// Reprice recomputes a summary for a different lodging total, as when
// a checkout-date amendment changes the night count.  Product charges,
// discounts and payments are unchanged; totals and the receivable are
// rederived.
func Reprice(s Summary, nightlyChargeCents int64) Summary {
	s.NightlyChargeCents = nightlyChargeCents
	s.TotalChargesCents = s.NightlyChargeCents + s.ProductChargeCents
	s.ReceivableCents = s.TotalChargesCents - s.DiscountCents - s.ReceivedCents
	return s
}

// InvariantsHold reports whether a summary respects the folio rules:
// active discounts never exceed total charges and the receivable is
// never negative.  A shortening that would break either must be
// rejected before any rows are written.
func InvariantsHold(s Summary) bool {
	return s.DiscountCents <= s.TotalChargesCents && s.ReceivableCents >= 0
}

// ReversalEntry builds the REVERSAL leg for a product charge.  The
// total is the negation of the original, so original + reversal nets
// to zero regardless of quantity or unit price.
func ReversalEntry(original model.StatementEntry, operatorID uint64, reason string) model.StatementEntry {
	id := original.ID
	return model.StatementEntry{
		ReservationID: original.ReservationID,
		Kind:          model.KindReversal,
		Description:   reason,
		UnitCents:     original.UnitCents,
		Quantity:      original.Quantity,
		TotalCents:    -original.TotalCents,
		ProductID:     original.ProductID,
		ReversalOf:    &id,
		OperatorID:    operatorID,
	}
}

// Reversible reports whether a statement entry may be reversed.  Only
// PRODUCT_CHARGE rows qualify: nightly rows are corrected through
// amendments and reversal rows are themselves final.
func Reversible(e model.StatementEntry) bool {
	return e.Kind == model.KindProductCharge
}
