// Package billing holds the pure balance arithmetic and business-rule
// checks for a reservation's ledger.  Nothing here touches the
// database: callers load the reservation, its statement entries,
// discounts and payments, and every figure is recomputed from those on
// each call.  There is no cached balance anywhere that could drift
// from the underlying records.
package billing

import "github.com/gvan1961/frontdivan/internal/model"

// Summary is the derived financial view of a reservation.  All values
// are integer cents.  ReceivableCents is signed: zero means settled,
// negative means overpaid.
type Summary struct {
	NightlyChargeCents int64 `json:"nightly_charge_cents"`
	ProductChargeCents int64 `json:"product_charge_cents"`
	TotalChargesCents  int64 `json:"total_charges_cents"`
	DiscountCents      int64 `json:"discount_cents"`
	ReceivedCents      int64 `json:"received_cents"`
	ReceivableCents    int64 `json:"receivable_cents"`
}

// Compute derives the Summary for a reservation.
//
// The product charge is the signed sum of PRODUCT_CHARGE and REVERSAL
// entries, so reversals net out automatically.  NIGHTLY_CHARGE ledger
// rows are ignored here: the reservation record (rate × nights) is
// authoritative for lodging, and the nightly rows exist for the
// printable statement.  NightlyRowsConsistent checks the two agree.
func Compute(res model.Reservation, entries []model.StatementEntry, discounts []model.Discount, payments []model.Payment) Summary {
	s := Summary{NightlyChargeCents: res.NightlyChargeCents()}
	for _, e := range entries {
		switch e.Kind {
		case model.KindProductCharge, model.KindReversal:
			s.ProductChargeCents += e.TotalCents
		}
	}
	s.TotalChargesCents = s.NightlyChargeCents + s.ProductChargeCents
	s.DiscountCents = ActiveDiscountCents(discounts)
	for _, p := range payments {
		s.ReceivedCents += p.ValueCents
	}
	s.ReceivableCents = s.TotalChargesCents - s.DiscountCents - s.ReceivedCents
	return s
}

// ActiveDiscountCents sums discounts that have not been tombstoned.
func ActiveDiscountCents(discounts []model.Discount) int64 {
	var total int64
	for _, d := range discounts {
		if d.Active() {
			total += d.ValueCents
		}
	}
	return total
}

// NightlyRowsConsistent reports whether the NIGHTLY_CHARGE ledger rows
// sum to the reservation's rate × nights.  A mismatch means an
// amendment path forgot to append or adjust nightly rows.
func NightlyRowsConsistent(res model.Reservation, entries []model.StatementEntry) bool {
	var sum int64
	for _, e := range entries {
		if e.Kind == model.KindNightlyCharge {
			sum += e.TotalCents
		}
	}
	return sum == res.NightlyChargeCents()
}

// ReceivedByMethod breaks totalReceived down per payment method, for
// the reservation detail view and the till session report.
func ReceivedByMethod(payments []model.Payment) map[model.PaymentMethod]int64 {
	out := make(map[model.PaymentMethod]int64)
	for _, p := range payments {
		out[p.Method] += p.ValueCents
	}
	return out
}
