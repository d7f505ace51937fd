package billing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gvan1961/frontdivan/internal/billing"
	"github.com/gvan1961/frontdivan/internal/model"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func testReservation(rateCents int64, nights uint32) model.Reservation {
	checkin := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	return model.Reservation{
		ID:               1,
		GuestID:          7,
		RoomID:           12,
		GuestCount:       2,
		CheckinAt:        checkin,
		CheckoutAt:       checkin.AddDate(0, 0, int(nights)),
		NightlyRateCents: rateCents,
		Nights:           nights,
		Status:           model.StatusActive,
	}
}

func productCharge(id uint64, unitCents int64, qty uint32) model.StatementEntry {
	pid := uint64(3)
	return model.StatementEntry{
		ID:            id,
		ReservationID: 1,
		Kind:          model.KindProductCharge,
		Description:   "Mineral water 500ml",
		UnitCents:     unitCents,
		Quantity:      qty,
		TotalCents:    unitCents * int64(qty),
		ProductID:     &pid,
		OperatorID:    2,
	}
}

func nightlyRow(id uint64, cents int64) model.StatementEntry {
	return model.StatementEntry{
		ID:            id,
		ReservationID: 1,
		Kind:          model.KindNightlyCharge,
		Description:   "Night of 2026-03-10",
		UnitCents:     cents,
		Quantity:      1,
		TotalCents:    cents,
		OperatorID:    2,
	}
}

func discount(id uint64, cents int64) model.Discount {
	return model.Discount{ID: id, ReservationID: 1, ValueCents: cents, OperatorID: 2}
}

func removedDiscount(id uint64, cents int64) model.Discount {
	at := time.Date(2026, time.March, 11, 9, 0, 0, 0, time.UTC)
	by := uint64(4)
	d := discount(id, cents)
	d.RemovedAt = &at
	d.RemovedBy = &by
	return d
}

func payment(id uint64, cents int64, method model.PaymentMethod) model.Payment {
	return model.Payment{
		ID:            id,
		ReservationID: 1,
		TillSessionID: 5,
		ValueCents:    cents,
		Method:        method,
		OperatorID:    2,
	}
}

// =============================================================================
// BALANCE DERIVATION
// =============================================================================

func TestCompute_LodgingOnly(t *testing.T) {
	// GIVEN: 3 nights at R$ 150.00, no consumption, no discounts, no payments
	// WHEN: computing the summary
	// THEN: total equals rate x nights and the receivable equals the total

	res := testReservation(15000, 3)

	s := billing.Compute(res, nil, nil, nil)

	assert.Equal(t, int64(45000), s.NightlyChargeCents)
	assert.Equal(t, int64(0), s.ProductChargeCents)
	assert.Equal(t, int64(45000), s.TotalChargesCents)
	assert.Equal(t, int64(45000), s.ReceivableCents)
}

func TestCompute_ConsumptionAddsToReceivable(t *testing.T) {
	// GIVEN: 2 nights at 100.00 plus 2x water at 5.00 and 1x beer at 12.00
	// WHEN: computing the summary
	// THEN: product charges sum and the receivable covers lodging + products

	res := testReservation(10000, 2)
	entries := []model.StatementEntry{
		productCharge(10, 500, 2),
		productCharge(11, 1200, 1),
	}

	s := billing.Compute(res, entries, nil, nil)

	assert.Equal(t, int64(2200), s.ProductChargeCents)
	assert.Equal(t, int64(22200), s.TotalChargesCents)
	assert.Equal(t, int64(22200), s.ReceivableCents)
}

func TestCompute_ReversalNetsOutCharge(t *testing.T) {
	// GIVEN: a product charge and its reversal
	// WHEN: computing the summary
	// THEN: the pair nets to zero without touching lodging

	res := testReservation(10000, 1)
	charge := productCharge(10, 800, 3)
	rev := billing.ReversalEntry(charge, 2, "wrong room")
	rev.ID = 11

	s := billing.Compute(res, []model.StatementEntry{charge, rev}, nil, nil)

	assert.Equal(t, int64(0), s.ProductChargeCents)
	assert.Equal(t, int64(10000), s.TotalChargesCents)
}

func TestCompute_NightlyRowsDoNotDoubleCount(t *testing.T) {
	// GIVEN: per-night ledger rows alongside the reservation record
	// WHEN: computing the summary
	// THEN: lodging comes from rate x nights once, not from the rows too

	res := testReservation(15000, 2)
	entries := []model.StatementEntry{
		nightlyRow(1, 15000),
		nightlyRow(2, 15000),
	}

	s := billing.Compute(res, entries, nil, nil)

	assert.Equal(t, int64(30000), s.NightlyChargeCents)
	assert.Equal(t, int64(30000), s.TotalChargesCents)
}

func TestCompute_TombstonedDiscountExcluded(t *testing.T) {
	// GIVEN: one active discount of 20.00 and one removed discount of 50.00
	// WHEN: computing the summary
	// THEN: only the active discount reduces the receivable

	res := testReservation(10000, 1)
	discounts := []model.Discount{
		discount(1, 2000),
		removedDiscount(2, 5000),
	}

	s := billing.Compute(res, nil, discounts, nil)

	assert.Equal(t, int64(2000), s.DiscountCents)
	assert.Equal(t, int64(8000), s.ReceivableCents)
}

func TestCompute_PaymentsReduceReceivableToZero(t *testing.T) {
	// GIVEN: charges of 200.00 and two payments totalling 200.00
	// WHEN: computing the summary
	// THEN: the receivable is exactly zero

	res := testReservation(10000, 2)
	payments := []model.Payment{
		payment(1, 15000, model.MethodCash),
		payment(2, 5000, model.MethodPix),
	}

	s := billing.Compute(res, nil, nil, payments)

	assert.Equal(t, int64(20000), s.ReceivedCents)
	assert.Equal(t, int64(0), s.ReceivableCents)
	assert.True(t, billing.Settled(s))
}

func TestCompute_FullScenario(t *testing.T) {
	// GIVEN: 2 nights at 150.00, consumption of 30.00 with 10.00 reversed,
	//        a 20.00 discount and a 250.00 payment
	// WHEN: computing the summary
	// THEN: receivable = 300 + 30 - 10 - 20 - 250 = 50.00

	res := testReservation(15000, 2)
	charge1 := productCharge(10, 1000, 2)
	charge2 := productCharge(11, 1000, 1)
	rev := billing.ReversalEntry(charge2, 2, "not served")
	rev.ID = 12
	entries := []model.StatementEntry{charge1, charge2, rev}
	discounts := []model.Discount{discount(1, 2000)}
	payments := []model.Payment{payment(1, 25000, model.MethodCreditCard)}

	s := billing.Compute(res, entries, discounts, payments)

	assert.Equal(t, int64(30000), s.NightlyChargeCents)
	assert.Equal(t, int64(2000), s.ProductChargeCents)
	assert.Equal(t, int64(32000), s.TotalChargesCents)
	assert.Equal(t, int64(5000), s.ReceivableCents)
}

// =============================================================================
// NIGHTLY ROW CONSISTENCY
// =============================================================================

func TestNightlyRowsConsistent_MatchingRows(t *testing.T) {
	// GIVEN: one nightly row per booked night at the agreed rate
	// WHEN: checking consistency
	// THEN: rows agree with rate x nights

	res := testReservation(15000, 2)
	entries := []model.StatementEntry{nightlyRow(1, 15000), nightlyRow(2, 15000)}

	assert.True(t, billing.NightlyRowsConsistent(res, entries))
}

func TestNightlyRowsConsistent_AdjustmentRowsAfterShortening(t *testing.T) {
	// GIVEN: 3 booked nights shortened to 2, with a negative adjustment row
	// WHEN: checking consistency
	// THEN: the signed sum still matches the reservation record

	res := testReservation(15000, 2)
	entries := []model.StatementEntry{
		nightlyRow(1, 15000),
		nightlyRow(2, 15000),
		nightlyRow(3, 15000),
		nightlyRow(4, -15000),
	}

	assert.True(t, billing.NightlyRowsConsistent(res, entries))
}

func TestNightlyRowsConsistent_MissingRowDetected(t *testing.T) {
	// GIVEN: 2 booked nights but only one nightly row
	// WHEN: checking consistency
	// THEN: the mismatch is reported

	res := testReservation(15000, 2)
	entries := []model.StatementEntry{nightlyRow(1, 15000)}

	assert.False(t, billing.NightlyRowsConsistent(res, entries))
}

// =============================================================================
// PER-METHOD BREAKDOWN
// =============================================================================

func TestReceivedByMethod_GroupsAndSums(t *testing.T) {
	// GIVEN: two cash payments and one pix payment
	// WHEN: breaking received down per method
	// THEN: cash entries sum and pix stands alone

	payments := []model.Payment{
		payment(1, 5000, model.MethodCash),
		payment(2, 3000, model.MethodCash),
		payment(3, 7000, model.MethodPix),
	}

	byMethod := billing.ReceivedByMethod(payments)

	assert.Equal(t, int64(8000), byMethod[model.MethodCash])
	assert.Equal(t, int64(7000), byMethod[model.MethodPix])
	assert.Len(t, byMethod, 2)
}
