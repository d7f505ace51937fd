package billing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gvan1961/frontdivan/internal/billing"
	"github.com/gvan1961/frontdivan/internal/model"
)

// =============================================================================
// DISCOUNT CAP
// =============================================================================

func TestCanApplyDiscount_UnderCap(t *testing.T) {
	// GIVEN: 100.00 in charges and 20.00 already discounted
	// WHEN: applying a further 30.00
	// THEN: allowed, active discounts stay under total charges

	s := billing.Summary{TotalChargesCents: 10000, DiscountCents: 2000}

	assert.True(t, billing.CanApplyDiscount(s, 3000))
}

func TestCanApplyDiscount_ExactlyAtCap(t *testing.T) {
	// GIVEN: 100.00 in charges and 20.00 already discounted
	// WHEN: applying exactly the remaining 80.00
	// THEN: allowed, the receivable may reach zero through discounts

	s := billing.Summary{TotalChargesCents: 10000, DiscountCents: 2000}

	assert.True(t, billing.CanApplyDiscount(s, 8000))
}

func TestCanApplyDiscount_OverCapRejected(t *testing.T) {
	// GIVEN: 100.00 in charges and 20.00 already discounted
	// WHEN: applying 80.01
	// THEN: rejected, discounts may never exceed total charges

	s := billing.Summary{TotalChargesCents: 10000, DiscountCents: 2000}

	assert.False(t, billing.CanApplyDiscount(s, 8001))
}

func TestCanApplyDiscount_NonPositiveRejected(t *testing.T) {
	// GIVEN: any summary
	// WHEN: applying a zero or negative discount
	// THEN: rejected

	s := billing.Summary{TotalChargesCents: 10000}

	assert.False(t, billing.CanApplyDiscount(s, 0))
	assert.False(t, billing.CanApplyDiscount(s, -500))
}

func TestCanApplyDiscount_CapReopensAfterRemoval(t *testing.T) {
	// GIVEN: charges of 100.00 fully discounted, then the discount removed
	// WHEN: applying a new discount
	// THEN: the full cap is available again

	fully := billing.Summary{TotalChargesCents: 10000, DiscountCents: 10000}
	require.False(t, billing.CanApplyDiscount(fully, 1))

	afterRemoval := billing.Summary{TotalChargesCents: 10000, DiscountCents: 0}
	assert.True(t, billing.CanApplyDiscount(afterRemoval, 10000))
}

// =============================================================================
// PAYMENT CAP
// =============================================================================

func TestCanAcceptPayment_UpToReceivable(t *testing.T) {
	// GIVEN: 50.00 outstanding
	// WHEN: paying 50.00 or less
	// THEN: accepted

	s := billing.Summary{ReceivableCents: 5000}

	assert.True(t, billing.CanAcceptPayment(s, 5000))
	assert.True(t, billing.CanAcceptPayment(s, 1))
}

func TestCanAcceptPayment_OverpaymentRejected(t *testing.T) {
	// GIVEN: 50.00 outstanding
	// WHEN: paying 50.01
	// THEN: rejected, the receivable never goes negative

	s := billing.Summary{ReceivableCents: 5000}

	assert.False(t, billing.CanAcceptPayment(s, 5001))
}

func TestCanAcceptPayment_SettledRejectsAnyAmount(t *testing.T) {
	// GIVEN: nothing outstanding
	// WHEN: paying anything
	// THEN: rejected

	s := billing.Summary{ReceivableCents: 0}

	assert.True(t, billing.Settled(s))
	assert.False(t, billing.CanAcceptPayment(s, 1))
}

func TestCanAcceptPayment_NonPositiveRejected(t *testing.T) {
	s := billing.Summary{ReceivableCents: 5000}

	assert.False(t, billing.CanAcceptPayment(s, 0))
	assert.False(t, billing.CanAcceptPayment(s, -100))
}

// =============================================================================
// REVERSALS
// =============================================================================

func TestReversalEntry_NegatesOriginal(t *testing.T) {
	// GIVEN: a product charge of 3x 8.00
	// WHEN: building its reversal
	// THEN: the reversal carries -24.00 and references the original

	charge := productCharge(42, 800, 3)

	rev := billing.ReversalEntry(charge, 9, "charged to wrong room")

	assert.Equal(t, model.KindReversal, rev.Kind)
	assert.Equal(t, int64(-2400), rev.TotalCents)
	assert.Equal(t, charge.Quantity, rev.Quantity)
	assert.Equal(t, charge.ProductID, rev.ProductID)
	require.NotNil(t, rev.ReversalOf)
	assert.Equal(t, charge.ID, *rev.ReversalOf)
	assert.Equal(t, uint64(9), rev.OperatorID)
	assert.Equal(t, "charged to wrong room", rev.Description)
}

func TestReversible_OnlyProductCharges(t *testing.T) {
	// GIVEN: one entry of each kind
	// WHEN: checking reversibility
	// THEN: only the product charge qualifies

	charge := productCharge(1, 500, 1)
	night := nightlyRow(2, 15000)
	rev := billing.ReversalEntry(charge, 2, "mistake")

	assert.True(t, billing.Reversible(charge))
	assert.False(t, billing.Reversible(night))
	assert.False(t, billing.Reversible(rev))
}

// =============================================================================
// REPRICING A SHORTENED STAY
// =============================================================================

func TestReprice_RecomputesTotals(t *testing.T) {
	// GIVEN: a 4-night folio shortened to 2 nights
	// WHEN: repricing the summary at the new lodging charge
	// THEN: total and receivable follow the new nightly charge

	s := billing.Summary{
		NightlyChargeCents: 60000,
		ProductChargeCents: 3000,
		TotalChargesCents:  63000,
		DiscountCents:      2000,
		ReceivedCents:      10000,
		ReceivableCents:    51000,
	}

	adjusted := billing.Reprice(s, 30000)

	assert.Equal(t, int64(30000), adjusted.NightlyChargeCents)
	assert.Equal(t, int64(33000), adjusted.TotalChargesCents)
	assert.Equal(t, int64(21000), adjusted.ReceivableCents)
	assert.Equal(t, s.DiscountCents, adjusted.DiscountCents)
	assert.Equal(t, s.ReceivedCents, adjusted.ReceivedCents)
}

func TestInvariantsHold_ShorteningBelowDiscount(t *testing.T) {
	// GIVEN: a 10.00 discount granted against a 4-night stay
	// WHEN: the stay shrinks until lodging no longer covers the discount
	// THEN: the repriced summary fails validation

	s := billing.Summary{
		NightlyChargeCents: 2000,
		TotalChargesCents:  2000,
		DiscountCents:      1000,
		ReceivableCents:    1000,
	}
	assert.True(t, billing.InvariantsHold(s))

	adjusted := billing.Reprice(s, 500)
	assert.False(t, billing.InvariantsHold(adjusted))
}

func TestInvariantsHold_ShorteningBelowPayments(t *testing.T) {
	// GIVEN: 50.00 already received against a 60.00 stay
	// WHEN: the stay is repriced down to 40.00
	// THEN: the receivable would go negative and validation fails

	s := billing.Summary{
		NightlyChargeCents: 6000,
		TotalChargesCents:  6000,
		ReceivedCents:      5000,
		ReceivableCents:    1000,
	}
	assert.True(t, billing.InvariantsHold(s))

	adjusted := billing.Reprice(s, 4000)
	assert.False(t, billing.InvariantsHold(adjusted))

	// Repricing down to exactly what was received is still acceptable.
	assert.True(t, billing.InvariantsHold(billing.Reprice(s, 5000)))
}
