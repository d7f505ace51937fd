package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gvan1961/frontdivan/internal/model"
)

func TestStatus_Valid(t *testing.T) {
	assert.True(t, model.StatusPreReservation.Valid())
	assert.True(t, model.StatusActive.Valid())
	assert.True(t, model.StatusFinalized.Valid())
	assert.True(t, model.StatusCancelled.Valid())
	assert.False(t, model.Status("CHECKED_IN").Valid())
	assert.False(t, model.Status("").Valid())
}

func TestStatus_OnlyActiveIsMutable(t *testing.T) {
	// GIVEN: every lifecycle state
	// WHEN: checking mutability
	// THEN: only ACTIVE accepts ledger mutations

	assert.True(t, model.StatusActive.Mutable())
	assert.False(t, model.StatusPreReservation.Mutable())
	assert.False(t, model.StatusFinalized.Mutable())
	assert.False(t, model.StatusCancelled.Mutable())
}

func TestStatus_Transitions(t *testing.T) {
	// GIVEN: every lifecycle state
	// WHEN: checking the allowed transitions
	// THEN: activate only from PRE_RESERVATION, finalize only from ACTIVE,
	//       cancel from PRE_RESERVATION or ACTIVE, nothing from terminal states

	assert.True(t, model.StatusPreReservation.CanActivate())
	assert.False(t, model.StatusActive.CanActivate())
	assert.False(t, model.StatusFinalized.CanActivate())

	assert.True(t, model.StatusActive.CanFinalize())
	assert.False(t, model.StatusPreReservation.CanFinalize())
	assert.False(t, model.StatusCancelled.CanFinalize())

	assert.True(t, model.StatusPreReservation.CanCancel())
	assert.True(t, model.StatusActive.CanCancel())
	assert.False(t, model.StatusFinalized.CanCancel())
	assert.False(t, model.StatusCancelled.CanCancel())
}

func TestStatus_TerminalStates(t *testing.T) {
	assert.True(t, model.StatusFinalized.Terminal())
	assert.True(t, model.StatusCancelled.Terminal())
	assert.False(t, model.StatusPreReservation.Terminal())
	assert.False(t, model.StatusActive.Terminal())
}

func TestReservation_NightlyChargeCents(t *testing.T) {
	// GIVEN: 4 nights at R$ 189.90
	// WHEN: computing the lodging charge
	// THEN: rate x nights in cents

	checkin := time.Date(2026, time.July, 1, 14, 0, 0, 0, time.UTC)
	res := model.Reservation{
		NightlyRateCents: 18990,
		Nights:           4,
		CheckinAt:        checkin,
		CheckoutAt:       checkin.AddDate(0, 0, 4),
	}

	assert.Equal(t, int64(75960), res.NightlyChargeCents())
}

func TestEntryKind_Valid(t *testing.T) {
	assert.True(t, model.KindNightlyCharge.Valid())
	assert.True(t, model.KindProductCharge.Valid())
	assert.True(t, model.KindReversal.Valid())
	assert.False(t, model.EntryKind("REFUND").Valid())
}

func TestPaymentMethod_Valid(t *testing.T) {
	assert.True(t, model.MethodCash.Valid())
	assert.True(t, model.MethodPix.Valid())
	assert.True(t, model.MethodDebitCard.Valid())
	assert.True(t, model.MethodCreditCard.Valid())
	assert.True(t, model.MethodBankTransfer.Valid())
	assert.False(t, model.PaymentMethod("CHEQUE").Valid())
}

func TestDiscount_Active(t *testing.T) {
	// GIVEN: a live discount and a tombstoned one
	// WHEN: checking activity
	// THEN: the tombstoned discount no longer counts

	live := model.Discount{ID: 1, ValueCents: 2000}
	assert.True(t, live.Active())

	at := time.Date(2026, time.March, 11, 9, 0, 0, 0, time.UTC)
	by := uint64(4)
	removed := model.Discount{ID: 2, ValueCents: 5000, RemovedAt: &at, RemovedBy: &by}
	assert.False(t, removed.Active())
}
