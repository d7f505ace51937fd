package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gvan1961/frontdivan/internal/model"
)

// newReservationContext builds a context with an authenticated
// operator and a reservation id path parameter, the shape every folio
// handler expects.  Request validation runs before any repository or
// lock is touched, so a zero-value handler is enough for these tests.
func newReservationContext(t *testing.T, method, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, "/", nil)
	} else {
		req = httptest.NewRequest(method, "/", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("7")
	c.Set("operator_id", uint64(2))
	return c, rec
}

func TestCancel_RequiresReason(t *testing.T) {
	// GIVEN: a cancel request with no reason, or a blank one
	// WHEN: cancelling
	// THEN: rejected with 400 before any state is touched

	h := &ReservationHandler{}

	c, rec := newReservationContext(t, http.MethodPatch, "")
	require.NoError(t, h.Cancel(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "reason")

	c, rec = newReservationContext(t, http.MethodPatch, `{"reason":"   "}`)
	require.NoError(t, h.Cancel(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTransferRoom_RejectsPastEffectiveAt(t *testing.T) {
	// GIVEN: a transfer scheduled for a timestamp already in the past
	// WHEN: posting the transfer
	// THEN: rejected with 400 rather than silently applied now

	h := &ReservationHandler{}
	past := time.Now().UTC().Add(-time.Hour).Format(time.RFC3339)

	c, rec := newReservationContext(t, http.MethodPost,
		`{"to_room_id":3,"reason":"guest request","effective_at":"`+past+`"}`)

	require.NoError(t, h.TransferRoom(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "effective_at")
}

func TestBuildReservationResp_CarriesDiscountReason(t *testing.T) {
	// GIVEN: a reservation with a granted and a tombstoned discount
	// WHEN: building the detail response
	// THEN: each discount part carries its reason and active flag

	checkin := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	res := &model.Reservation{
		ID:               7,
		GuestID:          1,
		RoomID:           3,
		GuestCount:       2,
		CheckinAt:        checkin,
		CheckoutAt:       checkin.AddDate(0, 0, 2),
		NightlyRateCents: 15000,
		Nights:           2,
		Status:           model.StatusActive,
	}
	removedAt := checkin.Add(26 * time.Hour)
	removedBy := uint64(4)
	discounts := []model.Discount{
		{ID: 1, ReservationID: 7, ValueCents: 2000, Reason: "returning guest", OperatorID: 2},
		{ID: 2, ReservationID: 7, ValueCents: 5000, Reason: "granted in error",
			OperatorID: 2, RemovedAt: &removedAt, RemovedBy: &removedBy},
	}

	out := buildReservationResp(res, nil, discounts, nil)

	require.Len(t, out.Discounts, 2)
	assert.Equal(t, "returning guest", out.Discounts[0].Reason)
	assert.True(t, out.Discounts[0].Active)
	assert.Equal(t, "granted in error", out.Discounts[1].Reason)
	assert.False(t, out.Discounts[1].Active)
	assert.Equal(t, int64(2000), out.Summary.DiscountCents)
}
