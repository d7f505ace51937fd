package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gvan1961/frontdivan/internal/billing"
	"github.com/gvan1961/frontdivan/internal/model"
	"github.com/gvan1961/frontdivan/internal/repository"
)

type guestCountReq struct {
	GuestCount uint32 `json:"guest_count"`
	Reason     string `json:"reason"`
}

// AmendGuestCount handles PATCH /v1/reservations/:id/guest-count.
// The new count is bounded by the current room's capacity, and the
// change lands in the amendment audit trail.
func (h *ReservationHandler) AmendGuestCount(c echo.Context) error {
	operatorID, err := getOperatorID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var req guestCountReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.GuestCount == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "guest_count must be positive"})
	}

	unlock := h.Locks.Lock(id)
	defer unlock()

	ctx := c.Request().Context()
	tx, err := h.Reservations.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := h.Reservations.GetByIDForUpdateTx(ctx, tx, id)
	if err != nil {
		return writeRepoError(c, err)
	}
	if !res.Status.Mutable() {
		return writeRepoError(c, repository.ErrInvalidState)
	}
	if req.GuestCount == res.GuestCount {
		return c.JSON(http.StatusOK, echo.Map{"id": res.ID, "guest_count": res.GuestCount})
	}
	room, err := h.Rooms.GetByIDForUpdateTx(ctx, tx, res.RoomID)
	if err != nil {
		return writeRepoError(c, err)
	}
	if req.GuestCount > room.Capacity {
		return writeRepoError(c, repository.ErrCapacityExceeded)
	}

	if err := h.Reservations.UpdateGuestCountTx(ctx, tx, res.ID, req.GuestCount); err != nil {
		return writeRepoError(c, err)
	}
	amendment := &model.Amendment{
		ReservationID: res.ID,
		Field:         model.AmendGuestCount,
		PreviousValue: strconv.FormatUint(uint64(res.GuestCount), 10),
		NewValue:      strconv.FormatUint(uint64(req.GuestCount), 10),
		OperatorID:    operatorID,
	}
	if reason := strings.TrimSpace(req.Reason); reason != "" {
		amendment.Reason = &reason
	}
	if err := h.Amendments.CreateTx(ctx, tx, amendment); err != nil {
		return writeRepoError(c, err)
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true
	h.invalidateDetail(ctx, res.ID)

	return c.JSON(http.StatusOK, echo.Map{"id": res.ID, "guest_count": req.GuestCount})
}

type checkoutDateReq struct {
	CheckoutAt string `json:"checkout_at"` // RFC3339
	Reason     string `json:"reason"`
}

// AmendCheckoutDate handles PATCH /v1/reservations/:id/checkout-date.
// Extending a stay appends one NIGHTLY_CHARGE row per added night;
// shortening appends negative adjustment rows for the dropped nights,
// so the ledger stays append-only and keeps summing to rate times
// nights.  The new date must leave at least one night after check-in.
func (h *ReservationHandler) AmendCheckoutDate(c echo.Context) error {
	operatorID, err := getOperatorID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var req checkoutDateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	newCheckout, err := time.Parse(time.RFC3339, req.CheckoutAt)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid checkout_at"})
	}

	unlock := h.Locks.Lock(id)
	defer unlock()

	ctx := c.Request().Context()
	tx, err := h.Reservations.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := h.Reservations.GetByIDForUpdateTx(ctx, tx, id)
	if err != nil {
		return writeRepoError(c, err)
	}
	if !res.Status.Mutable() {
		return writeRepoError(c, repository.ErrInvalidState)
	}
	newNights := nightsBetween(res.CheckinAt, newCheckout)
	if newNights == 0 {
		return writeRepoError(c, repository.ErrInvalidDateRange)
	}
	if newNights == res.Nights {
		return c.JSON(http.StatusOK, echo.Map{"id": res.ID, "nights": res.Nights})
	}

	if newNights > res.Nights {
		// Added nights start where the old stay ended.
		night := res.CheckinAt.UTC().Add(time.Duration(res.Nights) * 24 * time.Hour)
		for i := res.Nights; i < newNights; i++ {
			entry := &model.StatementEntry{
				ReservationID: res.ID,
				Kind:          model.KindNightlyCharge,
				Description:   fmt.Sprintf("Night of %s", night.Format("2006-01-02")),
				UnitCents:     res.NightlyRateCents,
				Quantity:      1,
				TotalCents:    res.NightlyRateCents,
				OperatorID:    operatorID,
			}
			if err := h.Statements.CreateTx(ctx, tx, entry); err != nil {
				return writeRepoError(c, err)
			}
			night = night.Add(24 * time.Hour)
		}
	} else {
		// Shortening reduces total charges; refuse it when granted
		// discounts or received payments would exceed the new total.
		entries, err := h.Statements.ListByReservationTx(ctx, tx, id)
		if err != nil {
			return writeRepoError(c, err)
		}
		discounts, err := h.Discounts.ListByReservationTx(ctx, tx, id)
		if err != nil {
			return writeRepoError(c, err)
		}
		payments, err := h.Payments.ListByReservationTx(ctx, tx, id)
		if err != nil {
			return writeRepoError(c, err)
		}
		summary := billing.Compute(*res, entries, discounts, payments)
		adjusted := billing.Reprice(summary, res.NightlyRateCents*int64(newNights))
		if !billing.InvariantsHold(adjusted) {
			return c.JSON(http.StatusConflict, echo.Map{
				"error": "shortening would drop charges below granted discounts or received payments",
			})
		}

		night := res.CheckinAt.UTC().Add(time.Duration(newNights) * 24 * time.Hour)
		for i := newNights; i < res.Nights; i++ {
			entry := &model.StatementEntry{
				ReservationID: res.ID,
				Kind:          model.KindNightlyCharge,
				Description:   fmt.Sprintf("Night of %s removed", night.Format("2006-01-02")),
				UnitCents:     res.NightlyRateCents,
				Quantity:      1,
				TotalCents:    -res.NightlyRateCents,
				OperatorID:    operatorID,
			}
			if err := h.Statements.CreateTx(ctx, tx, entry); err != nil {
				return writeRepoError(c, err)
			}
			night = night.Add(24 * time.Hour)
		}
	}

	if err := h.Reservations.UpdateCheckoutTx(ctx, tx, res.ID, newCheckout.UTC().Format("2006-01-02 15:04:05"), newNights); err != nil {
		return writeRepoError(c, err)
	}
	amendment := &model.Amendment{
		ReservationID: res.ID,
		Field:         model.AmendCheckoutDate,
		PreviousValue: res.CheckoutAt.UTC().Format(time.RFC3339),
		NewValue:      newCheckout.UTC().Format(time.RFC3339),
		OperatorID:    operatorID,
	}
	if reason := strings.TrimSpace(req.Reason); reason != "" {
		amendment.Reason = &reason
	}
	if err := h.Amendments.CreateTx(ctx, tx, amendment); err != nil {
		return writeRepoError(c, err)
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true
	h.invalidateDetail(ctx, res.ID)

	return c.JSON(http.StatusOK, echo.Map{"id": res.ID, "nights": newNights})
}

// ListAmendments handles GET /v1/reservations/:id/amendments.
func (h *ReservationHandler) ListAmendments(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	list, err := h.Amendments.ListByReservation(c.Request().Context(), id)
	if err != nil {
		return writeRepoError(c, err)
	}
	type amendmentPart struct {
		ID            uint64  `json:"id"`
		Field         string  `json:"field"`
		PreviousValue string  `json:"previous_value"`
		NewValue      string  `json:"new_value"`
		Reason        *string `json:"reason,omitempty"`
		OperatorID    uint64  `json:"operator_id"`
		CreatedAt     string  `json:"created_at"`
	}
	out := make([]amendmentPart, 0, len(list))
	for _, a := range list {
		out = append(out, amendmentPart{
			ID:            a.ID,
			Field:         string(a.Field),
			PreviousValue: a.PreviousValue,
			NewValue:      a.NewValue,
			Reason:        a.Reason,
			OperatorID:    a.OperatorID,
			CreatedAt:     a.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, out)
}
