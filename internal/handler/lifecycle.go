package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gvan1961/frontdivan/internal/billing"
	"github.com/gvan1961/frontdivan/internal/model"
	"github.com/gvan1961/frontdivan/internal/queue"
	"github.com/gvan1961/frontdivan/internal/repository"
	queue_publisher "github.com/gvan1961/frontdivan/internal/service"
)

// Activate handles PATCH /v1/reservations/:id/activate (check-in).
// The reservation moves PRE_RESERVATION -> ACTIVE, one NIGHTLY_CHARGE
// ledger row is appended per booked night, and the room flips to
// OCCUPIED.  All of it commits atomically.
func (h *ReservationHandler) Activate(c echo.Context) error {
	operatorID, err := getOperatorID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
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
	if !res.Status.CanActivate() {
		return writeRepoError(c, repository.ErrInvalidState)
	}
	room, err := h.Rooms.GetByIDForUpdateTx(ctx, tx, res.RoomID)
	if err != nil {
		return writeRepoError(c, err)
	}
	if room.Status != model.RoomAvailable {
		return c.JSON(http.StatusConflict, echo.Map{"error": "room is not available"})
	}
	if res.GuestCount > room.Capacity {
		return writeRepoError(c, repository.ErrCapacityExceeded)
	}

	// One ledger row per booked night keeps the printed statement
	// itemized and lets checkout-date amendments append or reverse
	// individual nights later.
	night := res.CheckinAt.UTC()
	for i := uint32(0); i < res.Nights; i++ {
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

	if err := h.Rooms.UpdateStatusTx(ctx, tx, room.ID, model.RoomOccupied); err != nil {
		return writeRepoError(c, err)
	}
	if err := h.Reservations.UpdateStatusTx(ctx, tx, res.ID, model.StatusActive); err != nil {
		return writeRepoError(c, err)
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true
	h.invalidateDetail(ctx, res.ID)

	return c.JSON(http.StatusOK, echo.Map{"id": res.ID, "status": string(model.StatusActive)})
}

type finalizeInvoicedReq struct {
	DueAt string `json:"due_at"` // RFC3339, agreed collection date
}

// FinalizePaid handles PATCH /v1/reservations/:id/finalize.  Checkout
// with full settlement: the receivable must be exactly zero, then the
// reservation moves to FINALIZED and the room goes to CLEANING.
func (h *ReservationHandler) FinalizePaid(c echo.Context) error {
	return h.finalize(c, false)
}

// FinalizeInvoiced handles PATCH /v1/reservations/:id/finalize-invoiced.
// Checkout with an outstanding balance carried into a receivable for
// back-office collection.  Manager role is enforced by the route.
func (h *ReservationHandler) FinalizeInvoiced(c echo.Context) error {
	return h.finalize(c, true)
}

func (h *ReservationHandler) finalize(c echo.Context, invoiced bool) error {
	operatorID, err := getOperatorID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}

	var dueAt time.Time
	if invoiced {
		var req finalizeInvoicedReq
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
		}
		dueAt, err = time.Parse(time.RFC3339, req.DueAt)
		if err != nil || !dueAt.After(time.Now().UTC()) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "due_at must be a future RFC3339 timestamp"})
		}
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
	if !res.Status.CanFinalize() {
		return writeRepoError(c, repository.ErrInvalidState)
	}

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

	if invoiced {
		if summary.ReceivableCents <= 0 {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "nothing to invoice; use paid finalization"})
		}
		rec := &model.Receivable{
			ReservationID: res.ID,
			GuestID:       res.GuestID,
			AmountCents:   summary.ReceivableCents,
			DueAt:         dueAt.UTC(),
			OperatorID:    operatorID,
		}
		if err := h.Receivables.CreateTx(ctx, tx, rec); err != nil {
			return writeRepoError(c, err)
		}
	} else if summary.ReceivableCents != 0 {
		return writeRepoError(c, repository.ErrBalanceOutstanding)
	}

	room, err := h.Rooms.GetByIDForUpdateTx(ctx, tx, res.RoomID)
	if err != nil {
		return writeRepoError(c, err)
	}
	if err := h.Rooms.UpdateStatusTx(ctx, tx, room.ID, model.RoomCleaning); err != nil {
		return writeRepoError(c, err)
	}
	if err := h.Reservations.UpdateStatusTx(ctx, tx, res.ID, model.StatusFinalized); err != nil {
		return writeRepoError(c, err)
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true
	h.invalidateDetail(ctx, res.ID)

	// Broker failures must not undo a committed checkout; the event is
	// best effort and the error already logged by the publisher.
	_ = queue_publisher.PublishReservationFinalized(ctx, queue.ReservationFinalizedEvent{
		ReservationID:   res.ID,
		GuestID:         res.GuestID,
		RoomID:          room.ID,
		RoomNumber:      room.Number,
		TotalCents:      summary.TotalChargesCents,
		DiscountCents:   summary.DiscountCents,
		ReceivedCents:   summary.ReceivedCents,
		ReceivableCents: summary.ReceivableCents,
		Invoiced:        invoiced,
		FinalizedAt:     time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusOK, echo.Map{
		"id":      res.ID,
		"status":  string(model.StatusFinalized),
		"summary": summary,
	})
}

type cancelReq struct {
	Reason string `json:"reason"`
}

// Cancel handles PATCH /v1/reservations/:id/cancel.  A non-empty
// reason is mandatory and lands in the amendment history alongside
// the status change.  Cancelling an active stay requires the folio to
// be untouched; anything else must go through checkout.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	operatorID, err := getOperatorID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var req cancelReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Reason = strings.TrimSpace(req.Reason)
	if req.Reason == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reason is required"})
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
	if !res.Status.CanCancel() {
		return writeRepoError(c, repository.ErrInvalidState)
	}

	if res.Status == model.StatusActive {
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
		if summary.ProductChargeCents != 0 || summary.ReceivedCents != 0 {
			return c.JSON(http.StatusConflict, echo.Map{"error": "folio has postings; finalize instead of cancelling"})
		}
		room, err := h.Rooms.GetByIDForUpdateTx(ctx, tx, res.RoomID)
		if err != nil {
			return writeRepoError(c, err)
		}
		if err := h.Rooms.UpdateStatusTx(ctx, tx, room.ID, model.RoomCleaning); err != nil {
			return writeRepoError(c, err)
		}
	}

	if err := h.Reservations.UpdateStatusTx(ctx, tx, res.ID, model.StatusCancelled); err != nil {
		return writeRepoError(c, err)
	}
	amendment := &model.Amendment{
		ReservationID: res.ID,
		Field:         model.AmendStatus,
		PreviousValue: string(res.Status),
		NewValue:      string(model.StatusCancelled),
		Reason:        &req.Reason,
		OperatorID:    operatorID,
	}
	if err := h.Amendments.CreateTx(ctx, tx, amendment); err != nil {
		return writeRepoError(c, err)
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true
	h.invalidateDetail(ctx, res.ID)

	return c.JSON(http.StatusOK, echo.Map{"id": res.ID, "status": string(model.StatusCancelled)})
}
