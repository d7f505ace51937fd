package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/gvan1961/frontdivan/internal/billing"
	"github.com/gvan1961/frontdivan/internal/model"
	"github.com/gvan1961/frontdivan/internal/repository"
)

type paymentReq struct {
	ValueCents int64  `json:"value_cents"`
	Method     string `json:"method"`
	Note       string `json:"note"`
}

// RecordPayment handles POST /v1/reservations/:id/payments.  The
// operator must have an open till session; the payment may settle the
// receivable exactly but never push it negative.  Payments are final:
// there is no update or delete endpoint.
func (h *ReservationHandler) RecordPayment(c echo.Context) error {
	operatorID, err := getOperatorID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var req paymentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	method := model.PaymentMethod(strings.ToUpper(strings.TrimSpace(req.Method)))
	if !method.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown payment method"})
	}
	if req.ValueCents <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "value_cents must be positive"})
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

	// The till guard runs inside the transaction so a close racing
	// with this payment cannot leave money attributed to a closed
	// session.
	session, err := h.Tills.CurrentOpenTx(ctx, tx, operatorID)
	if err != nil {
		return writeRepoError(c, err)
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
	if !billing.CanAcceptPayment(summary, req.ValueCents) {
		return writeRepoError(c, repository.ErrPaymentExceedsBalance)
	}

	p := &model.Payment{
		ReservationID: res.ID,
		TillSessionID: session.ID,
		ValueCents:    req.ValueCents,
		Method:        method,
		OperatorID:    operatorID,
	}
	if note := strings.TrimSpace(req.Note); note != "" {
		p.Note = &note
	}
	if err := h.Payments.CreateTx(ctx, tx, p); err != nil {
		return writeRepoError(c, err)
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true
	h.invalidateDetail(ctx, res.ID)

	return c.JSON(http.StatusCreated, echo.Map{
		"payment_id":        p.ID,
		"receivable_cents":  summary.ReceivableCents - req.ValueCents,
		"till_session_id":   session.ID,
	})
}
