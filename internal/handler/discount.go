package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/gvan1961/frontdivan/internal/billing"
	"github.com/gvan1961/frontdivan/internal/model"
	"github.com/gvan1961/frontdivan/internal/repository"
)

type discountReq struct {
	ValueCents int64  `json:"value_cents"`
	Reason     string `json:"reason"`
}

// ApplyDiscount handles POST /v1/reservations/:id/discounts.  Active
// discounts may never exceed total charges, so the balance can be
// driven to zero but not below it.
func (h *ReservationHandler) ApplyDiscount(c echo.Context) error {
	operatorID, err := getOperatorID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var req discountReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Reason = strings.TrimSpace(req.Reason)
	if req.ValueCents <= 0 || req.Reason == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "positive value_cents and reason are required"})
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
	if !billing.CanApplyDiscount(summary, req.ValueCents) {
		return writeRepoError(c, repository.ErrDiscountExceedsCharges)
	}

	d := &model.Discount{
		ReservationID: res.ID,
		ValueCents:    req.ValueCents,
		Reason:        req.Reason,
		OperatorID:    operatorID,
	}
	if err := h.Discounts.CreateTx(ctx, tx, d); err != nil {
		return writeRepoError(c, err)
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true
	h.invalidateDetail(ctx, res.ID)

	return c.JSON(http.StatusCreated, echo.Map{"discount_id": d.ID})
}

// RemoveDiscount handles DELETE /v1/reservations/:id/discounts/:discountID.
// The discount is tombstoned rather than deleted, so the record of who
// granted and who withdrew it survives.  Manager role is enforced by
// the route.
func (h *ReservationHandler) RemoveDiscount(c echo.Context) error {
	operatorID, err := getOperatorID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	discountID, ok := parseIDParam(c, "discountID")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid discount id"})
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
	d, err := h.Discounts.GetByIDTx(ctx, tx, discountID)
	if err != nil {
		return writeRepoError(c, err)
	}
	if d.ReservationID != res.ID {
		return writeRepoError(c, repository.ErrNotFound)
	}
	if err := h.Discounts.RemoveTx(ctx, tx, d.ID, operatorID); err != nil {
		return writeRepoError(c, err)
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true
	h.invalidateDetail(ctx, res.ID)

	return c.NoContent(http.StatusNoContent)
}
