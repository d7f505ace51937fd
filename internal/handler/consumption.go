package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gvan1961/frontdivan/internal/model"
	"github.com/gvan1961/frontdivan/internal/repository"
)

type consumptionReq struct {
	ProductID uint64 `json:"product_id"`
	Quantity  uint32 `json:"quantity"`
}

// PostConsumption handles POST /v1/reservations/:id/consumptions.
// It prices the product at its current catalog price, decrements
// stock, and appends a PRODUCT_CHARGE ledger row, all in one
// transaction.  A stock shortfall rolls the whole posting back.
func (h *ReservationHandler) PostConsumption(c echo.Context) error {
	operatorID, err := getOperatorID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var req consumptionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.ProductID == 0 || req.Quantity == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "product_id and positive quantity are required"})
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

	product, err := h.Products.GetByIDForUpdateTx(ctx, tx, req.ProductID)
	if err != nil {
		return writeRepoError(c, err)
	}
	if !product.IsActive {
		return c.JSON(http.StatusConflict, echo.Map{"error": "product is inactive"})
	}
	if err := h.Products.DecrementStockTx(ctx, tx, product.ID, req.Quantity); err != nil {
		return writeRepoError(c, err)
	}

	pid := product.ID
	entry := &model.StatementEntry{
		ReservationID: res.ID,
		Kind:          model.KindProductCharge,
		Description:   product.Name,
		UnitCents:     product.PriceCents,
		Quantity:      req.Quantity,
		TotalCents:    product.PriceCents * int64(req.Quantity),
		ProductID:     &pid,
		OperatorID:    operatorID,
	}
	if err := h.Statements.CreateTx(ctx, tx, entry); err != nil {
		return writeRepoError(c, err)
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true
	h.invalidateDetail(ctx, res.ID)

	return c.JSON(http.StatusCreated, echo.Map{
		"entry_id":    entry.ID,
		"total_cents": entry.TotalCents,
	})
}
