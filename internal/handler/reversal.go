package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/gvan1961/frontdivan/internal/billing"
	"github.com/gvan1961/frontdivan/internal/model"
	"github.com/gvan1961/frontdivan/internal/repository"
)

type reversalReq struct {
	EntryID uint64 `json:"entry_id"`
	Reason  string `json:"reason"`
	// Optional correction posted atomically with the reversal, for
	// the "wrong product rung up" case: reverse the old line and
	// charge the right one in a single transaction.
	Correction *consumptionReq `json:"correction,omitempty"`
}

// ReverseEntry handles POST /v1/reservations/:id/reversals.  It
// appends a REVERSAL row negating a product charge, restores the
// product's stock, and optionally posts a corrected charge, all
// atomically.  Each ledger row can be reversed at most once; the
// unique index on reversal_of backs the in-transaction check.
func (h *ReservationHandler) ReverseEntry(c echo.Context) error {
	operatorID, err := getOperatorID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var req reversalReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Reason = strings.TrimSpace(req.Reason)
	if req.EntryID == 0 || req.Reason == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "entry_id and reason are required"})
	}
	if req.Correction != nil && (req.Correction.ProductID == 0 || req.Correction.Quantity == 0) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "correction needs product_id and positive quantity"})
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

	original, err := h.Statements.GetByIDForUpdateTx(ctx, tx, req.EntryID)
	if err != nil {
		return writeRepoError(c, err)
	}
	if original.ReservationID != res.ID {
		return writeRepoError(c, repository.ErrNotFound)
	}
	if !billing.Reversible(*original) {
		return writeRepoError(c, repository.ErrEntryNotReversible)
	}
	if reversed, err := h.Statements.HasReversalTx(ctx, tx, original.ID); err != nil {
		return writeRepoError(c, err)
	} else if reversed {
		return writeRepoError(c, repository.ErrEntryNotReversible)
	}

	reversal := billing.ReversalEntry(*original, operatorID, req.Reason)
	if err := h.Statements.CreateTx(ctx, tx, &reversal); err != nil {
		return writeRepoError(c, err)
	}
	if original.ProductID != nil {
		if err := h.Products.RestockTx(ctx, tx, *original.ProductID, original.Quantity); err != nil {
			return writeRepoError(c, err)
		}
	}

	var correction *model.StatementEntry
	if req.Correction != nil {
		product, err := h.Products.GetByIDForUpdateTx(ctx, tx, req.Correction.ProductID)
		if err != nil {
			return writeRepoError(c, err)
		}
		if !product.IsActive {
			return c.JSON(http.StatusConflict, echo.Map{"error": "correction product is inactive"})
		}
		if err := h.Products.DecrementStockTx(ctx, tx, product.ID, req.Correction.Quantity); err != nil {
			return writeRepoError(c, err)
		}
		pid := product.ID
		correction = &model.StatementEntry{
			ReservationID: res.ID,
			Kind:          model.KindProductCharge,
			Description:   product.Name,
			UnitCents:     product.PriceCents,
			Quantity:      req.Correction.Quantity,
			TotalCents:    product.PriceCents * int64(req.Correction.Quantity),
			ProductID:     &pid,
			OperatorID:    operatorID,
		}
		if err := h.Statements.CreateTx(ctx, tx, correction); err != nil {
			return writeRepoError(c, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true
	h.invalidateDetail(ctx, res.ID)

	resp := echo.Map{
		"reversal_id": reversal.ID,
		"total_cents": reversal.TotalCents,
	}
	if correction != nil {
		resp["correction_id"] = correction.ID
		resp["correction_total_cents"] = correction.TotalCents
	}
	return c.JSON(http.StatusCreated, resp)
}
