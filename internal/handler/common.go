package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/gvan1961/frontdivan/internal/repository"
)

// getOperatorID extracts the authenticated operator's ID from the
// request context.  JWTAuth stores the raw claim value, so the type
// depends on how the JWT library decoded it.
func getOperatorID(c echo.Context) (uint64, error) {
	v := c.Get("operator_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid operator_id in context")
}

// parseIDParam parses a positive integer path parameter.
func parseIDParam(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// writeRepoError maps repository sentinel errors to HTTP responses.
// ErrTillClosed carries a machine-readable type field so the terminal
// can distinguish "open the till first" from an ordinary 403.
func writeRepoError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, repository.ErrValidation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrInvalidState):
		return c.JSON(http.StatusConflict, echo.Map{"error": "reservation state does not allow this operation"})
	case errors.Is(err, repository.ErrInsufficientStock):
		return c.JSON(http.StatusConflict, echo.Map{"error": "insufficient stock"})
	case errors.Is(err, repository.ErrEntryNotReversible):
		return c.JSON(http.StatusConflict, echo.Map{"error": "entry cannot be reversed"})
	case errors.Is(err, repository.ErrTillAlreadyOpen):
		return c.JSON(http.StatusConflict, echo.Map{"error": "till session already open"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "conflict"})
	case errors.Is(err, repository.ErrDiscountExceedsCharges):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "discount exceeds charges"})
	case errors.Is(err, repository.ErrPaymentExceedsBalance):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "payment exceeds outstanding balance"})
	case errors.Is(err, repository.ErrBalanceOutstanding):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "balance outstanding"})
	case errors.Is(err, repository.ErrCapacityExceeded):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "room capacity exceeded"})
	case errors.Is(err, repository.ErrInvalidDateRange):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "invalid date range"})
	case errors.Is(err, repository.ErrTillClosed):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "no open till session", "type": "TILL_CLOSED"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
}
