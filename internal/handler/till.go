package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gvan1961/frontdivan/internal/billing"
	"github.com/gvan1961/frontdivan/internal/model"
	"github.com/gvan1961/frontdivan/internal/repository"
)

// TillHandler exposes till session management.  Opening a session is
// the precondition for taking payments; closing it produces the shift
// report with per-method totals and the expected cash drawer amount.
type TillHandler struct {
	Tills    *repository.TillRepo
	Payments *repository.PaymentRepo
}

func NewTillHandler(tills *repository.TillRepo, payments *repository.PaymentRepo) *TillHandler {
	if tills == nil || payments == nil {
		panic("nil repository passed to NewTillHandler")
	}
	return &TillHandler{Tills: tills, Payments: payments}
}

type openTillReq struct {
	OpeningFloatCents int64 `json:"opening_float_cents"`
}

// Open handles POST /v1/till/open.  One open session per operator.
func (h *TillHandler) Open(c echo.Context) error {
	operatorID, err := getOperatorID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req openTillReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.OpeningFloatCents < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "opening_float_cents cannot be negative"})
	}
	s := &model.TillSession{
		OperatorID:        operatorID,
		OpeningFloatCents: req.OpeningFloatCents,
	}
	if err := h.Tills.Open(c.Request().Context(), s); err != nil {
		return writeRepoError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"session_id":          s.ID,
		"opening_float_cents": s.OpeningFloatCents,
		"opened_at":           s.OpenedAt.UTC().Format(time.RFC3339),
	})
}

type closeTillReq struct {
	Note string `json:"note"`
}

type tillReport struct {
	SessionID         uint64           `json:"session_id"`
	OperatorID        uint64           `json:"operator_id"`
	OpeningFloatCents int64            `json:"opening_float_cents"`
	OpenedAt          string           `json:"opened_at"`
	ClosedAt          string           `json:"closed_at"`
	PaymentCount      int              `json:"payment_count"`
	ReceivedCents     int64            `json:"received_cents"`
	ByMethod          map[string]int64 `json:"by_method"`
	ExpectedCashCents int64            `json:"expected_cash_cents"`
	Note              *string          `json:"note,omitempty"`
}

// Close handles POST /v1/till/close.  The response is the shift
// report: every payment taken during the session broken down by
// method, plus the cash amount the drawer should hold (opening float
// plus cash payments).
func (h *TillHandler) Close(c echo.Context) error {
	operatorID, err := getOperatorID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req closeTillReq
	_ = c.Bind(&req) // note is optional; invalid JSON just leaves it empty

	ctx := c.Request().Context()
	var note *string
	if n := strings.TrimSpace(req.Note); n != "" {
		note = &n
	}
	s, err := h.Tills.Close(ctx, operatorID, note)
	if err != nil {
		return writeRepoError(c, err)
	}

	payments, err := h.Payments.ListByTillSession(ctx, s.ID)
	if err != nil {
		return writeRepoError(c, err)
	}
	byMethod := make(map[string]int64)
	var received int64
	for m, v := range billing.ReceivedByMethod(payments) {
		byMethod[string(m)] = v
		received += v
	}
	report := tillReport{
		SessionID:         s.ID,
		OperatorID:        s.OperatorID,
		OpeningFloatCents: s.OpeningFloatCents,
		OpenedAt:          s.OpenedAt.UTC().Format(time.RFC3339),
		PaymentCount:      len(payments),
		ReceivedCents:     received,
		ByMethod:          byMethod,
		ExpectedCashCents: s.OpeningFloatCents + byMethod[string(model.MethodCash)],
		Note:              s.ClosingNote,
	}
	if s.ClosedAt != nil {
		report.ClosedAt = s.ClosedAt.UTC().Format(time.RFC3339)
	}
	return c.JSON(http.StatusOK, report)
}

// Current handles GET /v1/till/current.  It reports the operator's
// open session, or 403 with the TILL_CLOSED type when none exists, so
// the terminal can decide whether to prompt for an opening float.
func (h *TillHandler) Current(c echo.Context) error {
	operatorID, err := getOperatorID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	s, err := h.Tills.CurrentOpen(c.Request().Context(), operatorID)
	if err != nil {
		return writeRepoError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"session_id":          s.ID,
		"opening_float_cents": s.OpeningFloatCents,
		"opened_at":           s.OpenedAt.UTC().Format(time.RFC3339),
	})
}
