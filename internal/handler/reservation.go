package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/gvan1961/frontdivan/internal/billing"
	"github.com/gvan1961/frontdivan/internal/config"
	"github.com/gvan1961/frontdivan/internal/lock"
	"github.com/gvan1961/frontdivan/internal/middleware"
	"github.com/gvan1961/frontdivan/internal/model"
	"github.com/gvan1961/frontdivan/internal/repository"
)

// ReservationHandler groups the repositories needed to run a
// reservation's folio: the ledger, discounts, payments, amendments,
// transfers, and the room, product and till records those operations
// touch.  All methods assume JWT authentication and role checks have
// been performed by middleware.  Every mutating method serializes on
// the reservation through the keyed lock before opening its database
// transaction.
type ReservationHandler struct {
	Reservations *repository.ReservationRepo
	Statements   *repository.StatementRepo
	Discounts    *repository.DiscountRepo
	Payments     *repository.PaymentRepo
	Amendments   *repository.AmendmentRepo
	Transfers    *repository.TransferRepo
	Rooms        *repository.RoomRepo
	Products     *repository.ProductRepo
	Tills        *repository.TillRepo
	Receivables  *repository.ReceivableRepo
	Locks        *lock.Keyed

	// Optional cache invalidation. Nil Redis disables it.
	Rdb      *redis.Client
	CacheCfg config.CacheConfig
}

// NewReservationHandler constructs a ReservationHandler.  The core
// repositories must be non-nil; Rdb may be nil.
func NewReservationHandler(
	reservations *repository.ReservationRepo,
	statements *repository.StatementRepo,
	discounts *repository.DiscountRepo,
	payments *repository.PaymentRepo,
	amendments *repository.AmendmentRepo,
	transfers *repository.TransferRepo,
	rooms *repository.RoomRepo,
	products *repository.ProductRepo,
	tills *repository.TillRepo,
	receivables *repository.ReceivableRepo,
	locks *lock.Keyed,
	rdb *redis.Client,
	cacheCfg config.CacheConfig,
) *ReservationHandler {
	if reservations == nil || statements == nil || discounts == nil || payments == nil || tills == nil {
		panic("nil repository passed to NewReservationHandler")
	}
	return &ReservationHandler{
		Reservations: reservations,
		Statements:   statements,
		Discounts:    discounts,
		Payments:     payments,
		Amendments:   amendments,
		Transfers:    transfers,
		Rooms:        rooms,
		Products:     products,
		Tills:        tills,
		Receivables:  receivables,
		Locks:        locks,
		Rdb:          rdb,
		CacheCfg:     cacheCfg,
	}
}

// invalidateDetail drops the cached GET response for a reservation so
// the next read reflects the write that just committed.
func (h *ReservationHandler) invalidateDetail(ctx context.Context, reservationID uint64) {
	middleware.InvalidatePath(ctx, h.Rdb, h.CacheCfg, fmt.Sprintf("/v1/reservations/%d", reservationID))
}

// ----- DTOs -----

type createReservationReq struct {
	GuestID          uint64 `json:"guest_id"`
	RoomID           uint64 `json:"room_id"`
	GuestCount       uint32 `json:"guest_count"`
	CheckinAt        string `json:"checkin_at"`  // RFC3339
	CheckoutAt       string `json:"checkout_at"` // RFC3339
	NightlyRateCents int64  `json:"nightly_rate_cents"`
}

type entryPart struct {
	ID          uint64  `json:"id"`
	Kind        string  `json:"kind"`
	Description string  `json:"description"`
	UnitCents   int64   `json:"unit_cents"`
	Quantity    uint32  `json:"quantity"`
	TotalCents  int64   `json:"total_cents"`
	ProductID   *uint64 `json:"product_id,omitempty"`
	ReversalOf  *uint64 `json:"reversal_of,omitempty"`
	OperatorID  uint64  `json:"operator_id"`
	CreatedAt   string  `json:"created_at"`
}

type discountPart struct {
	ID         uint64  `json:"id"`
	ValueCents int64   `json:"value_cents"`
	Reason     string  `json:"reason"`
	OperatorID uint64  `json:"operator_id"`
	Active     bool    `json:"active"`
	RemovedAt  *string `json:"removed_at,omitempty"`
	RemovedBy  *uint64 `json:"removed_by,omitempty"`
	CreatedAt  string  `json:"created_at"`
}

type paymentPart struct {
	ID            uint64  `json:"id"`
	ValueCents    int64   `json:"value_cents"`
	Method        string  `json:"method"`
	Note          *string `json:"note,omitempty"`
	TillSessionID uint64  `json:"till_session_id"`
	OperatorID    uint64  `json:"operator_id"`
	CreatedAt     string  `json:"created_at"`
}

type reservationResp struct {
	ID               uint64           `json:"id"`
	GuestID          uint64           `json:"guest_id"`
	RoomID           uint64           `json:"room_id"`
	GuestCount       uint32           `json:"guest_count"`
	CheckinAt        string           `json:"checkin_at"`
	CheckoutAt       string           `json:"checkout_at"`
	NightlyRateCents int64            `json:"nightly_rate_cents"`
	Nights           uint32           `json:"nights"`
	Status           string           `json:"status"`
	Summary          billing.Summary  `json:"summary"`
	ReceivedByMethod map[string]int64 `json:"received_by_method"`
	Entries          []entryPart      `json:"entries"`
	Discounts        []discountPart   `json:"discounts"`
	Payments         []paymentPart    `json:"payments"`
}

func buildReservationResp(res *model.Reservation, entries []model.StatementEntry, discounts []model.Discount, payments []model.Payment) reservationResp {
	summary := billing.Compute(*res, entries, discounts, payments)
	byMethod := make(map[string]int64)
	for m, v := range billing.ReceivedByMethod(payments) {
		byMethod[string(m)] = v
	}
	out := reservationResp{
		ID:               res.ID,
		GuestID:          res.GuestID,
		RoomID:           res.RoomID,
		GuestCount:       res.GuestCount,
		CheckinAt:        res.CheckinAt.UTC().Format(time.RFC3339),
		CheckoutAt:       res.CheckoutAt.UTC().Format(time.RFC3339),
		NightlyRateCents: res.NightlyRateCents,
		Nights:           res.Nights,
		Status:           string(res.Status),
		Summary:          summary,
		ReceivedByMethod: byMethod,
		Entries:          make([]entryPart, 0, len(entries)),
		Discounts:        make([]discountPart, 0, len(discounts)),
		Payments:         make([]paymentPart, 0, len(payments)),
	}
	for _, e := range entries {
		out.Entries = append(out.Entries, entryPart{
			ID:          e.ID,
			Kind:        string(e.Kind),
			Description: e.Description,
			UnitCents:   e.UnitCents,
			Quantity:    e.Quantity,
			TotalCents:  e.TotalCents,
			ProductID:   e.ProductID,
			ReversalOf:  e.ReversalOf,
			OperatorID:  e.OperatorID,
			CreatedAt:   e.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	for _, d := range discounts {
		dp := discountPart{
			ID:         d.ID,
			ValueCents: d.ValueCents,
			Reason:     d.Reason,
			OperatorID: d.OperatorID,
			Active:     d.Active(),
			RemovedBy:  d.RemovedBy,
			CreatedAt:  d.CreatedAt.UTC().Format(time.RFC3339),
		}
		if d.RemovedAt != nil {
			s := d.RemovedAt.UTC().Format(time.RFC3339)
			dp.RemovedAt = &s
		}
		out.Discounts = append(out.Discounts, dp)
	}
	for _, p := range payments {
		out.Payments = append(out.Payments, paymentPart{
			ID:            p.ID,
			ValueCents:    p.ValueCents,
			Method:        string(p.Method),
			Note:          p.Note,
			TillSessionID: p.TillSessionID,
			OperatorID:    p.OperatorID,
			CreatedAt:     p.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return out
}

// Create handles POST /v1/reservations.  New reservations start in
// PRE_RESERVATION with an empty ledger; nightly charge rows are only
// appended at check-in.
func (h *ReservationHandler) Create(c echo.Context) error {
	var req createReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.GuestID == 0 || req.RoomID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "guest_id and room_id are required"})
	}
	if req.GuestCount == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "guest_count must be positive"})
	}
	if req.NightlyRateCents <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nightly_rate_cents must be positive"})
	}
	checkin, err := time.Parse(time.RFC3339, req.CheckinAt)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid checkin_at"})
	}
	checkout, err := time.Parse(time.RFC3339, req.CheckoutAt)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid checkout_at"})
	}
	nights := nightsBetween(checkin, checkout)
	if nights == 0 {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "stay must cover at least one night"})
	}

	ctx := c.Request().Context()
	room, err := h.Rooms.GetByID(ctx, req.RoomID)
	if err != nil {
		return writeRepoError(c, err)
	}
	if req.GuestCount > room.Capacity {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "room capacity exceeded"})
	}

	res := &model.Reservation{
		GuestID:          req.GuestID,
		RoomID:           req.RoomID,
		GuestCount:       req.GuestCount,
		CheckinAt:        checkin.UTC(),
		CheckoutAt:       checkout.UTC(),
		NightlyRateCents: req.NightlyRateCents,
		Nights:           nights,
		Status:           model.StatusPreReservation,
	}
	if err := h.Reservations.Create(ctx, res); err != nil {
		return writeRepoError(c, err)
	}
	return c.JSON(http.StatusCreated, buildReservationResp(res, nil, nil, nil))
}

// Get handles GET /v1/reservations/:id.  The response carries the
// full folio: reservation, ledger entries in insertion order,
// discounts (tombstoned ones included), payments, and the derived
// balance summary with a per-method breakdown.
func (h *ReservationHandler) Get(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	ctx := c.Request().Context()
	res, err := h.Reservations.GetByID(ctx, id)
	if err != nil {
		return writeRepoError(c, err)
	}
	entries, err := h.Statements.ListByReservation(ctx, id)
	if err != nil {
		return writeRepoError(c, err)
	}
	discounts, err := h.Discounts.ListByReservation(ctx, id)
	if err != nil {
		return writeRepoError(c, err)
	}
	payments, err := h.Payments.ListByReservation(ctx, id)
	if err != nil {
		return writeRepoError(c, err)
	}
	return c.JSON(http.StatusOK, buildReservationResp(res, entries, discounts, payments))
}

type reservationListItem struct {
	ID               uint64 `json:"id"`
	GuestID          uint64 `json:"guest_id"`
	RoomID           uint64 `json:"room_id"`
	GuestCount       uint32 `json:"guest_count"`
	CheckinAt        string `json:"checkin_at"`
	CheckoutAt       string `json:"checkout_at"`
	NightlyRateCents int64  `json:"nightly_rate_cents"`
	Nights           uint32 `json:"nights"`
	Status           string `json:"status"`
}

// ListByStatus handles GET /v1/reservations?status=ACTIVE for the
// front-desk board.  The listing is intentionally slim; balance
// figures come from the detail endpoint, which reads the full folio.
func (h *ReservationHandler) ListByStatus(c echo.Context) error {
	status := model.Status(c.QueryParam("status"))
	if !status.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or missing status"})
	}
	list, err := h.Reservations.ListByStatus(c.Request().Context(), status)
	if err != nil {
		return writeRepoError(c, err)
	}
	out := make([]reservationListItem, 0, len(list))
	for _, r := range list {
		out = append(out, reservationListItem{
			ID:               r.ID,
			GuestID:          r.GuestID,
			RoomID:           r.RoomID,
			GuestCount:       r.GuestCount,
			CheckinAt:        r.CheckinAt.UTC().Format(time.RFC3339),
			CheckoutAt:       r.CheckoutAt.UTC().Format(time.RFC3339),
			NightlyRateCents: r.NightlyRateCents,
			Nights:           r.Nights,
			Status:           string(r.Status),
		})
	}
	return c.JSON(http.StatusOK, out)
}

// nightsBetween counts billable nights between two timestamps by
// calendar date, so a 23:00 check-in still pays for that night.
func nightsBetween(checkin, checkout time.Time) uint32 {
	in := checkin.UTC().Truncate(24 * time.Hour)
	out := checkout.UTC().Truncate(24 * time.Hour)
	if !out.After(in) {
		return 0
	}
	return uint32(out.Sub(in) / (24 * time.Hour))
}
