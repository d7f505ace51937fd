package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gvan1961/frontdivan/internal/model"
	"github.com/gvan1961/frontdivan/internal/queue"
	"github.com/gvan1961/frontdivan/internal/repository"
	queue_publisher "github.com/gvan1961/frontdivan/internal/service"
)

type transferReq struct {
	ToRoomID uint64 `json:"to_room_id"`
	Reason   string `json:"reason"`
	// Empty means move now; a future RFC3339 timestamp schedules the
	// move for later.
	EffectiveAt string `json:"effective_at,omitempty"`
}

// TransferRoom handles POST /v1/reservations/:id/transfers.  An
// immediate transfer moves the reservation, frees the old room into
// CLEANING and occupies the new one in a single transaction.  A
// scheduled transfer records the intent, leaves the rooms untouched
// and publishes a room.transfer.scheduled event; ApplyDueTransfers
// performs the move when the time comes.
func (h *ReservationHandler) TransferRoom(c echo.Context) error {
	operatorID, err := getOperatorID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var req transferReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Reason = strings.TrimSpace(req.Reason)
	if req.ToRoomID == 0 || req.Reason == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "to_room_id and reason are required"})
	}
	scheduled := false
	effectiveAt := time.Now().UTC()
	if strings.TrimSpace(req.EffectiveAt) != "" {
		t, err := time.Parse(time.RFC3339, req.EffectiveAt)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid effective_at"})
		}
		if !t.UTC().After(time.Now().UTC()) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "effective_at must be in the future; omit it to move now"})
		}
		scheduled = true
		effectiveAt = t.UTC()
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
	if req.ToRoomID == res.RoomID {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reservation already occupies that room"})
	}

	target, err := h.Rooms.GetByIDForUpdateTx(ctx, tx, req.ToRoomID)
	if err != nil {
		return writeRepoError(c, err)
	}
	if res.GuestCount > target.Capacity {
		return writeRepoError(c, repository.ErrCapacityExceeded)
	}

	record := &model.TransferRecord{
		ReservationID: res.ID,
		FromRoomID:    res.RoomID,
		ToRoomID:      target.ID,
		EffectiveAt:   effectiveAt,
		Applied:       !scheduled,
		Reason:        req.Reason,
		OperatorID:    operatorID,
	}

	if !scheduled {
		// Immediate move: the target must be ready now.
		if target.Status != model.RoomAvailable {
			return c.JSON(http.StatusConflict, echo.Map{"error": "target room is not available"})
		}
		if err := h.Rooms.UpdateStatusTx(ctx, tx, target.ID, model.RoomOccupied); err != nil {
			return writeRepoError(c, err)
		}
		if err := h.Rooms.UpdateStatusTx(ctx, tx, res.RoomID, model.RoomCleaning); err != nil {
			return writeRepoError(c, err)
		}
		if err := h.Reservations.UpdateRoomTx(ctx, tx, res.ID, target.ID); err != nil {
			return writeRepoError(c, err)
		}
	}

	if err := h.Transfers.CreateTx(ctx, tx, record); err != nil {
		return writeRepoError(c, err)
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true
	h.invalidateDetail(ctx, res.ID)

	if scheduled {
		_ = queue_publisher.PublishRoomTransferScheduled(ctx, queue.RoomTransferScheduledEvent{
			TransferID:    record.ID,
			ReservationID: res.ID,
			FromRoomID:    record.FromRoomID,
			ToRoomID:      record.ToRoomID,
			EffectiveAt:   effectiveAt.Format(time.RFC3339),
			Reason:        record.Reason,
		})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"transfer_id": record.ID,
		"applied":     record.Applied,
		"effective_at": effectiveAt.Format(time.RFC3339),
	})
}

// ApplyDueTransfers handles POST /v1/transfers/apply-due.  It walks
// scheduled transfers whose effective time has passed and performs
// each move: target room OCCUPIED, old room CLEANING, reservation
// repointed, record marked applied.  A transfer whose reservation is
// no longer active, or whose target room is busy, is skipped and
// reported so the desk can resolve it by hand.
func (h *ReservationHandler) ApplyDueTransfers(c echo.Context) error {
	if _, err := getOperatorID(c); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
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

	due, err := h.Transfers.ListDueTx(ctx, tx)
	if err != nil {
		return writeRepoError(c, err)
	}

	applied := make([]uint64, 0, len(due))
	skipped := make([]uint64, 0)
	for _, t := range due {
		res, err := h.Reservations.GetByIDForUpdateTx(ctx, tx, t.ReservationID)
		if err != nil || !res.Status.Mutable() || res.RoomID != t.FromRoomID {
			skipped = append(skipped, t.ID)
			continue
		}
		target, err := h.Rooms.GetByIDForUpdateTx(ctx, tx, t.ToRoomID)
		if err != nil || target.Status != model.RoomAvailable {
			skipped = append(skipped, t.ID)
			continue
		}
		if err := h.Rooms.UpdateStatusTx(ctx, tx, target.ID, model.RoomOccupied); err != nil {
			return writeRepoError(c, err)
		}
		if err := h.Rooms.UpdateStatusTx(ctx, tx, res.RoomID, model.RoomCleaning); err != nil {
			return writeRepoError(c, err)
		}
		if err := h.Reservations.UpdateRoomTx(ctx, tx, res.ID, target.ID); err != nil {
			return writeRepoError(c, err)
		}
		if err := h.Transfers.MarkAppliedTx(ctx, tx, t.ID); err != nil {
			return writeRepoError(c, err)
		}
		applied = append(applied, t.ID)
	}

	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true
	for _, t := range due {
		h.invalidateDetail(ctx, t.ReservationID)
	}

	return c.JSON(http.StatusOK, echo.Map{"applied": applied, "skipped": skipped})
}

// ListTransfers handles GET /v1/reservations/:id/transfers.
func (h *ReservationHandler) ListTransfers(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	list, err := h.Transfers.ListByReservation(c.Request().Context(), id)
	if err != nil {
		return writeRepoError(c, err)
	}
	type transferPart struct {
		ID          uint64 `json:"id"`
		FromRoomID  uint64 `json:"from_room_id"`
		ToRoomID    uint64 `json:"to_room_id"`
		EffectiveAt string `json:"effective_at"`
		Applied     bool   `json:"applied"`
		Reason      string `json:"reason"`
		OperatorID  uint64 `json:"operator_id"`
	}
	out := make([]transferPart, 0, len(list))
	for _, t := range list {
		out = append(out, transferPart{
			ID:          t.ID,
			FromRoomID:  t.FromRoomID,
			ToRoomID:    t.ToRoomID,
			EffectiveAt: t.EffectiveAt.UTC().Format(time.RFC3339),
			Applied:     t.Applied,
			Reason:      t.Reason,
			OperatorID:  t.OperatorID,
		})
	}
	return c.JSON(http.StatusOK, out)
}
