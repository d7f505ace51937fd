package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/gvan1961/frontdivan/internal/model"
	"github.com/gvan1961/frontdivan/internal/repository"
)

// RoomHandler manages the room inventory and the housekeeping cycle.
type RoomHandler struct {
	Rooms *repository.RoomRepo
}

func NewRoomHandler(rooms *repository.RoomRepo) *RoomHandler {
	if rooms == nil {
		panic("nil repository passed to NewRoomHandler")
	}
	return &RoomHandler{Rooms: rooms}
}

type roomResp struct {
	ID       uint64 `json:"id"`
	Number   string `json:"number"`
	Capacity uint32 `json:"capacity"`
	Status   string `json:"status"`
}

// List handles GET /v1/rooms.
func (h *RoomHandler) List(c echo.Context) error {
	list, err := h.Rooms.List(c.Request().Context())
	if err != nil {
		return writeRepoError(c, err)
	}
	out := make([]roomResp, 0, len(list))
	for _, r := range list {
		out = append(out, roomResp{ID: r.ID, Number: r.Number, Capacity: r.Capacity, Status: string(r.Status)})
	}
	return c.JSON(http.StatusOK, out)
}

type createRoomReq struct {
	Number   string `json:"number"`
	Capacity uint32 `json:"capacity"`
}

// Create handles POST /v1/rooms.  New rooms start AVAILABLE.
func (h *RoomHandler) Create(c echo.Context) error {
	var req createRoomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Number = strings.TrimSpace(req.Number)
	if req.Number == "" || req.Capacity == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "number and positive capacity are required"})
	}
	room := &model.Room{
		Number:   req.Number,
		Capacity: req.Capacity,
		Status:   model.RoomAvailable,
	}
	if err := h.Rooms.Create(c.Request().Context(), room); err != nil {
		return writeRepoError(c, err)
	}
	return c.JSON(http.StatusCreated, roomResp{ID: room.ID, Number: room.Number, Capacity: room.Capacity, Status: string(room.Status)})
}

// Release handles POST /v1/rooms/:id/release.  Housekeeping marks a
// CLEANING room AVAILABLE again; any other starting state is a
// conflict.
func (h *RoomHandler) Release(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	if err := h.Rooms.Release(c.Request().Context(), id); err != nil {
		return writeRepoError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "status": string(model.RoomAvailable)})
}
