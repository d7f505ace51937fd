package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gvan1961/frontdivan/internal/model"
	"github.com/gvan1961/frontdivan/internal/repository"
)

// ProductHandler manages the minibar and kiosk catalog.  Stock only
// moves through consumption postings, reversals and explicit restock;
// the update endpoint deliberately cannot touch quantity.
type ProductHandler struct {
	Products *repository.ProductRepo
}

func NewProductHandler(products *repository.ProductRepo) *ProductHandler {
	if products == nil {
		panic("nil repository passed to NewProductHandler")
	}
	return &ProductHandler{Products: products}
}

type productReq struct {
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
	Quantity   uint32 `json:"quantity"`
	IsActive   *bool  `json:"is_active"`
}

type productResp struct {
	ID         uint64 `json:"id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
	Quantity   uint32 `json:"quantity"`
	IsActive   bool   `json:"is_active"`
	UpdatedAt  string `json:"updated_at"`
}

func toProductResp(p model.Product) productResp {
	return productResp{
		ID:         p.ID,
		Name:       p.Name,
		PriceCents: p.PriceCents,
		Quantity:   p.Quantity,
		IsActive:   p.IsActive,
		UpdatedAt:  p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// List handles GET /v1/products.  ?all=true includes inactive rows
// for back-office maintenance; the default is the sellable catalog.
func (h *ProductHandler) List(c echo.Context) error {
	activeOnly := c.QueryParam("all") != "true"
	list, err := h.Products.List(c.Request().Context(), activeOnly)
	if err != nil {
		return writeRepoError(c, err)
	}
	out := make([]productResp, 0, len(list))
	for _, p := range list {
		out = append(out, toProductResp(p))
	}
	return c.JSON(http.StatusOK, out)
}

// Create handles POST /v1/products.
func (h *ProductHandler) Create(c echo.Context) error {
	var req productReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.PriceCents <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and positive price_cents are required"})
	}
	p := &model.Product{
		Name:       req.Name,
		PriceCents: req.PriceCents,
		Quantity:   req.Quantity,
		IsActive:   true,
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	if err := h.Products.Create(c.Request().Context(), p); err != nil {
		return writeRepoError(c, err)
	}
	return c.JSON(http.StatusCreated, toProductResp(*p))
}

// Update handles PATCH /v1/products/:id.  Name, price and active flag
// only; quantity moves through stock operations.
func (h *ProductHandler) Update(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}
	var req productReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.PriceCents <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and positive price_cents are required"})
	}
	ctx := c.Request().Context()
	p, err := h.Products.GetByID(ctx, id)
	if err != nil {
		return writeRepoError(c, err)
	}
	p.Name = req.Name
	p.PriceCents = req.PriceCents
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	if err := h.Products.Update(ctx, p); err != nil {
		return writeRepoError(c, err)
	}
	return c.JSON(http.StatusOK, toProductResp(*p))
}

type restockReq struct {
	Quantity uint32 `json:"quantity"`
}

// Restock handles POST /v1/products/:id/restock for received
// inventory.
func (h *ProductHandler) Restock(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}
	var req restockReq
	if err := c.Bind(&req); err != nil || req.Quantity == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "positive quantity is required"})
	}
	ctx := c.Request().Context()
	if err := h.Products.Restock(ctx, id, req.Quantity); err != nil {
		return writeRepoError(c, err)
	}
	p, err := h.Products.GetByID(ctx, id)
	if err != nil {
		return writeRepoError(c, err)
	}
	return c.JSON(http.StatusOK, toProductResp(*p))
}
