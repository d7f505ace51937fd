// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/gvan1961/frontdivan/internal/handler"
	"github.com/gvan1961/frontdivan/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication
// on the provided Echo instance.  Currently it exposes only a health
// check, used by load balancers and monitoring.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and their
// middleware.  Unauthenticated operations live under /v1/auth, while
// protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// /refresh rotates the refresh token; /refresh-access only issues
	// a new access token.
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout accepts a refresh token in the body or a bearer header,
	// so it lives outside the JWT middleware.
	g.POST("/logout", a.Logout)
	e.POST("/v1/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("RECEPTION", "MANAGER"))
	auth.GET("/me", a.Me)
}

// RegisterFrontDesk registers the reservation folio, till, product
// and room endpoints.  Everything here requires an authenticated
// operator; the manager-only operations (invoiced finalization and
// discount removal) carry an extra role check.
func RegisterFrontDesk(
	e *echo.Echo,
	r *handler.ReservationHandler,
	t *handler.TillHandler,
	p *handler.ProductHandler,
	rm *handler.RoomHandler,
	jwtSecret string,
	cache echo.MiddlewareFunc,
) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("RECEPTION", "MANAGER"))

	// Reservation lifecycle and folio.  The detail view is the only
	// cached route; every mutating handler invalidates it after
	// commit.
	g.POST("/reservations", r.Create)
	g.GET("/reservations", r.ListByStatus)
	if cache != nil {
		g.GET("/reservations/:id", r.Get, cache)
	} else {
		g.GET("/reservations/:id", r.Get)
	}
	g.PATCH("/reservations/:id/activate", r.Activate)
	g.PATCH("/reservations/:id/finalize", r.FinalizePaid)
	g.PATCH("/reservations/:id/cancel", r.Cancel)
	g.PATCH("/reservations/:id/guest-count", r.AmendGuestCount)
	g.PATCH("/reservations/:id/checkout-date", r.AmendCheckoutDate)
	g.GET("/reservations/:id/amendments", r.ListAmendments)

	// Ledger postings.
	g.POST("/reservations/:id/consumptions", r.PostConsumption)
	g.POST("/reservations/:id/reversals", r.ReverseEntry)
	g.POST("/reservations/:id/discounts", r.ApplyDiscount)
	g.POST("/reservations/:id/payments", r.RecordPayment)

	// Room moves.
	g.POST("/reservations/:id/transfers", r.TransferRoom)
	g.GET("/reservations/:id/transfers", r.ListTransfers)
	g.POST("/transfers/apply-due", r.ApplyDueTransfers)

	// Manager-only operations.
	mgr := e.Group("/v1")
	mgr.Use(middleware.JWTAuth(jwtSecret))
	mgr.Use(middleware.RequireRole("MANAGER"))
	mgr.PATCH("/reservations/:id/finalize-invoiced", r.FinalizeInvoiced)
	mgr.DELETE("/reservations/:id/discounts/:discountID", r.RemoveDiscount)

	// Till sessions.
	g.POST("/till/open", t.Open)
	g.POST("/till/close", t.Close)
	g.GET("/till/current", t.Current)

	// Catalog and rooms.
	g.GET("/products", p.List)
	g.POST("/products", p.Create)
	g.PATCH("/products/:id", p.Update)
	g.POST("/products/:id/restock", p.Restock)
	g.GET("/rooms", rm.List)
	g.POST("/rooms", rm.Create)
	g.POST("/rooms/:id/release", rm.Release)
}
