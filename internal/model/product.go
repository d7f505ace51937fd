package model

import "time"

// Product mirrors the `products` table, the minibar/consumption
// catalog.  Quantity is the stock on hand; consumption decrements it
// and a reversal restores it.  Catalog management itself lives outside
// this service; the billing core only reads prices and moves stock.
type Product struct {
	ID         uint64    // products.id
	Name       string    // products.name
	PriceCents int64     // products.price_cents
	Quantity   uint32    // products.quantity (stock on hand)
	IsActive   bool      // products.is_active
	CreatedAt  time.Time // products.created_at
	UpdatedAt  time.Time // products.updated_at
}
