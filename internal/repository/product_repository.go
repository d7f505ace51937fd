package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gvan1961/frontdivan/internal/model"
)

// ProductRepo persists the minibar and kiosk catalog.  Stock moves are
// guarded UPDATEs so concurrent consumption postings can never drive a
// quantity below zero.
type ProductRepo struct {
	db *sql.DB
}

// NewProductRepo returns a new ProductRepo bound to the given database.
func NewProductRepo(db *sql.DB) *ProductRepo { return &ProductRepo{db: db} }

const productColumns = `id, name, price_cents, quantity, is_active, created_at, updated_at`

func scanProduct(row interface{ Scan(...interface{}) error }) (*model.Product, error) {
	var p model.Product
	err := row.Scan(&p.ID, &p.Name, &p.PriceCents, &p.Quantity, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// GetByID loads a product outside of any transaction.
func (r *ProductRepo) GetByID(ctx context.Context, id uint64) (*model.Product, error) {
	const q = `SELECT ` + productColumns + ` FROM products WHERE id = ?`
	return scanProduct(r.db.QueryRowContext(ctx, q, id))
}

// GetByIDForUpdateTx loads a product with a row lock.  The consumption
// path locks the product before pricing so the unit price and the
// stock decrement see the same row version.
func (r *ProductRepo) GetByIDForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Product, error) {
	const q = `SELECT ` + productColumns + ` FROM products WHERE id = ? FOR UPDATE`
	return scanProduct(tx.QueryRowContext(ctx, q, id))
}

// DecrementStockTx subtracts qty units from the product's stock.  The
// WHERE clause refuses the update when stock is short, and zero
// affected rows is reported as ErrInsufficientStock.
func (r *ProductRepo) DecrementStockTx(ctx context.Context, tx *sql.Tx, id uint64, qty uint32) error {
	const q = `UPDATE products SET quantity = quantity - ?, updated_at = NOW()
			   WHERE id = ? AND is_active = 1 AND quantity >= ?`
	result, err := tx.ExecContext(ctx, q, qty, id, qty)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrInsufficientStock
	}
	return nil
}

// RestockTx returns qty units to stock.  The reversal path calls this
// in the same transaction that appends the REVERSAL ledger row.
func (r *ProductRepo) RestockTx(ctx context.Context, tx *sql.Tx, id uint64, qty uint32) error {
	const q = `UPDATE products SET quantity = quantity + ?, updated_at = NOW() WHERE id = ?`
	result, err := tx.ExecContext(ctx, q, qty, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns catalog products.  When activeOnly is true only
// sellable products are returned, which is what the front desk sees.
func (r *ProductRepo) List(ctx context.Context, activeOnly bool) ([]model.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products`
	if activeOnly {
		q += ` WHERE is_active = 1`
	}
	q += ` ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Product, 0)
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.PriceCents, &p.Quantity, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts a new catalog product and populates the generated ID.
func (r *ProductRepo) Create(ctx context.Context, p *model.Product) error {
	const q = `INSERT INTO products (name, price_cents, quantity, is_active) VALUES (?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q, p.Name, p.PriceCents, p.Quantity, p.IsActive)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	const sel = `SELECT created_at, updated_at FROM products WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, p.ID).Scan(&p.CreatedAt, &p.UpdatedAt)
}

// Update changes a product's name, price and active flag.  Stock is
// deliberately excluded; it only moves through Decrement/Restock.
func (r *ProductRepo) Update(ctx context.Context, p *model.Product) error {
	const q = `UPDATE products SET name = ?, price_cents = ?, is_active = ?, updated_at = NOW() WHERE id = ?`
	result, err := r.db.ExecContext(ctx, q, p.Name, p.PriceCents, p.IsActive, p.ID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Restock adds received inventory outside of any billing transaction.
func (r *ProductRepo) Restock(ctx context.Context, id uint64, qty uint32) error {
	const q = `UPDATE products SET quantity = quantity + ?, updated_at = NOW() WHERE id = ?`
	result, err := r.db.ExecContext(ctx, q, qty, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
