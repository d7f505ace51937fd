package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gvan1961/frontdivan/internal/model"
)

// DiscountRepo persists courtesy discounts.  Removal is a tombstone
// update rather than a delete so the audit trail of who granted and
// who withdrew a discount survives.
type DiscountRepo struct {
	db *sql.DB
}

// NewDiscountRepo returns a new DiscountRepo bound to the given database.
func NewDiscountRepo(db *sql.DB) *DiscountRepo { return &DiscountRepo{db: db} }

const discountColumns = `id, reservation_id, value_cents, reason, operator_id,
	   removed_at, removed_by, created_at`

// CreateTx inserts a discount within an existing transaction and
// populates the generated ID on the record.
func (r *DiscountRepo) CreateTx(ctx context.Context, tx *sql.Tx, d *model.Discount) error {
	const q = `INSERT INTO discounts (reservation_id, value_cents, reason, operator_id) VALUES (?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q, d.ReservationID, d.ValueCents, d.Reason, d.OperatorID)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	d.ID = uint64(id)
	const sel = `SELECT created_at FROM discounts WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, d.ID).Scan(&d.CreatedAt)
}

// GetByIDTx loads a discount with a row lock inside a transaction.
func (r *DiscountRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Discount, error) {
	const q = `SELECT ` + discountColumns + ` FROM discounts WHERE id = ? FOR UPDATE`
	var d model.Discount
	var reason sql.NullString
	var removedAt sql.NullTime
	var removedBy sql.NullInt64
	err := tx.QueryRowContext(ctx, q, id).Scan(
		&d.ID, &d.ReservationID, &d.ValueCents, &reason, &d.OperatorID,
		&removedAt, &removedBy, &d.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	d.Reason = reason.String
	if removedAt.Valid {
		t := removedAt.Time
		d.RemovedAt = &t
	}
	if removedBy.Valid {
		by := uint64(removedBy.Int64)
		d.RemovedBy = &by
	}
	return &d, nil
}

// RemoveTx tombstones a discount.  The WHERE clause refuses rows that
// are already removed, so removing twice surfaces as ErrNotFound.
func (r *DiscountRepo) RemoveTx(ctx context.Context, tx *sql.Tx, id, removedBy uint64) error {
	const q = `UPDATE discounts SET removed_at = NOW(), removed_by = ? WHERE id = ? AND removed_at IS NULL`
	result, err := tx.ExecContext(ctx, q, removedBy, id)
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

// ListByReservation returns all discounts for a reservation, removed
// ones included, ordered by creation time ascending.
func (r *DiscountRepo) ListByReservation(ctx context.Context, reservationID uint64) ([]model.Discount, error) {
	const q = `SELECT ` + discountColumns + ` FROM discounts WHERE reservation_id = ? ORDER BY created_at ASC, id ASC`
	return r.list(ctx, r.db, q, reservationID)
}

// ListByReservationTx is the transactional variant of ListByReservation.
func (r *DiscountRepo) ListByReservationTx(ctx context.Context, tx *sql.Tx, reservationID uint64) ([]model.Discount, error) {
	const q = `SELECT ` + discountColumns + ` FROM discounts WHERE reservation_id = ? ORDER BY created_at ASC, id ASC`
	return r.list(ctx, tx, q, reservationID)
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

func (r *DiscountRepo) list(ctx context.Context, q queryer, query string, reservationID uint64) ([]model.Discount, error) {
	rows, err := q.QueryContext(ctx, query, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Discount, 0)
	for rows.Next() {
		var d model.Discount
		var reason sql.NullString
		var removedAt sql.NullTime
		var removedBy sql.NullInt64
		if err := rows.Scan(
			&d.ID, &d.ReservationID, &d.ValueCents, &reason, &d.OperatorID,
			&removedAt, &removedBy, &d.CreatedAt,
		); err != nil {
			return nil, err
		}
		d.Reason = reason.String
		if removedAt.Valid {
			t := removedAt.Time
			d.RemovedAt = &t
		}
		if removedBy.Valid {
			by := uint64(removedBy.Int64)
			d.RemovedBy = &by
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
