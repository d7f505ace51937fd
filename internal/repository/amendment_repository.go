package repository

import (
	"context"
	"database/sql"

	"github.com/gvan1961/frontdivan/internal/model"
)

// AmendmentRepo persists the audit trail of mid-stay changes to a
// reservation (guest count, checkout date).  Rows are write-once.
type AmendmentRepo struct {
	db *sql.DB
}

// NewAmendmentRepo returns a new AmendmentRepo bound to the given database.
func NewAmendmentRepo(db *sql.DB) *AmendmentRepo { return &AmendmentRepo{db: db} }

const amendmentColumns = `id, reservation_id, field, previous_value, new_value, reason, operator_id, created_at`

// CreateTx records an amendment within an existing transaction and
// populates the generated ID on the record.
func (r *AmendmentRepo) CreateTx(ctx context.Context, tx *sql.Tx, a *model.Amendment) error {
	const q = `INSERT INTO reservation_amendments
		(reservation_id, field, previous_value, new_value, reason, operator_id)
		VALUES (?, ?, ?, ?, ?, ?)`
	var reason interface{}
	if a.Reason != nil {
		reason = *a.Reason
	}
	result, err := tx.ExecContext(ctx, q, a.ReservationID, a.Field, a.PreviousValue, a.NewValue, reason, a.OperatorID)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	const sel = `SELECT created_at FROM reservation_amendments WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, a.ID).Scan(&a.CreatedAt)
}

// ListByReservation returns the amendment history for a reservation in
// chronological order.
func (r *AmendmentRepo) ListByReservation(ctx context.Context, reservationID uint64) ([]model.Amendment, error) {
	const q = `SELECT ` + amendmentColumns + ` FROM reservation_amendments
			   WHERE reservation_id = ? ORDER BY created_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, q, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Amendment, 0)
	for rows.Next() {
		var a model.Amendment
		var reason sql.NullString
		if err := rows.Scan(
			&a.ID, &a.ReservationID, &a.Field, &a.PreviousValue, &a.NewValue, &reason, &a.OperatorID, &a.CreatedAt,
		); err != nil {
			return nil, err
		}
		if reason.Valid {
			s := reason.String
			a.Reason = &s
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
