package repository

import (
	"context"
	"database/sql"

	"github.com/gvan1961/frontdivan/internal/model"
)

// ReceivableRepo persists balances carried over by invoiced
// finalizations.
type ReceivableRepo struct {
	db *sql.DB
}

// NewReceivableRepo returns a new ReceivableRepo bound to the given database.
func NewReceivableRepo(db *sql.DB) *ReceivableRepo { return &ReceivableRepo{db: db} }

const receivableColumns = `id, reservation_id, guest_id, amount_cents, status, due_at, settled_at, operator_id, created_at`

// CreateTx records a receivable in the same transaction that finalizes
// the reservation, so the balance freeze and the status change land
// together or not at all.
func (r *ReceivableRepo) CreateTx(ctx context.Context, tx *sql.Tx, rec *model.Receivable) error {
	const q = `INSERT INTO receivables (reservation_id, guest_id, amount_cents, status, due_at, operator_id)
			   VALUES (?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q,
		rec.ReservationID, rec.GuestID, rec.AmountCents, model.ReceivableOpen, rec.DueAt, rec.OperatorID,
	)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	rec.ID = uint64(id)
	rec.Status = model.ReceivableOpen
	const sel = `SELECT created_at FROM receivables WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, rec.ID).Scan(&rec.CreatedAt)
}

// ListOpen returns receivables that have not been settled, ordered by
// due date ascending so the oldest debt shows first.
func (r *ReceivableRepo) ListOpen(ctx context.Context) ([]model.Receivable, error) {
	const q = `SELECT ` + receivableColumns + ` FROM receivables WHERE status = ? ORDER BY due_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, q, model.ReceivableOpen)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Receivable, 0)
	for rows.Next() {
		var rec model.Receivable
		var settledAt sql.NullTime
		if err := rows.Scan(
			&rec.ID, &rec.ReservationID, &rec.GuestID, &rec.AmountCents, &rec.Status,
			&rec.DueAt, &settledAt, &rec.OperatorID, &rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		if settledAt.Valid {
			t := settledAt.Time
			rec.SettledAt = &t
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Settle marks a receivable collected.  Settling twice is refused.
func (r *ReceivableRepo) Settle(ctx context.Context, id uint64) error {
	const q = `UPDATE receivables SET status = ?, settled_at = NOW() WHERE id = ? AND status = ?`
	result, err := r.db.ExecContext(ctx, q, model.ReceivableSettled, id, model.ReceivableOpen)
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
