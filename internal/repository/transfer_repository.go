package repository

import (
	"context"
	"database/sql"

	"github.com/gvan1961/frontdivan/internal/model"
)

// TransferRepo persists room transfers.  Immediate transfers are
// written already applied; scheduled ones are recorded with a future
// effective time and picked up by ListDueTx when their moment comes.
type TransferRepo struct {
	db *sql.DB
}

// NewTransferRepo returns a new TransferRepo bound to the given database.
func NewTransferRepo(db *sql.DB) *TransferRepo { return &TransferRepo{db: db} }

const transferColumns = `id, reservation_id, from_room_id, to_room_id, effective_at, applied, reason, operator_id, created_at`

// CreateTx records a transfer within an existing transaction and
// populates the generated ID on the record.
func (r *TransferRepo) CreateTx(ctx context.Context, tx *sql.Tx, t *model.TransferRecord) error {
	const q = `INSERT INTO room_transfers
		(reservation_id, from_room_id, to_room_id, effective_at, applied, reason, operator_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q,
		t.ReservationID, t.FromRoomID, t.ToRoomID, t.EffectiveAt, t.Applied, t.Reason, t.OperatorID,
	)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	const sel = `SELECT created_at FROM room_transfers WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, t.ID).Scan(&t.CreatedAt)
}

// ListDueTx returns scheduled transfers whose effective time has
// passed and that have not been applied yet, locking the rows so two
// sweeps cannot apply the same transfer.
func (r *TransferRepo) ListDueTx(ctx context.Context, tx *sql.Tx) ([]model.TransferRecord, error) {
	const q = `SELECT ` + transferColumns + ` FROM room_transfers
			   WHERE applied = 0 AND effective_at <= NOW()
			   ORDER BY effective_at ASC FOR UPDATE`
	rows, err := tx.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.TransferRecord, 0)
	for rows.Next() {
		var t model.TransferRecord
		if err := rows.Scan(
			&t.ID, &t.ReservationID, &t.FromRoomID, &t.ToRoomID, &t.EffectiveAt,
			&t.Applied, &t.Reason, &t.OperatorID, &t.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkAppliedTx flips a transfer to applied once the room move has
// been written.
func (r *TransferRepo) MarkAppliedTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	const q = `UPDATE room_transfers SET applied = 1 WHERE id = ? AND applied = 0`
	result, err := tx.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

// ListByReservation returns all transfers recorded against a
// reservation, applied or not, ordered by effective time ascending.
func (r *TransferRepo) ListByReservation(ctx context.Context, reservationID uint64) ([]model.TransferRecord, error) {
	const q = `SELECT ` + transferColumns + ` FROM room_transfers
			   WHERE reservation_id = ? ORDER BY effective_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, q, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.TransferRecord, 0)
	for rows.Next() {
		var t model.TransferRecord
		if err := rows.Scan(
			&t.ID, &t.ReservationID, &t.FromRoomID, &t.ToRoomID, &t.EffectiveAt,
			&t.Applied, &t.Reason, &t.OperatorID, &t.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
