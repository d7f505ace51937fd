package repository

import (
	"context"
	"database/sql"

	"github.com/gvan1961/frontdivan/internal/model"
)

// PaymentRepo persists payments.  Payments are immutable once written:
// there is no update or delete path, a mistaken payment is handled
// outside the system.
type PaymentRepo struct {
	db *sql.DB
}

// NewPaymentRepo returns a new PaymentRepo bound to the given database.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

const paymentColumns = `id, reservation_id, till_session_id, value_cents, method, note, operator_id, created_at`

// CreateTx inserts a payment within an existing transaction and
// populates the generated ID on the record.
func (r *PaymentRepo) CreateTx(ctx context.Context, tx *sql.Tx, p *model.Payment) error {
	const q = `INSERT INTO payments (reservation_id, till_session_id, value_cents, method, note, operator_id)
			   VALUES (?, ?, ?, ?, ?, ?)`
	var note interface{}
	if p.Note != nil {
		note = *p.Note
	}
	result, err := tx.ExecContext(ctx, q, p.ReservationID, p.TillSessionID, p.ValueCents, p.Method, note, p.OperatorID)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	const sel = `SELECT created_at FROM payments WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, p.ID).Scan(&p.CreatedAt)
}

// ListByReservation returns all payments for a reservation ordered by
// creation time ascending.
func (r *PaymentRepo) ListByReservation(ctx context.Context, reservationID uint64) ([]model.Payment, error) {
	const q = `SELECT ` + paymentColumns + ` FROM payments WHERE reservation_id = ? ORDER BY created_at ASC, id ASC`
	return r.list(ctx, r.db, q, reservationID)
}

// ListByReservationTx is the transactional variant of ListByReservation.
func (r *PaymentRepo) ListByReservationTx(ctx context.Context, tx *sql.Tx, reservationID uint64) ([]model.Payment, error) {
	const q = `SELECT ` + paymentColumns + ` FROM payments WHERE reservation_id = ? ORDER BY created_at ASC, id ASC`
	return r.list(ctx, tx, q, reservationID)
}

// ListByTillSession returns all payments taken during a till session,
// used for the closing report.
func (r *PaymentRepo) ListByTillSession(ctx context.Context, sessionID uint64) ([]model.Payment, error) {
	const q = `SELECT ` + paymentColumns + ` FROM payments WHERE till_session_id = ? ORDER BY created_at ASC, id ASC`
	return r.list(ctx, r.db, q, sessionID)
}

func (r *PaymentRepo) list(ctx context.Context, q queryer, query string, arg uint64) ([]model.Payment, error) {
	rows, err := q.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Payment, 0)
	for rows.Next() {
		var p model.Payment
		var note sql.NullString
		if err := rows.Scan(
			&p.ID, &p.ReservationID, &p.TillSessionID, &p.ValueCents, &p.Method, &note, &p.OperatorID, &p.CreatedAt,
		); err != nil {
			return nil, err
		}
		if note.Valid {
			n := note.String
			p.Note = &n
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
