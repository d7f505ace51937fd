package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gvan1961/frontdivan/internal/model"
)

// TillRepo persists till sessions.  A payment can only be taken while
// its operator has an OPEN session; the open-session lookup is the
// guard the payment handler consults inside its transaction.
type TillRepo struct {
	db *sql.DB
}

// NewTillRepo returns a new TillRepo bound to the given database.
func NewTillRepo(db *sql.DB) *TillRepo { return &TillRepo{db: db} }

const tillColumns = `id, operator_id, opening_float_cents, status, opened_at, closed_at, closing_note`

func scanTill(row interface{ Scan(...interface{}) error }) (*model.TillSession, error) {
	var s model.TillSession
	var closedAt sql.NullTime
	var note sql.NullString
	err := row.Scan(&s.ID, &s.OperatorID, &s.OpeningFloatCents, &s.Status, &s.OpenedAt, &closedAt, &note)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if closedAt.Valid {
		t := closedAt.Time
		s.ClosedAt = &t
	}
	if note.Valid {
		n := note.String
		s.ClosingNote = &n
	}
	return &s, nil
}

// GetByID loads a till session by its ID.
func (r *TillRepo) GetByID(ctx context.Context, id uint64) (*model.TillSession, error) {
	const q = `SELECT ` + tillColumns + ` FROM till_sessions WHERE id = ?`
	return scanTill(r.db.QueryRowContext(ctx, q, id))
}

// CurrentOpen returns the operator's open session, or ErrTillClosed
// when none exists.
func (r *TillRepo) CurrentOpen(ctx context.Context, operatorID uint64) (*model.TillSession, error) {
	const q = `SELECT ` + tillColumns + ` FROM till_sessions WHERE operator_id = ? AND status = ? LIMIT 1`
	s, err := scanTill(r.db.QueryRowContext(ctx, q, operatorID, model.TillOpen))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrTillClosed
	}
	return s, err
}

// CurrentOpenTx is the transactional variant of CurrentOpen.  The
// payment path locks the session row so a concurrent close and a
// payment against the same session serialize.
func (r *TillRepo) CurrentOpenTx(ctx context.Context, tx *sql.Tx, operatorID uint64) (*model.TillSession, error) {
	const q = `SELECT ` + tillColumns + ` FROM till_sessions WHERE operator_id = ? AND status = ? LIMIT 1 FOR UPDATE`
	s, err := scanTill(tx.QueryRowContext(ctx, q, operatorID, model.TillOpen))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrTillClosed
	}
	return s, err
}

// Open creates a new OPEN session for the operator.  It refuses when
// the operator already has one open.
func (r *TillRepo) Open(ctx context.Context, s *model.TillSession) error {
	const check = `SELECT COUNT(*) FROM till_sessions WHERE operator_id = ? AND status = ?`
	var n int
	if err := r.db.QueryRowContext(ctx, check, s.OperatorID, model.TillOpen).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrTillAlreadyOpen
	}
	const q = `INSERT INTO till_sessions (operator_id, opening_float_cents, status) VALUES (?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q, s.OperatorID, s.OpeningFloatCents, model.TillOpen)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	s.Status = model.TillOpen
	const sel = `SELECT opened_at FROM till_sessions WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, s.ID).Scan(&s.OpenedAt)
}

// Close marks the operator's open session CLOSED.  It returns the
// closed session so the handler can build the closing report, or
// ErrTillClosed when nothing was open.
func (r *TillRepo) Close(ctx context.Context, operatorID uint64, note *string) (*model.TillSession, error) {
	var noteArg interface{}
	if note != nil {
		noteArg = *note
	}
	const q = `UPDATE till_sessions SET status = ?, closed_at = NOW(), closing_note = ?
			   WHERE operator_id = ? AND status = ?`
	result, err := r.db.ExecContext(ctx, q, model.TillClosed, noteArg, operatorID, model.TillOpen)
	if err != nil {
		return nil, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrTillClosed
	}
	const sel = `SELECT ` + tillColumns + ` FROM till_sessions
				 WHERE operator_id = ? AND status = ? ORDER BY closed_at DESC LIMIT 1`
	return scanTill(r.db.QueryRowContext(ctx, sel, operatorID, model.TillClosed))
}
