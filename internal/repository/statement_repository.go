package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/gvan1961/frontdivan/internal/model"
)

// StatementRepo persists the append-only ledger of charges for a
// reservation.  Rows are never updated or deleted: a wrong product
// charge is corrected by appending a REVERSAL row referencing it.
type StatementRepo struct {
	db *sql.DB
}

// NewStatementRepo returns a new StatementRepo bound to the given database.
func NewStatementRepo(db *sql.DB) *StatementRepo { return &StatementRepo{db: db} }

const statementColumns = `id, reservation_id, kind, description, unit_cents, quantity,
	   total_cents, product_id, reversal_of, operator_id, created_at`

func scanEntry(row interface{ Scan(...interface{}) error }) (*model.StatementEntry, error) {
	var e model.StatementEntry
	var productID, reversalOf sql.NullInt64
	err := row.Scan(
		&e.ID, &e.ReservationID, &e.Kind, &e.Description, &e.UnitCents, &e.Quantity,
		&e.TotalCents, &productID, &reversalOf, &e.OperatorID, &e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if productID.Valid {
		pid := uint64(productID.Int64)
		e.ProductID = &pid
	}
	if reversalOf.Valid {
		rid := uint64(reversalOf.Int64)
		e.ReversalOf = &rid
	}
	return &e, nil
}

// CreateTx appends a ledger row within the scope of an existing
// transaction and populates the generated ID on the record.  The
// statement_entries table carries a UNIQUE index on reversal_of, so a
// second reversal of the same row fails here with a duplicate-key
// error which is surfaced as ErrEntryNotReversible.
func (r *StatementRepo) CreateTx(ctx context.Context, tx *sql.Tx, e *model.StatementEntry) error {
	const q = `INSERT INTO statement_entries
		(reservation_id, kind, description, unit_cents, quantity, total_cents, product_id, reversal_of, operator_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	var productID, reversalOf interface{}
	if e.ProductID != nil {
		productID = *e.ProductID
	}
	if e.ReversalOf != nil {
		reversalOf = *e.ReversalOf
	}
	result, err := tx.ExecContext(ctx, q,
		e.ReservationID, e.Kind, e.Description, e.UnitCents, e.Quantity,
		e.TotalCents, productID, reversalOf, e.OperatorID,
	)
	if err != nil {
		return entryInsertError(err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	const sel = `SELECT created_at FROM statement_entries WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, e.ID).Scan(&e.CreatedAt)
}

// entryInsertError translates the MySQL duplicate-key error raised by
// the UNIQUE index on reversal_of into ErrEntryNotReversible.  The
// index is the authoritative reverse-at-most-once guard; HasReversalTx
// only exists so the common case fails before the insert.
func entryInsertError(err error) error {
	if strings.Contains(err.Error(), "Duplicate entry") {
		return ErrEntryNotReversible
	}
	return err
}

// GetByIDForUpdateTx loads a single ledger row with a row lock, used by
// the reversal path to pin the original entry while the reversal and
// restock are written.
func (r *StatementRepo) GetByIDForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.StatementEntry, error) {
	const q = `SELECT ` + statementColumns + ` FROM statement_entries WHERE id = ? FOR UPDATE`
	return scanEntry(tx.QueryRowContext(ctx, q, id))
}

// HasReversalTx reports whether the given entry has already been
// reversed.  The unique index makes the insert the true guard; this
// check exists so the common case fails with a clean error before the
// insert is attempted.
func (r *StatementRepo) HasReversalTx(ctx context.Context, tx *sql.Tx, entryID uint64) (bool, error) {
	const q = `SELECT COUNT(*) FROM statement_entries WHERE reversal_of = ?`
	var n int
	if err := tx.QueryRowContext(ctx, q, entryID).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListByReservation returns every ledger row for a reservation in
// chronological order.  Insertion order is the display order of the
// printed statement.
func (r *StatementRepo) ListByReservation(ctx context.Context, reservationID uint64) ([]model.StatementEntry, error) {
	const q = `SELECT ` + statementColumns + ` FROM statement_entries
			   WHERE reservation_id = ? ORDER BY created_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, q, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.StatementEntry, 0)
	for rows.Next() {
		var e model.StatementEntry
		var productID, reversalOf sql.NullInt64
		if err := rows.Scan(
			&e.ID, &e.ReservationID, &e.Kind, &e.Description, &e.UnitCents, &e.Quantity,
			&e.TotalCents, &productID, &reversalOf, &e.OperatorID, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		if productID.Valid {
			pid := uint64(productID.Int64)
			e.ProductID = &pid
		}
		if reversalOf.Valid {
			rid := uint64(reversalOf.Int64)
			e.ReversalOf = &rid
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByReservationTx is the transactional variant of
// ListByReservation, used when a balance must be computed against the
// locked state inside an ongoing transaction.
func (r *StatementRepo) ListByReservationTx(ctx context.Context, tx *sql.Tx, reservationID uint64) ([]model.StatementEntry, error) {
	const q = `SELECT ` + statementColumns + ` FROM statement_entries
			   WHERE reservation_id = ? ORDER BY created_at ASC, id ASC`
	rows, err := tx.QueryContext(ctx, q, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.StatementEntry, 0)
	for rows.Next() {
		var e model.StatementEntry
		var productID, reversalOf sql.NullInt64
		if err := rows.Scan(
			&e.ID, &e.ReservationID, &e.Kind, &e.Description, &e.UnitCents, &e.Quantity,
			&e.TotalCents, &productID, &reversalOf, &e.OperatorID, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		if productID.Valid {
			pid := uint64(productID.Int64)
			e.ProductID = &pid
		}
		if reversalOf.Valid {
			rid := uint64(reversalOf.Int64)
			e.ReversalOf = &rid
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
