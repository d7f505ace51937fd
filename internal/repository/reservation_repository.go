package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gvan1961/frontdivan/internal/model"
)

// ReservationRepo provides persistence for reservations.  A reservation
// is the billing anchor for a stay: statement entries, discounts,
// payments and amendments all hang off it.  All timestamp fields are
// stored in UTC.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// DB exposes the underlying handle so handlers can begin transactions
// that span several repositories.
func (r *ReservationRepo) DB() *sql.DB { return r.db }

const reservationColumns = `id, guest_id, room_id, guest_count, checkin_at, checkout_at,
	   nightly_rate_cents, nights, status, created_at, updated_at`

func scanReservation(row interface{ Scan(...interface{}) error }) (*model.Reservation, error) {
	var res model.Reservation
	err := row.Scan(
		&res.ID, &res.GuestID, &res.RoomID, &res.GuestCount, &res.CheckinAt, &res.CheckoutAt,
		&res.NightlyRateCents, &res.Nights, &res.Status, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &res, nil
}

// GetByID loads a reservation outside of any transaction.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	return scanReservation(r.db.QueryRowContext(ctx, q, id))
}

// GetByIDForUpdateTx loads a reservation inside a transaction with a
// row lock.  Every mutating billing operation starts here so that
// concurrent postings against the same reservation serialize at the
// database as well as in process.
func (r *ReservationRepo) GetByIDForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ? FOR UPDATE`
	return scanReservation(tx.QueryRowContext(ctx, q, id))
}

// Create inserts a new reservation in PRE_RESERVATION status and
// populates the generated ID and timestamps on the passed record.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	const q = `INSERT INTO reservations
		(guest_id, room_id, guest_count, checkin_at, checkout_at, nightly_rate_cents, nights, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q,
		res.GuestID, res.RoomID, res.GuestCount, res.CheckinAt, res.CheckoutAt,
		res.NightlyRateCents, res.Nights, res.Status,
	)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	// Query back the full row to populate timestamps and defaults
	const sel = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	got, err := scanReservation(r.db.QueryRowContext(ctx, sel, res.ID))
	if err != nil {
		return err
	}
	*res = *got
	return nil
}

// UpdateStatusTx moves a reservation to a new lifecycle status.  The
// caller is responsible for having checked the transition is legal.
func (r *ReservationRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status model.Status) error {
	const q = `UPDATE reservations SET status = ?, updated_at = NOW() WHERE id = ?`
	result, err := tx.ExecContext(ctx, q, status, id)
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

// UpdateGuestCountTx records a new guest count on the reservation row.
func (r *ReservationRepo) UpdateGuestCountTx(ctx context.Context, tx *sql.Tx, id uint64, count uint32) error {
	const q = `UPDATE reservations SET guest_count = ?, updated_at = NOW() WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, count, id)
	return err
}

// UpdateCheckoutTx records a new checkout date and the recomputed
// night count.  Nights must already reflect the new date.
func (r *ReservationRepo) UpdateCheckoutTx(ctx context.Context, tx *sql.Tx, id uint64, checkoutAt string, nights uint32) error {
	const q = `UPDATE reservations SET checkout_at = ?, nights = ?, updated_at = NOW() WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, checkoutAt, nights, id)
	return err
}

// UpdateRoomTx moves the reservation to a different room, used when an
// immediate or scheduled transfer is applied.
func (r *ReservationRepo) UpdateRoomTx(ctx context.Context, tx *sql.Tx, id, roomID uint64) error {
	const q = `UPDATE reservations SET room_id = ?, updated_at = NOW() WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, roomID, id)
	return err
}

// ListByStatus returns reservations in the given status ordered by
// check-in ascending, for the front-desk board.
func (r *ReservationRepo) ListByStatus(ctx context.Context, status model.Status) ([]model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE status = ? ORDER BY checkin_at ASC`
	rows, err := r.db.QueryContext(ctx, q, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Reservation, 0)
	for rows.Next() {
		var res model.Reservation
		if err := rows.Scan(
			&res.ID, &res.GuestID, &res.RoomID, &res.GuestCount, &res.CheckinAt, &res.CheckoutAt,
			&res.NightlyRateCents, &res.Nights, &res.Status, &res.CreatedAt, &res.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
