package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gvan1961/frontdivan/internal/model"
)

// RoomRepo persists rooms.  Room status follows the housekeeping
// cycle: AVAILABLE, OCCUPIED while a reservation is active, CLEANING
// after checkout until housekeeping releases it.
type RoomRepo struct {
	db *sql.DB
}

// NewRoomRepo returns a new RoomRepo bound to the given database.
func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

const roomColumns = `id, number, capacity, status, created_at, updated_at`

func scanRoom(row interface{ Scan(...interface{}) error }) (*model.Room, error) {
	var rm model.Room
	err := row.Scan(&rm.ID, &rm.Number, &rm.Capacity, &rm.Status, &rm.CreatedAt, &rm.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rm, nil
}

// GetByID loads a room outside of any transaction.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (*model.Room, error) {
	const q = `SELECT ` + roomColumns + ` FROM rooms WHERE id = ?`
	return scanRoom(r.db.QueryRowContext(ctx, q, id))
}

// GetByIDForUpdateTx loads a room with a row lock.  Transfer and
// activation paths lock the target room so two reservations cannot
// race into the same AVAILABLE room.
func (r *RoomRepo) GetByIDForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Room, error) {
	const q = `SELECT ` + roomColumns + ` FROM rooms WHERE id = ? FOR UPDATE`
	return scanRoom(tx.QueryRowContext(ctx, q, id))
}

// UpdateStatusTx moves a room to a new housekeeping status.
func (r *RoomRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status model.RoomStatus) error {
	const q = `UPDATE rooms SET status = ?, updated_at = NOW() WHERE id = ?`
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

// Release marks a room AVAILABLE again once housekeeping is done.
func (r *RoomRepo) Release(ctx context.Context, id uint64) error {
	const q = `UPDATE rooms SET status = ?, updated_at = NOW() WHERE id = ? AND status = ?`
	result, err := r.db.ExecContext(ctx, q, model.RoomAvailable, id, model.RoomCleaning)
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

// List returns all rooms ordered by number.
func (r *RoomRepo) List(ctx context.Context) ([]model.Room, error) {
	const q = `SELECT ` + roomColumns + ` FROM rooms ORDER BY number ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Room, 0)
	for rows.Next() {
		var rm model.Room
		if err := rows.Scan(&rm.ID, &rm.Number, &rm.Capacity, &rm.Status, &rm.CreatedAt, &rm.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, rm)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts a new room and populates the generated ID.
func (r *RoomRepo) Create(ctx context.Context, rm *model.Room) error {
	const q = `INSERT INTO rooms (number, capacity, status) VALUES (?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q, rm.Number, rm.Capacity, rm.Status)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	rm.ID = uint64(id)
	const sel = `SELECT created_at, updated_at FROM rooms WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, rm.ID).Scan(&rm.CreatedAt, &rm.UpdatedAt)
}
