// Package homepage serves the user-facing dashboard reads: the caller's
// own bookings and the rooms free right now.
package homepage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MyBooking is one of the caller's bookings with its room name.
type MyBooking struct {
	ID       uuid.UUID `json:"id"`
	RoomID   uuid.UUID `json:"room_id"`
	RoomName string    `json:"room_name"`
	StartAt  time.Time `json:"start_at"`
	EndAt    time.Time `json:"end_at"`
}

// RoomSummary is a directory view of a currently free room.
type RoomSummary struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Capacity    int       `json:"capacity"`
	Description string    `json:"description"`
}

// Repository handles homepage read queries.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a homepage repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListUserBookings returns all bookings of the user, newest first.
func (r *Repository) ListUserBookings(ctx context.Context, userID uuid.UUID) ([]MyBooking, error) {
	const q = `SELECT b.id, b.room_id, r.name, b.start_at, b.end_at
		FROM bookings b
		JOIN rooms r ON r.id = b.room_id
		WHERE b.user_id = $1
		ORDER BY b.start_at DESC`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []MyBooking
	for rows.Next() {
		var b MyBooking
		if err := rows.Scan(&b.ID, &b.RoomID, &b.RoomName, &b.StartAt, &b.EndAt); err != nil {
			return nil, err
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

// ListAvailableNow returns the company's rooms with no booking covering
// the instant.
func (r *Repository) ListAvailableNow(ctx context.Context, companyID uuid.UUID, now time.Time) ([]RoomSummary, error) {
	const q = `SELECT r.id, r.name, r.capacity, r.description
		FROM rooms r
		WHERE r.company_id = $1
			AND NOT EXISTS (
				SELECT 1 FROM bookings b
				WHERE b.room_id = r.id AND b.start_at <= $2 AND b.end_at > $2
			)
		ORDER BY r.name`
	rows, err := r.pool.Query(ctx, q, companyID, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []RoomSummary
	for rows.Next() {
		var room RoomSummary
		if err := rows.Scan(&room.ID, &room.Name, &room.Capacity, &room.Description); err != nil {
			return nil, err
		}
		list = append(list, room)
	}
	return list, rows.Err()
}
