package reminders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/roomly/backend/internal/models"
)

// DueBooking is a booking whose "before start" reminder is due: the booker
// has a Telegram account linked and no reminder has been recorded yet.
type DueBooking struct {
	BookingID  uuid.UUID
	RoomName   string
	UserName   string
	TelegramID int64
	StartAt    time.Time
	EndAt      time.Time
}

// Repository reads due bookings and records delivered reminders.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a reminders repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// FindDue returns bookings starting lead from now, within a one-minute
// tolerance either side so a delayed poll tick still catches them.
// Bookings with an already recorded reminder are skipped.
func (r *Repository) FindDue(ctx context.Context, now time.Time, lead time.Duration) ([]DueBooking, error) {
	windowStart := now.Add(lead - time.Minute)
	windowEnd := now.Add(lead + time.Minute)

	rows, err := r.db.Query(ctx, `
		SELECT b.id, rm.name, u.user_name, u.telegram_id, b.start_at, b.end_at
		FROM bookings b
		JOIN rooms rm ON rm.id = b.room_id
		JOIN users u ON u.id = b.user_id
		LEFT JOIN reminders_sent rs ON rs.booking_id = b.id AND rs.type = $1
		WHERE b.start_at >= $2 AND b.start_at <= $3
		  AND u.telegram_id <> 0
		  AND rs.id IS NULL
		ORDER BY b.start_at`,
		models.ReminderTypeBeforeStart, windowStart, windowEnd)
	if err != nil {
		return nil, fmt.Errorf("query due bookings: %w", err)
	}
	defer rows.Close()

	var due []DueBooking
	for rows.Next() {
		var d DueBooking
		if err := rows.Scan(&d.BookingID, &d.RoomName, &d.UserName, &d.TelegramID, &d.StartAt, &d.EndAt); err != nil {
			return nil, fmt.Errorf("scan due booking: %w", err)
		}
		due = append(due, d)
	}
	return due, rows.Err()
}

// GetDelivery loads the data needed to deliver a reminder for one booking.
// Returns nil if the booking no longer exists (cancelled before delivery).
func (r *Repository) GetDelivery(ctx context.Context, bookingID uuid.UUID) (*DueBooking, error) {
	var d DueBooking
	err := r.db.QueryRow(ctx, `
		SELECT b.id, rm.name, u.user_name, u.telegram_id, b.start_at, b.end_at
		FROM bookings b
		JOIN rooms rm ON rm.id = b.room_id
		JOIN users u ON u.id = b.user_id
		WHERE b.id = $1`,
		bookingID).Scan(&d.BookingID, &d.RoomName, &d.UserName, &d.TelegramID, &d.StartAt, &d.EndAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get booking for reminder: %w", err)
	}
	return &d, nil
}

// RecordSent marks the reminder as delivered. The unique constraint on
// (booking_id, type) makes a concurrent duplicate a no-op conflict.
func (r *Repository) RecordSent(ctx context.Context, bookingID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO reminders_sent (booking_id, type)
		VALUES ($1, $2)
		ON CONFLICT (booking_id, type) DO NOTHING`,
		bookingID, models.ReminderTypeBeforeStart)
	if err != nil {
		return fmt.Errorf("record reminder: %w", err)
	}
	return nil
}
