// Package admin serves the company dashboard: usage aggregations and
// user administration, all scoped to the caller's tenant.
package admin

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/roomly/backend/internal/models"
)

// Overview is the headline counters for a company.
type Overview struct {
	TotalRooms     int `json:"total_rooms"`
	TotalUsers     int `json:"total_users"`
	TotalBookings  int `json:"total_bookings"`
	ActiveBookings int `json:"active_bookings"`
}

// RoomUtilization is the booked share of a room's working week.
type RoomUtilization struct {
	RoomName    string  `json:"room_name"`
	Utilization float64 `json:"utilization_pct"`
}

// TopRoom is a room ranked by booking count.
type TopRoom struct {
	RoomName string `json:"room_name"`
	Bookings int    `json:"bookings"`
}

// UserActivity aggregates a user's booking volume.
type UserActivity struct {
	UserName string  `json:"user_name"`
	Bookings int     `json:"bookings"`
	Hours    float64 `json:"hours"`
}

// TrendPoint is bookings per day.
type TrendPoint struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}

// UserSummary is the admin view of a company user.
type UserSummary struct {
	ID       uuid.UUID   `json:"id"`
	UserName string      `json:"user_name"`
	Role     models.Role `json:"role"`
}

// Repository runs the analytics aggregations in SQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an admin repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetOverview returns headline counters for the company.
func (r *Repository) GetOverview(ctx context.Context, companyID uuid.UUID, now time.Time) (*Overview, error) {
	const q = `SELECT
		(SELECT COUNT(*) FROM rooms WHERE company_id = $1),
		(SELECT COUNT(*) FROM users WHERE company_id = $1),
		(SELECT COUNT(*) FROM bookings b JOIN rooms r ON r.id = b.room_id WHERE r.company_id = $1),
		(SELECT COUNT(*) FROM bookings b JOIN rooms r ON r.id = b.room_id WHERE r.company_id = $1 AND b.end_at > $2)`
	var o Overview
	err := r.pool.QueryRow(ctx, q, companyID, now).
		Scan(&o.TotalRooms, &o.TotalUsers, &o.TotalBookings, &o.ActiveBookings)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// GetRoomUtilization returns each room's booked hours over the last 7
// days as a share of a 40-hour working week.
func (r *Repository) GetRoomUtilization(ctx context.Context, companyID uuid.UUID, now time.Time) ([]RoomUtilization, error) {
	const q = `SELECT r.name,
			ROUND(COALESCE(SUM(EXTRACT(EPOCH FROM (b.end_at - b.start_at)) / 3600.0), 0) / 40.0 * 100.0, 2)
		FROM rooms r
		LEFT JOIN bookings b ON b.room_id = r.id AND b.start_at >= $2
		WHERE r.company_id = $1
		GROUP BY r.id, r.name
		ORDER BY r.name`
	rows, err := r.pool.Query(ctx, q, companyID, now.AddDate(0, 0, -7))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []RoomUtilization
	for rows.Next() {
		var u RoomUtilization
		if err := rows.Scan(&u.RoomName, &u.Utilization); err != nil {
			return nil, err
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

// GetTopRooms returns the five most booked rooms.
func (r *Repository) GetTopRooms(ctx context.Context, companyID uuid.UUID) ([]TopRoom, error) {
	const q = `SELECT r.name, COUNT(b.id)
		FROM rooms r
		LEFT JOIN bookings b ON b.room_id = r.id
		WHERE r.company_id = $1
		GROUP BY r.id, r.name
		ORDER BY COUNT(b.id) DESC
		LIMIT 5`
	rows, err := r.pool.Query(ctx, q, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []TopRoom
	for rows.Next() {
		var t TopRoom
		if err := rows.Scan(&t.RoomName, &t.Bookings); err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// GetUserActivity returns per-user booking counts and booked hours,
// busiest first.
func (r *Repository) GetUserActivity(ctx context.Context, companyID uuid.UUID) ([]UserActivity, error) {
	const q = `SELECT u.user_name, COUNT(b.id),
			COALESCE(SUM(EXTRACT(EPOCH FROM (b.end_at - b.start_at)) / 3600.0), 0)
		FROM bookings b
		JOIN users u ON u.id = b.user_id
		JOIN rooms r ON r.id = b.room_id
		WHERE r.company_id = $1
		GROUP BY u.id, u.user_name
		ORDER BY COUNT(b.id) DESC`
	rows, err := r.pool.Query(ctx, q, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []UserActivity
	for rows.Next() {
		var a UserActivity
		if err := rows.Scan(&a.UserName, &a.Bookings, &a.Hours); err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// GetBookingTrends returns bookings per day over the last 7 days.
func (r *Repository) GetBookingTrends(ctx context.Context, companyID uuid.UUID, now time.Time) ([]TrendPoint, error) {
	const q = `SELECT date_trunc('day', b.start_at), COUNT(*)
		FROM bookings b
		JOIN rooms r ON r.id = b.room_id
		WHERE r.company_id = $1 AND b.start_at >= $2
		GROUP BY 1
		ORDER BY 1`
	rows, err := r.pool.Query(ctx, q, companyID, now.AddDate(0, 0, -7))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []TrendPoint
	for rows.Next() {
		var p TrendPoint
		if err := rows.Scan(&p.Date, &p.Count); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// ListUsers returns all users of the company.
func (r *Repository) ListUsers(ctx context.Context, companyID uuid.UUID) ([]UserSummary, error) {
	const q = `SELECT id, user_name, role FROM users WHERE company_id = $1 ORDER BY user_name`
	rows, err := r.pool.Query(ctx, q, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []UserSummary
	for rows.Next() {
		var u UserSummary
		if err := rows.Scan(&u.ID, &u.UserName, &u.Role); err != nil {
			return nil, err
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

// SetUserRole updates a user's role within the company. Returns false
// when the user is not in the company.
func (r *Repository) SetUserRole(ctx context.Context, companyID, userID uuid.UUID, role models.Role) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET role = $3 WHERE id = $2 AND company_id = $1`,
		companyID, userID, role)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteUser removes a user of the company. Returns false when the user
// is not in the company.
func (r *Repository) DeleteUser(ctx context.Context, companyID, userID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM users WHERE id = $2 AND company_id = $1`,
		companyID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
