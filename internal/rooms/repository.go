package rooms

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/roomly/backend/internal/models"
)

// RoomHours is a room joined with its company's working window, the
// read-only directory input to slot generation. The lookup filters by
// both room and company so availability never leaks across tenants.
type RoomHours struct {
	Room         models.Room
	WorkingStart time.Duration
	WorkingEnd   time.Duration
}

// BookingInfo is a booking joined with the booker's display name.
type BookingInfo struct {
	Booking  models.Booking
	UserName string
}

// RoomFilter narrows a room search. Nil fields are ignored. StartAt and
// EndAt are only honored together.
type RoomFilter struct {
	MinCapacity *int       `json:"min_capacity"`
	MaxCapacity *int       `json:"max_capacity"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	StartAt     *time.Time `json:"start_at"`
	EndAt       *time.Time `json:"end_at"`
}

// SearchResult is one room in a search response.
type SearchResult struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Capacity    int       `json:"capacity"`
	Description string    `json:"description"`
	IsAvailable bool      `json:"is_available"`
}

// Repository is the persistence boundary of the booking ledger and room
// directory. Implementations return ErrNotFound and ErrSlotConflict for
// the corresponding domain conditions.
type Repository interface {
	GetRoom(ctx context.Context, roomID uuid.UUID) (*models.Room, error)
	GetRoomWithHours(ctx context.Context, roomID, companyID uuid.UUID) (*RoomHours, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.Room, error)
	CreateRoom(ctx context.Context, room *models.Room) error
	FindRooms(ctx context.Context, companyID uuid.UUID, filter RoomFilter) ([]SearchResult, error)

	BookingsOverlapping(ctx context.Context, roomID uuid.UUID, start, end time.Time) ([]models.Booking, error)
	InsertBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error)
	DeleteBooking(ctx context.Context, bookingID uuid.UUID) error
	BookingAt(ctx context.Context, roomID uuid.UUID, instant time.Time) (*BookingInfo, error)
}

// PostgresRepository implements Repository on a pgx pool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates the production repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// GetRoom returns a room by ID.
func (r *PostgresRepository) GetRoom(ctx context.Context, roomID uuid.UUID) (*models.Room, error) {
	const q = `SELECT id, company_id, name, capacity, description, created_at
		FROM rooms WHERE id = $1`
	var room models.Room
	err := r.pool.QueryRow(ctx, q, roomID).
		Scan(&room.ID, &room.CompanyID, &room.Name, &room.Capacity, &room.Description, &room.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// GetRoomWithHours returns a room and its company's working window,
// scoped to the owning company.
func (r *PostgresRepository) GetRoomWithHours(ctx context.Context, roomID, companyID uuid.UUID) (*RoomHours, error) {
	const q = `SELECT r.id, r.company_id, r.name, r.capacity, r.description, r.created_at,
			c.working_start_min, c.working_end_min
		FROM rooms r
		JOIN companies c ON c.id = r.company_id
		WHERE r.id = $1 AND r.company_id = $2`
	var (
		rh               RoomHours
		startMin, endMin int
	)
	err := r.pool.QueryRow(ctx, q, roomID, companyID).
		Scan(&rh.Room.ID, &rh.Room.CompanyID, &rh.Room.Name, &rh.Room.Capacity, &rh.Room.Description, &rh.Room.CreatedAt,
			&startMin, &endMin)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	rh.WorkingStart = time.Duration(startMin) * time.Minute
	rh.WorkingEnd = time.Duration(endMin) * time.Minute
	return &rh, nil
}

// ListByCompany returns all rooms owned by a company.
func (r *PostgresRepository) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.Room, error) {
	const q = `SELECT id, company_id, name, capacity, description, created_at
		FROM rooms WHERE company_id = $1 ORDER BY name`
	rows, err := r.pool.Query(ctx, q, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Room
	for rows.Next() {
		var room models.Room
		if err := rows.Scan(&room.ID, &room.CompanyID, &room.Name, &room.Capacity, &room.Description, &room.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, room)
	}
	return list, rows.Err()
}

// CreateRoom inserts a room. A missing company surfaces as ErrNotFound
// via the foreign key.
func (r *PostgresRepository) CreateRoom(ctx context.Context, room *models.Room) error {
	const q = `INSERT INTO rooms (id, company_id, name, capacity, description)
		VALUES (gen_random_uuid(), $1, $2, $3, $4)
		RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, q, room.CompanyID, room.Name, room.Capacity, room.Description).
		Scan(&room.ID, &room.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" { // foreign_key_violation
		return ErrNotFound
	}
	return err
}

// FindRooms searches a company's rooms. When the interval filter is set,
// rooms with an overlapping booking are excluded and the availability
// check is reported on the survivors.
func (r *PostgresRepository) FindRooms(ctx context.Context, companyID uuid.UUID, filter RoomFilter) ([]SearchResult, error) {
	q := `SELECT r.id, r.name, r.capacity, r.description,
			NOT EXISTS (
				SELECT 1 FROM bookings b
				WHERE b.room_id = r.id AND $2::timestamptz IS NOT NULL
					AND b.start_at < $3 AND b.end_at > $2
			) AS is_available
		FROM rooms r
		WHERE r.company_id = $1`
	args := []any{companyID, filter.StartAt, filter.EndAt}

	if filter.MinCapacity != nil {
		args = append(args, *filter.MinCapacity)
		q += fmt.Sprintf(" AND r.capacity >= $%d", len(args))
	}
	if filter.MaxCapacity != nil {
		args = append(args, *filter.MaxCapacity)
		q += fmt.Sprintf(" AND r.capacity <= $%d", len(args))
	}
	if filter.Name != "" {
		args = append(args, "%"+filter.Name+"%")
		q += fmt.Sprintf(" AND r.name ILIKE $%d", len(args))
	}
	if filter.Description != "" {
		args = append(args, "%"+filter.Description+"%")
		q += fmt.Sprintf(" AND r.description ILIKE $%d", len(args))
	}
	if filter.StartAt != nil && filter.EndAt != nil {
		q += ` AND NOT EXISTS (
			SELECT 1 FROM bookings b
			WHERE b.room_id = r.id AND b.start_at < $3 AND b.end_at > $2
		)`
	}
	q += " ORDER BY r.name"

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []SearchResult
	for rows.Next() {
		var res SearchResult
		if err := rows.Scan(&res.ID, &res.Name, &res.Capacity, &res.Description, &res.IsAvailable); err != nil {
			return nil, err
		}
		list = append(list, res)
	}
	return list, rows.Err()
}

// BookingsOverlapping returns the room's bookings intersecting
// [start, end), ordered by start. Served by the (room_id, start_at) index.
func (r *PostgresRepository) BookingsOverlapping(ctx context.Context, roomID uuid.UUID, start, end time.Time) ([]models.Booking, error) {
	const q = `SELECT id, room_id, user_id, start_at, end_at, slot_index, created_at
		FROM bookings
		WHERE room_id = $1 AND start_at < $3 AND end_at > $2
		ORDER BY start_at`
	rows, err := r.pool.Query(ctx, q, roomID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Booking
	for rows.Next() {
		var b models.Booking
		if err := rows.Scan(&b.ID, &b.RoomID, &b.UserID, &b.StartAt, &b.EndAt, &b.SlotIndex, &b.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

// InsertBooking persists a booking if its interval is still free.
//
// The overlap re-check and the insert run in one transaction serialized
// per room by an advisory lock, so two concurrent conflicting requests
// cannot both pass the check. The bookings_no_overlap exclusion
// constraint backs this up at the storage level; a violation from either
// mechanism maps to ErrSlotConflict.
func (r *PostgresRepository) InsertBooking(ctx context.Context, booking *models.Booking) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))`, booking.RoomID); err != nil {
		return fmt.Errorf("room lock: %w", err)
	}

	var conflict bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM bookings WHERE room_id = $1 AND start_at < $3 AND end_at > $2)`,
		booking.RoomID, booking.StartAt, booking.EndAt).Scan(&conflict)
	if err != nil {
		return fmt.Errorf("overlap check: %w", err)
	}
	if conflict {
		return ErrSlotConflict
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO bookings (id, room_id, user_id, start_at, end_at, slot_index)
			VALUES (gen_random_uuid(), $1, $2, $3, $4, $5)
			RETURNING id, created_at`,
		booking.RoomID, booking.UserID, booking.StartAt, booking.EndAt, booking.SlotIndex).
		Scan(&booking.ID, &booking.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23P01" { // exclusion_violation
		return ErrSlotConflict
	}
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	return tx.Commit(ctx)
}

// GetBooking returns a booking by ID.
func (r *PostgresRepository) GetBooking(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error) {
	const q = `SELECT id, room_id, user_id, start_at, end_at, slot_index, created_at
		FROM bookings WHERE id = $1`
	var b models.Booking
	err := r.pool.QueryRow(ctx, q, bookingID).
		Scan(&b.ID, &b.RoomID, &b.UserID, &b.StartAt, &b.EndAt, &b.SlotIndex, &b.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// DeleteBooking removes a booking row.
func (r *PostgresRepository) DeleteBooking(ctx context.Context, bookingID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, bookingID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// BookingAt returns the booking covering the instant for a room, joined
// with the booker's name, or ErrNotFound when the instant is free.
func (r *PostgresRepository) BookingAt(ctx context.Context, roomID uuid.UUID, instant time.Time) (*BookingInfo, error) {
	const q = `SELECT b.id, b.room_id, b.user_id, b.start_at, b.end_at, b.slot_index, b.created_at, u.user_name
		FROM bookings b
		JOIN users u ON u.id = b.user_id
		WHERE b.room_id = $1 AND b.start_at <= $2 AND b.end_at > $2
		LIMIT 1`
	var info BookingInfo
	err := r.pool.QueryRow(ctx, q, roomID, instant).
		Scan(&info.Booking.ID, &info.Booking.RoomID, &info.Booking.UserID,
			&info.Booking.StartAt, &info.Booking.EndAt, &info.Booking.SlotIndex,
			&info.Booking.CreatedAt, &info.UserName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &info, nil
}
