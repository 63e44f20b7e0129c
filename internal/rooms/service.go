// Package rooms implements the room directory and the booking engine:
// slot availability queries served through the timeslot cache, and the
// booking ledger with its no-overlap guarantee.
package rooms

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/roomly/backend/internal/cache"
	"github.com/roomly/backend/internal/models"
	"github.com/roomly/backend/internal/schedule"
)

// RoomSummary is the directory view of a room.
type RoomSummary struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Capacity    int       `json:"capacity"`
	Description string    `json:"description"`
}

// BookingStatus answers "who has the room at this instant".
type BookingStatus struct {
	UserName string    `json:"user_name,omitempty"`
	StartAt  time.Time `json:"start_at"`
	EndAt    time.Time `json:"end_at"`
	IsBooked bool      `json:"is_booked"`
}

// Service is the booking engine. Identity (user, company, role) is
// resolved by the auth middleware and passed in explicitly; the service
// never reads ambient request state.
type Service struct {
	repo        Repository
	cache       *cache.TimeslotCache
	granularity time.Duration
	logger      *zap.Logger
}

// NewService creates the booking engine over a repository and an
// availability cache.
func NewService(repo Repository, tc *cache.TimeslotCache, granularity time.Duration, logger *zap.Logger) *Service {
	if granularity <= 0 {
		granularity = schedule.DefaultSlotMinutes * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, cache: tc, granularity: granularity, logger: logger}
}

// GetCompanyRooms lists the rooms of the caller's company.
func (s *Service) GetCompanyRooms(ctx context.Context, companyID uuid.UUID) ([]RoomSummary, error) {
	list, err := s.repo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	out := make([]RoomSummary, 0, len(list))
	for _, r := range list {
		out = append(out, RoomSummary{ID: r.ID, Name: r.Name, Capacity: r.Capacity, Description: r.Description})
	}
	return out, nil
}

// CreateRoom adds a room to the company. Returns ErrNotFound when the
// company does not exist.
func (s *Service) CreateRoom(ctx context.Context, companyID uuid.UUID, name string, capacity int, description string) (uuid.UUID, error) {
	room := &models.Room{
		CompanyID:   companyID,
		Name:        name,
		Capacity:    capacity,
		Description: description,
	}
	if err := s.repo.CreateRoom(ctx, room); err != nil {
		return uuid.Nil, err
	}
	return room.ID, nil
}

// GetAvailableTimeslots returns the slot grid for the room on the given
// day, read through the availability cache. The room lookup is scoped to
// companyID so one tenant cannot probe another's rooms.
func (s *Service) GetAvailableTimeslots(ctx context.Context, roomID, companyID uuid.UUID, date time.Time) ([]schedule.Slot, error) {
	day := schedule.DayOf(date)
	return s.cache.GetOrCompute(ctx, roomID, day, func(ctx context.Context) ([]schedule.Slot, error) {
		hours, err := s.repo.GetRoomWithHours(ctx, roomID, companyID)
		if err != nil {
			return nil, err
		}

		windowStart := day.Add(hours.WorkingStart)
		windowEnd := day.Add(hours.WorkingEnd)
		var busy []schedule.Interval
		if windowStart.Before(windowEnd) {
			bookings, err := s.repo.BookingsOverlapping(ctx, roomID, windowStart, windowEnd)
			if err != nil {
				return nil, err
			}
			busy = make([]schedule.Interval, 0, len(bookings))
			for _, b := range bookings {
				busy = append(busy, schedule.Interval{Start: b.StartAt, End: b.EndAt})
			}
		}
		return schedule.GenerateGrid(day, hours.WorkingStart, hours.WorkingEnd, s.granularity, busy), nil
	})
}

// BookRoom reserves [start, end) on the room for the user and returns
// the booking ID. Fails with ErrInvalidRange, ErrNotFound or
// ErrSlotConflict; on success the affected days' cached grids are
// invalidated.
func (s *Service) BookRoom(ctx context.Context, roomID, userID uuid.UUID, start, end time.Time) (uuid.UUID, error) {
	requested := schedule.Interval{Start: start.UTC(), End: end.UTC()}
	if !requested.IsValid() {
		return uuid.Nil, ErrInvalidRange
	}
	if _, err := s.repo.GetRoom(ctx, roomID); err != nil {
		return uuid.Nil, err
	}

	// First-pass overlap scan over the room's live bookings. The
	// repository repeats this check atomically; this pass exists to
	// answer fast without taking the per-room write lock.
	existing, err := s.repo.BookingsOverlapping(ctx, roomID, requested.Start, requested.End)
	if err != nil {
		return uuid.Nil, err
	}
	for _, b := range existing {
		if schedule.Overlaps(requested, schedule.Interval{Start: b.StartAt, End: b.EndAt}) {
			return uuid.Nil, ErrSlotConflict
		}
	}

	booking := &models.Booking{
		RoomID:    roomID,
		UserID:    userID,
		StartAt:   requested.Start,
		EndAt:     requested.End,
		SlotIndex: schedule.SlotIndex(requested.Start),
	}
	if err := s.repo.InsertBooking(ctx, booking); err != nil {
		return uuid.Nil, err
	}

	s.cache.InvalidateInterval(ctx, roomID, booking.StartAt, booking.EndAt)
	s.logger.Info("room booked",
		zap.String("room_id", roomID.String()),
		zap.String("booking_id", booking.ID.String()),
		zap.Time("start_at", booking.StartAt),
		zap.Time("end_at", booking.EndAt),
	)
	return booking.ID, nil
}

// CancelBooking deletes a booking. Only the booking's owner or a company
// admin may cancel; the cancelled interval's days are invalidated in the
// cache.
func (s *Service) CancelBooking(ctx context.Context, bookingID, requesterID uuid.UUID, requesterRole models.Role) error {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	if requesterRole != models.RoleAdmin && booking.UserID != requesterID {
		return ErrForbidden
	}
	if err := s.repo.DeleteBooking(ctx, bookingID); err != nil {
		return err
	}

	s.cache.InvalidateInterval(ctx, booking.RoomID, booking.StartAt, booking.EndAt)
	s.logger.Info("booking cancelled",
		zap.String("booking_id", bookingID.String()),
		zap.String("room_id", booking.RoomID.String()),
	)
	return nil
}

// FindRooms searches the company's rooms by capacity, name, description
// and optional availability window.
func (s *Service) FindRooms(ctx context.Context, companyID uuid.UUID, filter RoomFilter) ([]SearchResult, error) {
	if filter.StartAt != nil && filter.EndAt != nil {
		if !(schedule.Interval{Start: *filter.StartAt, End: *filter.EndAt}).IsValid() {
			return nil, ErrInvalidRange
		}
	}
	return s.repo.FindRooms(ctx, companyID, filter)
}

// GetBookingInfo reports whether the room is booked at the instant, and
// by whom. The room lookup is tenant-scoped.
func (s *Service) GetBookingInfo(ctx context.Context, roomID, companyID uuid.UUID, instant time.Time) (*BookingStatus, error) {
	instant = instant.UTC()
	if _, err := s.repo.GetRoomWithHours(ctx, roomID, companyID); err != nil {
		return nil, err
	}
	info, err := s.repo.BookingAt(ctx, roomID, instant)
	if errors.Is(err, ErrNotFound) {
		return &BookingStatus{StartAt: instant, EndAt: instant, IsBooked: false}, nil
	}
	if err != nil {
		return nil, err
	}
	return &BookingStatus{
		UserName: info.UserName,
		StartAt:  info.Booking.StartAt,
		EndAt:    info.Booking.EndAt,
		IsBooked: true,
	}, nil
}
