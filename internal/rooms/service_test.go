package rooms

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/roomly/backend/internal/cache"
	"github.com/roomly/backend/internal/models"
	"github.com/roomly/backend/internal/schedule"
)

var testDay = time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

func dayAt(hour, min int) time.Time {
	return testDay.Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute)
}

// ledgerStub is an in-memory Repository whose InsertBooking repeats the
// overlap check under a lock, mirroring the per-room serialization the
// Postgres repository provides.
type ledgerStub struct {
	mu        sync.Mutex
	rooms     map[uuid.UUID]RoomHours
	bookings  map[uuid.UUID]models.Booking
	userNames map[uuid.UUID]string
}

func newLedgerStub() *ledgerStub {
	return &ledgerStub{
		rooms:     make(map[uuid.UUID]RoomHours),
		bookings:  make(map[uuid.UUID]models.Booking),
		userNames: make(map[uuid.UUID]string),
	}
}

func (s *ledgerStub) addRoom(workingStart, workingEnd time.Duration) uuid.UUID {
	id := uuid.New()
	s.rooms[id] = RoomHours{
		Room:         models.Room{ID: id, CompanyID: uuid.New(), Name: "room", Capacity: 4},
		WorkingStart: workingStart,
		WorkingEnd:   workingEnd,
	}
	return id
}

func (s *ledgerStub) GetRoom(_ context.Context, roomID uuid.UUID) (*models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rh, ok := s.rooms[roomID]
	if !ok {
		return nil, ErrNotFound
	}
	room := rh.Room
	return &room, nil
}

func (s *ledgerStub) GetRoomWithHours(_ context.Context, roomID, _ uuid.UUID) (*RoomHours, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rh, ok := s.rooms[roomID]
	if !ok {
		return nil, ErrNotFound
	}
	out := rh
	return &out, nil
}

func (s *ledgerStub) ListByCompany(_ context.Context, companyID uuid.UUID) ([]models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Room
	for _, rh := range s.rooms {
		if rh.Room.CompanyID == companyID {
			out = append(out, rh.Room)
		}
	}
	return out, nil
}

func (s *ledgerStub) CreateRoom(_ context.Context, room *models.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	room.ID = uuid.New()
	s.rooms[room.ID] = RoomHours{Room: *room, WorkingStart: 9 * time.Hour, WorkingEnd: 18 * time.Hour}
	return nil
}

func (s *ledgerStub) FindRooms(_ context.Context, _ uuid.UUID, _ RoomFilter) ([]SearchResult, error) {
	return nil, nil
}

func (s *ledgerStub) BookingsOverlapping(_ context.Context, roomID uuid.UUID, start, end time.Time) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overlappingLocked(roomID, start, end), nil
}

func (s *ledgerStub) overlappingLocked(roomID uuid.UUID, start, end time.Time) []models.Booking {
	window := schedule.Interval{Start: start, End: end}
	var out []models.Booking
	for _, b := range s.bookings {
		if b.RoomID == roomID && schedule.Overlaps(window, schedule.Interval{Start: b.StartAt, End: b.EndAt}) {
			out = append(out, b)
		}
	}
	return out
}

func (s *ledgerStub) InsertBooking(_ context.Context, booking *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.overlappingLocked(booking.RoomID, booking.StartAt, booking.EndAt)) > 0 {
		return ErrSlotConflict
	}
	booking.ID = uuid.New()
	s.bookings[booking.ID] = *booking
	return nil
}

func (s *ledgerStub) GetBooking(_ context.Context, bookingID uuid.UUID) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[bookingID]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (s *ledgerStub) DeleteBooking(_ context.Context, bookingID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[bookingID]; !ok {
		return ErrNotFound
	}
	delete(s.bookings, bookingID)
	return nil
}

func (s *ledgerStub) BookingAt(_ context.Context, roomID uuid.UUID, instant time.Time) (*BookingInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bookings {
		if b.RoomID == roomID && (schedule.Interval{Start: b.StartAt, End: b.EndAt}).Contains(instant) {
			return &BookingInfo{Booking: b, UserName: s.userNames[b.UserID]}, nil
		}
	}
	return nil, ErrNotFound
}

func newTestService(repo *ledgerStub) *Service {
	tc := cache.NewTimeslotCache(cache.NewMemoryStore(nil), time.Minute, nil)
	return NewService(repo, tc, 15*time.Minute, nil)
}

func TestBookRoom(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects inverted interval", func(t *testing.T) {
		repo := newLedgerStub()
		roomID := repo.addRoom(9*time.Hour, 18*time.Hour)
		svc := newTestService(repo)

		_, err := svc.BookRoom(ctx, roomID, uuid.New(), dayAt(11, 0), dayAt(10, 0))
		if !errors.Is(err, ErrInvalidRange) {
			t.Fatalf("expected ErrInvalidRange, got %v", err)
		}
	})

	t.Run("rejects unknown room", func(t *testing.T) {
		svc := newTestService(newLedgerStub())
		_, err := svc.BookRoom(ctx, uuid.New(), uuid.New(), dayAt(10, 0), dayAt(11, 0))
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("rejects overlap, accepts touching interval", func(t *testing.T) {
		repo := newLedgerStub()
		roomID := repo.addRoom(9*time.Hour, 18*time.Hour)
		svc := newTestService(repo)

		if _, err := svc.BookRoom(ctx, roomID, uuid.New(), dayAt(10, 0), dayAt(10, 30)); err != nil {
			t.Fatalf("first booking failed: %v", err)
		}
		if _, err := svc.BookRoom(ctx, roomID, uuid.New(), dayAt(10, 15), dayAt(10, 45)); !errors.Is(err, ErrSlotConflict) {
			t.Fatalf("expected ErrSlotConflict for overlapping interval, got %v", err)
		}
		// Touching endpoints do not overlap.
		if _, err := svc.BookRoom(ctx, roomID, uuid.New(), dayAt(10, 30), dayAt(11, 0)); err != nil {
			t.Fatalf("touching interval should book: %v", err)
		}
	})

	t.Run("no-overlap invariant holds over a booking sequence", func(t *testing.T) {
		repo := newLedgerStub()
		roomID := repo.addRoom(9*time.Hour, 18*time.Hour)
		svc := newTestService(repo)

		attempts := [][2]time.Time{
			{dayAt(9, 0), dayAt(10, 0)},
			{dayAt(9, 30), dayAt(10, 30)}, // conflicts
			{dayAt(10, 0), dayAt(11, 0)},
			{dayAt(10, 45), dayAt(11, 15)}, // conflicts
			{dayAt(11, 0), dayAt(12, 0)},
		}
		for _, a := range attempts {
			_, _ = svc.BookRoom(ctx, roomID, uuid.New(), a[0], a[1])
		}

		var live []models.Booking
		for _, b := range repo.bookings {
			live = append(live, b)
		}
		for i := range live {
			for j := i + 1; j < len(live); j++ {
				a := schedule.Interval{Start: live[i].StartAt, End: live[i].EndAt}
				b := schedule.Interval{Start: live[j].StartAt, End: live[j].EndAt}
				if schedule.Overlaps(a, b) {
					t.Fatalf("live bookings overlap: %v and %v", a, b)
				}
			}
		}
	})
}

func TestBookRoomConcurrentConflict(t *testing.T) {
	ctx := context.Background()
	repo := newLedgerStub()
	roomID := repo.addRoom(9*time.Hour, 18*time.Hour)
	svc := newTestService(repo)

	start := make(chan struct{})
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			<-start
			_, err := svc.BookRoom(ctx, roomID, uuid.New(), dayAt(10, 0), dayAt(11, 0))
			results <- err
		}()
	}
	close(start)

	var successes, conflicts int
	for i := 0; i < 2; i++ {
		switch err := <-results; {
		case err == nil:
			successes++
		case errors.Is(err, ErrSlotConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 || conflicts != 1 {
		t.Fatalf("expected exactly one winner, got %d successes and %d conflicts", successes, conflicts)
	}
}

func TestCancelBooking(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*Service, *ledgerStub, uuid.UUID, uuid.UUID) {
		repo := newLedgerStub()
		roomID := repo.addRoom(9*time.Hour, 18*time.Hour)
		svc := newTestService(repo)
		owner := uuid.New()
		bookingID, err := svc.BookRoom(ctx, roomID, owner, dayAt(10, 0), dayAt(11, 0))
		if err != nil {
			t.Fatalf("booking failed: %v", err)
		}
		return svc, repo, bookingID, owner
	}

	t.Run("owner may cancel", func(t *testing.T) {
		svc, repo, bookingID, owner := setup(t)
		if err := svc.CancelBooking(ctx, bookingID, owner, models.RoleUser); err != nil {
			t.Fatalf("owner cancel failed: %v", err)
		}
		if len(repo.bookings) != 0 {
			t.Fatal("booking should be deleted")
		}
	})

	t.Run("admin may cancel any booking", func(t *testing.T) {
		svc, _, bookingID, _ := setup(t)
		if err := svc.CancelBooking(ctx, bookingID, uuid.New(), models.RoleAdmin); err != nil {
			t.Fatalf("admin cancel failed: %v", err)
		}
	})

	t.Run("stranger is forbidden and booking stays", func(t *testing.T) {
		svc, repo, bookingID, _ := setup(t)
		err := svc.CancelBooking(ctx, bookingID, uuid.New(), models.RoleUser)
		if !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
		if _, ok := repo.bookings[bookingID]; !ok {
			t.Fatal("booking must remain intact after a forbidden cancel")
		}
	})

	t.Run("unknown booking", func(t *testing.T) {
		svc, _, _, _ := setup(t)
		err := svc.CancelBooking(ctx, uuid.New(), uuid.New(), models.RoleAdmin)
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func freeAt(grid []schedule.Slot, t time.Time) (bool, bool) {
	for _, s := range grid {
		if s.Start.Equal(t) {
			return s.Free, true
		}
	}
	return false, false
}

func TestAvailabilityReflectsWrites(t *testing.T) {
	ctx := context.Background()
	repo := newLedgerStub()
	roomID := repo.addRoom(9*time.Hour, 18*time.Hour)
	companyID := uuid.New()
	svc := newTestService(repo)

	// Warm the cache.
	grid, err := svc.GetAvailableTimeslots(ctx, roomID, companyID, testDay)
	if err != nil {
		t.Fatalf("availability query failed: %v", err)
	}
	if free, ok := freeAt(grid, dayAt(10, 0)); !ok || !free {
		t.Fatal("10:00 should be free before booking")
	}

	bookingID, err := svc.BookRoom(ctx, roomID, uuid.New(), dayAt(10, 0), dayAt(11, 0))
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}

	// Write invalidated the cached grid: booked slots must not show free.
	grid, err = svc.GetAvailableTimeslots(ctx, roomID, companyID, testDay)
	if err != nil {
		t.Fatalf("availability query failed: %v", err)
	}
	for _, m := range []int{0, 15, 30, 45} {
		if free, ok := freeAt(grid, dayAt(10, m)); !ok || free {
			t.Fatalf("slot 10:%02d must be occupied after booking", m)
		}
	}
	if free, ok := freeAt(grid, dayAt(11, 0)); !ok || !free {
		t.Fatal("11:00 should remain free")
	}

	// Cancellation invalidates again.
	if err := svc.CancelBooking(ctx, bookingID, uuid.New(), models.RoleAdmin); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	grid, err = svc.GetAvailableTimeslots(ctx, roomID, companyID, testDay)
	if err != nil {
		t.Fatalf("availability query failed: %v", err)
	}
	if free, ok := freeAt(grid, dayAt(10, 0)); !ok || !free {
		t.Fatal("10:00 should be free again after cancellation")
	}
}

func TestAvailabilityIdempotentRead(t *testing.T) {
	ctx := context.Background()
	repo := newLedgerStub()
	roomID := repo.addRoom(9*time.Hour, 18*time.Hour)
	companyID := uuid.New()
	svc := newTestService(repo)

	if _, err := svc.BookRoom(ctx, roomID, uuid.New(), dayAt(14, 0), dayAt(15, 0)); err != nil {
		t.Fatalf("booking failed: %v", err)
	}

	first, err := svc.GetAvailableTimeslots(ctx, roomID, companyID, testDay)
	if err != nil {
		t.Fatalf("first read failed: %v", err)
	}
	second, err := svc.GetAvailableTimeslots(ctx, roomID, companyID, testDay)
	if err != nil {
		t.Fatalf("second read failed: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("reads differ in length: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if !first[i].Start.Equal(second[i].Start) || first[i].Free != second[i].Free {
			t.Fatalf("cache-hit path diverges from miss path at slot %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestDaySpanningBookingInvalidatesBothDates(t *testing.T) {
	ctx := context.Background()
	repo := newLedgerStub()
	// Working window covering the whole day so cross-midnight slots exist.
	roomID := repo.addRoom(0, 24*time.Hour)
	companyID := uuid.New()
	svc := newTestService(repo)

	nextDay := testDay.AddDate(0, 0, 1)

	// Warm both days' grids.
	if _, err := svc.GetAvailableTimeslots(ctx, roomID, companyID, testDay); err != nil {
		t.Fatalf("warm day one: %v", err)
	}
	if _, err := svc.GetAvailableTimeslots(ctx, roomID, companyID, nextDay); err != nil {
		t.Fatalf("warm day two: %v", err)
	}

	// 23:30 to 00:30 next day.
	if _, err := svc.BookRoom(ctx, roomID, uuid.New(), dayAt(23, 30), nextDay.Add(30*time.Minute)); err != nil {
		t.Fatalf("cross-midnight booking failed: %v", err)
	}

	gridOne, err := svc.GetAvailableTimeslots(ctx, roomID, companyID, testDay)
	if err != nil {
		t.Fatalf("day one read failed: %v", err)
	}
	if free, ok := freeAt(gridOne, dayAt(23, 30)); !ok || free {
		t.Fatal("23:30 on day one must be occupied")
	}

	gridTwo, err := svc.GetAvailableTimeslots(ctx, roomID, companyID, nextDay)
	if err != nil {
		t.Fatalf("day two read failed: %v", err)
	}
	if free, ok := freeAt(gridTwo, nextDay.Add(15*time.Minute)); !ok || free {
		t.Fatal("00:15 on day two must be occupied")
	}
	if free, ok := freeAt(gridTwo, nextDay.Add(30*time.Minute)); !ok || !free {
		t.Fatal("00:30 on day two should be free")
	}
}

func TestGetBookingInfo(t *testing.T) {
	ctx := context.Background()
	repo := newLedgerStub()
	roomID := repo.addRoom(9*time.Hour, 18*time.Hour)
	companyID := uuid.New()
	svc := newTestService(repo)

	owner := uuid.New()
	repo.userNames[owner] = "dana"
	if _, err := svc.BookRoom(ctx, roomID, owner, dayAt(10, 0), dayAt(11, 0)); err != nil {
		t.Fatalf("booking failed: %v", err)
	}

	t.Run("booked instant", func(t *testing.T) {
		status, err := svc.GetBookingInfo(ctx, roomID, companyID, dayAt(10, 30))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !status.IsBooked || status.UserName != "dana" {
			t.Fatalf("expected booked by dana, got %+v", status)
		}
		if !status.StartAt.Equal(dayAt(10, 0)) || !status.EndAt.Equal(dayAt(11, 0)) {
			t.Fatalf("unexpected interval: %+v", status)
		}
	})

	t.Run("free instant", func(t *testing.T) {
		status, err := svc.GetBookingInfo(ctx, roomID, companyID, dayAt(12, 0))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if status.IsBooked {
			t.Fatalf("expected free instant, got %+v", status)
		}
	})

	t.Run("unknown room", func(t *testing.T) {
		_, err := svc.GetBookingInfo(ctx, uuid.New(), companyID, dayAt(12, 0))
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestFindRoomsInvalidRange(t *testing.T) {
	svc := newTestService(newLedgerStub())
	start := dayAt(11, 0)
	end := dayAt(10, 0)
	_, err := svc.FindRooms(context.Background(), uuid.New(), RoomFilter{StartAt: &start, EndAt: &end})
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestInvertedWorkingHoursYieldEmptyGrid(t *testing.T) {
	ctx := context.Background()
	repo := newLedgerStub()
	roomID := repo.addRoom(18*time.Hour, 9*time.Hour)
	svc := newTestService(repo)

	grid, err := svc.GetAvailableTimeslots(ctx, roomID, uuid.New(), testDay)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(grid) != 0 {
		t.Fatalf("inverted working hours should yield no slots, got %d", len(grid))
	}
}
