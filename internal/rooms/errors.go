package rooms

import "errors"

// Domain errors callers branch on. Everything else the service returns is
// an undifferentiated internal failure.
var (
	// ErrInvalidRange is returned when a supplied interval has start >= end.
	ErrInvalidRange = errors.New("rooms: invalid time range")
	// ErrNotFound is returned when the room, booking or company does not
	// exist or is not visible to the requesting tenant.
	ErrNotFound = errors.New("rooms: not found")
	// ErrSlotConflict is returned when a requested interval overlaps an
	// existing booking for the room.
	ErrSlotConflict = errors.New("rooms: time slot occupied")
	// ErrForbidden is returned when the requester lacks rights over the
	// target booking.
	ErrForbidden = errors.New("rooms: forbidden")
)
