package models

import (
	"time"

	"github.com/google/uuid"
)

// Booking is one reservation of a room for the half-open interval
// [StartAt, EndAt). For a given room, live bookings never overlap.
type Booking struct {
	ID     uuid.UUID `json:"id"`
	RoomID uuid.UUID `json:"room_id"`
	UserID uuid.UUID `json:"user_id"`
	StartAt time.Time `json:"start_at"`
	EndAt   time.Time `json:"end_at"`
	// SlotIndex is the 15-minute slot of the day the booking starts in
	// (0..95). Derived for reporting; overlap checks use the interval.
	SlotIndex int       `json:"slot_index"`
	CreatedAt time.Time `json:"created_at"`
}
