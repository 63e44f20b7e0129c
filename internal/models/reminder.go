package models

import (
	"time"

	"github.com/google/uuid"
)

// ReminderTypeBeforeStart marks the "N minutes before start" reminder.
const ReminderTypeBeforeStart = "before_start"

// ReminderSent records that a reminder was delivered for a booking, so the
// poller never sends the same reminder twice.
type ReminderSent struct {
	ID        uuid.UUID `json:"id"`
	BookingID uuid.UUID `json:"booking_id"`
	Type      string    `json:"type"`
	SentAt    time.Time `json:"sent_at"`
}
