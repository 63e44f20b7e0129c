package models

import (
	"time"

	"github.com/google/uuid"
)

// Room is a bookable meeting room owned by a company.
type Room struct {
	ID          uuid.UUID `json:"id"`
	CompanyID   uuid.UUID `json:"company_id"`
	Name        string    `json:"name"`
	Capacity    int       `json:"capacity"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
