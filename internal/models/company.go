package models

import (
	"time"

	"github.com/google/uuid"
)

// Company represents a tenant. Every room, user and booking belongs to
// exactly one company.
type Company struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	// Working hours as offsets from midnight, e.g. 9h and 18h.
	// WorkingStart < WorkingEnd is assumed, not enforced; an inverted
	// window yields an empty availability grid.
	WorkingStart time.Duration `json:"working_start"`
	WorkingEnd   time.Duration `json:"working_end"`
	CreatedAt    time.Time     `json:"created_at"`
}
