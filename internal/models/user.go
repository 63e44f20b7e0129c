package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents a user's role within their company.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// User represents an employee of a company. Identity comes from Telegram;
// TelegramID 0 means the account was created without a Telegram link.
type User struct {
	ID         uuid.UUID `json:"id"`
	TelegramID int64     `json:"telegram_id"`
	UserName   string    `json:"user_name"`
	CompanyID  uuid.UUID `json:"company_id"`
	Role       Role      `json:"role"`
	CreatedAt  time.Time `json:"created_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
