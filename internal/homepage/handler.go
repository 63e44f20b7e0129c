package homepage

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/roomly/backend/internal/middleware"
	"github.com/roomly/backend/pkg/response"
)

// MyBookings splits the caller's bookings into upcoming and past.
type MyBookings struct {
	Active []MyBooking `json:"active"`
	Past   []MyBooking `json:"past"`
}

// Handler handles homepage HTTP endpoints.
type Handler struct {
	repo *Repository
}

// NewHandler creates a homepage handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// GetMyBookings handles GET /api/homepage/my-bookings.
func (h *Handler) GetMyBookings(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	bookings, err := h.repo.ListUserBookings(c.Request.Context(), userID)
	if err != nil {
		response.Internal(c, "failed to load bookings")
		return
	}

	now := time.Now().UTC()
	out := MyBookings{Active: []MyBooking{}, Past: []MyBooking{}}
	for _, b := range bookings {
		if b.EndAt.Before(now) {
			out.Past = append(out.Past, b)
		} else {
			out.Active = append(out.Active, b)
		}
	}
	response.OK(c, out)
}

// GetAvailableNow handles GET /api/homepage/available-now.
func (h *Handler) GetAvailableNow(c *gin.Context) {
	companyID := c.MustGet(middleware.ContextCompanyID).(uuid.UUID)

	rooms, err := h.repo.ListAvailableNow(c.Request.Context(), companyID, time.Now().UTC())
	if err != nil {
		response.Internal(c, "failed to load rooms")
		return
	}
	response.OK(c, rooms)
}
