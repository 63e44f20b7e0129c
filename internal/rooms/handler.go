package rooms

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/roomly/backend/internal/middleware"
	"github.com/roomly/backend/internal/models"
	"github.com/roomly/backend/pkg/response"
)

// CreateRoomRequest is the body for POST /api/rooms/create.
type CreateRoomRequest struct {
	Name        string `json:"name" binding:"required"`
	Capacity    int    `json:"capacity" binding:"required,min=1"`
	Description string `json:"description"`
}

// BookRoomRequest is the body for POST /api/rooms/:roomId/book.
type BookRoomRequest struct {
	StartAt time.Time `json:"start_at" binding:"required"`
	EndAt   time.Time `json:"end_at" binding:"required"`
}

// Handler exposes the booking engine over HTTP.
type Handler struct {
	svc *Service
}

// NewHandler creates a rooms handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// respondError maps domain errors onto the response envelope.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidRange):
		response.BadRequest(c, "start time must be before end time")
	case errors.Is(err, ErrNotFound):
		response.NotFound(c, "not found")
	case errors.Is(err, ErrSlotConflict):
		response.Conflict(c, "time slot occupied")
	case errors.Is(err, ErrForbidden):
		response.Forbidden(c, "not allowed")
	default:
		response.Internal(c, "internal error")
	}
}

// GetCompanyRooms handles GET /api/rooms/company.
func (h *Handler) GetCompanyRooms(c *gin.Context) {
	companyID := c.MustGet(middleware.ContextCompanyID).(uuid.UUID)
	list, err := h.svc.GetCompanyRooms(c.Request.Context(), companyID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, list)
}

// CreateRoom handles POST /api/rooms/create (admin only).
func (h *Handler) CreateRoom(c *gin.Context) {
	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	companyID := c.MustGet(middleware.ContextCompanyID).(uuid.UUID)

	roomID, err := h.svc.CreateRoom(c.Request.Context(), companyID, req.Name, req.Capacity, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, gin.H{"id": roomID})
}

// GetAvailableTimeslots handles GET /api/rooms/:roomId/timeslots?date=YYYY-MM-DD.
func (h *Handler) GetAvailableTimeslots(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("roomId"))
	if err != nil {
		response.BadRequest(c, "invalid room id")
		return
	}
	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		response.BadRequest(c, "invalid date, expected YYYY-MM-DD")
		return
	}
	companyID := c.MustGet(middleware.ContextCompanyID).(uuid.UUID)

	grid, err := h.svc.GetAvailableTimeslots(c.Request.Context(), roomID, companyID, date)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, grid)
}

// BookRoom handles POST /api/rooms/:roomId/book.
func (h *Handler) BookRoom(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("roomId"))
	if err != nil {
		response.BadRequest(c, "invalid room id")
		return
	}
	var req BookRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	bookingID, err := h.svc.BookRoom(c.Request.Context(), roomID, userID, req.StartAt, req.EndAt)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, gin.H{"id": bookingID})
}

// CancelBooking handles DELETE /api/rooms/bookings/:bookingId.
func (h *Handler) CancelBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("bookingId"))
	if err != nil {
		response.BadRequest(c, "invalid booking id")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	role := models.Role(c.MustGet(middleware.ContextUserRole).(string))

	if err := h.svc.CancelBooking(c.Request.Context(), bookingID, userID, role); err != nil {
		respondError(c, err)
		return
	}
	response.NoContent(c)
}

// FindRooms handles POST /api/rooms/search.
func (h *Handler) FindRooms(c *gin.Context) {
	var filter RoomFilter
	if err := c.ShouldBindJSON(&filter); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	companyID := c.MustGet(middleware.ContextCompanyID).(uuid.UUID)

	results, err := h.svc.FindRooms(c.Request.Context(), companyID, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, results)
}

// GetBookingInfo handles GET /api/rooms/:roomId/booking-info?time=RFC3339.
func (h *Handler) GetBookingInfo(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("roomId"))
	if err != nil {
		response.BadRequest(c, "invalid room id")
		return
	}
	instant, err := time.Parse(time.RFC3339, c.Query("time"))
	if err != nil {
		response.BadRequest(c, "invalid time, expected RFC3339")
		return
	}
	companyID := c.MustGet(middleware.ContextCompanyID).(uuid.UUID)

	status, err := h.svc.GetBookingInfo(c.Request.Context(), roomID, companyID, instant)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, status)
}
