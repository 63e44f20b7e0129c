package admin

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/roomly/backend/internal/middleware"
	"github.com/roomly/backend/internal/models"
	"github.com/roomly/backend/pkg/response"
)

// SetRoleRequest is the body for POST /api/admin/users/:id/role.
type SetRoleRequest struct {
	Role models.Role `json:"role" binding:"required,oneof=admin user"`
}

// Handler handles the admin dashboard endpoints. All routes sit behind
// the admin role middleware.
type Handler struct {
	repo *Repository
}

// NewHandler creates an admin handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

func companyID(c *gin.Context) uuid.UUID {
	return c.MustGet(middleware.ContextCompanyID).(uuid.UUID)
}

// GetOverview handles GET /api/admin/overview.
func (h *Handler) GetOverview(c *gin.Context) {
	o, err := h.repo.GetOverview(c.Request.Context(), companyID(c), time.Now().UTC())
	if err != nil {
		response.Internal(c, "failed to load overview")
		return
	}
	response.OK(c, o)
}

// GetRoomUtilization handles GET /api/admin/utilization.
func (h *Handler) GetRoomUtilization(c *gin.Context) {
	stats, err := h.repo.GetRoomUtilization(c.Request.Context(), companyID(c), time.Now().UTC())
	if err != nil {
		response.Internal(c, "failed to load utilization")
		return
	}
	response.OK(c, stats)
}

// GetTopRooms handles GET /api/admin/top-rooms.
func (h *Handler) GetTopRooms(c *gin.Context) {
	top, err := h.repo.GetTopRooms(c.Request.Context(), companyID(c))
	if err != nil {
		response.Internal(c, "failed to load top rooms")
		return
	}
	response.OK(c, top)
}

// GetUserActivity handles GET /api/admin/user-activity.
func (h *Handler) GetUserActivity(c *gin.Context) {
	activity, err := h.repo.GetUserActivity(c.Request.Context(), companyID(c))
	if err != nil {
		response.Internal(c, "failed to load user activity")
		return
	}
	response.OK(c, activity)
}

// GetBookingTrends handles GET /api/admin/trends.
func (h *Handler) GetBookingTrends(c *gin.Context) {
	trend, err := h.repo.GetBookingTrends(c.Request.Context(), companyID(c), time.Now().UTC())
	if err != nil {
		response.Internal(c, "failed to load trends")
		return
	}
	response.OK(c, trend)
}

// ListUsers handles GET /api/admin/users.
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.repo.ListUsers(c.Request.Context(), companyID(c))
	if err != nil {
		response.Internal(c, "failed to load users")
		return
	}
	response.OK(c, users)
}

// SetUserRole handles POST /api/admin/users/:id/role.
func (h *Handler) SetUserRole(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	var req SetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	ok, err := h.repo.SetUserRole(c.Request.Context(), companyID(c), userID, req.Role)
	if err != nil {
		response.Internal(c, "failed to update role")
		return
	}
	if !ok {
		response.NotFound(c, "user not found")
		return
	}
	response.OK(c, gin.H{"id": userID, "role": req.Role})
}

// DeleteUser handles DELETE /api/admin/users/:id.
func (h *Handler) DeleteUser(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	ok, err := h.repo.DeleteUser(c.Request.Context(), companyID(c), userID)
	if err != nil {
		response.Internal(c, "failed to delete user")
		return
	}
	if !ok {
		response.NotFound(c, "user not found")
		return
	}
	response.NoContent(c)
}
