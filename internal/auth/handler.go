package auth

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/roomly/backend/internal/models"
	"github.com/roomly/backend/pkg/response"
	"github.com/roomly/backend/pkg/utils"
)

// CreateCompanyRequest is the body for POST /api/first/create-company.
// Working hours are "HH:MM" offsets from midnight.
type CreateCompanyRequest struct {
	CompanyName  string `json:"company_name" binding:"required"`
	Password     string `json:"password" binding:"required"`
	WorkingStart string `json:"working_start"`
	WorkingEnd   string `json:"working_end"`
	TelegramID   int64  `json:"telegram_id"`
	UserName     string `json:"user_name"`
}

// TelegramLoginRequest is the body for POST /api/first/login-telegram.
type TelegramLoginRequest struct {
	TelegramID int64     `json:"telegram_id" binding:"required"`
	CompanyID  uuid.UUID `json:"company_id"`
	UserName   string    `json:"user_name"`
}

// Handler handles company registration and Telegram login.
type Handler struct {
	repo   *Repository
	jwt    *JWTService
	logger *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(repo *Repository, jwt *JWTService, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, jwt: jwt, logger: logger}
}

// parseTimeOfDay parses "HH:MM" into an offset from midnight.
func parseTimeOfDay(s string, fallback time.Duration) time.Duration {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return fallback
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute
}

// CreateCompany handles POST /api/first/create-company: registers a
// tenant with its working hours and an initial admin, returning a JWT.
func (h *Handler) CreateCompany(c *gin.Context) {
	var req CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	ctx := c.Request.Context()

	exists, err := h.repo.CompanyNameExists(ctx, req.CompanyName)
	if err != nil {
		response.Internal(c, "failed to create company")
		return
	}
	if exists {
		response.Conflict(c, "company already exists")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		response.Internal(c, "failed to create company")
		return
	}
	company := &models.Company{
		Name:         req.CompanyName,
		PasswordHash: hash,
		WorkingStart: parseTimeOfDay(req.WorkingStart, 9*time.Hour),
		WorkingEnd:   parseTimeOfDay(req.WorkingEnd, 18*time.Hour),
	}
	if err := h.repo.CreateCompany(ctx, company); err != nil {
		h.logger.Error("create company", zap.Error(err))
		response.Internal(c, "failed to create company")
		return
	}

	admin, err := h.resolveAdmin(c, company, req)
	if err != nil {
		h.logger.Error("create company admin", zap.Error(err))
		response.Internal(c, "failed to create company")
		return
	}

	token, err := h.jwt.Generate(admin.ID, company.ID, string(admin.Role), admin.UserName)
	if err != nil {
		response.Internal(c, "failed to issue token")
		return
	}
	response.Created(c, gin.H{"token": token, "company_id": company.ID})
}

// resolveAdmin creates or adopts the initial admin user for a new company.
func (h *Handler) resolveAdmin(c *gin.Context, company *models.Company, req CreateCompanyRequest) (*models.User, error) {
	ctx := c.Request.Context()
	name := req.UserName
	if name == "" {
		name = "admin"
	}

	if req.TelegramID != 0 {
		existing, err := h.repo.GetUserByTelegramID(ctx, req.TelegramID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			if err := h.repo.PromoteToCompanyAdmin(ctx, existing.ID, company.ID, req.UserName); err != nil {
				return nil, err
			}
			existing.CompanyID = company.ID
			existing.Role = models.RoleAdmin
			if req.UserName != "" {
				existing.UserName = req.UserName
			}
			return existing, nil
		}
	}

	admin := &models.User{
		TelegramID: req.TelegramID,
		UserName:   name,
		CompanyID:  company.ID,
		Role:       models.RoleAdmin,
	}
	if err := h.repo.CreateUser(ctx, admin); err != nil {
		return nil, err
	}
	return admin, nil
}

// LoginTelegram handles POST /api/first/login-telegram: logs in an
// existing Telegram-linked user, or registers one into the given company.
func (h *Handler) LoginTelegram(c *gin.Context) {
	var req TelegramLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	ctx := c.Request.Context()

	user, err := h.repo.GetUserByTelegramID(ctx, req.TelegramID)
	if err != nil {
		response.Internal(c, "login failed")
		return
	}
	if user == nil {
		if req.CompanyID == uuid.Nil {
			response.BadRequest(c, "company_id required for new users")
			return
		}
		if _, err := h.repo.GetCompany(ctx, req.CompanyID); err != nil {
			response.NotFound(c, "company not found")
			return
		}
		name := req.UserName
		if name == "" {
			name = "tg_user"
		}
		user = &models.User{
			TelegramID: req.TelegramID,
			UserName:   name,
			CompanyID:  req.CompanyID,
			Role:       models.RoleUser,
		}
		if err := h.repo.CreateUser(ctx, user); err != nil {
			h.logger.Error("register telegram user", zap.Error(err))
			response.Internal(c, "login failed")
			return
		}
	}

	token, err := h.jwt.Generate(user.ID, user.CompanyID, string(user.Role), user.UserName)
	if err != nil {
		response.Internal(c, "failed to issue token")
		return
	}
	response.OK(c, gin.H{"token": token, "company_id": user.CompanyID})
}
