package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/roomly/backend/internal/auth"
	"github.com/roomly/backend/pkg/response"
)

const (
	// ContextUserID is the key for the user ID in gin context.
	ContextUserID = "user_id"
	// ContextCompanyID is the key for the tenant company ID in gin context.
	ContextCompanyID = "company_id"
	// ContextUserRole is the key for the user role in gin context.
	ContextUserRole = "user_role"
	// ContextUserName is the key for the user display name in gin context.
	ContextUserName = "user_name"
)

// JWT returns a middleware that validates the bearer token and resolves
// the caller's identity claims once. Handlers read them from context and
// pass them into services explicitly.
func JWT(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization header")
			c.Abort()
			return
		}
		claims, err := jwtService.Validate(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}
		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextCompanyID, claims.CompanyID)
		c.Set(ContextUserRole, claims.Role)
		c.Set(ContextUserName, claims.UserName)
		c.Next()
	}
}
