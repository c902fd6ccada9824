package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ncc-attendance-api/internal/models"
	"github.com/noah-isme/ncc-attendance-api/internal/service"
	appErrors "github.com/noah-isme/ncc-attendance-api/pkg/errors"
	"github.com/noah-isme/ncc-attendance-api/pkg/response"
)

// Principal extracts the resolved principal set by RequireAuth.
func Principal(c *gin.Context) *models.Principal {
	value, exists := c.Get(ContextPrincipalKey)
	if !exists {
		return nil
	}
	principal, _ := value.(*models.Principal)
	return principal
}

// RequireModify allows only the admin and super-admin tiers through.
func RequireModify() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := Principal(c)
		if principal == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if !service.CanModify(principal) {
			response.Error(c, appErrors.ErrInsufficientPermission)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireSuperAdmin allows only the top tier through.
func RequireSuperAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := Principal(c)
		if principal == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if !service.IsSuperAdmin(principal) {
			response.Error(c, appErrors.Clone(appErrors.ErrInsufficientPermission, "super admin access required"))
			c.Abort()
			return
		}
		c.Next()
	}
}
