package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ncc-attendance-api/internal/middleware"
	"github.com/noah-isme/ncc-attendance-api/internal/models"
)

func principalFromContext(c *gin.Context) *models.Principal {
	value, exists := c.Get(middleware.ContextPrincipalKey)
	if !exists {
		return nil
	}
	principal, ok := value.(*models.Principal)
	if !ok {
		return nil
	}
	return principal
}
