package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/phishwise/phishwise-api/internal/models"
	appErrors "github.com/phishwise/phishwise-api/pkg/errors"
	"github.com/phishwise/phishwise-api/pkg/response"
)

// RequireRoles blocks requests whose principal role is not in the allowed
// set. Must run after JWT.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		principal := Principal(c)
		if principal == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if _, ok := allowed[principal.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireManager admits managers and admins.
func RequireManager() gin.HandlerFunc {
	return RequireRoles(models.RoleManager, models.RoleAdmin)
}
