package middleware

import (
	"net/http"

	"github.com/franciscosanchezn/gin-pizza-store/internal/models"
	"github.com/gin-gonic/gin"
)

// RequireRole rejects callers without the role. It must run after JWTAuth.
func RequireRole(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := UserID(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.NewAPIError(models.ErrUnauthorized, "Not authenticated"))
			return
		}

		if c.GetString(ContextUserRole) != requiredRole {
			c.AbortWithStatusJSON(http.StatusForbidden, models.NewAPIError(models.ErrForbidden, "Forbidden",
				map[string]interface{}{"required_role": requiredRole}))
			return
		}

		c.Next()
	}
}
