package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"eralearn/internal/pkg/response"
)

// RequireRole ensures that the authenticated user has the specified role.
// Must run after JWTAuth.
func RequireRole(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(RoleKey)
		if role == "" {
			response.AbortWithError(c, http.StatusUnauthorized, "role not found in token")
			return
		}

		if role != requiredRole {
			response.AbortWithError(c, http.StatusForbidden, "access denied: insufficient permissions")
			return
		}

		c.Next()
	}
}
