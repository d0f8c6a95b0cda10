package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"eralearn/internal/pkg/jwt"
	"eralearn/internal/pkg/response"
)

const (
	UserIDKey = "user_id"
	RoleKey   = "role"
)

// JWTAuth verifies the identity provider's bearer token and stores the
// user id and role on the context.
func JWTAuth(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" {
			response.AbortWithError(c, http.StatusUnauthorized, "authorization header is required")
			return
		}

		parts := strings.SplitN(h, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
			response.AbortWithError(c, http.StatusUnauthorized, "authorization header must be 'Bearer <token>'")
			return
		}

		claims, err := jwtService.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			response.AbortWithError(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		c.Set(UserIDKey, claims.UserID())
		c.Set(RoleKey, claims.Role)
		c.Next()
	}
}

// UserID returns the authenticated user id, or "" outside JWTAuth.
func UserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}
