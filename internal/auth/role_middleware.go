package auth

import (
	"net/http"

	"roomshare/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// RequireRole is the single role gate shared by every role-restricted route.
// It must be used AFTER the standard Middleware.
func RequireRole(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		got, exists := c.Get(CtxRole)
		if !exists {
			// This should not happen if Middleware is used before it
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		if got.(string) != string(role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": string(role) + " access required"})
			return
		}

		c.Next()
	}
}
