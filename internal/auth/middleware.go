package auth

import (
	"net/http"
	"strings"

	"roomshare/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
)

// Context keys set by the middleware for downstream handlers.
const (
	CtxUserID = "userID"
	CtxRole   = "userRole"
)

// Middleware creates a gin middleware that requires a valid Bearer token and
// sets the caller's user ID and role in the request context.
func Middleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseBearer(c, secret)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid authorization token"})
			return
		}
		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxRole, claims.Role)
		c.Next()
	}
}

// OptionalMiddleware inspects for a token and sets the identity if present and
// valid, but does not fail if the token is missing or invalid.
func OptionalMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := parseBearer(c, secret); ok {
			c.Set(CtxUserID, claims.UserID)
			c.Set(CtxRole, claims.Role)
		}
		c.Next()
	}
}

func parseBearer(c *gin.Context, secret string) (*jwt.Claims, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, false
	}
	claims, err := jwt.ParseToken(secret, parts[1])
	if err != nil {
		return nil, false
	}
	return claims, true
}

// UserID returns the authenticated user's ID from the gin context. It is only
// valid after Middleware has run.
func UserID(c *gin.Context) uint {
	id, _ := c.Get(CtxUserID)
	uid, _ := id.(uint)
	return uid
}

// Role returns the authenticated user's role from the gin context.
func Role(c *gin.Context) string {
	role, _ := c.Get(CtxRole)
	r, _ := role.(string)
	return r
}
