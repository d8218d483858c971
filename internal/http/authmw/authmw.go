// Package authmw resolves the authenticated principal for protected routes.
package authmw

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"auctionhouse/internal/models"
	"auctionhouse/internal/services/user"
)

const principalKey = "principal"

// RequireAuth verifies the Bearer token and stores the principal on the
// request context. Requests without a valid token are rejected with 401.
func RequireAuth(users user.IUserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		token = strings.TrimSpace(token)
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		principal, err := users.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		c.Set(principalKey, principal)
		c.Next()
	}
}

// RequireAdmin gates moderation routes. Must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := Principal(c)
		if !ok || !p.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin role required"})
			return
		}
		c.Next()
	}
}

// Principal returns the authenticated user set by RequireAuth.
func Principal(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return models.User{}, false
	}
	p, ok := v.(models.User)
	return p, ok
}
