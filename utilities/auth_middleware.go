package utilities

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"cdr-backend-V1.0/internal/model"
)

const identityKey = "identity"

// AuthMiddleware verifies the bearer token and attaches the verified
// identity to the request context. Applied per route group; the signin
// and signup routes stay outside it.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			c.Abort()
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := ValidateToken(tokenStr, false)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(identityKey, claims.Identity())
		c.Next()
	}
}

// AdminOnly rejects callers whose verified identity is not an admin.
// Must run after AuthMiddleware.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, ok := CurrentIdentity(c)
		if !ok || !ident.IsAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentIdentity extracts the verified identity set by AuthMiddleware.
func CurrentIdentity(c *gin.Context) (model.Identity, bool) {
	v, exists := c.Get(identityKey)
	if !exists {
		return model.Identity{}, false
	}
	ident, ok := v.(model.Identity)
	return ident, ok
}
