package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"planora/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// JWTAuthMiddleware validates the bearer token and, when roles are named,
// requires the token's role claim to match one of them. The authenticated
// subject and role land in the Gin context for handlers.
func JWTAuthMiddleware(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		subject, role, err := utils.ExtractSubjectAndRole(tokenString)
		if err != nil || subject == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		if len(allowedRoles) > 0 && !roleAllowed(role, allowedRoles) {
			zap.L().Warn("Role not permitted for route",
				zap.String("role", role), zap.String("path", c.FullPath()))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			return
		}

		touchSession(subject, tokenString)

		c.Set("subjectID", subject)
		c.Set("role", role)
		c.Next()
	}
}

// RequireRole gates a route to subjects whose role claim matches one of the
// given roles. Must run after JWTAuthMiddleware.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !roleAllowed(c.GetString("role"), roles) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			return
		}
		c.Next()
	}
}

func roleAllowed(role string, allowed []string) bool {
	for _, a := range allowed {
		if a == role {
			return true
		}
	}
	return false
}

// touchSession records the caller's session hash in Redis, best effort.
func touchSession(subject, token string) {
	cache := utils.GetCacheClient()
	if cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	key := utils.AuthCachePrefix + subject
	_ = cache.Set(ctx, key, utils.HashToken(token), utils.AuthCacheTTL).Err()
}
