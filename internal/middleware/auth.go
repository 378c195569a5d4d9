package middleware

import (
	"net/http"
	"strings"
	"translation-api/internal/auth"
	"translation-api/internal/translation"

	"github.com/gin-gonic/gin"
)

// AdminUserKey is the context key holding the authenticated admin username.
const AdminUserKey = "admin_username"

// APIKeyMiddleware rejects requests whose X-API-Key header does not match the
// configured secret. Denials are never cacheable.
func APIKeyMiddleware(gate *auth.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !gate.IsAuthorized(c.GetHeader(auth.APIKeyHeader)) {
			ApplyCacheHeaders(c, translation.Uncacheable())
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Not authorized",
			})
			return
		}
		c.Next()
	}
}

// JWTAuthMiddleware validates the admin JWT in the Authorization header
func JWTAuthMiddleware(issuer *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenString := ""
		if authHeader != "" {
			// Extract token from "Bearer <token>"
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
		// Fallback for WebSocket/browser where custom headers cannot be set: allow token in query param
		if tokenString == "" {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization token is required",
			})
			return
		}

		claims, err := issuer.ValidateToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			return
		}

		c.Set(AdminUserKey, claims.Username)
		c.Next()
	}
}
