package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"artlink_backend/internal/appErrors"
	"artlink_backend/internal/auth"
)

// AuthMiddleware verifies the bearer token and stores the user id in the
// request context. The token is issued by the external identity provider;
// only verification happens here.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			appErrors.AbortWith(c, appErrors.ErrUnauthorized)
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := auth.ParseToken(tokenStr)
		if err != nil {
			appErrors.AbortWith(c, appErrors.ErrInvalidToken)
			return
		}

		c.Set("userID", claims.UserID)
		c.Next()
	}
}

// GetUserID extracts the authenticated user id from the gin context.
func GetUserID(c *gin.Context) string {
	userID, exists := c.Get("userID")
	if !exists {
		return ""
	}

	id, ok := userID.(string)
	if !ok {
		return ""
	}

	return id
}
