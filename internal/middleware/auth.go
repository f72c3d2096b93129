package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const userIDKey = "userID"

// TokenValidator resolves a token string to a user id.
type TokenValidator interface {
	ValidateToken(token string) (int64, error)
}

// AuthMiddleware resolves the Authorization header to a uid and stores it
// in the gin context. Both "Bearer <token>" and a bare token are accepted.
func AuthMiddleware(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. --- Get Authorization Header ---
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		tokenString := authHeader
		if scheme, rest, found := strings.Cut(authHeader, " "); found {
			if !strings.EqualFold(scheme, "Bearer") {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format (must be Bearer)"})
				return
			}
			tokenString = strings.TrimSpace(rest)
		}

		// 2. --- Validate Token ---
		userID, err := tokens.ValidateToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		// 3. --- Success ---
		c.Set(userIDKey, userID)
		c.Set(loggerKey, Logger(c).WithField("uid", userID))
		c.Next()
	}
}

// UserID returns the uid set by AuthMiddleware.
func UserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return 0, false
	}
	uid, ok := v.(int64)
	return uid, ok
}
