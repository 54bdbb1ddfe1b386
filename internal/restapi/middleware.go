package restapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/parch0n/Isaura/internal/service"
)

const (
	// AuthCookieName is the http-only cookie carrying the session token.
	AuthCookieName = "authToken"

	contextUserIDKey = "userID"
	contextClaimsKey = "claims"
)

// AuthRequired aborts with 401 unless the request carries a valid session
// token in the Authorization header or the auth cookie.
func AuthRequired(auth service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			if cookie, err := c.Cookie(AuthCookieName); err == nil {
				token = cookie
			}
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		claims, err := auth.ParseToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(contextUserIDKey, claims.UserID)
		c.Set(contextClaimsKey, claims)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// userID returns the authenticated user id set by AuthRequired.
func userID(c *gin.Context) string {
	return c.GetString(contextUserIDKey)
}
