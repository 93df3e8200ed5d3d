package middleware

import (
	"net/http"
	"strings"

	"redirly/internal/authclient"
	"redirly/internal/jwt"

	"github.com/gin-gonic/gin"
)

// Context keys set by the auth middlewares
const (
	ContextUserID = "user_id"
	ContextEmail  = "email"
)

// bearerToken extracts the token from an "Authorization: Bearer <token>" header
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// AuthMiddleware requires a valid provider-issued access token and stores the
// user id and email in the gin context
func AuthMiddleware(jwtService *jwt.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header with Bearer token is required",
			})
			return
		}

		claims, err := jwtService.ValidateToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			return
		}

		c.Set(ContextUserID, claims.Subject)
		c.Set(ContextEmail, claims.Email)
		c.Request = c.Request.WithContext(authclient.WithAccessToken(c.Request.Context(), token))
		c.Next()
	}
}

// ForwardToken passes the bearer token, if any, to the auth backend without
// verifying it. The provider is the authority for session scoped calls.
func ForwardToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			c.Request = c.Request.WithContext(authclient.WithAccessToken(c.Request.Context(), token))
		}
		c.Next()
	}
}
