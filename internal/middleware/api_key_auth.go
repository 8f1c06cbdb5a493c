package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIKeyAuth is a middleware that guards the API with a single static key
// supplied in the x-api-key header. An empty configured key disables the
// check (local single-user setup).
func APIKeyAuth(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" || isPublicRoute(c.Request.URL.Path) {
			c.Next()
			return
		}

		provided := c.GetHeader("x-api-key")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or missing API key"})
			return
		}

		c.Next()
	}
}

// isPublicRoute checks if the given path is a public route that doesn't
// require authentication.
func isPublicRoute(path string) bool {
	publicRoutes := []string{
		"/health",
	}
	for _, route := range publicRoutes {
		if path == route {
			return true
		}
	}
	return false
}
