package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const apiKeyHeader = "x-api-key"

// RequireAPIKey creates a Gin middleware that gates the API behind a static
// key. A missing key is 401, a wrong one is 403.
func RequireAPIKey(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		presented := c.GetHeader(apiKeyHeader)
		if presented == "" {
			GetLoggerFromCtx(c.Request.Context()).Warn("API key missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "API key required"})
			return
		}
		if apiKey == "" || presented != apiKey {
			GetLoggerFromCtx(c.Request.Context()).Warn("API key mismatch")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid API key"})
			return
		}
		c.Next()
	}
}
