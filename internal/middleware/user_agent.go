package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RequireKnownUserAgent creates a Gin middleware that only admits requests
// whose User-Agent starts with one of the allowed identifiers. Prefix
// matching tolerates client version suffixes.
func RequireKnownUserAgent(allowed []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userAgent := c.GetHeader("User-Agent")
		for _, candidate := range allowed {
			if candidate != "" && strings.HasPrefix(userAgent, candidate) {
				c.Next()
				return
			}
		}
		GetLoggerFromCtx(c.Request.Context()).Warn("Unknown user agent rejected")
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Unrecognized client"})
	}
}
