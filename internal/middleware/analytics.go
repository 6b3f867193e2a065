package middleware

import (
	"net/http"
	"strings"

	"github.com/divisando/divisando-backend/internal/utils"
	"github.com/gin-gonic/gin"
)

// Analytics tracks successful authenticated API calls. Events are named
// after the matched route (e.g. "api_v1_rates_:base") and keyed by the
// user ID the auth middleware put in the context.
func Analytics(client *utils.AnalyticsClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil || !client.Enabled() {
			c.Next()
			return
		}

		c.Next()

		if len(c.Errors) > 0 || c.Writer.Status() >= http.StatusBadRequest {
			return
		}

		userID, ok := GetUserIDFromContext(c)
		if !ok {
			return
		}

		eventName := strings.ReplaceAll(strings.TrimPrefix(c.FullPath(), "/"), "/", "_")
		if eventName == "" {
			return
		}

		client.Enqueue(userID, eventName, map[string]any{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status_code": c.Writer.Status(),
		})
	}
}
