package handlers

import (
	"net/http"

	"github.com/divisando/divisando-backend/pkg/database"
	"github.com/gin-gonic/gin"
)

// HealthHandler reports process and database health.
type HealthHandler struct {
	dbManager *database.Manager
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(dbManager *database.Manager) *HealthHandler {
	return &HealthHandler{dbManager: dbManager}
}

// registerHealthRoutes sets up the health routes on the engine root, outside
// the API gates so load balancers can reach them.
func registerHealthRoutes(r *gin.Engine, dbManager *database.Manager) {
	h := NewHealthHandler(dbManager)
	r.GET("/health", h.Health)
	r.GET("/health/database", h.DatabaseHealth)
}

// Health godoc
// @Summary Liveness probe
// @Success 200 {string} string "OK"
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// DatabaseHealth godoc
// @Summary Database health
// @Description Reports connection state, breaker status and ping latency.
// @Produce json
// @Success 200 {object} database.ConnStatus
// @Failure 503 {object} database.ConnStatus
// @Router /health/database [get]
func (h *HealthHandler) DatabaseHealth(c *gin.Context) {
	status := h.dbManager.Status(c.Request.Context())
	code := http.StatusOK
	if status.State != database.StateConnected || status.PingError != "" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}
