package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/verustcode/valreport/consts"
)

// HealthHandler reports service liveness and dependency state
type HealthHandler struct {
	// dbCheck is nil when the history database is disabled
	dbCheck        func() error
	backendEnabled bool
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(dbCheck func() error, backendEnabled bool) *HealthHandler {
	return &HealthHandler{dbCheck: dbCheck, backendEnabled: backendEnabled}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	status := "ok"
	code := http.StatusOK

	database := "disabled"
	if h.dbCheck != nil {
		database = "ok"
		if err := h.dbCheck(); err != nil {
			database = "unavailable"
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}

	c.JSON(code, gin.H{
		"status":   status,
		"version":  consts.Version,
		"uptime":   consts.GetUptime().Round(time.Second).String(),
		"database": database,
		"backend":  h.backendEnabled,
	})
}
