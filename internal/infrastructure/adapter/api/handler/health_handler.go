package handler

import (
	"net/http"

	coreport "github.com/reelkit/credits-service/internal/domain/port/core"
	"github.com/gin-gonic/gin"
)

// HealthHandler handles liveness checks
type HealthHandler struct {
	ping         func() error
	timeProvider coreport.TimeProvider
}

// NewHealthHandler creates a new health handler instance
func NewHealthHandler(ping func() error, timeProvider coreport.TimeProvider) *HealthHandler {
	return &HealthHandler{
		ping:         ping,
		timeProvider: timeProvider,
	}
}

// Check handles the GET /health endpoint
func (h *HealthHandler) Check(c *gin.Context) {
	if h.ping != nil {
		if err := h.ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   h.timeProvider.Now().UTC(),
	})
}
