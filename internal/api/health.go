package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Health reports whether the database and Redis are reachable
// GET /health
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	dbErr, redisErr := h.health(ctx)

	status := http.StatusOK
	overall := "ok"
	if dbErr != nil || redisErr != nil {
		status = http.StatusServiceUnavailable
		overall = "degraded"
	}

	c.JSON(status, gin.H{
		"status":   overall,
		"service":  h.serviceName,
		"database": componentStatus(dbErr),
		"redis":    componentStatus(redisErr),
	})
}

func componentStatus(err error) string {
	if err != nil {
		return "down"
	}
	return "up"
}
