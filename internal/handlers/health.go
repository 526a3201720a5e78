package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace-backend/internal/models"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports "ok" when the store answers a ping. A nil pinger
// (store not configured) still reports ok so the process can be probed.
func HealthHandler(pinger Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if pinger != nil {
			if err := pinger.Ping(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, models.HealthResponse{Status: "degraded"})
				return
			}
		}
		c.JSON(http.StatusOK, models.HealthResponse{Status: "ok"})
	}
}
