package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskboard-api/internal/dto"
	"github.com/yukikurage/taskboard-api/internal/logging"
)

const healthCheckTimeout = 2 * time.Second

// Pinger reports whether the store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	store Pinger
}

func NewHealthHandler(store Pinger) *HealthHandler {
	return &HealthHandler{store: store}
}

// Check responds 200 when the store answers a ping, 503 otherwise.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		logging.FromContext(ctx).Warn("health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, dto.HealthResponse{
			Status:   "error",
			Database: "disconnected",
		})
		return
	}

	c.JSON(http.StatusOK, dto.HealthResponse{
		Status:   "ok",
		Database: "connected",
	})
}
