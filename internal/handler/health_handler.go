package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// PingFunc checks that a backing store is reachable.
type PingFunc func(ctx context.Context) error

type HealthHandler struct {
	ping    PingFunc
	timeout time.Duration
}

func NewHealthHandler(ping PingFunc, timeout time.Duration) *HealthHandler {
	return &HealthHandler{ping: ping, timeout: timeout}
}

// Health godoc
// @Summary      Liveness and store connectivity
// @Tags         Health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	if err := h.ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
