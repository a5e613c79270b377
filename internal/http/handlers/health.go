package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	ping func() error
}

// NewHealthHandler takes the database ping used by the readiness probe.
func NewHealthHandler(ping func() error) *HealthHandler {
	return &HealthHandler{ping: ping}
}

func (h *HealthHandler) Healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "success", "message": "ok"})
}

func (h *HealthHandler) Readyz(ctx *gin.Context) {
	if err := h.ping(); err != nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "error",
			"message": "database unavailable",
		})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "success", "message": "ready"})
}
