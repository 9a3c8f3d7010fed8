package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yigit/edumanage/internal/app/models/dto"
)

// Pinger reports whether the backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthController reports liveness and store reachability
type HealthController struct {
	store  Pinger
	driver string
}

// NewHealthController creates a HealthController. store may be nil for the
// in-memory driver.
func NewHealthController(store Pinger, driver string) *HealthController {
	return &HealthController{store: store, driver: driver}
}

// Health godoc
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.HealthResponse}
// @Failure 503 {object} dto.APIResponse{data=dto.HealthResponse}
// @Router /health [get]
func (h *HealthController) Health(ctx *gin.Context) {
	resp := dto.HealthResponse{Status: "ok", Database: h.driver}

	if h.store != nil {
		pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.store.Ping(pingCtx); err != nil {
			resp.Status = "degraded"
			ctx.JSON(http.StatusServiceUnavailable, dto.APIResponse{Success: false, Data: resp, Timestamp: time.Now()})
			return
		}
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}
