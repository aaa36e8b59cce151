package routes

import (
	"context"
	"net/http"
	"time"

	"Wildfund/internal/contracts"
	"Wildfund/internal/logger"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Health(c *gin.Context) {
	if h.DatabaseCheck == nil {
		c.JSON(http.StatusOK, contracts.HealthResponse{Status: "ok", Database: "unknown"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.DatabaseCheck(ctx); err != nil {
		logger.Warn().Err(err).Msg("Health check do banco falhou")
		c.JSON(http.StatusServiceUnavailable, contracts.HealthResponse{Status: "degraded", Database: "down"})
		return
	}

	c.JSON(http.StatusOK, contracts.HealthResponse{Status: "ok", Database: "up"})
}
