package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"product-studio-backend/internal/models"
)

// Pinger is anything health can probe: the database and Redis clients.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	database Pinger
	redis    Pinger
}

// NewHealthHandler takes optional dependencies; a nil one is reported as "disabled".
func NewHealthHandler(database, redis Pinger) *HealthHandler {
	return &HealthHandler{database: database, redis: redis}
}

// Health godoc
// @Summary     Health check
// @Description Returns the health status of the API and its backing services
// @Tags        health
// @Accept      json
// @Produce     json
// @Success     200 {object} models.HealthResponse
// @Failure     503 {object} models.HealthResponse
// @Router      /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	response := models.HealthResponse{
		Status:   "ok",
		Database: probe(ctx, h.database),
		Redis:    probe(ctx, h.redis),
	}
	code := http.StatusOK
	if response.Database == "down" || response.Redis == "down" {
		response.Status = "degraded"
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, response)
}

func probe(ctx context.Context, p Pinger) string {
	if p == nil {
		return "disabled"
	}
	if err := p.Ping(ctx); err != nil {
		return "down"
	}
	return "ok"
}
