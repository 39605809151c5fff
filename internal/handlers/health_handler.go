package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/vocalia/vocalia-backend/internal/apps"
	"github.com/vocalia/vocalia-backend/internal/database"
	"github.com/vocalia/vocalia-backend/internal/dto"
)

type HealthHandler struct {
	registry *apps.Registry
}

func NewHealthHandler(registry *apps.Registry) *HealthHandler {
	return &HealthHandler{registry: registry}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	dbStatus := "ok"
	if err := database.Ping(); err != nil {
		dbStatus = "unhealthy: " + err.Error()
	}

	return c.JSON(dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
		AppCount:  len(h.registry.All()),
	})
}
