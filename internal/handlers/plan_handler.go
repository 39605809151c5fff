package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vocalia/vocalia-backend/internal/dto"
	"github.com/vocalia/vocalia-backend/internal/services"
)

type PlanHandler struct {
	planService *services.PlanService
}

func NewPlanHandler(planService *services.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

func (h *PlanHandler) List(c *fiber.Ctx) error {
	plans, err := h.planService.List()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load plans",
		})
	}
	return c.JSON(plans)
}
