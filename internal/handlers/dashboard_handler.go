package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vocalia/vocalia-backend/internal/apps"
	"github.com/vocalia/vocalia-backend/internal/dto"
	"github.com/vocalia/vocalia-backend/internal/services"
)

type DashboardHandler struct {
	dashboardService *services.DashboardService
}

func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

func (h *DashboardHandler) Modes(c *fiber.Ctx) error {
	modes, err := h.dashboardService.Modes()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load practice modes",
		})
	}
	return c.JSON(modes)
}

func (h *DashboardHandler) UserDetails(c *fiber.Ctx) error {
	user := apps.CurrentUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	details, err := h.dashboardService.UserDetails(user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load user details",
		})
	}
	return c.JSON(details)
}

func (h *DashboardHandler) Progress(c *fiber.Ctx) error {
	user := apps.CurrentUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	progress, err := h.dashboardService.Progress(user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load progress",
		})
	}
	return c.JSON(progress)
}
