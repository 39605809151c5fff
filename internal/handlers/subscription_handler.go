package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/vocalia/vocalia-backend/internal/apps"
	"github.com/vocalia/vocalia-backend/internal/dto"
	"github.com/vocalia/vocalia-backend/internal/services"
	"github.com/vocalia/vocalia-backend/internal/validation"
)

type SubscriptionHandler struct {
	subscriptionService *services.SubscriptionService
	dashboardService    *services.DashboardService
	validate            *validation.Validator
}

func NewSubscriptionHandler(subs *services.SubscriptionService, dashboard *services.DashboardService, validate *validation.Validator) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subs, dashboardService: dashboard, validate: validate}
}

func (h *SubscriptionHandler) Get(c *fiber.Ctx) error {
	user := apps.CurrentUser(c)
	if user == nil {
		return unauthorized(c)
	}

	sub, err := h.subscriptionService.GetForUser(user.ID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "No subscription found",
		})
	}
	return c.JSON(sub)
}

func (h *SubscriptionHandler) Subscribe(c *fiber.Ctx) error {
	user := apps.CurrentUser(c)
	if user == nil {
		return unauthorized(c)
	}

	var req dto.SubscribeRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return badRequest(c, err.Error())
	}

	sub, err := h.subscriptionService.Subscribe(user.ID, req.PlanType)
	if err != nil {
		if errors.Is(err, services.ErrPlanNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to update subscription",
		})
	}
	return c.JSON(sub)
}

func (h *SubscriptionHandler) Cancel(c *fiber.Ctx) error {
	user := apps.CurrentUser(c)
	if user == nil {
		return unauthorized(c)
	}

	sub, err := h.subscriptionService.Cancel(user.ID)
	if err != nil {
		if errors.Is(err, services.ErrNoSubscription) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to cancel subscription",
		})
	}
	return c.JSON(sub)
}

// RecordUsage charges a practice session against the subscription and
// folds it into the dashboard progress.
func (h *SubscriptionHandler) RecordUsage(c *fiber.Ctx) error {
	user := apps.CurrentUser(c)
	if user == nil {
		return unauthorized(c)
	}

	var req dto.UsageRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return badRequest(c, err.Error())
	}

	sub, err := h.subscriptionService.RecordUsage(user.ID, req.VoiceMinutes, req.TextMessages)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUsageLimitExceeded):
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, services.ErrNoSubscription):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to record usage",
		})
	}

	if _, err := h.dashboardService.RecordPractice(user.ID, req.VoiceMinutes, req.TextMessages); err != nil {
		slog.Error("failed to update practice progress", "user_id", user.ID, "error", err)
	}
	return c.JSON(sub)
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error: true, Message: "Unauthorized",
	})
}
