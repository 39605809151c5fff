package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/vocalia/vocalia-backend/internal/apps"
	"github.com/vocalia/vocalia-backend/internal/dto"
)

// Paths that are not tied to a frontend app.
var appSkipPaths = []string{
	"/api/health",
}

// AppResolver attributes the request to a registered frontend app, checked
// in order: explicit X-App-ID header, Origin match, default app. An unknown
// explicit id is rejected; everything else falls back to the default so
// plain curl requests still work.
func AppResolver(registry *apps.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		for _, skip := range appSkipPaths {
			if strings.HasPrefix(path, skip) {
				return c.Next()
			}
		}

		if appID := c.Get("X-App-ID"); appID != "" {
			if !registry.Exists(appID) {
				return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
					Error:   true,
					Message: "Invalid X-App-ID: " + appID,
				})
			}
			c.Locals("app_id", appID)
			return c.Next()
		}

		if origin := c.Get("Origin"); origin != "" {
			if cfg := registry.ByOrigin(origin); cfg != nil {
				c.Locals("app_id", cfg.AppID)
				return c.Next()
			}
		}

		if cfg := registry.Default(); cfg != nil {
			c.Locals("app_id", cfg.AppID)
		}
		return c.Next()
	}
}
