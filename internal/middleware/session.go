package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vocalia/vocalia-backend/internal/apps"
	"github.com/vocalia/vocalia-backend/internal/dto"
	"github.com/vocalia/vocalia-backend/internal/services"
)

// SessionLoader resolves the sid claim of an already verified token to its
// session row and user. Rejects revoked and expired sessions, so a signed
// token alone is not enough after sign-out.
func SessionLoader(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid, err := apps.GetSessionID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		user, err := authService.ValidateSession(sid)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized: session revoked or expired",
			})
		}

		c.Locals("current_user", user)
		c.Locals("session_id", sid)
		return c.Next()
	}
}
