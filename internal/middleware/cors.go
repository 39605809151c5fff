package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/vocalia/vocalia-backend/internal/apps"
	"github.com/vocalia/vocalia-backend/internal/config"
)

// CORS allows exactly the registered frontend origins. Credentials are on
// because sessions ride in a cookie.
func CORS(cfg *config.Config, registry *apps.Registry) fiber.Handler {
	origins := registry.CORSOrigins()
	if origins == "" {
		origins = cfg.CORSOrigins
	}
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Authorization, Accept, X-App-ID",
		AllowMethods:     "GET, POST, PUT, DELETE, PATCH, OPTIONS",
		AllowCredentials: true,
	})
}
