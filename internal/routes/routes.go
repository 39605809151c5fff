package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/vocalia/vocalia-backend/internal/config"
	"github.com/vocalia/vocalia-backend/internal/handlers"
	"github.com/vocalia/vocalia-backend/internal/middleware"
	"github.com/vocalia/vocalia-backend/internal/services"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	authService *services.AuthService,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	dashboardHandler *handlers.DashboardHandler,
	planHandler *handlers.PlanHandler,
	subscriptionHandler *handlers.SubscriptionHandler,
	adminHandler *handlers.AdminHandler,
	healthHandler *handlers.HealthHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)
	api.Get("/plans", planHandler.List)

	// Credential endpoints get a stricter limit: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/sign-up", authHandler.SignUp)
	auth.Post("/sign-in", authHandler.SignIn)
	auth.Post("/verify-email", authHandler.VerifyEmail)
	auth.Post("/forgot-password", authHandler.ForgotPassword)
	auth.Post("/reset-password", authHandler.ResetPassword)
	auth.Get("/google", authHandler.GoogleRedirect)
	auth.Get("/google/callback", authHandler.GoogleCallback)

	// Session-backed routes. The session endpoint sits outside the strict
	// auth limiter because the frontends poll it on every load.
	jwtGuard := middleware.JWTProtected(cfg)
	loadSession := middleware.SessionLoader(authService)

	api.Get("/auth/session", jwtGuard, loadSession, authHandler.Session)
	api.Post("/auth/sign-out", jwtGuard, loadSession, authHandler.SignOut)

	api.Get("/user", jwtGuard, loadSession, userHandler.Profile)
	api.Put("/user", jwtGuard, loadSession, userHandler.UpdateProfile)

	dashboard := api.Group("/dashboard", jwtGuard, loadSession)
	dashboard.Get("/modes", dashboardHandler.Modes)
	dashboard.Get("/user-details", dashboardHandler.UserDetails)
	dashboard.Get("/progress", dashboardHandler.Progress)

	api.Get("/subscription", jwtGuard, loadSession, subscriptionHandler.Get)
	api.Post("/subscription", jwtGuard, loadSession, subscriptionHandler.Subscribe)
	api.Post("/subscription/cancel", jwtGuard, loadSession, subscriptionHandler.Cancel)
	api.Post("/usage", jwtGuard, loadSession, subscriptionHandler.RecordUsage)

	admin := api.Group("/admin", jwtGuard, loadSession, middleware.AdminRequired(cfg))
	admin.Get("/users", adminHandler.ListUsers)
	admin.Put("/users/:id/role", adminHandler.UpdateUserRole)
}
