package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/vocalia/vocalia-backend/internal/apps"
	"github.com/vocalia/vocalia-backend/internal/config"
	"github.com/vocalia/vocalia-backend/internal/dto"
	"github.com/vocalia/vocalia-backend/internal/middleware"
	"github.com/vocalia/vocalia-backend/internal/services"
	"github.com/vocalia/vocalia-backend/internal/validation"
)

const oauthStateCookie = "vocalia_oauth_state"

type AuthHandler struct {
	authService *services.AuthService
	registry    *apps.Registry
	cfg         *config.Config
	validate    *validation.Validator
}

func NewAuthHandler(authService *services.AuthService, registry *apps.Registry, cfg *config.Config, validate *validation.Validator) *AuthHandler {
	return &AuthHandler{authService: authService, registry: registry, cfg: cfg, validate: validate}
}

func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return badRequest(c, err.Error())
	}

	resp, err := h.authService.Register(apps.GetAppID(c), &req)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return badRequest(c, err.Error())
	}

	h.setSessionCookie(c, resp.Token)
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *AuthHandler) SignIn(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return badRequest(c, err.Error())
	}

	resp, err := h.authService.Login(apps.GetAppID(c), &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, services.ErrEmailNotVerified):
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}

	h.setSessionCookie(c, resp.Token)
	return c.JSON(resp)
}

func (h *AuthHandler) SignOut(c *fiber.Ctx) error {
	sid, err := apps.GetSessionID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	if err := h.authService.Logout(sid); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to sign out",
		})
	}

	h.clearSessionCookie(c)
	return c.JSON(dto.MessageResponse{Message: "Signed out successfully"})
}

// Session reports the authenticated user. Unauthenticated requests never
// reach this handler; they get 401 from the session middleware, which the
// client SDK maps to a nil session.
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	user := apps.CurrentUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}
	return c.JSON(dto.SessionResponse{User: dto.NewUserResponse(user)})
}

func (h *AuthHandler) VerifyEmail(c *fiber.Ctx) error {
	var req dto.VerifyEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.authService.VerifyEmail(req.Token); err != nil {
		return badRequest(c, "Invalid or expired verification token")
	}
	return c.JSON(dto.MessageResponse{Message: "Email verified"})
}

func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.authService.RequestPasswordReset(apps.GetAppID(c), req.Email); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}
	// Same answer whether or not the account exists.
	return c.JSON(dto.MessageResponse{Message: "If the account exists, a reset email has been sent"})
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.authService.ResetPassword(req.Token, req.Password); err != nil {
		return badRequest(c, "Invalid or expired reset token")
	}
	return c.JSON(dto.MessageResponse{Message: "Password updated"})
}

// GoogleRedirect starts the Google code flow with a state nonce bound to a
// short-lived cookie.
func (h *AuthHandler) GoogleRedirect(c *fiber.Ctx) error {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}
	state := hex.EncodeToString(buf)

	c.Cookie(&fiber.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Expires:  time.Now().Add(10 * time.Minute),
		HTTPOnly: true,
		SameSite: "Lax",
		Path:     "/",
	})
	return c.Redirect(h.authService.GoogleAuthURL(state), fiber.StatusFound)
}

func (h *AuthHandler) GoogleCallback(c *fiber.Ctx) error {
	state := c.Query("state")
	if state == "" || state != c.Cookies(oauthStateCookie) {
		return badRequest(c, "Invalid OAuth state")
	}
	code := c.Query("code")
	if code == "" {
		return badRequest(c, "Missing authorization code")
	}

	appID := apps.GetAppID(c)
	resp, err := h.authService.GoogleSignIn(c.Context(), appID, code)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Google sign-in failed",
		})
	}

	h.setSessionCookie(c, resp.Token)

	app := h.registry.Get(appID)
	if app == nil {
		app = h.registry.Default()
	}
	if app != nil {
		return c.Redirect(app.Origin+app.HomePath, fiber.StatusFound)
	}
	return c.JSON(resp)
}

func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Expires:  time.Now().Add(h.cfg.SessionExpiry),
		HTTPOnly: true,
		SameSite: "Lax",
		Path:     "/",
	})
}

func (h *AuthHandler) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
		Path:     "/",
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: true, Message: message,
	})
}
