package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vocalia/vocalia-backend/internal/apps"
	"github.com/vocalia/vocalia-backend/internal/config"
	"github.com/vocalia/vocalia-backend/internal/dto"
	"github.com/vocalia/vocalia-backend/internal/handlers"
	"github.com/vocalia/vocalia-backend/internal/mailer"
	"github.com/vocalia/vocalia-backend/internal/models"
	"github.com/vocalia/vocalia-backend/internal/routes"
	"github.com/vocalia/vocalia-backend/internal/seed"
	"github.com/vocalia/vocalia-backend/internal/services"
	"github.com/vocalia/vocalia-backend/internal/validation"
)

type testServer struct {
	app *fiber.App
	db  *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.VerificationToken{},
		&models.Plan{},
		&models.Subscription{},
		&models.PracticeMode{},
		&models.UserProgress{},
	))
	require.NoError(t, seed.Run(db))

	cfg := &config.Config{
		AuthSecret:    "integration-test-secret",
		SessionExpiry: time.Hour,
	}

	registry := apps.NewRegistry()
	registry.Register(&apps.AppConfig{
		AppID:     "web",
		AppName:   "Vocalia Web",
		Origin:    "http://localhost:5173",
		LoginPath: "/login",
		HomePath:  "/dashboard",
	})

	validate := validation.New()
	mail := mailer.New(cfg)
	subs := services.NewSubscriptionService(db)
	users := services.NewUserService(db)
	auth := services.NewAuthService(db, cfg, registry, mail, subs)
	dashboard := services.NewDashboardService(db, users, subs)
	plans := services.NewPlanService(db)
	require.NoError(t, dashboard.SeedDefaultModes())

	app := fiber.New()
	routes.Setup(app, cfg, auth,
		handlers.NewAuthHandler(auth, registry, cfg, validate),
		handlers.NewUserHandler(users, validate),
		handlers.NewDashboardHandler(dashboard),
		handlers.NewPlanHandler(plans),
		handlers.NewSubscriptionHandler(subs, dashboard, validate),
		handlers.NewAdminHandler(users, validate),
		handlers.NewHealthHandler(registry),
	)
	return &testServer{app: app, db: db}
}

func (ts *testServer) request(t *testing.T, method, path string, body interface{}, cookie *http.Cookie) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}

	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()

	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	resp.Body.Close()
	return out
}

func sessionCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == "vocalia_session" {
			return c
		}
	}
	return nil
}

func TestSignUpFlow(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.request(t, http.MethodPost, "/api/auth/sign-up", fiber.Map{
		"name": "Asha", "email": "asha@example.com", "password": "secret123",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	cookie := sessionCookie(resp)
	require.NotNil(t, cookie, "sign-up sets the session cookie")
	assert.True(t, cookie.HttpOnly)

	body := decode[dto.AuthResponse](t, resp)
	assert.Equal(t, models.RoleUser, body.User.Role)

	// The fresh cookie authenticates the session endpoint.
	resp = ts.request(t, http.MethodGet, "/api/auth/session", nil, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	session := decode[dto.SessionResponse](t, resp)
	assert.Equal(t, "asha@example.com", session.User.Email)
}

func TestSignUp_ValidationAndConflict(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.request(t, http.MethodPost, "/api/auth/sign-up", fiber.Map{
		"name": "Asha", "email": "not-an-email", "password": "secret123",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	payload := fiber.Map{"name": "Asha", "email": "asha@example.com", "password": "secret123"}
	resp = ts.request(t, http.MethodPost, "/api/auth/sign-up", payload, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = ts.request(t, http.MethodPost, "/api/auth/sign-up", payload, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestSignIn_UnverifiedEmailGets403(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.request(t, http.MethodPost, "/api/auth/sign-up", fiber.Map{
		"name": "Asha", "email": "asha@example.com", "password": "secret123",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = ts.request(t, http.MethodPost, "/api/auth/sign-in", fiber.Map{
		"email": "asha@example.com", "password": "secret123",
	}, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = ts.request(t, http.MethodPost, "/api/auth/sign-in", fiber.Map{
		"email": "asha@example.com", "password": "wrong-pass",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "invalid email or password", body.Message)
}

func TestSessionWithoutCookieIs401(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.request(t, http.MethodGet, "/api/auth/session", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSignOutRevokesCookieServerSide(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.request(t, http.MethodPost, "/api/auth/sign-up", fiber.Map{
		"name": "Asha", "email": "asha@example.com", "password": "secret123",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	cookie := sessionCookie(resp)
	require.NotNil(t, cookie)

	resp = ts.request(t, http.MethodPost, "/api/auth/sign-out", nil, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Replaying the old cookie must fail: the session row is revoked.
	resp = ts.request(t, http.MethodGet, "/api/auth/session", nil, cookie)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestDashboardEndpointsRequireSession(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{
		"/api/dashboard/modes",
		"/api/dashboard/user-details",
		"/api/dashboard/progress",
		"/api/user",
		"/api/subscription",
	} {
		resp := ts.request(t, http.MethodGet, path, nil, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}
}

func TestDashboardFlow(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.request(t, http.MethodPost, "/api/auth/sign-up", fiber.Map{
		"name": "Asha", "email": "asha@example.com", "password": "secret123",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	cookie := sessionCookie(resp)
	require.NotNil(t, cookie)

	resp = ts.request(t, http.MethodGet, "/api/dashboard/modes", nil, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	modes := decode[[]models.PracticeMode](t, resp)
	assert.Len(t, modes, 4)

	resp = ts.request(t, http.MethodGet, "/api/dashboard/user-details", nil, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	details := decode[dto.UserDetails](t, resp)
	require.NotNil(t, details.Subscription, "registration starts the free plan")
	assert.Equal(t, models.PlanTypeFree, details.Subscription.Plan.Type)

	resp = ts.request(t, http.MethodGet, "/api/dashboard/progress", nil, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	progress := decode[models.UserProgress](t, resp)
	assert.Zero(t, progress.SessionsCompleted)
}

func TestPlansArePublic(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.request(t, http.MethodGet, "/api/plans", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	plans := decode[[]models.Plan](t, resp)
	assert.Len(t, plans, 4)
}

func TestAdminGroupRejectsRegularUsers(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.request(t, http.MethodPost, "/api/auth/sign-up", fiber.Map{
		"name": "Asha", "email": "asha@example.com", "password": "secret123",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	cookie := sessionCookie(resp)

	resp = ts.request(t, http.MethodGet, "/api/admin/users", nil, cookie)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
