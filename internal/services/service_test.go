package services

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vocalia/vocalia-backend/internal/apps"
	"github.com/vocalia/vocalia-backend/internal/config"
	"github.com/vocalia/vocalia-backend/internal/mailer"
	"github.com/vocalia/vocalia-backend/internal/models"
	"github.com/vocalia/vocalia-backend/internal/seed"
)

// newTestDB opens an in-memory database migrated to the full schema and
// seeds the plan catalog.
func newTestDB(t *testing.T) *gorm.DB {
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
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		AuthSecret:    "test-secret-not-for-production",
		SessionExpiry: time.Hour,
	}
}

func testRegistry() *apps.Registry {
	r := apps.NewRegistry()
	r.Register(&apps.AppConfig{
		AppID:            "web",
		AppName:          "Vocalia Web",
		Origin:           "http://localhost:5173",
		LoginPath:        "/login",
		HomePath:         "/dashboard",
		EnforceAdminRole: true,
	})
	return r
}

func newAuthService(t *testing.T) (*AuthService, *gorm.DB) {
	t.Helper()

	db := newTestDB(t)
	cfg := testConfig()
	subs := NewSubscriptionService(db)
	return NewAuthService(db, cfg, testRegistry(), mailer.New(cfg), subs), db
}
