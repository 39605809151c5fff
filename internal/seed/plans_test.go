package seed

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vocalia/vocalia-backend/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.Plan{}))
	return db
}

func TestRun_EmptyDatabaseInsertsFourPlans(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	require.NoError(t, Run(db))

	var count int64
	require.NoError(t, db.Model(&models.Plan{}).Count(&count).Error)
	assert.EqualValues(t, 4, count)

	for _, planType := range []string{
		models.PlanTypeFree, models.PlanTypeBasic,
		models.PlanTypeStandard, models.PlanTypePremium,
	} {
		var plan models.Plan
		require.NoError(t, db.Where("type = ?", planType).First(&plan).Error, planType)
	}
}

func TestRun_SecondRunIsIdempotent(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	require.NoError(t, Run(db))
	require.NoError(t, Run(db))

	var count int64
	require.NoError(t, db.Model(&models.Plan{}).Count(&count).Error)
	assert.EqualValues(t, 4, count)
}

func TestRun_OverwritesDriftedPlan(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	require.NoError(t, Run(db))

	// Ops drift: someone edited the price by hand.
	require.NoError(t, db.Model(&models.Plan{}).
		Where("type = ?", models.PlanTypeStandard).
		Update("price", 250).Error)

	require.NoError(t, Run(db))

	var plan models.Plan
	require.NoError(t, db.Where("type = ?", models.PlanTypeStandard).First(&plan).Error)
	assert.EqualValues(t, 300, plan.Price)

	var count int64
	require.NoError(t, db.Model(&models.Plan{}).Where("type = ?", models.PlanTypeStandard).Count(&count).Error)
	assert.EqualValues(t, 1, count, "no duplicate row")
}

func TestPlans_CatalogShape(t *testing.T) {
	t.Parallel()

	plans := Plans()
	require.Len(t, plans, 4)

	var popular int
	for _, p := range plans {
		assert.True(t, p.IsActive, p.Type)
		assert.NotEmpty(t, p.Features, p.Type)
		if p.IsPopular {
			popular++
		}
	}
	assert.Equal(t, 1, popular)
}
