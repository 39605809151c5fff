package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/vocalia/vocalia-backend/internal/models"
)

func newDashboardService(t *testing.T) (*DashboardService, *gorm.DB) {
	t.Helper()

	db := newTestDB(t)
	subs := NewSubscriptionService(db)
	return NewDashboardService(db, NewUserService(db), subs), db
}

func TestSeedDefaultModes_InsertMissingOnly(t *testing.T) {
	t.Parallel()

	svc, db := newDashboardService(t)
	require.NoError(t, svc.SeedDefaultModes())

	modes, err := svc.Modes()
	require.NoError(t, err)
	require.Len(t, modes, 4)
	assert.Equal(t, "free-talk", modes[0].Key, "ordered by sort_order")

	// Ops edit survives a reseed.
	require.NoError(t, db.Model(&models.PracticeMode{}).
		Where("key = ?", "debate").
		Update("name", "Debate Club").Error)
	require.NoError(t, svc.SeedDefaultModes())

	var mode models.PracticeMode
	require.NoError(t, db.First(&mode, "key = ?", "debate").Error)
	assert.Equal(t, "Debate Club", mode.Name)
}

func TestModes_HidesInactive(t *testing.T) {
	t.Parallel()

	svc, db := newDashboardService(t)
	require.NoError(t, svc.SeedDefaultModes())
	require.NoError(t, db.Model(&models.PracticeMode{}).
		Where("key = ?", "interview").
		Update("is_active", false).Error)

	modes, err := svc.Modes()
	require.NoError(t, err)
	assert.Len(t, modes, 3)
}

func TestProgress_CreatesZeroRowOnFirstRead(t *testing.T) {
	t.Parallel()

	svc, db := newDashboardService(t)
	userID := createTestUser(t, db)

	progress, err := svc.Progress(userID)
	require.NoError(t, err)
	assert.Zero(t, progress.SessionsCompleted)
	assert.Nil(t, progress.LastPracticedAt)

	again, err := svc.Progress(userID)
	require.NoError(t, err)
	assert.Equal(t, progress.ID, again.ID)
}

func TestRecordPractice_StreakRules(t *testing.T) {
	t.Parallel()

	svc, db := newDashboardService(t)
	userID := createTestUser(t, db)

	progress, err := svc.RecordPractice(userID, 5, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, progress.SessionsCompleted)
	assert.Equal(t, 1, progress.StreakDays)
	assert.Equal(t, 5, progress.VoiceMinutesUsed)

	// Second session the same day counts usage but not the streak.
	progress, err = svc.RecordPractice(userID, 3, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, progress.SessionsCompleted)
	assert.Equal(t, 1, progress.StreakDays)
	assert.Equal(t, 8, progress.VoiceMinutesUsed)

	// Yesterday's practice extends the streak.
	yesterday := time.Now().AddDate(0, 0, -1)
	require.NoError(t, db.Model(&models.UserProgress{}).
		Where("user_id = ?", userID).
		Update("last_practiced_at", &yesterday).Error)
	progress, err = svc.RecordPractice(userID, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, progress.StreakDays)

	// A gap resets it.
	lastWeek := time.Now().AddDate(0, 0, -7)
	require.NoError(t, db.Model(&models.UserProgress{}).
		Where("user_id = ?", userID).
		Update("last_practiced_at", &lastWeek).Error)
	progress, err = svc.RecordPractice(userID, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, progress.StreakDays)
}

func TestUserDetails_WithAndWithoutSubscription(t *testing.T) {
	t.Parallel()

	svc, db := newDashboardService(t)
	userID := createTestUser(t, db)

	details, err := svc.UserDetails(userID)
	require.NoError(t, err)
	assert.Equal(t, userID, details.User.ID)
	assert.Nil(t, details.Subscription)

	_, err = NewSubscriptionService(db).Subscribe(userID, models.PlanTypeStandard)
	require.NoError(t, err)

	details, err = svc.UserDetails(userID)
	require.NoError(t, err)
	require.NotNil(t, details.Subscription)
	assert.Equal(t, models.PlanTypeStandard, details.Subscription.Plan.Type)
}
