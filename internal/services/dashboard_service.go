package services

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vocalia/vocalia-backend/internal/dto"
	"github.com/vocalia/vocalia-backend/internal/models"
)

type DashboardService struct {
	db            *gorm.DB
	users         *UserService
	subscriptions *SubscriptionService
}

func NewDashboardService(db *gorm.DB, users *UserService, subs *SubscriptionService) *DashboardService {
	return &DashboardService{db: db, users: users, subscriptions: subs}
}

// Modes lists active practice modes in display order.
func (s *DashboardService) Modes() ([]models.PracticeMode, error) {
	var modes []models.PracticeMode
	err := s.db.Where("is_active = true").Order("sort_order ASC").Find(&modes).Error
	return modes, err
}

// UserDetails is the dashboard's composite profile view. A user without a
// subscription still gets their profile back.
func (s *DashboardService) UserDetails(userID uuid.UUID) (*dto.UserDetails, error) {
	user, err := s.users.Get(userID)
	if err != nil {
		return nil, err
	}

	details := &dto.UserDetails{User: dto.NewUserResponse(user)}
	if sub, err := s.subscriptions.GetForUser(userID); err == nil {
		details.Subscription = sub
	}
	return details, nil
}

// Progress returns the user's progress row, creating a zero row on first
// read.
func (s *DashboardService) Progress(userID uuid.UUID) (*models.UserProgress, error) {
	var progress models.UserProgress
	err := s.db.Where("user_id = ?", userID).First(&progress).Error
	if err == nil {
		return &progress, nil
	}

	progress = models.UserProgress{
		ID:     uuid.New(),
		UserID: userID,
	}
	if err := s.db.Create(&progress).Error; err != nil {
		return nil, err
	}
	return &progress, nil
}

// RecordPractice folds one practice session into the progress row. The
// streak grows on consecutive days and resets after a gap.
func (s *DashboardService) RecordPractice(userID uuid.UUID, voiceMinutes, textMessages int) (*models.UserProgress, error) {
	progress, err := s.Progress(userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	streak := progress.StreakDays
	switch {
	case progress.LastPracticedAt == nil:
		streak = 1
	case sameDay(*progress.LastPracticedAt, now):
		// already counted today
	case sameDay(progress.LastPracticedAt.AddDate(0, 0, 1), now):
		streak++
	default:
		streak = 1
	}

	err = s.db.Model(progress).Updates(map[string]interface{}{
		"sessions_completed": gorm.Expr("sessions_completed + 1"),
		"voice_minutes_used": gorm.Expr("voice_minutes_used + ?", voiceMinutes),
		"text_messages_used": gorm.Expr("text_messages_used + ?", textMessages),
		"streak_days":        streak,
		"last_practiced_at":  &now,
	}).Error
	if err != nil {
		return nil, err
	}
	return s.Progress(userID)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

var defaultModes = []models.PracticeMode{
	{Key: "free-talk", Name: "Free Talk", Description: "Open-ended conversation on any topic", Icon: "chat", Difficulty: "easy", SortOrder: 1},
	{Key: "interview", Name: "Interview Practice", Description: "Mock interviews with follow-up questions", Icon: "briefcase", Difficulty: "medium", SortOrder: 2},
	{Key: "presentation", Name: "Presentation Coach", Description: "Practice talks and get pacing feedback", Icon: "presentation", Difficulty: "medium", SortOrder: 3},
	{Key: "debate", Name: "Debate Mode", Description: "Argue a position against the AI", Icon: "scale", Difficulty: "hard", SortOrder: 4},
}

// SeedDefaultModes inserts the built-in practice modes that are missing.
// Existing rows are left untouched so ops edits survive restarts.
func (s *DashboardService) SeedDefaultModes() error {
	seeded := 0
	for _, mode := range defaultModes {
		var existing models.PracticeMode
		if err := s.db.Where("key = ?", mode.Key).First(&existing).Error; err == nil {
			continue
		}
		mode.ID = uuid.New()
		mode.IsActive = true
		if err := s.db.Create(&mode).Error; err != nil {
			return err
		}
		seeded++
	}
	if seeded > 0 {
		slog.Info("seeded practice modes", "new", seeded, "total", len(defaultModes))
	}
	return nil
}
