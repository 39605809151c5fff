package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vocalia/vocalia-backend/internal/models"
)

var (
	ErrPlanNotFound       = errors.New("plan not found")
	ErrNoSubscription     = errors.New("no subscription found")
	ErrUsageLimitExceeded = errors.New("usage limit exceeded")
)

const billingPeriod = 30 * 24 * time.Hour

type SubscriptionService struct {
	db *gorm.DB
}

func NewSubscriptionService(db *gorm.DB) *SubscriptionService {
	return &SubscriptionService{db: db}
}

// Subscribe puts the user on the named plan. An existing current
// subscription is moved to the new plan with a fresh period; otherwise a
// new one is created. Usage counters reset on plan change.
func (s *SubscriptionService) Subscribe(userID uuid.UUID, planType string) (*models.Subscription, error) {
	var plan models.Plan
	if err := s.db.Where("type = ? AND is_active = true", planType).First(&plan).Error; err != nil {
		return nil, ErrPlanNotFound
	}

	now := time.Now()

	var sub models.Subscription
	err := s.currentScope(userID).First(&sub).Error
	if err == nil {
		updates := map[string]interface{}{
			"plan_id":              plan.ID,
			"status":               models.SubscriptionActive,
			"current_period_start": now,
			"current_period_end":   now.Add(billingPeriod),
			"cancel_at_period_end": false,
			"cancelled_at":         nil,
			"voice_minutes_used":   0,
			"text_messages_used":   0,
		}
		if err := s.db.Model(&sub).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update subscription: %w", err)
		}
		return s.GetForUser(userID)
	}

	sub = models.Subscription{
		ID:                 uuid.New(),
		UserID:             userID,
		PlanID:             plan.ID,
		Status:             models.SubscriptionActive,
		CurrentPeriodStart: now,
		CurrentPeriodEnd:   now.Add(billingPeriod),
	}
	if err := s.db.Create(&sub).Error; err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}
	return s.GetForUser(userID)
}

// GetForUser returns the user's current subscription with the plan
// embedded.
func (s *SubscriptionService) GetForUser(userID uuid.UUID) (*models.Subscription, error) {
	var sub models.Subscription
	if err := s.currentScope(userID).Preload("Plan").First(&sub).Error; err != nil {
		return nil, ErrNoSubscription
	}
	return &sub, nil
}

// Cancel flags the subscription to lapse at period end. Access stays until
// then.
func (s *SubscriptionService) Cancel(userID uuid.UUID) (*models.Subscription, error) {
	sub, err := s.GetForUser(userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	err = s.db.Model(sub).Updates(map[string]interface{}{
		"status":               models.SubscriptionCancelled,
		"cancel_at_period_end": true,
		"cancelled_at":         &now,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to cancel subscription: %w", err)
	}
	return s.GetForUser(userID)
}

// RecordUsage adds to the usage counters, rejecting increments that would
// push past the plan limits. Negative deltas are rejected outright.
func (s *SubscriptionService) RecordUsage(userID uuid.UUID, voiceMinutes, textMessages int) (*models.Subscription, error) {
	if voiceMinutes < 0 || textMessages < 0 {
		return nil, errors.New("usage increments must not be negative")
	}

	sub, err := s.GetForUser(userID)
	if err != nil {
		return nil, err
	}

	if sub.VoiceMinutesUsed+voiceMinutes > sub.Plan.VoiceMinutes ||
		sub.TextMessagesUsed+textMessages > sub.Plan.TextMessages {
		return nil, ErrUsageLimitExceeded
	}

	err = s.db.Model(sub).Updates(map[string]interface{}{
		"voice_minutes_used": gorm.Expr("voice_minutes_used + ?", voiceMinutes),
		"text_messages_used": gorm.Expr("text_messages_used + ?", textMessages),
	}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to record usage: %w", err)
	}
	return s.GetForUser(userID)
}

// ExpireLapsed marks every subscription whose period has ended as expired.
// Run periodically from the server.
func (s *SubscriptionService) ExpireLapsed() (int64, error) {
	result := s.db.Model(&models.Subscription{}).
		Where("current_period_end < ? AND status <> ?", time.Now(), models.SubscriptionExpired).
		Update("status", models.SubscriptionExpired)
	return result.RowsAffected, result.Error
}

// currentScope selects the user's newest non-expired subscription.
func (s *SubscriptionService) currentScope(userID uuid.UUID) *gorm.DB {
	return s.db.
		Where("user_id = ? AND status <> ?", userID, models.SubscriptionExpired).
		Order("created_at DESC")
}
