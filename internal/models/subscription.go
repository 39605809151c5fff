package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	SubscriptionActive    = "ACTIVE"
	SubscriptionCancelled = "CANCELLED"
	SubscriptionExpired   = "EXPIRED"
	SubscriptionPastDue   = "PAST_DUE"
	SubscriptionTrial     = "TRIAL"
)

type Subscription struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID             uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	PlanID             uuid.UUID  `gorm:"type:uuid;not null;index" json:"plan_id"`
	Status             string     `gorm:"size:20;not null;default:'ACTIVE'" json:"status"`
	CurrentPeriodStart time.Time  `json:"current_period_start"`
	CurrentPeriodEnd   time.Time  `json:"current_period_end"`
	CancelAtPeriodEnd  bool       `gorm:"default:false" json:"cancel_at_period_end"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	VoiceMinutesUsed   int        `gorm:"default:0" json:"voice_minutes_used"`
	TextMessagesUsed   int        `gorm:"default:0" json:"text_messages_used"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
	User               User       `gorm:"foreignKey:UserID" json:"-"`
	Plan               Plan       `gorm:"foreignKey:PlanID" json:"plan"`
}
