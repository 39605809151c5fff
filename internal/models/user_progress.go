package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// UserProgress tracks aggregate practice activity per user. A zero row is
// created on first dashboard read.
type UserProgress struct {
	ID                uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID            uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	SessionsCompleted int            `gorm:"default:0" json:"sessions_completed"`
	VoiceMinutesUsed  int            `gorm:"default:0" json:"voice_minutes_used"`
	TextMessagesUsed  int            `gorm:"default:0" json:"text_messages_used"`
	StreakDays        int            `gorm:"default:0" json:"streak_days"`
	LastPracticedAt   *time.Time     `json:"last_practiced_at,omitempty"`
	Stats             datatypes.JSON `json:"stats"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	User              User           `gorm:"foreignKey:UserID" json:"-"`
}
