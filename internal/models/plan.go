package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	PlanTypeFree     = "FREE"
	PlanTypeBasic    = "BASIC"
	PlanTypeStandard = "STANDARD"
	PlanTypePremium  = "PREMIUM"
)

// Plan rows are owned by the seed command; the app only reads them.
// Exactly one row exists per Type (seed upserts keyed on the unique index).
type Plan struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string         `gorm:"size:100;not null" json:"name"`
	Type         string         `gorm:"size:20;not null;uniqueIndex" json:"type"`
	Description  string         `gorm:"size:500" json:"description"`
	Price        float64        `gorm:"not null;default:0" json:"price"`
	Currency     string         `gorm:"size:10;default:'INR'" json:"currency"`
	BillingCycle string         `gorm:"size:20;default:'monthly'" json:"billing_cycle"`
	VoiceMinutes int            `json:"voice_minutes"`
	TextMessages int            `json:"text_messages"`
	Features     datatypes.JSON `json:"features"`
	IsActive     bool           `gorm:"default:true" json:"is_active"`
	IsPopular    bool           `gorm:"default:false" json:"is_popular"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}
