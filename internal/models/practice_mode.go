package models

import (
	"time"

	"github.com/google/uuid"
)

// PracticeMode is a voice practice mode shown on the dashboard.
type PracticeMode struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Key         string    `gorm:"size:50;not null;uniqueIndex" json:"key"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Description string    `gorm:"size:500" json:"description"`
	Icon        string    `gorm:"size:50" json:"icon"`
	Difficulty  string    `gorm:"size:20" json:"difficulty"`
	SortOrder   int       `gorm:"default:0" json:"sort_order"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
