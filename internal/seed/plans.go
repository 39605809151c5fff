// Package seed owns the canonical subscription plan catalog. Running it is
// idempotent: plans are upserted keyed on their unique type.
package seed

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/vocalia/vocalia-backend/internal/models"
)

// Plans returns the literal plan catalog. Prices are INR per month.
func Plans() []models.Plan {
	return []models.Plan{
		{
			Name:         "Free",
			Type:         models.PlanTypeFree,
			Description:  "Try Vocalia with a small monthly allowance",
			Price:        0,
			Currency:     "INR",
			BillingCycle: "monthly",
			VoiceMinutes: 30,
			TextMessages: 100,
			Features:     featureList("30 voice minutes / month", "100 text messages / month", "Free Talk mode"),
			IsActive:     true,
		},
		{
			Name:         "Basic",
			Type:         models.PlanTypeBasic,
			Description:  "For regular practice a few times a week",
			Price:        150,
			Currency:     "INR",
			BillingCycle: "monthly",
			VoiceMinutes: 120,
			TextMessages: 500,
			Features:     featureList("120 voice minutes / month", "500 text messages / month", "All practice modes", "Progress tracking"),
			IsActive:     true,
		},
		{
			Name:         "Standard",
			Type:         models.PlanTypeStandard,
			Description:  "Daily practice with full feedback",
			Price:        300,
			Currency:     "INR",
			BillingCycle: "monthly",
			VoiceMinutes: 300,
			TextMessages: 1500,
			Features:     featureList("300 voice minutes / month", "1500 text messages / month", "All practice modes", "Detailed feedback reports", "Priority support"),
			IsActive:     true,
			IsPopular:    true,
		},
		{
			Name:         "Premium",
			Type:         models.PlanTypePremium,
			Description:  "Everything, for heavy daily use",
			Price:        600,
			Currency:     "INR",
			BillingCycle: "monthly",
			VoiceMinutes: 1000,
			TextMessages: 5000,
			Features:     featureList("1000 voice minutes / month", "5000 text messages / month", "All practice modes", "Detailed feedback reports", "Priority support", "Early access features"),
			IsActive:     true,
		},
	}
}

// Run upserts each plan definition in order. A found row is overwritten
// field by field; a missing one is inserted. The loop is sequential and
// stops on the first failure, leaving earlier plans applied.
func Run(db *gorm.DB) error {
	for _, def := range Plans() {
		var existing models.Plan
		err := db.Where("type = ?", def.Type).First(&existing).Error
		if err == nil {
			if err := db.Model(&existing).Updates(map[string]interface{}{
				"name":          def.Name,
				"description":   def.Description,
				"price":         def.Price,
				"currency":      def.Currency,
				"billing_cycle": def.BillingCycle,
				"voice_minutes": def.VoiceMinutes,
				"text_messages": def.TextMessages,
				"features":      def.Features,
				"is_active":     def.IsActive,
				"is_popular":    def.IsPopular,
			}).Error; err != nil {
				return fmt.Errorf("failed to update plan %s: %w", def.Type, err)
			}
			slog.Info("plan updated", "type", def.Type, "price", def.Price)
			continue
		}

		def.ID = uuid.New()
		if err := db.Create(&def).Error; err != nil {
			return fmt.Errorf("failed to create plan %s: %w", def.Type, err)
		}
		slog.Info("plan created", "type", def.Type, "price", def.Price)
	}
	return nil
}

func featureList(features ...string) datatypes.JSON {
	b, _ := json.Marshal(features)
	return datatypes.JSON(b)
}
