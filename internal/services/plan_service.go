package services

import (
	"gorm.io/gorm"

	"github.com/vocalia/vocalia-backend/internal/models"
)

type PlanService struct {
	db *gorm.DB
}

func NewPlanService(db *gorm.DB) *PlanService {
	return &PlanService{db: db}
}

// List returns active plans in pricing order. Plans are seeded data; the
// app never writes them.
func (s *PlanService) List() ([]models.Plan, error) {
	var plans []models.Plan
	err := s.db.Where("is_active = true").Order("price ASC").Find(&plans).Error
	return plans, err
}

func (s *PlanService) GetByType(planType string) (*models.Plan, error) {
	var plan models.Plan
	if err := s.db.Where("type = ?", planType).First(&plan).Error; err != nil {
		return nil, ErrPlanNotFound
	}
	return &plan, nil
}
