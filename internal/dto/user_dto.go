package dto

import "github.com/vocalia/vocalia-backend/internal/models"

type UpdateProfileRequest struct {
	Name   string  `json:"name" validate:"required,min=2,max=255"`
	Avatar *string `json:"avatar,omitempty" validate:"omitempty,url"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin user"`
}

// UserDetails is the dashboard's composite view: profile plus the current
// subscription with its plan embedded.
type UserDetails struct {
	User         UserResponse         `json:"user"`
	Subscription *models.Subscription `json:"subscription,omitempty"`
}
