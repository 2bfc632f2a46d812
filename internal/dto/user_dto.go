package dto

import (
	"time"

	"github.com/google/uuid"
)

type RegisterRequest struct {
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=8"`
	FullName     string `json:"full_name" validate:"required,min=2"`
	Phone        string `json:"phone" validate:"omitempty,min=6"`
	BusinessName string `json:"business_name"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token     string              `json:"token"`
	ExpiresAt time.Time           `json:"expires_at"`
	User      UserProfileResponse `json:"user"`
	// LinkedApplications counts prior applications attached on registration.
	LinkedApplications int64 `json:"linked_applications,omitempty"`
}

type UserProfileResponse struct {
	Id                  uuid.UUID  `json:"id"`
	Email               string     `json:"email"`
	FullName            string     `json:"full_name"`
	Phone               string     `json:"phone,omitempty"`
	BusinessName        string     `json:"business_name,omitempty"`
	Role                string     `json:"role"`
	Status              string     `json:"status"`
	PlanType            string     `json:"plan_type"`
	PlanStatus          string     `json:"plan_status,omitempty"`
	PlanPeriodEnd       *time.Time `json:"plan_period_end,omitempty"`
	StrategyPackCredits int        `json:"strategy_pack_credits"`
	CreatedAt           time.Time  `json:"created_at"`
}

type UpdateProfileRequest struct {
	FullName     string `json:"full_name" validate:"required,min=2"`
	Phone        string `json:"phone" validate:"omitempty,min=6"`
	BusinessName string `json:"business_name"`
}
