package dto

import (
	"time"

	"github.com/google/uuid"
)

// --- User Management ---

type AdminUserListRequest struct {
	Limit  int    `query:"limit"`
	Offset int    `query:"offset"`
	Search string `query:"search"`
	Role   string `query:"role"`
}

type UserListResponse struct {
	Id                  uuid.UUID `json:"id"`
	Email               string    `json:"email"`
	FullName            string    `json:"full_name"`
	Role                string    `json:"role"`
	Status              string    `json:"status"`
	PlanType            string    `json:"plan_type"`
	StrategyPackCredits int       `json:"strategy_pack_credits"`
	CreatedAt           time.Time `json:"created_at"`
}

type ChangeRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

type AdminLoginResponse struct {
	AuthResponse
	SessionExpiresAt time.Time `json:"session_expires_at"`
}

// --- Dashboard ---

type DashboardResponse struct {
	Users        map[string]int64 `json:"users"`
	Applications map[string]int64 `json:"applications"`
	Cases        map[string]int64 `json:"cases"`
	Contracts    int64            `json:"contracts"`
	Documents    int64            `json:"documents"`
}
