package entity

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string
type UserStatus string
type PlanType string

const (
	UserRoleUser      UserRole = "user"
	UserRoleModerator UserRole = "moderator"
	UserRoleAdmin     UserRole = "admin"

	UserStatusActive  UserStatus = "active"
	UserStatusBlocked UserStatus = "blocked"

	PlanNone         PlanType = "none"
	PlanStrategyPack PlanType = "strategy_pack"
	PlanSubscription PlanType = "subscription"
)

type User struct {
	Id                   uuid.UUID
	Email                string
	PasswordHash         *string
	FullName             string
	Phone                string
	BusinessName         string
	Role                 UserRole
	Status               UserStatus
	PlanType             PlanType
	PlanStatus           string
	PlanPeriodStart      *time.Time
	PlanPeriodEnd        *time.Time
	StrategyPackCredits  int
	StripeCustomerId     *string
	StripeSubscriptionId *string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// HasActiveSubscription reports whether the subscription period covers now.
func (u *User) HasActiveSubscription(now time.Time) bool {
	if u.PlanType != PlanSubscription || u.PlanStatus != "active" {
		return false
	}
	return u.PlanPeriodEnd == nil || u.PlanPeriodEnd.After(now)
}
