package specification

import (
	"strings"

	"gorm.io/gorm"

	"github.com/google/uuid"
)

type ByEmail struct {
	Email string
}

func (s ByEmail) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(s.Email)))
}

type UserOwnedBy struct {
	UserID uuid.UUID
}

func (s UserOwnedBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

type ByRole struct {
	Roles []string
}

func (s ByRole) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("role IN ?", s.Roles)
}

// UserSearch matches email or full name, case-insensitively.
type UserSearch struct {
	Query string
}

func (s UserSearch) Apply(db *gorm.DB) *gorm.DB {
	q := strings.TrimSpace(s.Query)
	if q == "" {
		return db
	}
	like := "%" + strings.ToLower(q) + "%"
	return db.Where("LOWER(email) LIKE ? OR LOWER(full_name) LIKE ?", like, like)
}

type ByStripeCustomer struct {
	CustomerID string
}

func (s ByStripeCustomer) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("stripe_customer_id = ?", s.CustomerID)
}
