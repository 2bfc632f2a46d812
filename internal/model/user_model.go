package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	Id                   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email                string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash         *string   `gorm:"type:varchar(255)"`
	FullName             string    `gorm:"type:varchar(255);not null"`
	Phone                string    `gorm:"type:varchar(50)"`
	BusinessName         string    `gorm:"type:varchar(255)"`
	Role                 string    `gorm:"type:varchar(20);not null;default:'user';index"`
	Status               string    `gorm:"type:varchar(20);not null;default:'active'"`
	PlanType             string    `gorm:"type:varchar(30);not null;default:'none'"`
	PlanStatus           string    `gorm:"type:varchar(30)"`
	PlanPeriodStart      *time.Time
	PlanPeriodEnd        *time.Time
	StrategyPackCredits  int     `gorm:"not null;default:0"`
	StripeCustomerId     *string `gorm:"type:varchar(255)"`
	StripeSubscriptionId *string `gorm:"type:varchar(255)"`
	CreatedAt            time.Time      `gorm:"autoCreateTime"`
	UpdatedAt            time.Time      `gorm:"autoUpdateTime"`
	DeletedAt            gorm.DeletedAt `gorm:"index"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.Id == uuid.Nil {
		u.Id = uuid.New()
	}
	return nil
}
