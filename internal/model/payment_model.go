package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Payment struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserId         uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_payments_user_idempotency,priority:1" json:"user_id"`
	Provider       string    `gorm:"type:varchar(20);not null" json:"provider"`
	ProviderRef    string    `gorm:"type:varchar(255);index" json:"provider_ref"`
	Plan           string    `gorm:"type:varchar(30);not null" json:"plan"`
	Amount         int64     `gorm:"not null" json:"amount"`
	Currency       string    `gorm:"type:varchar(10);not null" json:"currency"`
	Status         string    `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	IdempotencyKey *string   `gorm:"type:varchar(255);uniqueIndex:idx_payments_user_idempotency,priority:2" json:"-"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Payment) TableName() string {
	return "payments"
}

func (p *Payment) BeforeCreate(*gorm.DB) error {
	if p.Id == uuid.Nil {
		p.Id = uuid.New()
	}
	return nil
}
