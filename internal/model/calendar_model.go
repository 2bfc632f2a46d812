package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CalendarIntegration struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserId       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_calendar_user_provider,priority:1" json:"user_id"`
	Provider     string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_calendar_user_provider,priority:2" json:"provider"`
	AccessToken  string    `gorm:"type:text;not null" json:"-"`
	RefreshToken string    `gorm:"type:text" json:"-"`
	TokenExpiry  time.Time `json:"token_expiry"`
	CalendarId   string    `gorm:"type:varchar(255);not null;default:'primary'" json:"calendar_id"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (CalendarIntegration) TableName() string {
	return "calendar_integrations"
}

func (c *CalendarIntegration) BeforeCreate(*gorm.DB) error {
	if c.Id == uuid.Nil {
		c.Id = uuid.New()
	}
	return nil
}

type CalendarEvent struct {
	Id            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserId        uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	IntegrationId *uuid.UUID `gorm:"type:uuid;index" json:"integration_id,omitempty"`
	CaseId        *uuid.UUID `gorm:"type:uuid" json:"case_id,omitempty"`
	ExternalId    string     `gorm:"type:varchar(255)" json:"external_id,omitempty"`
	Title         string     `gorm:"type:varchar(255);not null" json:"title"`
	Description   string     `gorm:"type:text" json:"description"`
	StartsAt      time.Time  `gorm:"not null;index" json:"starts_at"`
	EndsAt        time.Time  `gorm:"not null" json:"ends_at"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (CalendarEvent) TableName() string {
	return "calendar_events"
}

func (e *CalendarEvent) BeforeCreate(*gorm.DB) error {
	if e.Id == uuid.Nil {
		e.Id = uuid.New()
	}
	return nil
}
