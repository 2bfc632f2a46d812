package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Application struct {
	Id           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserId       *uuid.UUID `gorm:"type:uuid;index"`
	FullName     string     `gorm:"type:varchar(255);not null"`
	Email        string     `gorm:"type:varchar(255);not null;index"`
	Phone        string     `gorm:"type:varchar(50);not null"`
	BusinessName string     `gorm:"type:varchar(255)"`
	Trade        string     `gorm:"type:varchar(100);not null"`
	State        string     `gorm:"type:varchar(10);not null"`
	IssueType    string     `gorm:"type:varchar(100);not null"`
	Description  string     `gorm:"type:text;not null"`
	Amount       *float64
	IssueDate    *time.Time
	Status       string     `gorm:"type:varchar(20);not null;default:'pending';index"`
	ReviewedBy   *uuid.UUID `gorm:"type:uuid"`
	ReviewedAt   *time.Time
	ReviewNotes  string `gorm:"type:text"`
	AiAnalysis   datatypes.JSON
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

func (Application) TableName() string {
	return "applications"
}

func (a *Application) BeforeCreate(*gorm.DB) error {
	if a.Id == uuid.Nil {
		a.Id = uuid.New()
	}
	return nil
}
