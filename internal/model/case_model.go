package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Case struct {
	Id                uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserId            uuid.UUID `gorm:"type:uuid;not null;index"`
	CaseNumber        string    `gorm:"type:varchar(40);uniqueIndex;not null"`
	Title             string    `gorm:"type:varchar(255);not null"`
	Status            string    `gorm:"type:varchar(20);not null;default:'active';index"`
	IssueType         string    `gorm:"type:varchar(100);not null"`
	Amount            float64
	Description       string `gorm:"type:text"`
	Intake            datatypes.JSON
	AiAnalysis        datatypes.JSON
	AnalysisStatus    string `gorm:"type:varchar(20);not null;default:'fallback'"`
	StrategyPack      datatypes.JSON
	NextAction        string `gorm:"type:text"`
	NextActionDue     *time.Time
	Progress          int `gorm:"not null;default:0"`
	MoodScore         *int
	MoodNote          string `gorm:"type:text"`
	ResolutionMethod  string `gorm:"type:varchar(100)"`
	RecoveredAmount   *float64
	SatisfactionScore *int
	ClosedAt          *time.Time
	CreatedAt         time.Time      `gorm:"autoCreateTime"`
	UpdatedAt         time.Time      `gorm:"autoUpdateTime"`
	DeletedAt         gorm.DeletedAt `gorm:"index"`
}

func (Case) TableName() string {
	return "cases"
}

func (c *Case) BeforeCreate(*gorm.DB) error {
	if c.Id == uuid.Nil {
		c.Id = uuid.New()
	}
	return nil
}

type Contract struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserId         uuid.UUID `gorm:"type:uuid;not null;index"`
	ContractNumber string    `gorm:"type:varchar(40);uniqueIndex;not null"`
	Title          string    `gorm:"type:varchar(255);not null"`
	Status         string    `gorm:"type:varchar(20);not null;default:'draft';index"`
	Parties        datatypes.JSON
	Value          float64
	Terms          string `gorm:"type:text"`
	AiAnalysis     datatypes.JSON
	NextAction     string `gorm:"type:text"`
	NextActionDue  *time.Time
	CreatedAt      time.Time      `gorm:"autoCreateTime"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime"`
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}

func (Contract) TableName() string {
	return "contracts"
}

func (c *Contract) BeforeCreate(*gorm.DB) error {
	if c.Id == uuid.Nil {
		c.Id = uuid.New()
	}
	return nil
}

type TimelineEvent struct {
	Id          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserId      uuid.UUID  `gorm:"type:uuid;not null;index"`
	CaseId      *uuid.UUID `gorm:"type:uuid;index"`
	ContractId  *uuid.UUID `gorm:"type:uuid;index"`
	Title       string     `gorm:"type:varchar(255);not null"`
	Description string     `gorm:"type:text"`
	EventDate   time.Time  `gorm:"not null"`
	Completed   bool       `gorm:"not null;default:false"`
	CreatedAt   time.Time  `gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime"`
}

func (TimelineEvent) TableName() string {
	return "timeline_events"
}

func (t *TimelineEvent) BeforeCreate(*gorm.DB) error {
	if t.Id == uuid.Nil {
		t.Id = uuid.New()
	}
	return nil
}
