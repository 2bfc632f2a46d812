package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Document struct {
	Id          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserId      uuid.UUID  `gorm:"type:uuid;not null;index"`
	CaseId      *uuid.UUID `gorm:"type:uuid;index"`
	ContractId  *uuid.UUID `gorm:"type:uuid;index"`
	Filename    string     `gorm:"type:varchar(255);not null"`
	StoragePath string     `gorm:"type:text;not null"`
	MimeType    string     `gorm:"type:varchar(150);not null"`
	Size        int64
	Category    string         `gorm:"type:varchar(100)"`
	Description string         `gorm:"type:text"`
	Source      string         `gorm:"type:varchar(20);not null;default:'upload'"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (Document) TableName() string {
	return "documents"
}

func (d *Document) BeforeCreate(*gorm.DB) error {
	if d.Id == uuid.Nil {
		d.Id = uuid.New()
	}
	return nil
}

// DocumentTag is the controlled tag vocabulary.
type DocumentTag struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Category    string    `gorm:"type:varchar(50)" json:"category"`
	Description string    `gorm:"type:text" json:"description"`
	Color       string    `gorm:"type:varchar(20)" json:"color"`
	UsageCount  int       `gorm:"not null;default:0" json:"usage_count"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (DocumentTag) TableName() string {
	return "document_tags"
}

func (t *DocumentTag) BeforeCreate(*gorm.DB) error {
	if t.Id == uuid.Nil {
		t.Id = uuid.New()
	}
	return nil
}

// Assignment sources. System assignments come from generated strategy packs.
const (
	TagSourceAI     = "ai"
	TagSourceManual = "manual"
	TagSourceSystem = "system"
)

type DocumentTagAssignment struct {
	Id         uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	DocumentId uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_doc_tag,priority:1" json:"document_id"`
	TagId      uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_doc_tag,priority:2" json:"tag_id"`
	Tag        DocumentTag `gorm:"foreignKey:TagId" json:"tag"`
	AssignedBy *uuid.UUID  `gorm:"type:uuid" json:"assigned_by,omitempty"`
	Source     string      `gorm:"type:varchar(20);not null" json:"source"`
	Confidence *float64    `json:"confidence,omitempty"`
	CreatedAt  time.Time   `gorm:"autoCreateTime" json:"created_at"`
}

func (DocumentTagAssignment) TableName() string {
	return "document_tag_assignments"
}

func (a *DocumentTagAssignment) BeforeCreate(*gorm.DB) error {
	if a.Id == uuid.Nil {
		a.Id = uuid.New()
	}
	return nil
}

type AITagSuggestion struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	DocumentId  uuid.UUID      `gorm:"type:uuid;not null;index" json:"document_id"`
	Suggestions datatypes.JSON `json:"suggestions"`
	Source      string         `gorm:"type:varchar(20);not null" json:"source"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (AITagSuggestion) TableName() string {
	return "ai_tag_suggestions"
}

func (s *AITagSuggestion) BeforeCreate(*gorm.DB) error {
	if s.Id == uuid.Nil {
		s.Id = uuid.New()
	}
	return nil
}
